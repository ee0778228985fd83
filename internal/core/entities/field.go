package entities

// FieldConstraints carries the optional length/value/regex constraints a
// field declaration may attach.
type FieldConstraints struct {
	MinLength *int
	MaxLength *int
	MinValue  *float64
	MaxValue  *float64
	Pattern   string
}

// FieldDefinition describes a single model field.
type FieldDefinition struct {
	Name          string
	Type          SemanticType
	PrimaryKey    bool
	Required      bool
	Unique        bool
	Nullable      bool
	AutoIncrement bool
	AutoNow       bool
	AutoNowAdd    bool
	Default       string
	HasDefault    bool
	Constraints   FieldConstraints
}

// IsOptional reports whether the rendered host-language type should be
// wrapped in the optional shape: a field that isn't required or that is
// explicitly nullable.
func (f FieldDefinition) IsOptional() bool {
	return f.Nullable || !f.Required
}

// Validate checks a single field's invariants against the configuration
// rule 6.
func (f FieldDefinition) Validate() error {
	if f.Name == "" {
		return NewValidationError("Field", "Name", "", "field name cannot be empty", ErrEmptyName)
	}
	if !f.Type.IsValid() {
		return NewValidationError("Field", f.Name, string(f.Type), "unknown semantic type", nil)
	}

	if f.AutoIncrement && (!f.PrimaryKey || f.Type != TypeInteger) {
		return NewValidationError("Field", f.Name, string(f.Type),
			"auto_increment requires primary_key and integer type", nil)
	}

	if (f.AutoNow || f.AutoNowAdd) && !f.Type.IsDateTime() {
		return NewValidationError("Field", f.Name, string(f.Type),
			"auto_now/auto_now_add require datetime type", nil)
	}

	hasLength := f.Constraints.MinLength != nil || f.Constraints.MaxLength != nil || f.Constraints.Pattern != ""
	if hasLength && !f.Type.IsStringlike() {
		return NewValidationError("Field", f.Name, string(f.Type),
			"length/pattern constraints require string or text type", nil)
	}

	hasValue := f.Constraints.MinValue != nil || f.Constraints.MaxValue != nil
	if hasValue && !f.Type.IsNumeric() {
		return NewValidationError("Field", f.Name, string(f.Type),
			"value constraints require a numeric type", nil)
	}

	return nil
}

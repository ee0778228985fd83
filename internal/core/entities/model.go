package entities

import "fmt"

// RelationshipKind identifies how two models relate. Only one-to-one and
// many-to-one relationships "own" their target and are consulted for cycle
// detection.
type RelationshipKind string

const (
	RelationOneToOne   RelationshipKind = "one_to_one"
	RelationOneToMany  RelationshipKind = "one_to_many"
	RelationManyToOne  RelationshipKind = "many_to_one"
	RelationManyToMany RelationshipKind = "many_to_many"
)

// Owns reports whether this relationship kind participates in cycle
// detection: one-to-one and many-to-one relationships own their target,
// one-to-many and many-to-many do not.
func (k RelationshipKind) Owns() bool {
	return k == RelationOneToOne || k == RelationManyToOne
}

// Relationship describes a named relationship from the owning model to a
// target model.
type Relationship struct {
	Name        string
	Kind        RelationshipKind
	TargetModel string
	ForeignKey  string
}

// Index describes a named index over a set of the owning model's fields.
type Index struct {
	Name   string
	Fields []string
	Unique bool
}

// ModelDefinition describes a single entity: a table name, its fields,
// relationships, and indexes.
type ModelDefinition struct {
	Name          string
	TableName     string
	Fields        []FieldDefinition
	FieldOrder    []string // preserves declaration order for deterministic rendering
	Relationships map[string]Relationship
	RelationOrder []string
	Indexes       []Index
}

// FieldByName looks up a field by name.
func (m ModelDefinition) FieldByName(name string) (FieldDefinition, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// PrimaryKeyField returns the model's single primary-key field.
func (m ModelDefinition) PrimaryKeyField() (FieldDefinition, bool) {
	for _, f := range m.Fields {
		if f.PrimaryKey {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// Validate checks the model-local invariants and the configuration rules
// 6-8: exactly one primary key, consistent field constraints, index fields
// exist. Cross-model invariants (unique table names, relationship targets,
// cycle freedom) are checked by ProjectConfiguration.Validate.
func (m ModelDefinition) Validate() error {
	if m.Name == "" {
		return NewValidationError("Model", "Name", "", "model name cannot be empty", ErrEmptyName)
	}
	if m.TableName == "" {
		return NewValidationError("Model", m.Name, "", "table name cannot be empty", ErrEmptyName)
	}
	if len(m.Fields) == 0 {
		return NewValidationError("Model", m.Name, "", "model must declare at least one field", nil)
	}

	pkCount := 0
	for _, f := range m.Fields {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("model %q: %w", m.Name, err)
		}
		if f.PrimaryKey {
			pkCount++
		}
	}
	if pkCount != 1 {
		return NewValidationError("Model", m.Name, fmt.Sprintf("%d", pkCount),
			"model must have exactly one primary-key field", nil)
	}

	for _, idx := range m.Indexes {
		if len(idx.Fields) == 0 {
			return NewValidationError("Model", m.Name, idx.Name, "index must reference at least one field", nil)
		}
		for _, fieldName := range idx.Fields {
			if _, ok := m.FieldByName(fieldName); !ok {
				return NewValidationError("Model", m.Name, fieldName, "index references unknown field", nil)
			}
		}
	}

	return nil
}

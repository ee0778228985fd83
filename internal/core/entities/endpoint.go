package entities

// CRUDFlags enables or disables the individual CRUD operations an endpoint
// exposes.
type CRUDFlags struct {
	Create bool
	ReadAll bool
	ReadOne bool
	Update  bool
	Delete  bool
}

// AnyEnabled reports whether at least one CRUD operation is enabled.
func (c CRUDFlags) AnyEnabled() bool {
	return c.Create || c.ReadAll || c.ReadOne || c.Update || c.Delete
}

// EndpointDefinition is a declarative HTTP route tied to a model with a set
// of enabled CRUD operations.
type EndpointDefinition struct {
	Path  string
	Model string
	CRUD  CRUDFlags
}

// Validate checks the endpoint-local configuration invariants.
// The referenced model's existence is checked by ProjectConfiguration.Validate.
func (e EndpointDefinition) Validate() error {
	if err := ValidateEndpointPath(e.Path); err != nil {
		return NewValidationError("Endpoint", e.Path, e.Path, "invalid endpoint path", err)
	}
	if e.Model == "" {
		return NewValidationError("Endpoint", e.Path, "", "endpoint must reference a model", ErrEmptyName)
	}
	if !e.CRUD.AnyEnabled() {
		return NewValidationError("Endpoint", e.Path, "", "endpoint must enable at least one CRUD operation", nil)
	}
	return nil
}

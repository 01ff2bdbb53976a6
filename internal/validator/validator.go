package validator

import (
	"deedflow/internal/domain"
)

// Issue describes one problem found in a form's field bag.
type Issue struct {
	FieldKey string `json:"field_key"`
	Message  string `json:"message"`
}

// FormValidator checks the field bag of one service type. Submissions are
// validated before a form enters the pipeline, so staff1 starts from a
// structurally complete document.
type FormValidator interface {
	ServiceType() domain.ServiceType
	RequiredFields() []string
	Validate(fields map[string]string) []Issue
}

// Registry maps service types to their form validators.
type Registry struct {
	validators map[domain.ServiceType]FormValidator
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[domain.ServiceType]FormValidator)}
}

// Register adds a validator to the registry.
func (r *Registry) Register(v FormValidator) {
	r.validators[v.ServiceType()] = v
}

// Get returns the validator for a service type, or nil if not registered.
func (r *Registry) Get(serviceType domain.ServiceType) FormValidator {
	return r.validators[serviceType]
}

// NewDefaultRegistry returns a registry with every deed schema registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, v := range builtinSchemas() {
		r.Register(v)
	}
	return r
}

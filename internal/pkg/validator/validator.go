package validator

// Validator checks struct fields against their `validate` tags.
type Validator interface {
	Validate(data any) error
}

package models

// FieldError is a validation failure reported against a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// UserResponse is the payload of register and login. Exactly one of Errors
// or User is set.
type UserResponse struct {
	Errors []FieldError `json:"errors,omitempty"`
	User   *User        `json:"user,omitempty"`
}

// NewFieldErrorResponse wraps a single field error.
func NewFieldErrorResponse(field, message string) *UserResponse {
	return &UserResponse{Errors: []FieldError{{Field: field, Message: message}}}
}

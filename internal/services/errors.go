package services

import "errors"

// Common service errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

// Error kinds classify a registration failure for the HTTP layer
const (
	KindValidation  = "validation"  // bad or missing input, user-correctable
	KindConflict    = "conflict"    // duplicate email or identifier
	KindUpload      = "upload"      // file type/size/transport failure
	KindPersistence = "persistence" // database unreachable or write failure
)

// RegistrationError is a categorized, user-safe registration failure. Message
// and Details are safe to return to the client; Err carries the internal
// cause and is only logged.
type RegistrationError struct {
	Kind    string
	Message string
	Details []string
	Err     error
}

func (e *RegistrationError) Error() string {
	return e.Message
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

func validationError(msg string) *RegistrationError {
	return &RegistrationError{Kind: KindValidation, Message: msg}
}

func conflictError(msg string) *RegistrationError {
	return &RegistrationError{Kind: KindConflict, Message: msg}
}

func uploadError(details []string) *RegistrationError {
	return &RegistrationError{Kind: KindUpload, Message: "File upload errors", Details: details}
}

func persistenceError(err error) *RegistrationError {
	return &RegistrationError{Kind: KindPersistence, Message: "Server error during registration", Err: err}
}

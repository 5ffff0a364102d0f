package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
)

// Error is a business rule failure with a stable machine-readable code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidCredentials = &Error{Code: "INVALID_CREDENTIALS", Message: "The provided credentials are incorrect."}
	ErrInvalidAPIToken    = &Error{Code: "INVALID_API_TOKEN", Message: "Invalid or missing API token."}
	ErrUnauthenticated    = &Error{Code: "UNAUTHENTICATED", Message: "Unauthenticated. Please provide a valid token."}
	ErrUserNotFound       = &Error{Code: "USER_NOT_FOUND", Message: "User not found."}

	ErrCustomerNotFound      = &Error{Code: "CUSTOMER_NOT_FOUND", Message: "Customer not found."}
	ErrCustomerAlreadyExists = &Error{Code: "CUSTOMER_ALREADY_EXISTS", Message: "Customer with this email already exists."}
)

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

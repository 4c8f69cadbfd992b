package session

// The authentication flow reports failures as plain typed values so the
// view can branch on kind and show Message inline without inspecting
// error strings.

// ValidationError rejects input before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// LoginError is a login failure with a user-displayable message.
type LoginError struct {
	Message string
}

func (e *LoginError) Error() string { return e.Message }

// RegistrationError is a registration failure with a user-displayable message.
type RegistrationError struct {
	Message string
}

func (e *RegistrationError) Error() string { return e.Message }

// ServerError marks a success response missing data the flow depends on.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return e.Message }

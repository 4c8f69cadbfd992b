package api

import "fmt"

// Error is the single normalized failure shape produced by the gateway.
// It is a plain value carrying everything callers branch on: Detail holds
// the backend-provided message when one exists, Message the resolved
// human-readable text (detail, then transport error, then a generic
// fallback), and HasResponse distinguishes an HTTP error response from a
// request that never reached the server.
type Error struct {
	Message     string
	Detail      string
	Status      int
	HasResponse bool
}

func (e *Error) Error() string {
	if e.HasResponse {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}
	return "api: " + e.Message
}

// newResponseError normalizes an HTTP error response body into an Error.
// The body's detail field wins, then its message field, then a status line.
func newResponseError(status int, body errorBody) *Error {
	detail := body.Detail
	if detail == "" {
		detail = body.Message
	}
	msg := detail
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{Message: msg, Detail: detail, Status: status, HasResponse: true}
}

// newTransportError normalizes a failure where no response was received.
func newTransportError(err error) *Error {
	msg := "an error occurred"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Message: msg, HasResponse: false}
}

// errorBody is the backend's error payload ({"detail": ...} from the API,
// {"message": ...} from intermediaries).
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

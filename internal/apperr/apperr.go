// Package apperr defines the error taxonomy shared by the services and
// mapped to HTTP status codes by the API layer.
package apperr

// Kind classifies an error for status-code mapping.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindInvalidInput
	KindConflict
	KindInvalidState
	KindUnauthenticated
	KindInternal
)

// Error carries a short title surfaced as the response's "error" field and
// a longer human-readable message the presentation layer shows directly.
type Error struct {
	Kind    Kind
	Title   string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Title
}

// NotFound covers both genuinely absent records and records owned by a
// different user, so callers cannot probe for other users' data.
func NotFound(title string) *Error {
	return &Error{Kind: KindNotFound, Title: title}
}

// Invalid reports a missing or malformed input field.
func Invalid(title, message string) *Error {
	return &Error{Kind: KindInvalidInput, Title: title, Message: message}
}

// Conflict reports a uniqueness violation.
func Conflict(title, message string) *Error {
	return &Error{Kind: KindConflict, Title: title, Message: message}
}

// InvalidState reports an operation that violates a business rule.
func InvalidState(title, message string) *Error {
	return &Error{Kind: KindInvalidState, Title: title, Message: message}
}

// Unauthenticated reports a missing, malformed, or expired credential.
func Unauthenticated(title, message string) *Error {
	return &Error{Kind: KindUnauthenticated, Title: title, Message: message}
}

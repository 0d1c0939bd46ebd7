package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryReconcile Category = "reconcile"
	CategoryHydration Category = "hydration"
	CategoryRender    Category = "render"
	CategoryServer    Category = "server"
	CategoryConfig    Category = "config"
	CategoryExport    Category = "export"
	CategoryCLI       Category = "cli"
)

// Error is a structured error with a registered code, category,
// suggestion, and documentation link.
type Error struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (reconcile, hydration, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithDetailf replaces the detail with a formatted message.
func (e *Error) WithDetailf(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap attaches an underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an error from a registered code. Unregistered codes
// produce a generic error carrying the code.
func New(code string) *Error {
	if tmpl, ok := registry[code]; ok {
		return &Error{
			Code:       code,
			Category:   tmpl.Category,
			Message:    tmpl.Message,
			Detail:     tmpl.Detail,
			Suggestion: tmpl.Suggestion,
			DocURL:     tmpl.DocURL,
		}
	}
	return &Error{Code: code, Message: "unknown error"}
}

// Newf creates an error from a registered code with a formatted detail.
func Newf(code string, format string, args ...any) *Error {
	return New(code).WithDetailf(format, args...)
}

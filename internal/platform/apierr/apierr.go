// Package apierr attaches an HTTP status and a machine-readable code to an
// error so the handler layer can map service failures to responses without
// growing a sentinel per shape.
package apierr

import "fmt"

type Error struct {
	Status int
	Code   string
	Err    error
}

// New wraps err with the status and code the HTTP boundary should emit.
func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.Code != "":
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

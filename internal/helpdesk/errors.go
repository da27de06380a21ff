package helpdesk

import "errors"

// Error kinds. Every failure the service reports wraps exactly one of them;
// anything that wraps none is an internal failure.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid input")
)

// Error carries a user-facing message for one of the error kinds.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

// Unauthorized builds an ErrUnauthorized error.
func Unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Msg: msg} }

// Forbidden builds an ErrForbidden error.
func Forbidden(msg string) error { return &Error{Kind: ErrForbidden, Msg: msg} }

// NotFound builds an ErrNotFound error.
func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Msg: msg} }

// Conflict builds an ErrConflict error.
func Conflict(msg string) error { return &Error{Kind: ErrConflict, Msg: msg} }

// Invalid builds an ErrInvalid error.
func Invalid(msg string) error { return &Error{Kind: ErrInvalid, Msg: msg} }

// IsDomain reports whether err belongs to the taxonomy, i.e. whether its
// message is safe to show to the caller.
func IsDomain(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

package service

import "errors"

// Error kinds. Every error returned by AuthService matches exactly one of
// them with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
)

const (
	MsgInvalidCredentials = "invalid email or password"
	MsgInvalidToken       = "invalid or expired token"
	MsgEmailInUse         = "this email is already in use"
	MsgUnknownRole        = "given role does not exist"
	MsgPasswordMismatch   = "passwords don't match"
	MsgWrongPassword      = "wrong credentials"
	MsgAccountNotFound    = "account not found"
	MsgInternal           = "internal server error"
	MsgForgotPassword     = "If this user exists, they will receive an email"
)

// Error carries a kind, a message that is safe to show to the caller and an
// optional cause that is only logged.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func validation(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

func conflict(msg string) error {
	return &Error{Kind: ErrConflict, Msg: msg}
}

func unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Msg: msg}
}

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Msg: msg}
}

func internal(cause error) error {
	return &Error{Kind: ErrInternal, Msg: MsgInternal, Cause: cause}
}

// PublicMessage returns the text a transport may show for err.
func PublicMessage(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Msg
	}
	return MsgInternal
}

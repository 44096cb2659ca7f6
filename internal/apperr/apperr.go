// Package apperr holds the error kinds shared by services and handlers.
package apperr

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrAuth          = errors.New("authentication required")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrLimitExceeded = errors.New("limit exceeded")
	ErrUpstream      = errors.New("upstream service failed")
	ErrStorage       = errors.New("storage failure")
)

// Error carries a user-facing message, a kind and an optional cause.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func Validation(msg string) error { return &Error{Kind: ErrValidation, Msg: msg} }
func Auth(msg string) error       { return &Error{Kind: ErrAuth, Msg: msg} }
func Forbidden(msg string) error  { return &Error{Kind: ErrForbidden, Msg: msg} }
func NotFound(msg string) error   { return &Error{Kind: ErrNotFound, Msg: msg} }
func Conflict(msg string) error   { return &Error{Kind: ErrConflict, Msg: msg} }
func Limit(msg string) error      { return &Error{Kind: ErrLimitExceeded, Msg: msg} }

func Upstream(msg string, cause error) error {
	return &Error{Kind: ErrUpstream, Msg: msg, Cause: cause}
}

func Storage(msg string, cause error) error {
	return &Error{Kind: ErrStorage, Msg: msg, Cause: cause}
}

// FromDB classifies a gorm error. The DB must be opened with TranslateError
// for duplicate and foreign key violations to be recognised.
func FromDB(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: ErrNotFound, Msg: msg + ": not found", Cause: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: ErrConflict, Msg: "duplicate entry, this record already exists", Cause: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &Error{Kind: ErrValidation, Msg: "referenced record does not exist", Cause: err}
	}
	return Storage(msg, err)
}

// Status maps an error to the HTTP status it should be reported with.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

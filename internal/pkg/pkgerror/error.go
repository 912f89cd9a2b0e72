package pkgerror

import (
	"errors"
	"net/http"
)

type Code int

const (
	CodeInternal Code = iota
	CodeInvalidInput
	CodeNotFound
	CodeUnavailable
)

type Type int

const (
	TypeServer Type = iota
	TypeBusiness
)

type Error struct {
	msg  string
	code Code
	typ  Type
	err  error
}

func NewBusiness(msg string, code Code) *Error {
	return &Error{msg: msg, code: code, typ: TypeBusiness}
}

func NewServer(msg string, code Code, err error) *Error {
	return &Error{msg: msg, code: code, typ: TypeServer, err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Code() Code { return e.code }

func (e *Error) Type() Type { return e.typ }

// Message is the text safe to return to clients.
func (e *Error) Message() string { return e.msg }

// HTTPStatus maps any error to a status code. Errors that are not *Error are
// internal failures.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

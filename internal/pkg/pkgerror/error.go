package pkgerror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is wrapped by storage layers when an id has no backing record.
var ErrNotFound = errors.New("resource not found")

// Type classifies errors into high-level buckets used by the application.
type Type int

const (
	TypeServer     Type = iota // infrastructure failures such as a store outage
	TypeBusiness               // a well-formed request the service cannot satisfy
	TypeValidation             // malformed or incomplete input
)

var typeNames = map[Type]string{
	TypeServer:     "ERROR_TYPE_SERVER",
	TypeBusiness:   "ERROR_TYPE_BUSINESS",
	TypeValidation: "ERROR_TYPE_VALIDATION",
}

var typeFallbacks = map[Type]string{
	TypeServer:     "Internal error",
	TypeBusiness:   "Logical business not meet with requirement",
	TypeValidation: "Validation violation",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "ERROR_TYPE_UNKNOWN"
}

// Code is a stable identifier used for mapping errors to HTTP status codes.
type Code int

const (
	CodeInternal Code = iota
	// body could not be decoded
	CodeInvalidFormat
	// body decoded but failed validation
	CodeInvalidInput
	CodeNotFound
	// id already taken
	CodeConflict
	// upstream refused or could not be reached
	CodeBadRequest
)

type codeInfo struct {
	name   string
	status int
}

var codes = map[Code]codeInfo{
	CodeInternal:      {"ERROR_CODE_INTERNAL", http.StatusInternalServerError},
	CodeInvalidFormat: {"ERROR_CODE_INVALID_FORMAT", http.StatusBadRequest},
	CodeInvalidInput:  {"ERROR_CODE_INVALID_INPUT", http.StatusUnprocessableEntity},
	CodeNotFound:      {"ERROR_CODE_NOT_FOUND", http.StatusNotFound},
	CodeConflict:      {"ERROR_CODE_CONFLICT", http.StatusConflict},
	CodeBadRequest:    {"ERROR_CODE_BAD_REQUEST", http.StatusBadRequest},
}

func (c Code) info() codeInfo {
	if info, ok := codes[c]; ok {
		return info
	}
	return codes[CodeInternal]
}

func (c Code) String() string { return c.info().name }

// Error carries a user-facing message, a type and a code alongside an
// optional underlying cause.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
}

func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	}
	if fb, ok := typeFallbacks[e.errType]; ok {
		return fb
	}
	return "Unknown error"
}

// String is the verbose form used in server logs.
func (e *Error) String() string {
	return fmt.Sprintf("Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType, e.code, e.msg, e.err)
}

func (e *Error) Msg() string { return e.msg }

func (e *Error) Type() Type { return e.errType }

func (e *Error) Code() Code { return e.code }

func (e *Error) Unwrap() error { return e.err }

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int { return e.code.info().status }

// As reports whether err holds an *Error anywhere in its chain.
func As(err error) (*Error, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, defaulting to 500 for errors
// that were never classified.
func StatusOf(err error) int {
	if gerr, ok := As(err); ok {
		return gerr.StatusCode()
	}
	return http.StatusInternalServerError
}

func new(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer hides err behind a generic message.
func NewServer(err error) error {
	return new(err, "Internal server error", TypeServer, CodeInternal)
}

func NewBusiness(msg string, code Code) error {
	return new(nil, msg, TypeBusiness, code)
}

// NewBusinessErr is NewBusiness with err kept reachable through errors.Is.
func NewBusinessErr(err error, msg string, code Code) error {
	return new(err, msg, TypeBusiness, code)
}

// NewInvalidInput uses err's text as the message shown to the caller.
func NewInvalidInput(err error) error {
	msg := "validation error"
	if err != nil {
		msg = err.Error()
	}
	return new(err, msg, TypeValidation, CodeInvalidInput)
}

// NewInvalidFormat is returned when a request body cannot be decoded.
func NewInvalidFormat() error {
	return new(nil, "invalid request body", TypeValidation, CodeInvalidFormat)
}

// Package apperr is the error taxonomy shared by services, repositories and transports.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeBackend       Code = "BACKEND_ERROR"
	CodeInternal      Code = "INTERNAL_ERROR"
)

type Metadata struct {
	HTTPStatus     int
	GRPCCode       codes.Code
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		GRPCCode:       codes.InvalidArgument,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		GRPCCode:      codes.Unauthenticated,
		PublicMessage: "authentication required",
	},
	CodeForbidden: {
		HTTPStatus:    http.StatusForbidden,
		GRPCCode:      codes.PermissionDenied,
		PublicMessage: "access denied",
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		GRPCCode:      codes.NotFound,
		PublicMessage: "resource not found",
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		GRPCCode:      codes.AlreadyExists,
		PublicMessage: "conflict detected",
	},
	CodeStateConflict: {
		HTTPStatus:     http.StatusUnprocessableEntity,
		GRPCCode:       codes.FailedPrecondition,
		PublicMessage:  "state transition disallowed",
		DetailsAllowed: true,
	},
	CodeBackend: {
		HTTPStatus:    http.StatusServiceUnavailable,
		GRPCCode:      codes.Unavailable,
		PublicMessage: "backend unavailable",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		GRPCCode:      codes.Internal,
		PublicMessage: "internal server error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

// NotFound reports a missing record of the given kind.
func NotFound(resource, id string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s %s not found", resource, id)).
		WithDetails(map[string]string{"resource": resource, "id": id})
}

// Validation reports caller-supplied data that failed a precondition.
func Validation(message string, fields map[string]string) *Error {
	e := New(CodeValidation, message)
	if len(fields) > 0 {
		e.details = fields
	}
	return e
}

// Backend wraps a failure of an external store, identity or blob service.
func Backend(err error, operation string) *Error {
	return Wrap(CodeBackend, err, operation+" failed")
}

func Forbidden(message string) *Error    { return New(CodeForbidden, message) }
func Unauthorized(message string) *Error { return New(CodeUnauthorized, message) }

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// FieldErrors returns the per-field validation messages, if any.
func (e *Error) FieldErrors() map[string]string {
	if e == nil {
		return nil
	}
	fields, _ := e.details.(map[string]string)
	return fields
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the first *Error in err's chain.
func As(err error) *Error {
	var target *Error
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// CodeOf returns the taxonomy code of err, CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if e := As(err); e != nil {
		return e.code
	}
	return CodeInternal
}

func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

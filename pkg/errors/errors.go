package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidFormat    Code = "INVALID_FORMAT"
	CodeMissingFields    Code = "MISSING_FIELDS"
	CodeInvalidMethod    Code = "INVALID_METHOD"
	CodeLicenseNotFound  Code = "LICENSE_NOT_FOUND"
	CodeLicenseSuspended Code = "LICENSE_SUSPENDED"
	CodeLicenseExpired   Code = "LICENSE_EXPIRED"
	CodeURLMismatch      Code = "URL_MISMATCH"
	CodeQuotaExceeded    Code = "QUOTA_EXCEEDED"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeMissingAuth      Code = "MISSING_AUTH"
	CodeInvalidToken     Code = "INVALID_TOKEN"
	CodeInternal         Code = "INTERNAL_ERROR"
)

type Metadata struct {
	HTTPStatus    int
	Retryable     bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeInvalidFormat: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "invalid format",
	},
	CodeMissingFields: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "missing required fields",
	},
	CodeInvalidMethod: {
		HTTPStatus:    http.StatusMethodNotAllowed,
		PublicMessage: "method not allowed",
	},
	CodeLicenseNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "license not found",
	},
	CodeLicenseSuspended: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "license suspended",
	},
	CodeLicenseExpired: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "license expired",
	},
	CodeURLMismatch: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "site url does not match license",
	},
	CodeQuotaExceeded: {
		HTTPStatus:    http.StatusTooManyRequests,
		PublicMessage: "token quota exceeded",
	},
	CodeRateLimited: {
		HTTPStatus:    http.StatusTooManyRequests,
		Retryable:     true,
		PublicMessage: "rate limit exceeded",
	},
	CodeMissingAuth: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "missing or malformed authorization header",
	},
	CodeInvalidToken: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "invalid or expired token",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "internal server error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// IsKnown reports whether code belongs to the closed error taxonomy.
func IsKnown(code Code) bool {
	_, ok := metadataByCode[code]
	return ok
}

type Error struct {
	code    Code
	message string
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

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

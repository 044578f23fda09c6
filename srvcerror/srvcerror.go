package srvcerror

import (
	"errors"
	"net/http"
)

type Error struct {
	errorCode  string
	msgToUser  string // public
	dbgInfoErr error  // private, for debugging

	httpStatus int // optional, for HTTP responses
}

func (e *Error) Error() string {
	return e.msgToUser
}

func (e *Error) ErrorCode() string {
	return e.errorCode
}

func (e *Error) DebugInfo() error {
	return e.dbgInfoErr
}

func (e *Error) SetDebug(err error) *Error {
	e.dbgInfoErr = err
	return e
}

func (e *Error) HttpStatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

func (e *Error) SetHttpStatusCode(code int) *Error {
	e.httpStatus = code
	return e
}

func New(errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		msgToUser: msgToUser,
	}
}

// IsCode reports whether err wraps a service error with the given code.
func IsCode(err error, code string) bool {
	srvcErr := &Error{}
	if errors.As(err, &srvcErr) {
		return srvcErr.errorCode == code
	}
	return false
}

const ErrCodeInternalServerError = "internal_server_error"

func ErrInternalSE() *Error {
	return New(
		ErrCodeInternalServerError,
		"internal server error",
	).SetHttpStatusCode(http.StatusInternalServerError)
}

const ErrCodeAuthorizationFailed = "authorization_failed"

func ErrAuthorization(msg string) *Error {
	return New(
		ErrCodeAuthorizationFailed,
		msg,
	).SetHttpStatusCode(http.StatusForbidden)
}

const ErrCodeInvalidTransition = "invalid_transition"

func ErrInvalidTransition(msg string) *Error {
	return New(
		ErrCodeInvalidTransition,
		msg,
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeDuplicateScore = "duplicate_score"

func ErrDuplicateScore(msg string) *Error {
	return New(
		ErrCodeDuplicateScore,
		msg,
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeNotFound = "not_found"

func ErrNotFound(msg string) *Error {
	return New(
		ErrCodeNotFound,
		msg,
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeInvalidRequest = "invalid_request"

func ErrInvalidRequest(msg string) *Error {
	return New(
		ErrCodeInvalidRequest,
		msg,
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeUnauthenticated = "unauthenticated"

func ErrUnauthenticated() *Error {
	return New(
		ErrCodeUnauthenticated,
		"a valid bearer token is required",
	).SetHttpStatusCode(http.StatusUnauthorized)
}

package authcode

import (
	"errors"
	"net/http"
)

// Error is a terminal authentication failure carrying the HTTP status the
// caller should respond with. The message is what ends up in the JSON body
// as {"message": "..."}.
type Error struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Protocol validation failures on the callback. These are always 400s and
// never retried.
func errMissingState() *Error  { return NewError(http.StatusBadRequest, "Missing state") }
func errStateMismatch() *Error { return NewError(http.StatusBadRequest, "State doesn't match") }
func errMissingCode() *Error   { return NewError(http.StatusBadRequest, "Missing code") }

// Store sentinel errors shared by the store backends.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAccountNotFound = errors.New("account not found")
)

package middleware

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication matches any authentication failure.
	ErrAuthentication = errors.New("authentication failed")
	// ErrServer matches any upstream or internal server failure.
	ErrServer = errors.New("server error")
)

// APIError carries an HTTP status code alongside a human readable message.
type APIError struct {
	code    int
	message string
	cause   error
}

func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

func (e *APIError) Code() int {
	return e.code
}

func (e *APIError) Message() string {
	return e.message
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %s", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// AuthenticationError is returned when a request fails key validation.
type AuthenticationError struct {
	message string
}

func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{message: message}
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.message)
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// ServerError is returned when an upstream dependency fails.
type ServerError struct {
	statusCode int
	message    string
}

func NewServerError(statusCode int, message string) *ServerError {
	return &ServerError{statusCode: statusCode, message: message}
}

func (e *ServerError) StatusCode() int {
	return e.statusCode
}

func (e *ServerError) Message() string {
	return e.message
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.statusCode, e.message)
}

func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

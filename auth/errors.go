package auth

import (
	"errors"
	"net/http"
)

// Code is a stable, machine-readable error code returned to API clients.
type Code string

const (
	CodeUserAlreadyExists  Code = "USER_ALREADY_EXISTS"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTokenNotFound      Code = "TOKEN_NOT_FOUND"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
)

var (
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenMissing       = errors.New("token not found")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token has expired")

	// storage level
	ErrNotFound  = errors.New("account not found")
	ErrDuplicate = errors.New("duplicate account")
)

const errFieldRequired = "this field is required."

// APIError is the body of every non-2xx response, rendered as {"error": {...}}.
type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// ValidationError reports the first invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func fieldError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Normalize maps a workflow failure to its HTTP status and API error body.
// Checks run in a fixed order: already-normalized errors pass through,
// validation errors collapse to VALIDATION_ERROR, then the authentication
// failure kinds. ok is false for anything else, which callers must surface
// as an opaque server error.
func Normalize(err error) (status int, body *APIError, ok bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return statusFor(apiErr.Code), apiErr, true
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, &APIError{Code: CodeValidation, Message: vErr.Error()}, true
	}

	var code Code
	switch {
	case errors.Is(err, ErrAlreadyExists):
		code = CodeUserAlreadyExists
	case errors.Is(err, ErrInvalidCredentials):
		code = CodeInvalidCredentials
	case errors.Is(err, ErrTokenMissing):
		code = CodeTokenNotFound
	case errors.Is(err, ErrTokenExpired):
		code = CodeTokenExpired
	case errors.Is(err, ErrTokenInvalid):
		code = CodeInvalidToken
	default:
		return http.StatusInternalServerError, nil, false
	}

	return statusFor(code), &APIError{Code: code, Message: messages[code]}, true
}

var messages = map[Code]string{
	CodeUserAlreadyExists:  ErrAlreadyExists.Error(),
	CodeInvalidCredentials: ErrInvalidCredentials.Error(),
	CodeTokenNotFound:      ErrTokenMissing.Error(),
	CodeInvalidToken:       ErrTokenInvalid.Error(),
	CodeTokenExpired:       ErrTokenExpired.Error(),
}

func statusFor(c Code) int {
	switch c {
	case CodeUserAlreadyExists, CodeValidation:
		return http.StatusBadRequest
	case CodeInvalidCredentials, CodeTokenNotFound, CodeInvalidToken, CodeTokenExpired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

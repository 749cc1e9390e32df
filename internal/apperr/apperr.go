// Package apperr defines the application error type every layer raises for
// expected, client-caused failures. The HTTP boundary translates these into
// the uniform error envelope; anything that is not an *apperr.Error is
// treated as a programming error.
package apperr

import "errors"

// Machine-readable error codes surfaced in the response envelope.
const (
	CodeEmailExists             = "EMAIL_EXISTS"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeAccountLocked           = "ACCOUNT_LOCKED"
	CodeAccountInactive         = "ACCOUNT_INACTIVE"
	CodeNoPassword              = "NO_PASSWORD"
	CodeNoToken                 = "NO_TOKEN"
	CodeNotAuthenticated        = "NOT_AUTHENTICATED"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeInvalidRefreshToken     = "INVALID_REFRESH_TOKEN"
	CodeTokenExpired            = "TOKEN_EXPIRED"
	CodeRefreshTokenExpired     = "REFRESH_TOKEN_EXPIRED"
	CodeInvalidToken            = "INVALID_TOKEN"
	CodeTokenVerification       = "TOKEN_VERIFICATION_FAILED"
	CodePasswordChanged         = "PASSWORD_CHANGED"
	CodeInvalidPassword         = "INVALID_PASSWORD"
	CodeAccountExists           = "ACCOUNT_EXISTS"
	CodeInvalidOrExpiredToken   = "INVALID_OR_EXPIRED_TOKEN"
	CodeCannotDeleteSuperAdmin  = "CANNOT_DELETE_SUPER_ADMIN"
	CodeCannotBlockSuperAdmin   = "CANNOT_BLOCK_SUPER_ADMIN"
	CodeForbidden               = "FORBIDDEN"
	CodeNotFound                = "NOT_FOUND"
	CodeValidationError         = "VALIDATION_ERROR"
	CodeDuplicateField          = "DUPLICATE_FIELD"
	CodeInvalidJSON             = "INVALID_JSON"
	CodeRateLimitExceeded       = "RATE_LIMIT_EXCEEDED"
	CodeInternalError           = "INTERNAL_ERROR"
	CodeDatabaseConnectionError = "DB_CONNECTION_ERROR"
)

// Error is an operational application error: an expected failure caused by
// the client or by account state, carrying a fixed HTTP status and code.
type Error struct {
	Message    string
	StatusCode int
	Code       string
	Data       map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an operational error with the given status and code.
func New(message string, statusCode int, code string) *Error {
	return &Error{Message: message, StatusCode: statusCode, Code: code}
}

// WithData attaches additional response data and returns the same error.
func (e *Error) WithData(data map[string]any) *Error {
	e.Data = data
	return e
}

// From extracts an *Error from err's chain.
func From(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given application error code.
func HasCode(err error, code string) bool {
	appErr, ok := From(err)
	return ok && appErr.Code == code
}

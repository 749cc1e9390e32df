package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"accounthub/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrorResponse is the uniform error envelope every failure resolves to.
type ErrorResponse struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	StatusCode     int            `json:"statusCode"`
	ErrorCode      string         `json:"errorCode"`
	Path           string         `json:"path"`
	Method         string         `json:"method"`
	Timestamp      time.Time      `json:"timestamp"`
	RequestID      string         `json:"requestId"`
	AdditionalData map[string]any `json:"additionalData,omitempty"`
	Stack          string         `json:"stack,omitempty"`
}

// NewHTTPErrorHandler builds the echo error handler that classifies every
// failure into the envelope. Operational errors keep their detail and are
// logged at warn level; anything else is logged with a stack and, in
// production, reported with a generic message.
func NewHTTPErrorHandler(logger *logrus.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr, operational := Classify(err)

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID(c),
			"method":     c.Request().Method,
			"path":       c.Request().URL.Path,
			"status":     appErr.StatusCode,
			"error_code": appErr.Code,
		})

		response := ErrorResponse{
			Success:        false,
			Message:        appErr.Message,
			StatusCode:     appErr.StatusCode,
			ErrorCode:      appErr.Code,
			Path:           c.Request().URL.Path,
			Method:         c.Request().Method,
			Timestamp:      time.Now().UTC(),
			RequestID:      requestID(c),
			AdditionalData: appErr.Data,
		}

		if operational {
			entry.Warn(appErr.Message)
		} else {
			entry.WithError(err).Error("unexpected error")
			if production {
				response.Message = "Something went wrong. Please try again later."
				response.AdditionalData = nil
			} else {
				response.Stack = string(debug.Stack())
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(appErr.StatusCode)
			return
		}
		_ = c.JSON(appErr.StatusCode, response)
	}
}

// Classify is a total function from any failure to the normalized error,
// tried in priority order: application errors pass through, persistence,
// token, validation, binding and rate-limit failures map to their codes,
// and anything unknown falls back to a non-operational 500.
func Classify(err error) (*apperr.Error, bool) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr, true
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.New("A record with this value already exists", http.StatusConflict, apperr.CodeDuplicateField), true
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.New("Resource not found", http.StatusNotFound, apperr.CodeNotFound), true
	case errors.Is(err, gorm.ErrInvalidData), errors.Is(err, gorm.ErrInvalidValue):
		return apperr.New("Invalid data for the requested operation", http.StatusBadRequest, apperr.CodeValidationError), true
	case errors.Is(err, gorm.ErrInvalidDB):
		return apperr.New("Database connection failed. Please try again later.", http.StatusServiceUnavailable, apperr.CodeDatabaseConnectionError), false
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperr.New("Your token has expired. Please log in again.", http.StatusUnauthorized, apperr.CodeTokenExpired), true
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return apperr.New("Invalid token. Please log in again.", http.StatusUnauthorized, apperr.CodeInvalidToken), true
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]map[string]any, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, map[string]any{
				"field":   fe.Field(),
				"rule":    fe.Tag(),
				"message": fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			})
		}
		return apperr.New("Validation failed", http.StatusBadRequest, apperr.CodeValidationError).
			WithData(map[string]any{"errors": fields}), true
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := fmt.Sprintf("%v", httpErr.Message)
		switch httpErr.Code {
		case http.StatusTooManyRequests:
			return apperr.New("Too many requests from this IP, please try again later.", httpErr.Code, apperr.CodeRateLimitExceeded), true
		case http.StatusBadRequest:
			// Body-parse failures are translated to INVALID_JSON at the
			// handlers' bind step; a 400 arriving here is something else.
			return apperr.New(message, httpErr.Code, apperr.CodeValidationError), true
		case http.StatusNotFound:
			return apperr.New(message, httpErr.Code, apperr.CodeNotFound), true
		case http.StatusUnauthorized:
			return apperr.New(message, httpErr.Code, apperr.CodeNotAuthenticated), true
		case http.StatusForbidden:
			return apperr.New(message, httpErr.Code, apperr.CodeForbidden), true
		default:
			return apperr.New(message, httpErr.Code, apperr.CodeInternalError), httpErr.Code < http.StatusInternalServerError
		}
	}

	return apperr.New("Internal server error", http.StatusInternalServerError, apperr.CodeInternalError), false
}

func requestID(c echo.Context) string {
	id := c.Response().Header().Get(echo.HeaderXRequestID)
	if id == "" {
		id = c.Request().Header.Get(echo.HeaderXRequestID)
	}
	return id
}

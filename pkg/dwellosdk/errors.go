package dwellosdk

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/dwello/pkg/httpx"
)

// Error messages the API returns.
const (
	MessageAccessDenied       = "access_denied"
	MessageInvalidCredentials = "invalid_credentials"
	MessageEmailTaken         = "email_taken"
	MessageProfileExists      = "profile_exists"
	MessageValidation         = "validation_error"
	MessageInvalidRequest     = "invalid_request"
	MessageNotFound           = "not_found"
	MessageTooManyAttempts    = "too_many_attempts"
	MessageRateLimited        = "rate_limit_exceeded"
	MessageUnavailable        = "Service unavailable"
	MessageServerError        = "server_error"
)

// APIError is a failed API call. The server builds one per failure class
// and writes it; the client decodes it back.
type APIError struct {
	StatusCode       int          `json:"-"`
	Message          string       `json:"error_message"`
	ValidationErrors []FieldError `json:"validation_errors,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.ValidationErrors) == 0 {
		return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
	}
	fields := make([]string, len(e.ValidationErrors))
	for i, f := range e.ValidationErrors {
		fields[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%d %s (%s)", e.StatusCode, e.Message, strings.Join(fields, "; "))
}

// Is matches on status code and message so callers can write
// errors.Is(err, dwellosdk.ErrAccessDenied).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.StatusCode == e.StatusCode && t.Message == e.Message
}

// HasField reports whether a validation error names field.
func (e *APIError) HasField(field string) bool {
	for _, f := range e.ValidationErrors {
		if f.Field == field {
			return true
		}
	}
	return false
}

// WithFields returns a copy of e carrying fields.
func (e *APIError) WithFields(fields ...FieldError) *APIError {
	out := *e
	out.ValidationErrors = fields
	return &out
}

// WriteError writes e as the standard error body.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, ErrorResponse{
		Success:          false,
		ErrorMessage:     e.Message,
		ValidationErrors: e.ValidationErrors,
	})
}

var (
	ErrAccessDenied       = &APIError{StatusCode: http.StatusForbidden, Message: MessageAccessDenied}
	ErrInvalidCredentials = &APIError{StatusCode: http.StatusUnauthorized, Message: MessageInvalidCredentials}
	ErrEmailTaken         = &APIError{StatusCode: http.StatusConflict, Message: MessageEmailTaken}
	ErrProfileExists      = &APIError{StatusCode: http.StatusConflict, Message: MessageProfileExists}
	ErrValidation         = &APIError{StatusCode: http.StatusUnprocessableEntity, Message: MessageValidation}
	ErrInvalidRequest     = &APIError{StatusCode: http.StatusBadRequest, Message: MessageInvalidRequest}
	ErrNotFound           = &APIError{StatusCode: http.StatusNotFound, Message: MessageNotFound}
	ErrTooManyAttempts    = &APIError{StatusCode: http.StatusTooManyRequests, Message: MessageTooManyAttempts}
	ErrRateLimited        = &APIError{StatusCode: http.StatusTooManyRequests, Message: MessageRateLimited}
	ErrUnavailable        = &APIError{StatusCode: http.StatusServiceUnavailable, Message: MessageUnavailable}
	ErrServerError        = &APIError{StatusCode: http.StatusInternalServerError, Message: MessageServerError}
)

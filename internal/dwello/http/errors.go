package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/dwello/internal/dwello/service"
	"github.com/aussiebroadwan/dwello/pkg/dwellosdk"
	"github.com/aussiebroadwan/dwello/pkg/httpx"
	"github.com/aussiebroadwan/dwello/pkg/slogx"
)

// decode reads the JSON body into dst. Unreadable bodies are reported as a
// bad credential carrier.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		return fmt.Errorf("%w: %w", service.ErrCredentialCarrier, err)
	}
	return nil
}

// writeError maps a service error onto the API error body. Internal detail is
// logged, never written.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErrorFor(r, err).WriteError(w)
}

func apiErrorFor(r *http.Request, err error) *dwellosdk.APIError {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		fields := make([]dwellosdk.FieldError, len(verr.Fields))
		for i, f := range verr.Fields {
			fields[i] = dwellosdk.FieldError{Field: f.Field, Message: f.Message}
		}
		return dwellosdk.ErrValidation.WithFields(fields...)
	}

	switch {
	case errors.Is(err, service.ErrCredentialCarrier):
		return dwellosdk.ErrInvalidRequest
	case errors.Is(err, service.ErrAccessDenied):
		return dwellosdk.ErrAccessDenied
	case errors.Is(err, service.ErrEmailDoesntExist):
		return dwellosdk.ErrInvalidCredentials.WithFields(dwellosdk.FieldError{Field: "email", Message: "email does not exist"})
	case errors.Is(err, service.ErrPasswordNoMatch):
		return dwellosdk.ErrInvalidCredentials.WithFields(dwellosdk.FieldError{Field: "password", Message: "password does not match"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return dwellosdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrEmailTaken):
		return dwellosdk.ErrEmailTaken.WithFields(dwellosdk.FieldError{Field: "email", Message: "email is already registered"})
	case errors.Is(err, service.ErrProfileExists):
		return dwellosdk.ErrProfileExists.WithFields(dwellosdk.FieldError{Field: "profile", Message: "user already has a profile"})
	case errors.Is(err, service.ErrNotFound):
		return dwellosdk.ErrNotFound
	case errors.Is(err, service.ErrTooManyAttempts):
		return dwellosdk.ErrTooManyAttempts
	case errors.Is(err, service.ErrStoreUnavailable):
		slogx.FromContext(r.Context()).Error("store unavailable", "error", err)
		return dwellosdk.ErrUnavailable
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		return dwellosdk.ErrServerError
	}
}

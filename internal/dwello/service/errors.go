package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/dwello/internal/dwello/store"
)

var (
	ErrAccessDenied = errors.New("access_denied")

	// ErrInvalidCredentials is the parent of both login failures so callers
	// that do not care which field was wrong can match either.
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailDoesntExist   = fmt.Errorf("%w: email does not exist", ErrInvalidCredentials)
	ErrPasswordNoMatch    = fmt.Errorf("%w: password does not match", ErrInvalidCredentials)

	ErrEmailTaken        = errors.New("email_taken")
	ErrProfileExists     = errors.New("profile_exists")
	ErrCredentialCarrier = errors.New("invalid_request")
	ErrNotFound          = errors.New("not_found")
	ErrTooManyAttempts   = errors.New("too_many_attempts")
	ErrStoreUnavailable  = errors.New("store_unavailable")
	ErrHashEngine        = errors.New("hash_engine_failure")
)

// FieldError targets one input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every field problem found in one input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation_error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns e, or nil when nothing was added.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// storeErr is the single place store errors cross into the service
// vocabulary. Not found is passed as ErrNotFound; everything else is an
// outage.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

// withTx runs fn in a transaction. Errors returned by fn pass through as is;
// failures to begin or commit are store outages.
func withTx(ctx context.Context, st store.Store, fn func(tx store.Tx) error) error {
	var fnErr error
	err := st.WithTx(ctx, func(tx store.Tx) error {
		fnErr = fn(tx)
		return fnErr
	})
	if err != nil && fnErr == nil {
		return storeErr(err)
	}
	return err
}

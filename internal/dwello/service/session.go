package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/metrics"
	"github.com/aussiebroadwan/dwello/internal/dwello/store"
	"github.com/aussiebroadwan/dwello/pkg/cryptox"
	"github.com/aussiebroadwan/dwello/pkg/idx"
	"github.com/aussiebroadwan/dwello/pkg/slogx"
)

// TokenDeriver turns request-specific parts into an opaque session token.
// cryptox.PasswordHasher implements it with the slow hash and the pepper.
type TokenDeriver interface {
	DeriveToken(parts ...string) (string, error)
}

// SessionManager issues sessions. A user has at most one active session.
type SessionManager struct {
	Store   store.Store
	Tokens  TokenDeriver
	Metrics *metrics.Metrics
}

// CreateSession deactivates the user's sessions and inserts a new active one
// in a single transaction. The returned token is the only copy of the
// plaintext; the store keeps its fingerprint.
func (m *SessionManager) CreateSession(ctx context.Context, user domain.User) (domain.Session, string, error) {
	token, err := m.deriveToken(user)
	if err != nil {
		return domain.Session{}, "", err
	}

	var sess domain.Session
	err = withTx(ctx, m.Store, func(tx store.Tx) error {
		var err error
		sess, err = m.rotate(ctx, tx, user, token)
		return err
	})
	if err != nil {
		return domain.Session{}, "", err
	}

	m.Metrics.SessionIssued()
	return sess, token, nil
}

func (m *SessionManager) deriveToken(user domain.User) (string, error) {
	token, err := m.Tokens.DeriveToken(strconv.FormatInt(time.Now().UnixNano(), 10), user.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashEngine, err)
	}
	return token, nil
}

func (m *SessionManager) rotate(ctx context.Context, tx store.Tx, user domain.User, token string) (domain.Session, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	// Serialises concurrent logins for the same user.
	if err := tx.Users().LockUser(ctx, user.ID); err != nil {
		return domain.Session{}, storeErr(err)
	}

	n, err := tx.Sessions().DeactivateUserSessions(ctx, user.ID, now)
	if err != nil {
		// Tolerated: a stale active row only blocks the insert below, which
		// then reports the store failure.
		l.Warn("failed to deactivate previous sessions",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	sess := domain.Session{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(token),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Sessions().CreateSession(ctx, sess); err != nil {
		return domain.Session{}, storeErr(err)
	}

	l.Debug("session issued",
		slog.String("user_id", user.ID),
		slog.String("session_id", sess.ID),
		slog.Int64("deactivated", n),
	)
	return sess, nil
}

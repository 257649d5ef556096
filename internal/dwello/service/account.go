package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/metrics"
	"github.com/aussiebroadwan/dwello/internal/dwello/store"
	"github.com/aussiebroadwan/dwello/internal/dwello/throttle"
	"github.com/aussiebroadwan/dwello/pkg/cryptox"
	"github.com/aussiebroadwan/dwello/pkg/slogx"
)

// PasswordHasher is the subset of cryptox.PasswordHasher the flows need.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) error
}

// AuthResult is what login and registration hand back.
type AuthResult struct {
	Token   string
	User    domain.User
	Session domain.Session
}

// AccountService implements login and self registration.
type AccountService struct {
	Store    store.Store
	Hasher   PasswordHasher
	Sessions *SessionManager
	Throttle throttle.Limiter
	Metrics  *metrics.Metrics

	// dummyDigest has the same cost parameters as real digests and is
	// verified against when the email is unknown.
	dummyDigest string
}

func NewAccountService(
	st store.Store,
	hasher PasswordHasher,
	sessions *SessionManager,
	limiter throttle.Limiter,
	m *metrics.Metrics,
) (*AccountService, error) {
	seed, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	dummy, err := hasher.Hash(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHashEngine, err)
	}

	return &AccountService{
		Store:       st,
		Hasher:      hasher,
		Sessions:    sessions,
		Throttle:    limiter,
		Metrics:     m,
		dummyDigest: dummy,
	}, nil
}

// Login checks email and password and issues a fresh session. Unknown email
// and wrong password each cost exactly one Verify call.
func (s *AccountService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	l := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	if s.throttled(ctx, email) {
		s.Metrics.Login(metrics.LoginThrottled)
		l.Warn("login throttled", slog.String("email", email))
		return AuthResult{}, ErrTooManyAttempts
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		_ = s.Hasher.Verify(password, s.dummyDigest)
		s.recordFailure(ctx, email)
		s.Metrics.Login(metrics.LoginNoUser)
		return AuthResult{}, ErrEmailDoesntExist
	case err != nil:
		s.Metrics.Login(metrics.LoginError)
		return AuthResult{}, storeErr(err)
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			s.recordFailure(ctx, email)
			s.Metrics.Login(metrics.LoginMismatch)
			return AuthResult{}, ErrPasswordNoMatch
		}
		l.Error("stored password digest unusable",
			slog.String("user_id", u.ID),
			slog.Any("error", err),
		)
		s.Metrics.Login(metrics.LoginError)
		return AuthResult{}, fmt.Errorf("%w: %w", ErrHashEngine, err)
	}

	sess, token, err := s.Sessions.CreateSession(ctx, u)
	if err != nil {
		s.Metrics.Login(metrics.LoginError)
		return AuthResult{}, err
	}

	if s.Throttle != nil {
		if err := s.Throttle.Reset(ctx, email); err != nil {
			l.Warn("failed to reset login throttle", slog.Any("error", err))
		}
	}
	s.Metrics.Login(metrics.LoginSuccess)
	l.Info("user logged in", slog.String("user_id", u.ID))

	return AuthResult{Token: token, User: u, Session: sess}, nil
}

// Register creates a user with the default roles and logs them in. The user
// row and its first session are committed together.
func (s *AccountService) Register(ctx context.Context, in NewUserInput) (AuthResult, error) {
	in = in.normalize()
	if err := in.validate(false); err != nil {
		return AuthResult{}, err
	}

	digest, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: %w", ErrHashEngine, err)
	}

	// The token is derived before the transaction opens so the slow hash
	// never holds a pooled connection.
	u := newUser(in, digest, domain.DefaultRoles())
	token, err := s.Sessions.deriveToken(u)
	if err != nil {
		return AuthResult{}, err
	}

	var res AuthResult
	err = withTx(ctx, s.Store, func(tx store.Tx) error {
		if err := createUser(ctx, tx.Users(), u); err != nil {
			return err
		}
		sess, err := s.Sessions.rotate(ctx, tx, u, token)
		if err != nil {
			return err
		}
		res = AuthResult{Token: token, User: u, Session: sess}
		return nil
	})
	if err != nil {
		return AuthResult{}, err
	}

	s.Metrics.Registered()
	s.Metrics.SessionIssued()
	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", res.User.ID))

	return res, nil
}

// throttled fails open: a broken limiter must not lock everyone out.
func (s *AccountService) throttled(ctx context.Context, key string) bool {
	if s.Throttle == nil {
		return false
	}
	exceeded, err := s.Throttle.Exceeded(ctx, key)
	if err != nil {
		slogx.FromContext(ctx).Warn("login throttle unavailable", slog.Any("error", err))
		return false
	}
	return exceeded
}

func (s *AccountService) recordFailure(ctx context.Context, key string) {
	if s.Throttle == nil {
		return
	}
	if err := s.Throttle.RecordFailure(ctx, key); err != nil {
		slogx.FromContext(ctx).Warn("failed to record login failure", slog.Any("error", err))
	}
}

// insertUser writes a new user. The digest is computed by the caller so no
// slow hashing happens while a connection or transaction is held.
func insertUser(ctx context.Context, users store.Users, in NewUserInput, digest string, roles domain.Roles) (domain.User, error) {
	u := newUser(in, digest, roles)
	if err := createUser(ctx, users, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func newUser(in NewUserInput, digest string, roles domain.Roles) domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:           newID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: digest,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func createUser(ctx context.Context, users store.Users, u domain.User) error {
	if err := users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrEmailTaken
		}
		return storeErr(err)
	}
	return nil
}

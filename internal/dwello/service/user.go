package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/metrics"
	"github.com/aussiebroadwan/dwello/internal/dwello/store"
	"github.com/aussiebroadwan/dwello/pkg/idx"
	"github.com/aussiebroadwan/dwello/pkg/slogx"
)

type UserService struct {
	Store   store.Store
	Hasher  PasswordHasher
	Metrics *metrics.Metrics
}

func (s *UserService) authz() Authorizer { return Authorizer{Metrics: s.Metrics} }

// Me returns the caller.
func (s *UserService) Me(ctx context.Context, cu domain.CurrentUser) (domain.User, error) {
	return s.authz().Authenticated(ctx, "me", cu)
}

// ListUsers returns the first users by creation. Admin only.
func (s *UserService) ListUsers(ctx context.Context, cu domain.CurrentUser) ([]domain.User, error) {
	if _, err := s.authz().Admin(ctx, "list_users", cu); err != nil {
		return nil, err
	}
	users, err := s.Store.Users().ListUsers(ctx, listUsersLimit)
	return users, storeErr(err)
}

// GetUser fetches a user by id. Admins may read anyone, users themselves.
func (s *UserService) GetUser(ctx context.Context, cu domain.CurrentUser, id string) (domain.User, error) {
	if _, err := s.authz().AdminOrOwner(ctx, "get_user", cu, id); err != nil {
		return domain.User{}, err
	}
	u, err := s.Store.Users().GetUserByID(ctx, id)
	return u, storeErr(err)
}

// CreateUser adds a user with explicit roles. Admin only. No session is
// issued.
func (s *UserService) CreateUser(ctx context.Context, cu domain.CurrentUser, in NewUserInput) (domain.User, error) {
	admin, err := s.authz().Admin(ctx, "create_user", cu)
	if err != nil {
		return domain.User{}, err
	}

	in = in.normalize()
	if err := in.validate(true); err != nil {
		return domain.User{}, err
	}
	roles := domain.NewRoles(in.Roles...)
	if len(roles) == 0 {
		roles = domain.DefaultRoles()
	}

	digest, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrHashEngine, err)
	}

	u, err := insertUser(ctx, s.Store.Users(), in, digest, roles)
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user created",
		slog.String("user_id", u.ID),
		slog.String("created_by", admin.ID),
		slog.String("roles", roles.String()),
	)
	return u, nil
}

func newID() string { return idx.New().String() }

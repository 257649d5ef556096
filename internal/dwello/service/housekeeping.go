package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/metrics"
	"github.com/aussiebroadwan/dwello/internal/dwello/store"
	"github.com/aussiebroadwan/dwello/pkg/cryptox"
	"github.com/robfig/cron/v3"
)

// DefaultHousekeepingSchedule refreshes the gauges hourly.
const DefaultHousekeepingSchedule = "@every 1h"

// AdminSeed describes the account created on first boot.
type AdminSeed struct {
	Name     string
	Email    string
	Password string // generated and logged once when empty
}

// HousekeepingService seeds the admin account at boot and keeps the user and
// session gauges current on a cron schedule.
type HousekeepingService struct {
	Store    store.Store
	Hasher   PasswordHasher
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Schedule string
	Admin    AdminSeed

	cron *cron.Cron
}

// Seed creates the admin account unless the email is already registered.
// An empty seed email disables seeding.
func (s *HousekeepingService) Seed(ctx context.Context) error {
	if s.Admin.Email == "" {
		s.Logger.Info("admin seed disabled, no email configured")
		return nil
	}

	in := NewUserInput{
		Name:     s.Admin.Name,
		Email:    s.Admin.Email,
		Password: s.Admin.Password,
	}
	if in.Name == "" {
		in.Name = "admin"
	}
	generated := in.Password == ""
	if generated {
		pw, err := cryptox.GeneratePassword()
		if err != nil {
			return err
		}
		in.Password = pw
	}

	in = in.normalize()
	if err := in.validate(false); err != nil {
		return fmt.Errorf("invalid admin seed: %w", err)
	}

	digest, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHashEngine, err)
	}

	u, err := insertUser(ctx, s.Store.Users(), in, digest, domain.NewRoles(domain.RoleAuthenticated, domain.RoleAdmin))
	if errors.Is(err, ErrEmailTaken) {
		s.Logger.Info("admin account already exists", slog.String("email", in.Email))
		return nil
	}
	if err != nil {
		return err
	}

	if generated {
		// Only time the password is ever visible.
		s.Logger.Warn("admin account created with generated password",
			slog.String("email", u.Email),
			slog.String("password", in.Password),
		)
	} else {
		s.Logger.Info("admin account created", slog.String("email", u.Email))
	}
	return nil
}

// Start schedules the stats job and runs it once immediately. Call Stop to
// shut it down.
func (s *HousekeepingService) Start() error {
	schedule := s.Schedule
	if schedule == "" {
		schedule = DefaultHousekeepingSchedule
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(schedule, func() { s.RefreshStats(context.Background()) }); err != nil {
		return fmt.Errorf("invalid housekeeping schedule %q: %w", schedule, err)
	}

	s.RefreshStats(context.Background())
	s.cron.Start()
	s.Logger.Info("housekeeping service started", slog.String("schedule", schedule))
	return nil
}

// Stop waits for a running job to finish.
func (s *HousekeepingService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.Logger.Info("housekeeping service stopped")
}

// RefreshStats updates the users and active session gauges. Failures are
// logged and the previous values kept.
func (s *HousekeepingService) RefreshStats(ctx context.Context) {
	users, err := s.Store.Users().CountUsers(ctx)
	if err != nil {
		s.Logger.Error("failed to count users", slog.Any("error", err))
		return
	}
	active, err := s.Store.Sessions().CountActiveSessions(ctx)
	if err != nil {
		s.Logger.Error("failed to count active sessions", slog.Any("error", err))
		return
	}

	s.Metrics.SetTotals(users, active)
	s.Logger.Debug("housekeeping stats refreshed",
		slog.Int64("users", users),
		slog.Int64("active_sessions", active),
	)
}

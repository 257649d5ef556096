package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/metrics"
	"github.com/aussiebroadwan/dwello/internal/dwello/store"
)

type ProfileInput struct {
	Title string
	Intro string
	Body  string
}

func (in ProfileInput) validate() error {
	var v ValidationError
	checkLength(&v, "title", strings.TrimSpace(in.Title), 1, ProfileTitleMax)
	checkLength(&v, "intro", in.Intro, 0, ProfileIntroMax)
	checkLength(&v, "body", in.Body, 0, ProfileBodyMax)
	return v.Err()
}

// ProfileService manages the one public profile each user may have. Admins
// may act on any profile, users on their own.
type ProfileService struct {
	Store   store.Store
	Metrics *metrics.Metrics
}

func (s *ProfileService) authz() Authorizer { return Authorizer{Metrics: s.Metrics} }

func (s *ProfileService) CreateProfile(ctx context.Context, cu domain.CurrentUser, userID string, in ProfileInput) (domain.Profile, error) {
	if _, err := s.authz().AdminOrOwner(ctx, "create_profile", cu, userID); err != nil {
		return domain.Profile{}, err
	}
	if err := in.validate(); err != nil {
		return domain.Profile{}, err
	}

	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		return domain.Profile{}, storeErr(err)
	}

	now := time.Now().UTC()
	p := domain.Profile{
		UserID:    userID,
		Title:     strings.TrimSpace(in.Title),
		Intro:     in.Intro,
		Body:      in.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Profiles().CreateProfile(ctx, p); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Profile{}, ErrProfileExists
		}
		return domain.Profile{}, storeErr(err)
	}
	return p, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, cu domain.CurrentUser, userID string, in ProfileInput) (domain.Profile, error) {
	if _, err := s.authz().AdminOrOwner(ctx, "update_profile", cu, userID); err != nil {
		return domain.Profile{}, err
	}
	if err := in.validate(); err != nil {
		return domain.Profile{}, err
	}

	var out domain.Profile
	err := withTx(ctx, s.Store, func(tx store.Tx) error {
		p, err := tx.Profiles().GetProfile(ctx, userID)
		if err != nil {
			return storeErr(err)
		}
		p.Title = strings.TrimSpace(in.Title)
		p.Intro = in.Intro
		p.Body = in.Body
		p.UpdatedAt = time.Now().UTC()
		if err := tx.Profiles().UpdateProfile(ctx, p); err != nil {
			return storeErr(err)
		}
		out = p
		return nil
	})
	return out, err
}

func (s *ProfileService) GetProfile(ctx context.Context, cu domain.CurrentUser, userID string) (domain.Profile, error) {
	if _, err := s.authz().AdminOrOwner(ctx, "get_profile", cu, userID); err != nil {
		return domain.Profile{}, err
	}
	p, err := s.Store.Profiles().GetProfile(ctx, userID)
	return p, storeErr(err)
}

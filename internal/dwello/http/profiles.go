package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/service"
	"github.com/aussiebroadwan/dwello/pkg/dwellosdk"
	"github.com/aussiebroadwan/dwello/pkg/httpx"
)

type ProfilesHandler struct {
	ProfileService *service.ProfileService
}

// HandleCreate handles POST /v1/users/{id}/profile
//
//	@Summary		Create profile
//	@Tags			Profiles
//	@Security		ApiKeyAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID (ULID)"
//	@Param			request	body		dwellosdk.ProfileRequest	true	"Profile"
//	@Success		201		{object}	dwellosdk.Envelope[dwellosdk.Profile]
//	@Failure		403		{object}	dwellosdk.ErrorResponse
//	@Failure		404		{object}	dwellosdk.ErrorResponse
//	@Failure		409		{object}	dwellosdk.ErrorResponse	"profile_exists"
//	@Failure		422		{object}	dwellosdk.ErrorResponse
//	@Router			/v1/users/{id}/profile [post].
func (h *ProfilesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusCreated, h.ProfileService.CreateProfile)
}

// HandleUpdate handles PUT /v1/users/{id}/profile
//
//	@Summary		Update profile
//	@Tags			Profiles
//	@Security		ApiKeyAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID (ULID)"
//	@Param			request	body		dwellosdk.ProfileRequest	true	"Profile"
//	@Success		200		{object}	dwellosdk.Envelope[dwellosdk.Profile]
//	@Failure		403		{object}	dwellosdk.ErrorResponse
//	@Failure		404		{object}	dwellosdk.ErrorResponse
//	@Failure		422		{object}	dwellosdk.ErrorResponse
//	@Router			/v1/users/{id}/profile [put].
func (h *ProfilesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusOK, h.ProfileService.UpdateProfile)
}

// HandleGet handles GET /v1/users/{id}/profile
//
//	@Summary		Get profile
//	@Tags			Profiles
//	@Security		ApiKeyAuth
//	@Produce		json
//	@Param			id	path		string	true	"User ID (ULID)"
//	@Success		200	{object}	dwellosdk.Envelope[dwellosdk.Profile]
//	@Failure		403	{object}	dwellosdk.ErrorResponse
//	@Failure		404	{object}	dwellosdk.ErrorResponse
//	@Router			/v1/users/{id}/profile [get].
func (h *ProfilesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProfileService.GetProfile(r.Context(), domain.CurrentUserFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, envelope(toProfile(p)))
}

type profileWrite func(ctx context.Context, cu domain.CurrentUser, userID string, in service.ProfileInput) (domain.Profile, error)

func (h *ProfilesHandler) write(w http.ResponseWriter, r *http.Request, code int, fn profileWrite) {
	var req dwellosdk.ProfileRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := fn(r.Context(), domain.CurrentUserFromContext(r.Context()), r.PathValue("id"), service.ProfileInput{
		Title: req.Title,
		Intro: req.Intro,
		Body:  req.Body,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, code, envelope(toProfile(p)))
}

package http

import (
	"net/http"

	"github.com/aussiebroadwan/dwello/internal/dwello/service"
	"github.com/aussiebroadwan/dwello/pkg/dwellosdk"
	"github.com/aussiebroadwan/dwello/pkg/httpx"
)

type AccountsHandler struct {
	AccountService *service.AccountService
}

// HandleLogin handles POST /v1/accounts/login
//
//	@Summary		Log in
//	@Description	Verifies email and password and issues a new session token. Any session the user held before is deactivated.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dwellosdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	dwellosdk.AuthResponse	"token and user"
//	@Failure		400		{object}	dwellosdk.ErrorResponse	"malformed body"
//	@Failure		401		{object}	dwellosdk.ErrorResponse	"invalid_credentials with the failing field"
//	@Failure		429		{object}	dwellosdk.ErrorResponse	"too many failed attempts"
//	@Failure		503		{object}	dwellosdk.ErrorResponse	"store unavailable"
//	@Router			/v1/accounts/login [post].
func (h *AccountsHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req dwellosdk.LoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.AccountService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, dwellosdk.AuthResponse{Token: res.Token, User: toUser(res.User)})
}

// HandleRegister handles POST /v1/accounts/register
//
//	@Summary		Register
//	@Description	Creates an account with the default role and logs it in.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dwellosdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	dwellosdk.AuthResponse		"token and user"
//	@Failure		400		{object}	dwellosdk.ErrorResponse		"malformed body"
//	@Failure		409		{object}	dwellosdk.ErrorResponse		"email_taken"
//	@Failure		422		{object}	dwellosdk.ErrorResponse		"validation_error"
//	@Failure		503		{object}	dwellosdk.ErrorResponse		"store unavailable"
//	@Router			/v1/accounts/register [post].
func (h *AccountsHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req dwellosdk.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.AccountService.Register(r.Context(), service.NewUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, dwellosdk.AuthResponse{Token: res.Token, User: toUser(res.User)})
}

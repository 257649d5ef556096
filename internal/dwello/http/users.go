package http

import (
	"net/http"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/service"
	"github.com/aussiebroadwan/dwello/pkg/dwellosdk"
	"github.com/aussiebroadwan/dwello/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleMe handles GET /v1/me
//
//	@Summary		Current identity
//	@Tags			Users
//	@Security		ApiKeyAuth
//	@Produce		json
//	@Success		200	{object}	dwellosdk.Envelope[dwellosdk.MeResponse]	"role and user"
//	@Failure		403	{object}	dwellosdk.ErrorResponse						"anonymous caller"
//	@Router			/v1/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	cu := domain.CurrentUserFromContext(r.Context())
	u, err := h.UserService.Me(r.Context(), cu)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, envelope(dwellosdk.MeResponse{Role: string(cu.Role()), User: toUser(u)}))
}

// HandleList handles GET /v1/users
//
//	@Summary		List users
//	@Description	Returns the first ten users by creation. Admin only.
//	@Tags			Users
//	@Security		ApiKeyAuth
//	@Produce		json
//	@Success		200	{object}	dwellosdk.Envelope[[]dwellosdk.User]
//	@Failure		403	{object}	dwellosdk.ErrorResponse
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context(), domain.CurrentUserFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, envelope(toUsers(users)))
}

// HandleGet handles GET /v1/users/{id}
//
//	@Summary		Get user
//	@Description	Admins may read any user, others only themselves.
//	@Tags			Users
//	@Security		ApiKeyAuth
//	@Produce		json
//	@Param			id	path		string	true	"User ID (ULID)"
//	@Success		200	{object}	dwellosdk.Envelope[dwellosdk.User]
//	@Failure		403	{object}	dwellosdk.ErrorResponse
//	@Failure		404	{object}	dwellosdk.ErrorResponse
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetUser(r.Context(), domain.CurrentUserFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, envelope(toUser(u)))
}

// HandleCreate handles POST /v1/users
//
//	@Summary		Create user
//	@Description	Creates a user with explicit roles. No session is issued. Admin only.
//	@Tags			Users
//	@Security		ApiKeyAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dwellosdk.CreateUserRequest	true	"New user"
//	@Success		201		{object}	dwellosdk.Envelope[dwellosdk.User]
//	@Failure		403		{object}	dwellosdk.ErrorResponse
//	@Failure		409		{object}	dwellosdk.ErrorResponse
//	@Failure		422		{object}	dwellosdk.ErrorResponse
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req dwellosdk.CreateUserRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	roles := make([]domain.Role, len(req.Roles))
	for i, role := range req.Roles {
		roles[i] = domain.Role(role)
	}

	u, err := h.UserService.CreateUser(r.Context(), domain.CurrentUserFromContext(r.Context()), service.NewUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Roles:    roles,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, envelope(toUser(u)))
}

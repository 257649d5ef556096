package http

import (
	"net/http"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/service"
	"github.com/aussiebroadwan/dwello/pkg/dwellosdk"
	"github.com/aussiebroadwan/dwello/pkg/httpx"
)

type DealsHandler struct {
	DealService *service.DealService
}

// HandleList handles GET /v1/deals
//
//	@Summary		List deals
//	@Description	Admins see every deal, others the deals they are buyer or seller on. Newest first, at most 50.
//	@Tags			Deals
//	@Security		ApiKeyAuth
//	@Produce		json
//	@Param			buyer_id	query		string	false	"Only deals with this buyer"
//	@Success		200			{object}	dwellosdk.Envelope[[]dwellosdk.Deal]
//	@Failure		403			{object}	dwellosdk.ErrorResponse
//	@Router			/v1/deals [get].
func (h *DealsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	deals, err := h.DealService.ListDeals(r.Context(), domain.CurrentUserFromContext(r.Context()), r.URL.Query().Get("buyer_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, envelope(toDeals(deals)))
}

// HandleCreate handles POST /v1/deals
//
//	@Summary		Create deal
//	@Description	Creates the house and a deal for the buyer in one transaction. Admin only.
//	@Tags			Deals
//	@Security		ApiKeyAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dwellosdk.CreateDealRequest	true	"Deal"
//	@Success		201		{object}	dwellosdk.Envelope[dwellosdk.Deal]
//	@Failure		403		{object}	dwellosdk.ErrorResponse
//	@Failure		422		{object}	dwellosdk.ErrorResponse
//	@Router			/v1/deals [post].
func (h *DealsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req dwellosdk.CreateDealRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	d, err := h.DealService.CreateDeal(r.Context(), domain.CurrentUserFromContext(r.Context()), service.CreateDealInput{
		BuyerID: req.BuyerID,
		Address: req.Address,
		Lat:     req.Lat,
		Lon:     req.Lon,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, envelope(toDeal(d)))
}

// HandleGet handles GET /v1/deals/{id}
//
//	@Summary		Get deal
//	@Tags			Deals
//	@Security		ApiKeyAuth
//	@Produce		json
//	@Param			id	path		string	true	"Deal ID (ULID)"
//	@Success		200	{object}	dwellosdk.Envelope[dwellosdk.Deal]
//	@Failure		403	{object}	dwellosdk.ErrorResponse
//	@Failure		404	{object}	dwellosdk.ErrorResponse
//	@Router			/v1/deals/{id} [get].
func (h *DealsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.DealService.GetDeal(r.Context(), domain.CurrentUserFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, envelope(toDeal(d)))
}

// HandleUpdate handles PUT /v1/deals/{id}
//
//	@Summary		Update deal
//	@Description	Advances the status. Only admins may assign the seller. Status never moves backwards.
//	@Tags			Deals
//	@Security		ApiKeyAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Deal ID (ULID)"
//	@Param			request	body		dwellosdk.UpdateDealRequest	true	"Changes"
//	@Success		200		{object}	dwellosdk.Envelope[dwellosdk.Deal]
//	@Failure		403		{object}	dwellosdk.ErrorResponse
//	@Failure		404		{object}	dwellosdk.ErrorResponse
//	@Failure		422		{object}	dwellosdk.ErrorResponse
//	@Router			/v1/deals/{id} [put].
func (h *DealsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req dwellosdk.UpdateDealRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := service.UpdateDealInput{SellerID: req.SellerID}
	if req.Status != nil {
		status := domain.DealStatus(*req.Status)
		in.Status = &status
	}

	d, err := h.DealService.UpdateDeal(r.Context(), domain.CurrentUserFromContext(r.Context()), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, envelope(toDeal(d)))
}

// HandleDealsWithHouses handles GET /v1/views/deals-with-houses
//
//	@Summary		Buyer dashboard
//	@Description	The caller's deals as buyer with their house, newest first, at most 10.
//	@Tags			Views
//	@Security		ApiKeyAuth
//	@Produce		json
//	@Success		200	{object}	dwellosdk.Envelope[[]dwellosdk.Deal]
//	@Failure		403	{object}	dwellosdk.ErrorResponse
//	@Router			/v1/views/deals-with-houses [get].
func (h *DealsHandler) HandleDealsWithHouses(w http.ResponseWriter, r *http.Request) {
	deals, err := h.DealService.DealsWithHouses(r.Context(), domain.CurrentUserFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, envelope(toDeals(deals)))
}

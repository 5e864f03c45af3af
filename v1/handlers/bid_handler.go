package handlers

import (
	"net/http"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/utils"
	"github.com/go-chi/chi/v5"
)

func (h *V1Handler) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.PlaceBidRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}

	bid, err := h.bidService.PlaceBid(r.Context(), user, &req)
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusCreated, "Bid placed successfully.", bid)
}

func (h *V1Handler) handleListOwnBids(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	bids, err := h.bidService.ListOwnBids(r.Context(), user)
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "User bids retrieved.", bids)
}

func (h *V1Handler) handleGetBid(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	bid, err := h.bidService.GetBid(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "Bid retrieved.", bid)
}

func (h *V1Handler) handleAmendBid(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.AmendBidRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}

	bid, err := h.bidService.AmendBid(r.Context(), user, chi.URLParam(r, "id"), &req)
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "Bid updated.", bid)
}

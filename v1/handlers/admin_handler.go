package handlers

import (
	"net/http"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/utils"
	"github.com/go-chi/chi/v5"
)

// handleListUsers handles GET /api/admin/users?type=&page=&limit=
func (h *V1Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	query := &models.UserListQuery{
		Type:      r.URL.Query().Get("type"),
		PageQuery: utils.ParsePageQuery(r),
	}

	resp, err := h.adminService.ListAllUsers(r.Context(), query)
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "Users retrieved.", resp)
}

func (h *V1Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.adminService.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "User retrieved.", user)
}

func (h *V1Handler) handleGetUserBids(w http.ResponseWriter, r *http.Request) {
	resp, err := h.adminService.GetUserBids(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "User's bids retrieved.", resp)
}

// handleListBids handles GET /api/admin/bids?status=&page=&limit=
func (h *V1Handler) handleListBids(w http.ResponseWriter, r *http.Request) {
	query := &models.BidListQuery{
		Status:    r.URL.Query().Get("status"),
		PageQuery: utils.ParsePageQuery(r),
	}

	resp, err := h.adminService.ListAllBids(r.Context(), query)
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "All bids retrieved.", resp)
}

func (h *V1Handler) handleAdjudicateBid(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.AdjudicateBidRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}

	bid, err := h.adminService.AdjudicateBid(r.Context(), admin, chi.URLParam(r, "id"), &req)
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "Bid status updated.", bid)
}

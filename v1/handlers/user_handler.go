package handlers

import (
	"net/http"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/utils"
)

func (h *V1Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), user)
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "Profile retrieved.", profile)
}

// handleUpdateProfile applies only allow-listed fields; anything else in the body is ignored
func (h *V1Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), user, &req)
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "Profile updated.", profile)
}

func (h *V1Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	dashboard, err := h.userService.GetDashboard(r.Context(), user)
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "Dashboard data retrieved.", dashboard)
}

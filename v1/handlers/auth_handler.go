package handlers

import (
	"net/http"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/utils"
)

func (h *V1Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusCreated, "Registration successful.", resp)
}

func (h *V1Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "Login successful.", resp)
}

func (h *V1Handler) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshTokenRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}

	resp, err := h.authService.RefreshToken(r.Context(), req.Token)
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "Token refreshed.", resp)
}

// handleLogout revokes the caller's access token and the optional refresh token in the body
func (h *V1Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.LogoutRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}

	if err := h.authService.Logout(r.Context(), user, req.RefreshToken); err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "Logged out successfully.", nil)
}

package handlers

import (
	"net/http"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/utils"
)

// handleSearch handles GET /api/search?cpt=&zip=&page=&limit=
func (h *V1Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := &models.SearchQuery{
		CPT:       q.Get("cpt"),
		Zip:       q.Get("zip"),
		PageQuery: utils.ParsePageQuery(r),
	}

	resp, err := h.catalogService.Search(r.Context(), query)
	if err != nil {
		utils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, "Search results retrieved.", resp)
}

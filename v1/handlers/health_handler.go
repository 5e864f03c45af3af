package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/utils"
)

// auditStream is implemented by auditors backed by a queryable stream
type auditStream interface {
	IsEnabled() bool
	StreamLength(ctx context.Context) (int64, error)
}

type healthStatus struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	AuditStream string `json:"auditStream,omitempty"`
	AuditEvents *int64 `json:"auditEvents,omitempty"`
}

// handleHealth reports liveness along with the result of a store ping.
// An unreachable audit stream degrades the status but keeps the 200.
func (h *V1Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		utils.RespondWithJSON(w, http.StatusServiceUnavailable, utils.Response{
			Success: false,
			Message: "Service unavailable.",
			Data:    healthStatus{Status: "unhealthy", Database: "unreachable"},
		})
		return
	}

	status := healthStatus{Status: "healthy", Database: "connected"}
	if h.auditStream != nil {
		n, err := h.auditStream.StreamLength(ctx)
		if err != nil {
			slog.Warn("Audit stream check failed", "error", err)
			status.Status = "degraded"
			status.AuditStream = "unreachable"
		} else {
			status.AuditStream = "connected"
			status.AuditEvents = &n
		}
	}
	utils.RespondWithSuccess(w, http.StatusOK, "Service healthy.", status)
}

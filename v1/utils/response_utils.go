package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apierrors "github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/errors"
)

// Response is the envelope of every API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const msgInternalError = "Internal server error."

// RespondWithJSON writes the envelope with the given status code
func RespondWithJSON(w http.ResponseWriter, statusCode int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// RespondWithSuccess sends a success envelope
func RespondWithSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	RespondWithJSON(w, statusCode, Response{Success: true, Message: message, Data: data})
}

// RespondWithError sends a failure envelope with a message safe for clients
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, Response{Success: false, Message: message})
}

// RespondWithAPIError translates any error into a failure envelope.
// Client errors surface their message; server errors are logged with their cause and masked.
func RespondWithAPIError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierrors.Normalize(err)

	if apiErr.IsClientError() {
		RespondWithError(w, apiErr.HTTPStatus, apiErr.Message)
		return
	}

	slog.Error("Request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"type", apiErr.Type,
		"code", apiErr.Code,
		"message", apiErr.Message,
		"error", apiErr.InternalErr)
	RespondWithError(w, http.StatusInternalServerError, msgInternalError)
}

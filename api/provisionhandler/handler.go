package provisionhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/snowflake-keypair-provisioner/api"
	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
)

// maxBodySize is the maximum allowed request body size (64KB).
const maxBodySize = 64 * 1024

// Handler processes HTTP provisioning requests.
type Handler struct {
	provisioner interfaces.Provisioner
	log         *slog.Logger
}

// NewHandler creates a new HTTP request handler backed by provisioner.
func NewHandler(provisioner interfaces.Provisioner, log *slog.Logger) *Handler {
	return &Handler{
		provisioner: provisioner,
		log:         log,
	}
}

// RegisterRoutes configures the HTTP router with provisioning endpoints:
//   - POST /api/provision - Generate key pairs and overwrite the secrets
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/provision", h.HandleProvision)
}

// HandleProvision runs one provisioning workflow.
//
// URL format: POST /api/provision
//
// Request body: JSON-encoded api.ProvisionEvent
//
// Response: JSON-encoded api.ProvisionResponse
//
// Status codes:
//   - 200 OK: All three secrets were overwritten
//   - 400 Bad Request: Malformed request body
//   - 412 Precondition Failed: A target secret does not exist
//   - 500 Internal Server Error: Key generation or secret store failure
func (h *Handler) HandleProvision(w http.ResponseWriter, r *http.Request) {
	var event api.ProvisionEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&event); err != nil {
		h.log.Error("Failed to decode provisioning request", "err", err)
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.provisioner.Provision(r.Context(), event.Request())
	if err != nil {
		h.log.Error("Provisioning failed", "err", err, slog.String("secret_insert", event.SecretInsert))
		status := http.StatusInternalServerError
		if errors.Is(err, interfaces.ErrSecretNotFound) {
			status = http.StatusPreconditionFailed
		}
		http.Error(w, err.Error(), status)
		return
	}

	response, err := api.NewProvisionResponse(result)
	if err != nil {
		h.log.Error("Failed to build response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

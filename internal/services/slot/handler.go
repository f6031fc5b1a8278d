package slot

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

// Handler serves the slot listing endpoints.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new slot handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Routes mounts the slot endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/slots", h.ListSlots)
	r.Get("/slots/{slotID}", h.GetSlot)
}

// ListSlots handles GET /slots requests.
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	slots, err := h.service.ListSlots(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("db_query_failed", "Failed to list slots", requestID, err, nil)
		h.writeError(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	h.writeJSON(w, slots)
}

// GetSlot handles GET /slots/{slotID} requests: one ledger entry, with
// absent-slot defaults for slots not yet materialized.
func (h *Handler) GetSlot(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	slot, err := h.service.GetSlot(r.Context(), chi.URLParam(r, "slotID"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "slot not found", requestID)
			return
		}
		h.logger.Error("db_query_failed", "Failed to get slot", requestID, err, nil)
		h.writeError(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	h.writeJSON(w, slot)
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, statusCode int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{"error": message, "request_id": requestID})
}

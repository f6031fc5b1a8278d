package store

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"canteen-system/internal/logger"
)

// Handler serves the store open/closed gate endpoints.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new store settings handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Routes mounts the public status endpoint.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/store/status", h.GetStatus)
}

// AdminRoutes mounts the staff-only toggle.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Put("/store/status", h.SetStatus)
}

// GetStatus handles GET /store/status requests.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	isOpen, err := h.service.IsOpen(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, map[string]interface{}{"is_open": isOpen})
}

// SetStatus handles PUT /admin/store/status requests.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsOpen bool `json:"is_open"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "Invalid JSON format"})
		return
	}

	if err := h.service.SetOpen(r.Context(), body.IsOpen); err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("store_status_changed", "Store gate updated", logger.GenerateRequestID(), map[string]interface{}{
		"is_open": body.IsOpen,
	})
	h.writeJSON(w, map[string]interface{}{"is_open": body.IsOpen})
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.logger.Error("store_request_failed", "Store settings operation failed", logger.GenerateRequestID(), err, nil)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":     "Internal server error",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

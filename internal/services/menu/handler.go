package menu

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

// Handler serves the menu endpoints.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new menu handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Routes mounts the customer-facing menu endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/menu", h.ListAvailable)
}

// AdminRoutes mounts the staff-only menu endpoints.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/menu", h.ListAll)
	r.Post("/menu", h.Create)
	r.Patch("/menu/{itemID}", h.Update)
	r.Post("/menu/seed", h.Seed)
}

// ListAvailable handles GET /menu requests.
func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAvailable(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

// ListAll handles GET /admin/menu requests.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

// Create handles POST /admin/menu requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	item, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, item)
}

// Update handles PATCH /admin/menu/{itemID} requests.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	item, err := h.service.Update(r.Context(), chi.URLParam(r, "itemID"), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

// Seed handles POST /admin/menu/seed requests.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	seeded, err := h.service.Seed(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"seeded": seeded})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err):
		h.writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		h.writeErrorMessage(w, http.StatusNotFound, "menu item not found")
	default:
		h.logger.Error("menu_request_failed", "Menu operation failed", logger.GenerateRequestID(), err, nil)
		h.writeErrorMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeErrorMessage(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":     message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

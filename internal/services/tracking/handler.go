package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"canteen-system/internal/auth"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

// OrderReader is the slice of the tracking service used by the HTTP handler.
type OrderReader interface {
	ListUserOrders(ctx context.Context, userID string) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	GetStatusHistory(ctx context.Context, orderID string) ([]models.StatusLogEntry, error)
	HealthCheck(ctx context.Context) bool
}

// Handler handles HTTP requests for the tracking service.
type Handler struct {
	service OrderReader
	hub     *Hub
	logger  *logger.Logger
}

// NewHandler creates a new tracking handler.
func NewHandler(service OrderReader, hub *Hub, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		logger:  log,
	}
}

// Routes mounts the customer-facing endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/orders", h.withLogging(h.ListMyOrders))
	r.Get("/orders/{orderID}", h.withLogging(h.GetOrder))
	r.Get("/orders/{orderID}/history", h.withLogging(h.GetHistory))
	r.Get("/ws/orders", h.ServeFeed)
}

// AdminRoutes mounts the staff-only endpoints.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/orders", h.withLogging(h.ListAllOrders))
}

// ListMyOrders handles GET /orders requests: the per-user feed.
func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	identity, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "authentication required", requestID)
		return
	}

	orders, err := h.service.ListUserOrders(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("db_query_failed", "Failed to list user orders", requestID, err, map[string]interface{}{
			"user_id": identity.UserID,
		})
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	h.writeJSON(w, orders, requestID)
}

// ListAllOrders handles GET /admin/orders requests: the staff feed.
func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	orders, err := h.service.ListAllOrders(r.Context())
	if err != nil {
		h.logger.Error("db_query_failed", "Failed to list all orders", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	h.writeJSON(w, orders, requestID)
}

// GetOrder handles GET /orders/{orderID} requests. Customers can only read
// their own orders.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	identity, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "authentication required", requestID)
		return
	}

	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeReadError(w, err, requestID)
		return
	}

	if !identity.IsAdmin() && order.UserID != identity.UserID {
		h.writeErrorResponse(w, http.StatusNotFound, "order not found", requestID)
		return
	}

	h.writeJSON(w, order, requestID)
}

// GetHistory handles GET /orders/{orderID}/history requests.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	identity, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "authentication required", requestID)
		return
	}

	orderID := chi.URLParam(r, "orderID")

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		h.writeReadError(w, err, requestID)
		return
	}
	if !identity.IsAdmin() && order.UserID != identity.UserID {
		h.writeErrorResponse(w, http.StatusNotFound, "order not found", requestID)
		return
	}

	history, err := h.service.GetStatusHistory(r.Context(), orderID)
	if err != nil {
		h.writeReadError(w, err, requestID)
		return
	}

	h.writeJSON(w, history, requestID)
}

// ServeFeed handles GET /ws/orders: the live order feed.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "authentication required", logger.GenerateRequestID())
		return
	}
	h.hub.ServeWS(w, r, identity)
}

// HealthCheck handles GET /health requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	healthy := h.service.HealthCheck(r.Context())

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "tracking-service",
		"healthy":   healthy,
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		response["status"] = "unhealthy"
	}
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) writeReadError(w http.ResponseWriter, err error, requestID string) {
	if errors.Is(err, models.ErrNotFound) {
		h.writeErrorResponse(w, http.StatusNotFound, "order not found", requestID)
		return
	}
	h.logger.Error("db_query_failed", "Order read failed", requestID, err, nil)
	h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}

	json.NewEncoder(w).Encode(errorResponse)
}

// withLogging adds request logging middleware.
func (h *Handler) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.GenerateRequestID()

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
			})

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}
		next(rw, r)

		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
			})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

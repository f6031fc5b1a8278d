package order

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

// OrderService is the slice of the service used by the HTTP handler.
type OrderService interface {
	AdmitOrder(ctx context.Context, identity *auth.Identity, req *models.CreateOrderRequest, requestID string) (*models.CreateOrderResponse, error)
	TransitionStatus(ctx context.Context, identity *auth.Identity, orderID string, target models.OrderStatus, requestID string) (*models.Order, error)
	HealthCheck(ctx context.Context) bool
}

// Handler handles HTTP requests for the order service.
type Handler struct {
	service OrderService
	logger  *logger.Logger
}

// NewHandler creates a new order handler.
func NewHandler(service OrderService, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Routes mounts the order endpoints on a chi router. Authentication
// middleware is applied by the caller.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/orders", h.withLogging(h.CreateOrder))
}

// AdminRoutes mounts the staff-only endpoints.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Post("/orders/{orderID}/status", h.withLogging(h.UpdateStatus))
}

// CreateOrder handles POST /orders requests.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	identity, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "authentication required", requestID)
		return
	}

	var req models.CreateOrderRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	response, err := h.service.AdmitOrder(ctx, identity, &req, requestID)
	if err != nil {
		h.writeServiceError(w, r, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusCreated, response, requestID)
}

// UpdateStatus handles POST /admin/orders/{orderID}/status requests.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	identity, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "authentication required", requestID)
		return
	}

	orderID := chi.URLParam(r, "orderID")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	target, err := models.ParseOrderStatus(body.Status)
	if err != nil {
		h.writeServiceError(w, r, err, requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	order, err := h.service.TransitionStatus(ctx, identity, orderID, target, requestID)
	if err != nil {
		h.writeServiceError(w, r, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, order, requestID)
}

// HealthCheck handles GET /health requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := h.service.HealthCheck(ctx)

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "order-service",
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

// writeServiceError maps the error taxonomy to HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, requestID string) {
	switch {
	case models.IsValidation(err):
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestID)
	case models.IsInvalidTransition(err):
		h.writeErrorResponse(w, http.StatusConflict, err.Error(), requestID)
	case errors.Is(err, models.ErrSlotFull):
		h.writeErrorResponse(w, http.StatusConflict, "selected slot is full, please pick another slot", requestID)
	case errors.Is(err, models.ErrStoreClosed):
		h.writeErrorResponse(w, http.StatusConflict, "store is currently closed", requestID)
	case errors.Is(err, models.ErrNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, "order not found", requestID)
	case errors.Is(err, models.ErrAdmissionConflict):
		h.writeErrorResponse(w, http.StatusServiceUnavailable, "temporary contention, please retry", requestID)
	default:
		h.logger.Error("request_failed", "Unhandled service error", requestID, err, map[string]interface{}{
			"path": r.URL.Path,
		})
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
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

type requestIDKey struct{}

func requestIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return id
	}
	return logger.GenerateRequestID()
}

// withLogging adds request logging middleware.
func (h *Handler) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.GenerateRequestID()

		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.Header.Get("User-Agent"),
			})

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}
		next(rw, r)

		duration := time.Since(start)
		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": duration.Milliseconds(),
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

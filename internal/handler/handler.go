// Package handler provides HTTP request handlers for the application.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/middleware"
	"github.com/thiagogitai/sinconsult-crm/internal/repository"
	"github.com/thiagogitai/sinconsult-crm/internal/scheduler"
	"github.com/thiagogitai/sinconsult-crm/internal/service"
)

const (
	errorCodeValidation              = "VALIDATION_ERROR"
	errorCodeNotFound                = "NOT_FOUND"
	errorCodeInvalidState            = "INVALID_STATE"
	errorCodeInvalidCredentials      = "INVALID_CREDENTIALS"
	errorCodeNoConnectedInstance     = "NO_CONNECTED_INSTANCE"
	errorCodeSchedulerAlreadyRunning = "SCHEDULER_ALREADY_RUNNING"
	errorCodeSchedulerNotRunning     = "SCHEDULER_NOT_RUNNING"
)

type Handler struct {
	service *service.Service
	logger  *zap.Logger
}

type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type SchedulerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewHandler creates a new handler instance.
func NewHandler(service *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// handleServiceError maps service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		h.sendError(w, r, http.StatusNotFound, errorCodeNotFound, "Resource not found")
	case errors.Is(err, service.ErrInvalidState):
		h.sendError(w, r, http.StatusConflict, errorCodeInvalidState, err.Error())
	case errors.Is(err, service.ErrNoConnectedInstance):
		h.sendError(w, r, http.StatusServiceUnavailable, errorCodeNoConnectedInstance, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		h.sendError(w, r, http.StatusUnauthorized, errorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, scheduler.ErrSchedulerAlreadyRunning):
		h.sendError(w, r, http.StatusConflict, errorCodeSchedulerAlreadyRunning, "Scheduler is already running")
	case errors.Is(err, scheduler.ErrSchedulerNotRunning):
		h.sendError(w, r, http.StatusConflict, errorCodeSchedulerNotRunning, "Scheduler is not running")
	default:
		requestID := middleware.GetRequestID(r.Context())
		h.logger.Error("Request failed",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, middleware.ErrorMessageInternal)
	}
}

func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Error:     errorCode,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// urlID extracts the numeric {id} path parameter.
func urlID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// pagination parses page/limit query parameters with sane bounds.
func pagination(r *http.Request) (page, limit int) {
	page = 1
	limit = 20

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p >= 1 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l >= 1 && l <= 100 {
		limit = l
	}

	return page, limit
}

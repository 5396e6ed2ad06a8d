package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/thiagogitai/sinconsult-crm/internal/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// webhookRequest is the provider callback payload. "message.status" events
// carry delivery receipts; "connection.update" events report instance state.
type webhookRequest struct {
	Event             string `json:"event"`
	ProviderMessageID string `json:"provider_message_id,omitempty"`
	InstanceID        string `json:"instance_id,omitempty"`
	Status            string `json:"status"`
	PhoneConnected    string `json:"phone_connected,omitempty"`
}

type healthResponse struct {
	Status               string               `json:"status"`
	Timestamp            time.Time            `json:"timestamp"`
	SchedulerStatus      string               `json:"scheduler_status,omitempty"`
	DatabaseStatus       string               `json:"database_status,omitempty"`
	RedisStatus          string               `json:"redis_status,omitempty"`
	CircuitBreakerStatus string               `json:"circuit_breaker_status,omitempty"`
	CircuitBreakerState  service.CircuitState `json:"circuit_breaker_state,omitempty"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid request body")
		return
	}

	token, err := h.service.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, token)
}

// SendMessage sends a single ad-hoc message outside any campaign.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var input service.AdHocMessageInput
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid request body")
		return
	}

	msg, err := h.service.Message.SendAdHoc(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, msg)
}

// ProviderWebhook ingests provider callbacks. Unknown events are accepted
// and dropped so a chatty provider cannot fill the logs with errors.
func (h *Handler) ProviderWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid request body")
		return
	}

	var err error
	switch req.Event {
	case "message.status":
		err = h.service.Webhook.ApplyMessageEvent(r.Context(), service.MessageStatusEvent{
			ProviderMessageID: req.ProviderMessageID,
			Status:            req.Status,
			Timestamp:         time.Now(),
		})
	case "connection.update":
		err = h.service.Webhook.ApplyConnectionEvent(r.Context(), service.ConnectionEvent{
			InstanceID:     req.InstanceID,
			Status:         req.Status,
			PhoneConnected: req.PhoneConnected,
		})
	default:
		render.JSON(w, r, map[string]string{"status": "ignored"})
		return
	}

	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"status": "processed"})
}

// ListInstances reports the WhatsApp instances the provider has registered
// via connection events, with their last known status.
func (h *Handler) ListInstances(w http.ResponseWriter, r *http.Request) {
	instances, err := h.service.Webhook.ListInstances(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, instances)
}

func (h *Handler) StartScheduler(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Scheduler.Start(); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, SchedulerResponse{
		Status:  "started",
		Message: "Scheduler started successfully",
	})
}

func (h *Handler) StopScheduler(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Scheduler.Stop(); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, SchedulerResponse{
		Status:  "stopped",
		Message: "Scheduler stopped successfully",
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health.GetHealth()

	response := healthResponse{
		Status:               health.Status,
		Timestamp:            time.Now(),
		SchedulerStatus:      health.SchedulerStatus,
		DatabaseStatus:       health.DatabaseStatus,
		RedisStatus:          health.RedisStatus,
		CircuitBreakerStatus: health.CircuitBreakerStatus,
		CircuitBreakerState:  health.CircuitBreakerState,
	}

	if health.Status == service.HealthStatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	render.JSON(w, r, response)
}

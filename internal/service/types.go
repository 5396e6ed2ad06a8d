package service

import (
	"time"

	"github.com/thiagogitai/sinconsult-crm/internal/models"
)

type ContactInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Segment string `json:"segment,omitempty"`
}

type CampaignInput struct {
	Name          string             `json:"name"`
	Message       string             `json:"message"`
	MessageType   models.MessageType `json:"message_type"`
	MediaURL      string             `json:"media_url,omitempty"`
	TargetSegment string             `json:"target_segment,omitempty"`
	ScheduledAt   *time.Time         `json:"scheduled_at,omitempty"`
}

type AdHocMessageInput struct {
	ContactID   int64              `json:"contact_id"`
	Message     string             `json:"message"`
	MessageType models.MessageType `json:"message_type"`
	MediaURL    string             `json:"media_url,omitempty"`
}

// MessageStatusEvent is a delivery receipt from the provider webhook.
type MessageStatusEvent struct {
	ProviderMessageID string    `json:"provider_message_id"`
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
}

// ConnectionEvent reports a provider-side instance state change.
type ConnectionEvent struct {
	InstanceID     string `json:"instance_id"`
	Status         string `json:"status"`
	PhoneConnected string `json:"phone_connected,omitempty"`
}

// DispatchSummary is the aggregate outcome of one campaign dispatch.
// Sent + Failed always equals Total once the campaign completes.
type DispatchSummary struct {
	CampaignID int64 `json:"campaign_id"`
	Total      int   `json:"total"`
	Sent       int   `json:"sent"`
	Failed     int   `json:"failed"`
}

// CampaignStats aggregates a campaign's message records by status.
type CampaignStats struct {
	CampaignID int64 `json:"campaign_id"`
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Sent       int64 `json:"sent"`
	Delivered  int64 `json:"delivered"`
	Read       int64 `json:"read"`
	Failed     int64 `json:"failed"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type HealthStatus struct {
	Status               string       `json:"status"`
	SchedulerStatus      string       `json:"scheduler_status"`
	DatabaseStatus       string       `json:"database_status"`
	RedisStatus          string       `json:"redis_status"`
	CircuitBreakerStatus string       `json:"circuit_breaker_status,omitempty"`
	CircuitBreakerState  CircuitState `json:"circuit_breaker_state,omitempty"`
}

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusDegraded  = "degraded"
	HealthStatusUnhealthy = "unhealthy"

	SchedulerStatusRunning = "running"
	SchedulerStatusStopped = "stopped"

	ComponentStatusConnected    = "connected"
	ComponentStatusDisconnected = "disconnected"
)

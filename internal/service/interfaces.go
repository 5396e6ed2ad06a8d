package service

import (
	"context"

	"github.com/thiagogitai/sinconsult-crm/internal/models"
)

type ContactService interface {
	Create(ctx context.Context, input ContactInput) (*models.Contact, error)
	GetByID(ctx context.Context, id int64) (*models.Contact, error)
	List(ctx context.Context, page, limit int) ([]*models.Contact, error)
	Update(ctx context.Context, id int64, input ContactInput) (*models.Contact, error)
	Deactivate(ctx context.Context, id int64) error
}

type CampaignService interface {
	Create(ctx context.Context, input CampaignInput) (*models.Campaign, error)
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	List(ctx context.Context, page, limit int) ([]*models.Campaign, error)
	Stats(ctx context.Context, id int64) (*CampaignStats, error)
	// Reset flips a campaign stuck in "sending" back to "scheduled".
	Reset(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type DispatchService interface {
	// Dispatch runs one campaign's send across its resolved recipients.
	Dispatch(ctx context.Context, campaignID int64) (*DispatchSummary, error)
	// SweepDue promotes every due scheduled campaign into dispatch.
	SweepDue(ctx context.Context) error
	CircuitBreakerStatus() (state CircuitState, requests uint32, failures uint32)
}

type MessageService interface {
	// SendAdHoc sends a single message outside any campaign.
	SendAdHoc(ctx context.Context, input AdHocMessageInput) (*models.Message, error)
}

type WebhookService interface {
	ApplyMessageEvent(ctx context.Context, event MessageStatusEvent) error
	ApplyConnectionEvent(ctx context.Context, event ConnectionEvent) error
	// ListInstances reports the sending channels the provider has
	// registered via connection events.
	ListInstances(ctx context.Context) ([]*models.WhatsAppInstance, error)
}

type SchedulerService interface {
	Start() error
	Stop() error
	IsRunning() bool
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*TokenResponse, error)
}

type HealthService interface {
	GetHealth() *HealthStatus
}

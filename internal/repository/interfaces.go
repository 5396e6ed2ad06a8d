package repository

import (
	"context"
	"time"

	"github.com/thiagogitai/sinconsult-crm/internal/models"
)

// Repository interface defines all repository operations.
type Repository interface {
	// Ping checks database connectivity
	Ping() error

	// Contact returns contact repository
	Contact() ContactRepository

	// Campaign returns campaign repository
	Campaign() CampaignRepository

	// Message returns message repository
	Message() MessageRepository

	// Instance returns WhatsApp instance repository
	Instance() InstanceRepository
}

// ContactRepository interface defines contact operations.
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	GetByID(ctx context.Context, id int64) (*models.Contact, error)
	List(ctx context.Context, offset, limit int) ([]*models.Contact, error)
	// ListBySegment returns active contacts ordered by id. An empty segment
	// matches all active contacts; a non-empty segment is matched exactly.
	ListBySegment(ctx context.Context, segment string) ([]*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	Deactivate(ctx context.Context, id int64) error
}

// CampaignRepository interface defines campaign operations.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	List(ctx context.Context, offset, limit int) ([]*models.Campaign, error)
	// GetDue returns scheduled campaigns whose scheduled_at has elapsed.
	GetDue(ctx context.Context, now time.Time, limit int) ([]*models.Campaign, error)
	// MarkSending transitions a campaign to "sending" only from a startable
	// state. Returns false when the campaign was not in such a state. This
	// is the single mutual-exclusion point for dispatch.
	MarkSending(ctx context.Context, id int64) (bool, error)
	MarkCompleted(ctx context.Context, id int64) error
	// ResetStuck flips a campaign from "sending" back to "scheduled" for a
	// manual retry. Returns false when the campaign was not stuck.
	ResetStuck(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// MessageRepository interface defines message operations.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	ListByCampaign(ctx context.Context, campaignID int64) ([]*models.Message, error)
	MarkSent(ctx context.Context, id int64, providerMessageID string) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
	// MarkDelivered and MarkRead apply provider receipts keyed by the
	// provider message id. Both are forward-only: an update that would move
	// the status backwards is a no-op.
	MarkDelivered(ctx context.Context, providerMessageID string) error
	MarkRead(ctx context.Context, providerMessageID string) error
	CountByStatus(ctx context.Context, campaignID int64) (map[models.MessageStatus]int64, error)
}

// InstanceRepository interface defines WhatsApp instance operations.
type InstanceRepository interface {
	Upsert(ctx context.Context, instance *models.WhatsAppInstance) error
	List(ctx context.Context) ([]*models.WhatsAppInstance, error)
	// GetConnected returns the first connected instance, or nil when no
	// sending channel is available.
	GetConnected(ctx context.Context) (*models.WhatsAppInstance, error)
}

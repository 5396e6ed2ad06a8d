package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/models"
	"github.com/thiagogitai/sinconsult-crm/internal/repository"
)

type webhookService struct {
	repo   repository.Repository
	logger *zap.Logger
}

func NewWebhookService(repo repository.Repository, logger *zap.Logger) WebhookService {
	return &webhookService{
		repo:   repo,
		logger: logger,
	}
}

// ApplyMessageEvent applies a provider delivery receipt. The repository
// guards keep the status chain forward-only, so duplicate or out-of-order
// receipts are silently absorbed.
func (s *webhookService) ApplyMessageEvent(ctx context.Context, event MessageStatusEvent) error {
	if event.ProviderMessageID == "" {
		return fmt.Errorf("%w: provider message id is required", ErrValidation)
	}

	switch event.Status {
	case string(models.MessageStatusDelivered):
		return s.repo.Message().MarkDelivered(ctx, event.ProviderMessageID)
	case string(models.MessageStatusRead):
		return s.repo.Message().MarkRead(ctx, event.ProviderMessageID)
	default:
		s.logger.Debug("Ignoring message event with unhandled status",
			zap.String("status", event.Status),
			zap.String("providerMessageID", event.ProviderMessageID))
		return nil
	}
}

// ApplyConnectionEvent records an instance state change reported by the
// provider.
func (s *webhookService) ApplyConnectionEvent(ctx context.Context, event ConnectionEvent) error {
	if event.InstanceID == "" {
		return fmt.Errorf("%w: instance id is required", ErrValidation)
	}

	status := models.InstanceStatus(event.Status)
	switch status {
	case models.InstanceStatusConnected, models.InstanceStatusConnecting, models.InstanceStatusDisconnected:
	default:
		return fmt.Errorf("%w: unknown instance status %q", ErrValidation, event.Status)
	}

	instance := &models.WhatsAppInstance{
		InstanceID: event.InstanceID,
		Status:     status,
	}
	if event.PhoneConnected != "" {
		instance.PhoneConnected = sql.NullString{String: event.PhoneConnected, Valid: true}
	}

	return s.repo.Instance().Upsert(ctx, instance)
}

// ListInstances returns every registered instance so operators can see
// which sending channels the provider has reported.
func (s *webhookService) ListInstances(ctx context.Context) ([]*models.WhatsAppInstance, error) {
	return s.repo.Instance().List(ctx)
}

package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/models"
	"github.com/thiagogitai/sinconsult-crm/internal/repository"
)

type messageService struct {
	repo     repository.Repository
	dispatch DispatchService
	sender   *Sender
	logger   *zap.Logger
}

func NewMessageService(
	repo repository.Repository,
	dispatch DispatchService,
	sender *Sender,
	logger *zap.Logger,
) MessageService {
	return &messageService{
		repo:     repo,
		dispatch: dispatch,
		sender:   sender,
		logger:   logger,
	}
}

// SendAdHoc sends a single message outside any campaign. The message record
// carries a null campaign_id, keeping the delivery in history without a
// campaign to aggregate under.
func (s *messageService) SendAdHoc(ctx context.Context, input AdHocMessageInput) (*models.Message, error) {
	messageType := input.MessageType
	if messageType == "" {
		messageType = models.MessageTypeText
	}
	if err := validateCampaignMedia(messageType, input.MediaURL); err != nil {
		return nil, err
	}

	contact, err := s.repo.Contact().GetByID(ctx, input.ContactID)
	if err != nil {
		return nil, err
	}
	if !contact.IsActive {
		return nil, fmt.Errorf("%w: contact %d is inactive", ErrValidation, contact.ID)
	}

	instance, err := s.repo.Instance().GetConnected(ctx)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrNoConnectedInstance
		}
		return nil, err
	}

	msg := &models.Message{
		ContactID:   contact.ID,
		Content:     input.Message,
		MessageType: messageType,
		Status:      models.MessageStatusPending,
	}
	if input.MediaURL != "" {
		msg.MediaURL = sql.NullString{String: input.MediaURL, Valid: true}
	}
	if err := s.repo.Message().Create(ctx, msg); err != nil {
		return nil, err
	}

	providerMessageID, err := s.sender.send(ctx, instance.InstanceID, contact.Phone, messageType, input.Message, input.MediaURL)
	if err != nil {
		if updateErr := s.repo.Message().MarkFailed(ctx, msg.ID, err.Error()); updateErr != nil {
			s.logger.Error("Failed to record ad-hoc message failure",
				zap.Int64("messageID", msg.ID),
				zap.Error(updateErr))
		}
		msg.Status = models.MessageStatusFailed
		msg.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		return msg, nil
	}

	if err := s.repo.Message().MarkSent(ctx, msg.ID, providerMessageID); err != nil {
		s.logger.Error("Failed to record ad-hoc message success",
			zap.Int64("messageID", msg.ID),
			zap.Error(err))
	}
	msg.Status = models.MessageStatusSent
	msg.ProviderMessageID = sql.NullString{String: providerMessageID, Valid: providerMessageID != ""}

	return msg, nil
}

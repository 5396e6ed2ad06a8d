package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/models"
	"github.com/thiagogitai/sinconsult-crm/internal/repository"
)

type campaignService struct {
	repo   repository.Repository
	logger *zap.Logger
}

func NewCampaignService(repo repository.Repository, logger *zap.Logger) CampaignService {
	return &campaignService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and stores a campaign. A campaign with a scheduled_at is
// created as "scheduled" and picked up by the sweep; without one it stays a
// draft until started explicitly.
func (s *campaignService) Create(ctx context.Context, input CampaignInput) (*models.Campaign, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	messageType := input.MessageType
	if messageType == "" {
		messageType = models.MessageTypeText
	}
	if err := validateCampaignMedia(messageType, input.MediaURL); err != nil {
		return nil, err
	}
	if messageType == models.MessageTypeText && strings.TrimSpace(input.Message) == "" {
		return nil, fmt.Errorf("%w: message is required for text campaigns", ErrValidation)
	}

	campaign := &models.Campaign{
		Name:          strings.TrimSpace(input.Name),
		Message:       input.Message,
		MessageType:   messageType,
		TargetSegment: strings.TrimSpace(input.TargetSegment),
		Status:        models.CampaignStatusDraft,
	}
	if input.MediaURL != "" {
		campaign.MediaURL = sql.NullString{String: input.MediaURL, Valid: true}
	}
	if input.ScheduledAt != nil {
		campaign.ScheduledAt = sql.NullTime{Time: *input.ScheduledAt, Valid: true}
		campaign.Status = models.CampaignStatusScheduled
	}

	if err := s.repo.Campaign().Create(ctx, campaign); err != nil {
		return nil, err
	}

	return campaign, nil
}

func (s *campaignService) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	return s.repo.Campaign().GetByID(ctx, id)
}

func (s *campaignService) List(ctx context.Context, page, limit int) ([]*models.Campaign, error) {
	offset := (page - 1) * limit
	return s.repo.Campaign().List(ctx, offset, limit)
}

// Stats aggregates the campaign's message records by status. The per-status
// counts sum to the total by construction.
func (s *campaignService) Stats(ctx context.Context, id int64) (*CampaignStats, error) {
	if _, err := s.repo.Campaign().GetByID(ctx, id); err != nil {
		return nil, err
	}

	counts, err := s.repo.Message().CountByStatus(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &CampaignStats{
		CampaignID: id,
		Pending:    counts[models.MessageStatusPending],
		Sent:       counts[models.MessageStatusSent],
		Delivered:  counts[models.MessageStatusDelivered],
		Read:       counts[models.MessageStatusRead],
		Failed:     counts[models.MessageStatusFailed],
	}
	stats.Total = stats.Pending + stats.Sent + stats.Delivered + stats.Read + stats.Failed

	return stats, nil
}

// Reset is the operator recovery path for a campaign left in "sending" by a
// crashed dispatch.
func (s *campaignService) Reset(ctx context.Context, id int64) error {
	if _, err := s.repo.Campaign().GetByID(ctx, id); err != nil {
		return err
	}

	reset, err := s.repo.Campaign().ResetStuck(ctx, id)
	if err != nil {
		return err
	}
	if !reset {
		return fmt.Errorf("%w: campaign %d is not stuck in sending", ErrInvalidState, id)
	}

	s.logger.Info("Campaign reset to scheduled", zap.Int64("campaignID", id))
	return nil
}

func (s *campaignService) Delete(ctx context.Context, id int64) error {
	return s.repo.Campaign().Delete(ctx, id)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/config"
	"github.com/thiagogitai/sinconsult-crm/internal/models"
	"github.com/thiagogitai/sinconsult-crm/internal/repository"
)

const instanceCacheKey = "whatsapp:connected_instance"
const instanceCacheTTL = 30 * time.Second

type dispatchService struct {
	cfg         *config.Config
	repo        repository.Repository
	redisClient *redis.Client
	sender      *Sender
	logger      *zap.Logger
}

func NewDispatchService(
	cfg *config.Config,
	repo repository.Repository,
	redisClient *redis.Client,
	sender *Sender,
	logger *zap.Logger,
) DispatchService {
	return &dispatchService{
		cfg:         cfg,
		repo:        repo,
		redisClient: redisClient,
		sender:      sender,
		logger:      logger,
	}
}

// Dispatch executes one campaign send. The status transition to "sending" is
// a compare-and-set, so concurrent scheduler ticks and duplicate manual start
// calls race for the same row and all but one fail with ErrInvalidState.
// One recipient's failure never aborts the batch; the campaign completes
// regardless of individual failures.
func (s *dispatchService) Dispatch(ctx context.Context, campaignID int64) (*DispatchSummary, error) {
	campaign, err := s.repo.Campaign().GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if err := validateCampaignMedia(campaign.MessageType, campaign.MediaURL.String); err != nil {
		return nil, err
	}

	// Resolve the sending channel before any state change so an unavailable
	// provider rejects dispatch with no side effects.
	instance, err := s.connectedInstance(ctx)
	if err != nil {
		return nil, err
	}

	claimed, err := s.repo.Campaign().MarkSending(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, fmt.Errorf("%w: campaign %d is %s", ErrInvalidState, campaignID, campaign.Status)
	}

	contacts, err := s.repo.Contact().ListBySegment(ctx, campaign.TargetSegment)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}

	s.logger.Info("Dispatching campaign",
		zap.Int64("campaignID", campaignID),
		zap.String("segment", campaign.TargetSegment),
		zap.Int("recipients", len(contacts)))

	// Zero recipients is not an error: the campaign completes immediately.
	if len(contacts) == 0 {
		if err := s.repo.Campaign().MarkCompleted(ctx, campaignID); err != nil {
			return nil, err
		}
		return &DispatchSummary{CampaignID: campaignID}, nil
	}

	// Message records are created in resolution order before any send, so
	// creation order always follows recipient order even with a worker pool.
	messages := make([]*models.Message, len(contacts))
	for i, contact := range contacts {
		msg := &models.Message{
			ContactID:   contact.ID,
			CampaignID:  sql.NullInt64{Int64: campaignID, Valid: true},
			Content:     campaign.Message,
			MessageType: campaign.MessageType,
			MediaURL:    campaign.MediaURL,
			Status:      models.MessageStatusPending,
		}
		if err := s.repo.Message().Create(ctx, msg); err != nil {
			return nil, fmt.Errorf("failed to create message record: %w", err)
		}
		messages[i] = msg
	}

	sent, failed := s.sendAll(ctx, instance.InstanceID, campaign, contacts, messages)

	if err := s.repo.Campaign().MarkCompleted(ctx, campaignID); err != nil {
		return nil, err
	}

	s.logger.Info("Campaign dispatch completed",
		zap.Int64("campaignID", campaignID),
		zap.Int64("sent", sent),
		zap.Int64("failed", failed))

	return &DispatchSummary{
		CampaignID: campaignID,
		Total:      len(contacts),
		Sent:       int(sent),
		Failed:     int(failed),
	}, nil
}

// sendAll fans the recipient list out over a bounded worker pool. Each worker
// only touches its own message row, so no coordination beyond the WaitGroup
// is needed.
func (s *dispatchService) sendAll(
	ctx context.Context,
	instanceID string,
	campaign *models.Campaign,
	contacts []*models.Contact,
	messages []*models.Message,
) (sent, failed int64) {
	workers := s.cfg.Dispatch.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(contacts) {
		workers = len(contacts)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s.sendOne(ctx, instanceID, campaign, contacts[i], messages[i], &sent, &failed)
			}
		}()
	}

	for i := range contacts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return sent, failed
}

func (s *dispatchService) sendOne(
	ctx context.Context,
	instanceID string,
	campaign *models.Campaign,
	contact *models.Contact,
	msg *models.Message,
	sent, failed *int64,
) {
	providerMessageID, err := s.sender.send(ctx, instanceID, contact.Phone, campaign.MessageType, campaign.Message, campaign.MediaURL.String)
	if err != nil {
		atomic.AddInt64(failed, 1)
		s.logger.Warn("Failed to send message",
			zap.Int64("messageID", msg.ID),
			zap.Int64("contactID", contact.ID),
			zap.Error(err))

		if updateErr := s.repo.Message().MarkFailed(ctx, msg.ID, err.Error()); updateErr != nil {
			s.logger.Error("Failed to record message failure",
				zap.Int64("messageID", msg.ID),
				zap.Error(updateErr))
		}
		return
	}

	atomic.AddInt64(sent, 1)
	if updateErr := s.repo.Message().MarkSent(ctx, msg.ID, providerMessageID); updateErr != nil {
		s.logger.Error("Failed to record message success",
			zap.Int64("messageID", msg.ID),
			zap.Error(updateErr))
	}
}

// SweepDue promotes every due scheduled campaign into dispatch. Campaigns are
// processed independently: one failure never blocks the rest of the tick.
func (s *dispatchService) SweepDue(ctx context.Context) error {
	campaigns, err := s.repo.Campaign().GetDue(ctx, time.Now(), s.cfg.Scheduler.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to get due campaigns: %w", err)
	}

	if len(campaigns) == 0 {
		return nil
	}

	s.logger.Info("Found due campaigns", zap.Int("count", len(campaigns)))

	for _, campaign := range campaigns {
		if _, err := s.Dispatch(ctx, campaign.ID); err != nil {
			if errors.Is(err, ErrInvalidState) {
				// Claimed by a concurrent dispatch; nothing to do.
				continue
			}
			s.logger.Error("Failed to dispatch due campaign",
				zap.Int64("campaignID", campaign.ID),
				zap.Error(err))
		}
	}

	return nil
}

func (s *dispatchService) CircuitBreakerStatus() (state CircuitState, requests uint32, failures uint32) {
	state = s.sender.circuitBreaker.GetState()
	requests, failures = s.sender.circuitBreaker.GetCounts()
	return
}

// connectedInstance returns the active sending channel, consulting a short
// Redis cache before the database.
func (s *dispatchService) connectedInstance(ctx context.Context) (*models.WhatsAppInstance, error) {
	if cached, err := s.redisClient.Get(ctx, instanceCacheKey).Result(); err == nil && cached != "" {
		return &models.WhatsAppInstance{InstanceID: cached, Status: models.InstanceStatusConnected}, nil
	}

	instance, err := s.repo.Instance().GetConnected(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoConnectedInstance
	}
	if err != nil {
		return nil, err
	}

	if err := s.redisClient.Set(ctx, instanceCacheKey, instance.InstanceID, instanceCacheTTL).Err(); err != nil {
		s.logger.Warn("Failed to cache connected instance", zap.Error(err))
	}

	return instance, nil
}

// validateCampaignMedia rejects non-text campaigns without a media URL
// before any message record exists.
func validateCampaignMedia(messageType models.MessageType, mediaURL string) error {
	switch messageType {
	case models.MessageTypeText, models.MessageTypeImage, models.MessageTypeAudio, models.MessageTypeVideo:
	default:
		return fmt.Errorf("%w: unknown message type %q", ErrValidation, messageType)
	}

	if messageType != models.MessageTypeText && mediaURL == "" {
		return fmt.Errorf("%w: media_url is required for %s messages", ErrValidation, messageType)
	}

	return nil
}

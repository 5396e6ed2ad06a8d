package service

import (
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/config"
	"github.com/thiagogitai/sinconsult-crm/internal/provider"
	"github.com/thiagogitai/sinconsult-crm/internal/repository"
)

type Service struct {
	Contact   ContactService
	Campaign  CampaignService
	Message   MessageService
	Dispatch  DispatchService
	Webhook   WebhookService
	Scheduler SchedulerService
	Auth      AuthService
	Health    HealthService
}

func NewService(
	cfg *config.Config,
	repo repository.Repository,
	redisClient *redis.Client,
	providerClient provider.Client,
	logger *zap.Logger,
) *Service {
	cb := NewCircuitBreaker(&cfg.Provider.CircuitBreaker, logger)
	snd := NewSender(providerClient, cb, redisClient, logger)

	dispatchService := NewDispatchService(cfg, repo, redisClient, snd, logger)
	schedulerService := NewSchedulerService(cfg, dispatchService, logger)

	return &Service{
		Contact:   NewContactService(repo, logger),
		Campaign:  NewCampaignService(repo, logger),
		Message:   NewMessageService(repo, dispatchService, snd, logger),
		Dispatch:  dispatchService,
		Webhook:   NewWebhookService(repo, logger),
		Scheduler: schedulerService,
		Auth:      NewAuthService(&cfg.Auth),
		Health:    NewHealthService(repo, redisClient, schedulerService, dispatchService),
	}
}

package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/config"
	"github.com/thiagogitai/sinconsult-crm/internal/scheduler"
)

type schedulerService struct {
	scheduler *scheduler.Scheduler
	dispatch  DispatchService
	logger    *zap.Logger
}

func NewSchedulerService(
	cfg *config.Config,
	dispatch DispatchService,
	logger *zap.Logger,
) SchedulerService {
	interval := time.Duration(cfg.Scheduler.IntervalSeconds) * time.Second

	svc := &schedulerService{
		dispatch: dispatch,
		logger:   logger,
	}

	svc.scheduler = scheduler.NewScheduler(logger, interval, svc.executeSweep)
	return svc
}

func (s *schedulerService) Start() error {
	ctx := context.Background()
	return s.scheduler.Start(ctx)
}

func (s *schedulerService) Stop() error {
	return s.scheduler.Stop()
}

func (s *schedulerService) IsRunning() bool {
	return s.scheduler.IsRunning()
}

func (s *schedulerService) executeSweep(ctx context.Context) error {
	return s.dispatch.SweepDue(ctx)
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/models"
	"github.com/thiagogitai/sinconsult-crm/internal/repository"
	"github.com/thiagogitai/sinconsult-crm/internal/repository/mocks"
	"github.com/thiagogitai/sinconsult-crm/internal/service"
)

func newCampaignService(ctrl *gomock.Controller) (service.CampaignService, *mocks.MockCampaignRepository, *mocks.MockMessageRepository) {
	mockRepo := mocks.NewMockRepository(ctrl)
	mockCampaignRepo := mocks.NewMockCampaignRepository(ctrl)
	mockMessageRepo := mocks.NewMockMessageRepository(ctrl)
	mockRepo.EXPECT().Campaign().Return(mockCampaignRepo).AnyTimes()
	mockRepo.EXPECT().Message().Return(mockMessageRepo).AnyTimes()

	return service.NewCampaignService(mockRepo, zap.NewNop()), mockCampaignRepo, mockMessageRepo
}

func TestCampaignService_Create(t *testing.T) {
	scheduledAt := time.Now().Add(time.Hour)

	tests := []struct {
		name           string
		input          service.CampaignInput
		expectedStatus models.CampaignStatus
	}{
		{
			name: "unscheduled campaign stays draft",
			input: service.CampaignInput{
				Name:    "launch",
				Message: "hello",
			},
			expectedStatus: models.CampaignStatusDraft,
		},
		{
			name: "campaign with scheduled_at is created scheduled",
			input: service.CampaignInput{
				Name:        "launch",
				Message:     "hello",
				ScheduledAt: &scheduledAt,
			},
			expectedStatus: models.CampaignStatusScheduled,
		},
		{
			name: "image campaign with media url",
			input: service.CampaignInput{
				Name:        "promo",
				Message:     "new arrivals",
				MessageType: models.MessageTypeImage,
				MediaURL:    "https://cdn.example.com/promo.jpg",
			},
			expectedStatus: models.CampaignStatusDraft,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, mockCampaignRepo, _ := newCampaignService(ctrl)
			ctx := context.Background()

			mockCampaignRepo.EXPECT().
				Create(ctx, gomock.Any()).
				DoAndReturn(func(_ context.Context, campaign *models.Campaign) error {
					campaign.ID = 1
					return nil
				})

			campaign, err := svc.Create(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, campaign.Status)
		})
	}
}

func TestCampaignService_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input service.CampaignInput
	}{
		{
			name:  "missing name",
			input: service.CampaignInput{Message: "hello"},
		},
		{
			name:  "text campaign without message",
			input: service.CampaignInput{Name: "launch"},
		},
		{
			name: "image campaign without media url",
			input: service.CampaignInput{
				Name:        "promo",
				MessageType: models.MessageTypeImage,
			},
		},
		{
			name: "unknown message type",
			input: service.CampaignInput{
				Name:        "promo",
				Message:     "hello",
				MessageType: "sticker",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, _, _ := newCampaignService(ctrl)

			_, err := svc.Create(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestCampaignService_Stats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockCampaignRepo, mockMessageRepo := newCampaignService(ctrl)
	ctx := context.Background()

	mockCampaignRepo.EXPECT().GetByID(ctx, int64(1)).Return(textCampaign(1, models.CampaignStatusCompleted, ""), nil)
	mockMessageRepo.EXPECT().CountByStatus(ctx, int64(1)).Return(map[models.MessageStatus]int64{
		models.MessageStatusSent:      3,
		models.MessageStatusDelivered: 4,
		models.MessageStatusRead:      2,
		models.MessageStatusFailed:    1,
	}, nil)

	stats, err := svc.Stats(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.CampaignID)
	assert.Equal(t, int64(3), stats.Sent)
	assert.Equal(t, int64(4), stats.Delivered)
	assert.Equal(t, int64(2), stats.Read)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(0), stats.Pending)

	// the total is always the sum of the per-status counts
	assert.Equal(t, int64(10), stats.Total)
}

func TestCampaignService_Stats_CampaignNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockCampaignRepo, _ := newCampaignService(ctrl)
	ctx := context.Background()

	mockCampaignRepo.EXPECT().GetByID(ctx, int64(404)).Return(nil, repository.ErrNotFound)

	_, err := svc.Stats(ctx, 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCampaignService_Reset(t *testing.T) {
	tests := []struct {
		name      string
		resetOK   bool
		expectErr error
	}{
		{name: "stuck campaign resets", resetOK: true},
		{name: "campaign not in sending rejects reset", resetOK: false, expectErr: service.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, mockCampaignRepo, _ := newCampaignService(ctrl)
			ctx := context.Background()

			mockCampaignRepo.EXPECT().GetByID(ctx, int64(1)).Return(textCampaign(1, models.CampaignStatusSending, ""), nil)
			mockCampaignRepo.EXPECT().ResetStuck(ctx, int64(1)).Return(tt.resetOK, nil)

			err := svc.Reset(ctx, 1)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCampaignService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockCampaignRepo, _ := newCampaignService(ctrl)
	ctx := context.Background()

	mockCampaignRepo.EXPECT().Delete(ctx, int64(1)).Return(nil)

	assert.NoError(t, svc.Delete(ctx, 1))
}

package service_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/config"
	"github.com/thiagogitai/sinconsult-crm/internal/models"
	"github.com/thiagogitai/sinconsult-crm/internal/provider"
	"github.com/thiagogitai/sinconsult-crm/internal/repository"
	"github.com/thiagogitai/sinconsult-crm/internal/repository/mocks"
	"github.com/thiagogitai/sinconsult-crm/internal/service"
)

type dispatchFixture struct {
	repo      *mocks.MockRepository
	contacts  *mocks.MockContactRepository
	campaigns *mocks.MockCampaignRepository
	messages  *mocks.MockMessageRepository
	instances *mocks.MockInstanceRepository
	dispatch  service.DispatchService
}

func newDispatchFixture(t *testing.T, ctrl *gomock.Controller, providerURL string) *dispatchFixture {
	t.Helper()

	f := &dispatchFixture{
		repo:      mocks.NewMockRepository(ctrl),
		contacts:  mocks.NewMockContactRepository(ctrl),
		campaigns: mocks.NewMockCampaignRepository(ctrl),
		messages:  mocks.NewMockMessageRepository(ctrl),
		instances: mocks.NewMockInstanceRepository(ctrl),
	}

	f.repo.EXPECT().Contact().Return(f.contacts).AnyTimes()
	f.repo.EXPECT().Campaign().Return(f.campaigns).AnyTimes()
	f.repo.EXPECT().Message().Return(f.messages).AnyTimes()
	f.repo.EXPECT().Instance().Return(f.instances).AnyTimes()

	cfg := &config.Config{
		Provider: config.ProviderConfig{
			BaseURL: providerURL,
			APIKey:  "test-key",
			Timeout: 2,
			CircuitBreaker: config.CircuitBreakerConfig{
				MaxRequests:      10,
				Interval:         60,
				Timeout:          60,
				FailureRatio:     0.99,
				ConsecutiveFails: 100,
			},
		},
		Dispatch: config.DispatchConfig{
			Workers: 3,
		},
		Scheduler: config.SchedulerConfig{
			BatchSize: 10,
		},
	}

	logger := zap.NewNop()
	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:9999", // Non-existent server for testing
	})

	providerClient := provider.NewClient(&cfg.Provider, logger)
	cb := service.NewCircuitBreaker(&cfg.Provider.CircuitBreaker, logger)
	sender := service.NewSender(providerClient, cb, redisClient, logger)
	f.dispatch = service.NewDispatchService(cfg, f.repo, redisClient, sender, logger)

	return f
}

func textCampaign(id int64, status models.CampaignStatus, segment string) *models.Campaign {
	return &models.Campaign{
		ID:            id,
		Name:          "launch",
		Message:       "hello there",
		MessageType:   models.MessageTypeText,
		TargetSegment: segment,
		Status:        status,
	}
}

func testContacts(n int) []*models.Contact {
	contacts := make([]*models.Contact, n)
	for i := range contacts {
		contacts[i] = &models.Contact{
			ID:       int64(i + 1),
			Name:     "Contact",
			Phone:    "551199999000" + string(rune('0'+i)),
			IsActive: true,
		}
	}
	return contacts
}

func connectedInstance() *models.WhatsAppInstance {
	return &models.WhatsAppInstance{
		ID:         1,
		InstanceID: "sales-01",
		Status:     models.InstanceStatusConnected,
	}
}

func expectMessageCreation(f *dispatchFixture, n int) {
	var nextID int64
	f.messages.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg *models.Message) error {
			msg.ID = atomic.AddInt64(&nextID, 1)
			return nil
		}).
		Times(n)
}

func TestDispatchService_Dispatch_AllSent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"key":{"id":"WAMID-ok"},"status":"PENDING"}`))
	}))
	defer server.Close()

	f := newDispatchFixture(t, ctrl, server.URL)
	ctx := context.Background()

	f.campaigns.EXPECT().GetByID(ctx, int64(1)).Return(textCampaign(1, models.CampaignStatusDraft, "vip"), nil)
	f.instances.EXPECT().GetConnected(gomock.Any()).Return(connectedInstance(), nil)
	f.campaigns.EXPECT().MarkSending(ctx, int64(1)).Return(true, nil)
	f.contacts.EXPECT().ListBySegment(ctx, "vip").Return(testContacts(3), nil)
	expectMessageCreation(f, 3)
	f.messages.EXPECT().MarkSent(gomock.Any(), gomock.Any(), "WAMID-ok").Return(nil).Times(3)
	f.campaigns.EXPECT().MarkCompleted(ctx, int64(1)).Return(nil)

	summary, err := f.dispatch.Dispatch(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), summary.CampaignID)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Sent)
	assert.Equal(t, 0, summary.Failed)
}

func TestDispatchService_Dispatch_PartialFailureStillCompletes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// the provider rejects exactly one recipient
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Number string `json:"number"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Number == "5511999990001" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"number not on whatsapp"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"key":{"id":"WAMID-ok"},"status":"PENDING"}`))
	}))
	defer server.Close()

	f := newDispatchFixture(t, ctrl, server.URL)
	ctx := context.Background()

	f.campaigns.EXPECT().GetByID(ctx, int64(1)).Return(textCampaign(1, models.CampaignStatusDraft, ""), nil)
	f.instances.EXPECT().GetConnected(gomock.Any()).Return(connectedInstance(), nil)
	f.campaigns.EXPECT().MarkSending(ctx, int64(1)).Return(true, nil)
	f.contacts.EXPECT().ListBySegment(ctx, "").Return(testContacts(3), nil)
	expectMessageCreation(f, 3)
	f.messages.EXPECT().MarkSent(gomock.Any(), gomock.Any(), "WAMID-ok").Return(nil).Times(2)
	f.messages.EXPECT().MarkFailed(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.campaigns.EXPECT().MarkCompleted(ctx, int64(1)).Return(nil)

	summary, err := f.dispatch.Dispatch(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, summary.Total, summary.Sent+summary.Failed)
}

func TestDispatchService_Dispatch_AlreadyClaimed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newDispatchFixture(t, ctrl, "http://localhost:1234")
	ctx := context.Background()

	f.campaigns.EXPECT().GetByID(ctx, int64(1)).Return(textCampaign(1, models.CampaignStatusSending, ""), nil)
	f.instances.EXPECT().GetConnected(gomock.Any()).Return(connectedInstance(), nil)
	f.campaigns.EXPECT().MarkSending(ctx, int64(1)).Return(false, nil)

	summary, err := f.dispatch.Dispatch(ctx, 1)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestDispatchService_Dispatch_ZeroRecipients(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newDispatchFixture(t, ctrl, "http://localhost:1234")
	ctx := context.Background()

	f.campaigns.EXPECT().GetByID(ctx, int64(1)).Return(textCampaign(1, models.CampaignStatusDraft, "ghost"), nil)
	f.instances.EXPECT().GetConnected(gomock.Any()).Return(connectedInstance(), nil)
	f.campaigns.EXPECT().MarkSending(ctx, int64(1)).Return(true, nil)
	f.contacts.EXPECT().ListBySegment(ctx, "ghost").Return(nil, nil)
	f.campaigns.EXPECT().MarkCompleted(ctx, int64(1)).Return(nil)

	summary, err := f.dispatch.Dispatch(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0, summary.Sent)
	assert.Equal(t, 0, summary.Failed)
}

func TestDispatchService_Dispatch_NoConnectedInstance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newDispatchFixture(t, ctrl, "http://localhost:1234")
	ctx := context.Background()

	f.campaigns.EXPECT().GetByID(ctx, int64(1)).Return(textCampaign(1, models.CampaignStatusDraft, ""), nil)
	f.instances.EXPECT().GetConnected(gomock.Any()).Return(nil, repository.ErrNotFound)

	// the campaign must remain startable: MarkSending is never reached
	summary, err := f.dispatch.Dispatch(ctx, 1)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, service.ErrNoConnectedInstance)
}

func TestDispatchService_Dispatch_MediaValidation(t *testing.T) {
	tests := []struct {
		name        string
		messageType models.MessageType
		mediaURL    string
		wantErr     bool
	}{
		{name: "image without media url rejected", messageType: models.MessageTypeImage, wantErr: true},
		{name: "video without media url rejected", messageType: models.MessageTypeVideo, wantErr: true},
		{name: "unknown type rejected", messageType: "sticker", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			f := newDispatchFixture(t, ctrl, "http://localhost:1234")
			ctx := context.Background()

			campaign := textCampaign(1, models.CampaignStatusDraft, "")
			campaign.MessageType = tt.messageType
			if tt.mediaURL != "" {
				campaign.MediaURL = sql.NullString{String: tt.mediaURL, Valid: true}
			}
			f.campaigns.EXPECT().GetByID(ctx, int64(1)).Return(campaign, nil)

			_, err := f.dispatch.Dispatch(ctx, 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestDispatchService_Dispatch_MediaCampaign(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"key":{"id":"WAMID-media"},"status":"PENDING"}`))
	}))
	defer server.Close()

	f := newDispatchFixture(t, ctrl, server.URL)
	ctx := context.Background()

	campaign := textCampaign(1, models.CampaignStatusDraft, "")
	campaign.MessageType = models.MessageTypeImage
	campaign.MediaURL = sql.NullString{String: "https://cdn.example.com/promo.jpg", Valid: true}

	f.campaigns.EXPECT().GetByID(ctx, int64(1)).Return(campaign, nil)
	f.instances.EXPECT().GetConnected(gomock.Any()).Return(connectedInstance(), nil)
	f.campaigns.EXPECT().MarkSending(ctx, int64(1)).Return(true, nil)
	f.contacts.EXPECT().ListBySegment(ctx, "").Return(testContacts(1), nil)
	expectMessageCreation(f, 1)
	f.messages.EXPECT().MarkSent(gomock.Any(), gomock.Any(), "WAMID-media").Return(nil)
	f.campaigns.EXPECT().MarkCompleted(ctx, int64(1)).Return(nil)

	summary, err := f.dispatch.Dispatch(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, "/message/sendMedia/sales-01", gotPath)
}

func TestDispatchService_SweepDue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"key":{"id":"WAMID-ok"},"status":"PENDING"}`))
	}))
	defer server.Close()

	f := newDispatchFixture(t, ctrl, server.URL)
	ctx := context.Background()

	due := []*models.Campaign{
		textCampaign(1, models.CampaignStatusScheduled, ""),
		textCampaign(2, models.CampaignStatusScheduled, ""),
	}
	f.campaigns.EXPECT().GetDue(ctx, gomock.Any(), 10).Return(due, nil)

	// campaign 1 dispatches one recipient
	f.campaigns.EXPECT().GetByID(ctx, int64(1)).Return(due[0], nil)
	f.instances.EXPECT().GetConnected(gomock.Any()).Return(connectedInstance(), nil).AnyTimes()
	f.campaigns.EXPECT().MarkSending(ctx, int64(1)).Return(true, nil)
	f.contacts.EXPECT().ListBySegment(ctx, "").Return(testContacts(1), nil)
	expectMessageCreation(f, 1)
	f.messages.EXPECT().MarkSent(gomock.Any(), gomock.Any(), "WAMID-ok").Return(nil)
	f.campaigns.EXPECT().MarkCompleted(ctx, int64(1)).Return(nil)

	// campaign 2 was claimed by a concurrent dispatch and is skipped silently
	f.campaigns.EXPECT().GetByID(ctx, int64(2)).Return(due[1], nil)
	f.campaigns.EXPECT().MarkSending(ctx, int64(2)).Return(false, nil)

	err := f.dispatch.SweepDue(ctx)
	assert.NoError(t, err)
}

func TestDispatchService_SweepDue_NoDueCampaigns(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newDispatchFixture(t, ctrl, "http://localhost:1234")
	ctx := context.Background()

	f.campaigns.EXPECT().GetDue(ctx, gomock.Any(), 10).Return(nil, nil)

	assert.NoError(t, f.dispatch.SweepDue(ctx))
}

func TestDispatchService_SweepDue_QueryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newDispatchFixture(t, ctrl, "http://localhost:1234")
	ctx := context.Background()

	f.campaigns.EXPECT().GetDue(ctx, gomock.Any(), 10).Return(nil, errors.New("database error"))

	err := f.dispatch.SweepDue(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get due campaigns")
}

func TestDispatchService_CircuitBreakerStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newDispatchFixture(t, ctrl, "http://localhost:1234")

	state, requests, failures := f.dispatch.CircuitBreakerStatus()
	assert.Equal(t, service.CircuitStateClosed, state)
	assert.Equal(t, uint32(0), requests)
	assert.Equal(t, uint32(0), failures)
}

func TestDispatchService_Dispatch_WorkerPoolBounded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var inFlight, maxInFlight int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := atomic.AddInt64(&inFlight, 1)
		for {
			observed := atomic.LoadInt64(&maxInFlight)
			if current <= observed || atomic.CompareAndSwapInt64(&maxInFlight, observed, current) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"key":{"id":"WAMID-ok"},"status":"PENDING"}`))
	}))
	defer server.Close()

	f := newDispatchFixture(t, ctrl, server.URL)
	ctx := context.Background()

	f.campaigns.EXPECT().GetByID(ctx, int64(1)).Return(textCampaign(1, models.CampaignStatusDraft, ""), nil)
	f.instances.EXPECT().GetConnected(gomock.Any()).Return(connectedInstance(), nil)
	f.campaigns.EXPECT().MarkSending(ctx, int64(1)).Return(true, nil)
	f.contacts.EXPECT().ListBySegment(ctx, "").Return(testContacts(9), nil)
	expectMessageCreation(f, 9)
	f.messages.EXPECT().MarkSent(gomock.Any(), gomock.Any(), "WAMID-ok").Return(nil).Times(9)
	f.campaigns.EXPECT().MarkCompleted(ctx, int64(1)).Return(nil)

	summary, err := f.dispatch.Dispatch(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 9, summary.Sent)
	// configured with 3 workers
	assert.LessOrEqual(t, atomic.LoadInt64(&maxInFlight), int64(3))
}

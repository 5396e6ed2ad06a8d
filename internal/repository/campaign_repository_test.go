package repository_test

import (
	"context"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagogitai/sinconsult-crm/internal/models"
	"github.com/thiagogitai/sinconsult-crm/internal/repository"
)

func TestCampaignRepository_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewRepository(db)
	ctx := context.Background()

	scheduledAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	campaign := insertTestCampaign(t, repo.Campaign(), "spring launch", models.CampaignStatusScheduled, &scheduledAt)
	require.NotZero(t, campaign.ID)

	got, err := repo.Campaign().GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "spring launch", got.Name)
	assert.Equal(t, models.CampaignStatusScheduled, got.Status)
	assert.True(t, got.ScheduledAt.Valid)
	assert.WithinDuration(t, scheduledAt, got.ScheduledAt.Time, time.Second)
}

func TestCampaignRepository_GetByID_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewRepository(db)

	_, err := repo.Campaign().GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCampaignRepository_MarkSending(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewRepository(db)
	ctx := context.Background()

	tests := []struct {
		name    string
		status  models.CampaignStatus
		claimed bool
	}{
		{name: "draft campaign can be claimed", status: models.CampaignStatusDraft, claimed: true},
		{name: "scheduled campaign can be claimed", status: models.CampaignStatusScheduled, claimed: true},
		{name: "sending campaign cannot be claimed again", status: models.CampaignStatusSending, claimed: false},
		{name: "completed campaign cannot be claimed", status: models.CampaignStatusCompleted, claimed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			campaign := insertTestCampaign(t, repo.Campaign(), "launch", tt.status, nil)

			claimed, err := repo.Campaign().MarkSending(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.claimed, claimed)

			if tt.claimed {
				got, err := repo.Campaign().GetByID(ctx, campaign.ID)
				require.NoError(t, err)
				assert.Equal(t, models.CampaignStatusSending, got.Status)
			}
		})
	}
}

func TestCampaignRepository_MarkSending_OnlyOneWinner(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewRepository(db)
	ctx := context.Background()

	campaign := insertTestCampaign(t, repo.Campaign(), "launch", models.CampaignStatusDraft, nil)

	first, err := repo.Campaign().MarkSending(ctx, campaign.ID)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.Campaign().MarkSending(ctx, campaign.ID)
	require.NoError(t, err)
	assert.False(t, second)
}

func TestCampaignRepository_GetDue(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewRepository(db)
	ctx := context.Background()

	now := time.Now()
	past1 := now.Add(-2 * time.Hour)
	past2 := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	older := insertTestCampaign(t, repo.Campaign(), "older", models.CampaignStatusScheduled, &past1)
	newer := insertTestCampaign(t, repo.Campaign(), "newer", models.CampaignStatusScheduled, &past2)
	insertTestCampaign(t, repo.Campaign(), "future", models.CampaignStatusScheduled, &future)
	insertTestCampaign(t, repo.Campaign(), "draft", models.CampaignStatusDraft, nil)
	insertTestCampaign(t, repo.Campaign(), "already sending", models.CampaignStatusSending, &past1)

	due, err := repo.Campaign().GetDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)

	// oldest schedule first
	assert.Equal(t, older.ID, due[0].ID)
	assert.Equal(t, newer.ID, due[1].ID)

	limited, err := repo.Campaign().GetDue(ctx, now, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, older.ID, limited[0].ID)
}

func TestCampaignRepository_ResetStuck(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewRepository(db)
	ctx := context.Background()

	stuck := insertTestCampaign(t, repo.Campaign(), "stuck", models.CampaignStatusSending, nil)
	done := insertTestCampaign(t, repo.Campaign(), "done", models.CampaignStatusCompleted, nil)

	reset, err := repo.Campaign().ResetStuck(ctx, stuck.ID)
	require.NoError(t, err)
	assert.True(t, reset)

	got, err := repo.Campaign().GetByID(ctx, stuck.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusScheduled, got.Status)

	reset, err = repo.Campaign().ResetStuck(ctx, done.ID)
	require.NoError(t, err)
	assert.False(t, reset)
}

func TestCampaignRepository_Delete_KeepsMessageHistory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewRepository(db)
	ctx := context.Background()

	contact := insertTestContact(t, repo.Contact(), "Ana", "5511999999999", "", true)
	campaign := insertTestCampaign(t, repo.Campaign(), "launch", models.CampaignStatusCompleted, nil)
	message := insertTestMessage(t, repo.Message(), contact.ID, campaignRef(campaign.ID), "hi")

	require.NoError(t, repo.Campaign().Delete(ctx, campaign.ID))

	_, err := repo.Campaign().GetByID(ctx, campaign.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// the message row survives with its campaign reference cleared
	got, err := repo.Message().GetByID(ctx, message.ID)
	require.NoError(t, err)
	assert.False(t, got.CampaignID.Valid)
}

func TestCampaignRepository_Delete_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewRepository(db)

	err := repo.Campaign().Delete(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

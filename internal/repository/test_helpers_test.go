package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thiagogitai/sinconsult-crm/internal/models"
	"github.com/thiagogitai/sinconsult-crm/internal/repository"
)

func insertTestContact(t *testing.T, repo repository.ContactRepository, name, phone, segment string, active bool) *models.Contact {
	t.Helper()

	contact := &models.Contact{
		Name:     name,
		Phone:    phone,
		Segment:  segment,
		IsActive: active,
	}
	require.NoError(t, repo.Create(context.Background(), contact))
	return contact
}

func insertTestCampaign(t *testing.T, repo repository.CampaignRepository, name string, status models.CampaignStatus, scheduledAt *time.Time) *models.Campaign {
	t.Helper()

	campaign := &models.Campaign{
		Name:        name,
		Message:     "hello from " + name,
		MessageType: models.MessageTypeText,
		Status:      status,
	}
	if scheduledAt != nil {
		campaign.ScheduledAt = sql.NullTime{Time: *scheduledAt, Valid: true}
	}
	require.NoError(t, repo.Create(context.Background(), campaign))
	return campaign
}

func insertTestMessage(t *testing.T, repo repository.MessageRepository, contactID int64, campaignID sql.NullInt64, content string) *models.Message {
	t.Helper()

	message := &models.Message{
		ContactID:   contactID,
		CampaignID:  campaignID,
		Content:     content,
		MessageType: models.MessageTypeText,
		Status:      models.MessageStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), message))
	return message
}

func campaignRef(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}

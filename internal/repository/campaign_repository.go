package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/thiagogitai/sinconsult-crm/internal/models"
)

type campaignRepository struct {
	db *sqlx.DB
}

func NewCampaignRepository(db *sqlx.DB) CampaignRepository {
	return &campaignRepository{
		db: db,
	}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (name, message, message_type, media_url, target_segment, status, scheduled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	now := time.Now()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		campaign.Name, campaign.Message, campaign.MessageType, campaign.MediaURL,
		campaign.TargetSegment, campaign.Status, campaign.ScheduledAt, now, now,
	).Scan(&campaign.ID)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

func (r *campaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	query := `
		SELECT id, name, message, message_type, media_url, target_segment, status, scheduled_at, created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`

	var campaign models.Campaign
	err := r.db.GetContext(ctx, &campaign, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return &campaign, nil
}

func (r *campaignRepository) List(ctx context.Context, offset, limit int) ([]*models.Campaign, error) {
	query := `
		SELECT id, name, message, message_type, media_url, target_segment, status, scheduled_at, created_at, updated_at
		FROM campaigns
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`

	var campaigns []*models.Campaign
	err := r.db.SelectContext(ctx, &campaigns, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	return campaigns, nil
}

// GetDue returns scheduled campaigns whose scheduled_at has elapsed, oldest
// first so a backlog drains in order.
func (r *campaignRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]*models.Campaign, error) {
	query := `
		SELECT id, name, message, message_type, media_url, target_segment, status, scheduled_at, created_at, updated_at
		FROM campaigns
		WHERE status = $1 AND scheduled_at IS NOT NULL AND scheduled_at <= $2
		ORDER BY scheduled_at ASC
		LIMIT $3
	`

	var campaigns []*models.Campaign
	err := r.db.SelectContext(ctx, &campaigns, query, models.CampaignStatusScheduled, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due campaigns: %w", err)
	}

	return campaigns, nil
}

// MarkSending claims a campaign for dispatch. The WHERE clause makes the
// transition a compare-and-set: at most one caller wins, even under
// concurrent scheduler ticks and manual start calls.
func (r *campaignRepository) MarkSending(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE campaigns
		SET status = $2,
		    updated_at = $3
		WHERE id = $1 AND status IN ($4, $5)
	`

	result, err := r.db.ExecContext(ctx, query,
		id, models.CampaignStatusSending, time.Now(),
		models.CampaignStatusDraft, models.CampaignStatusScheduled,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark campaign sending: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check mark sending result: %w", err)
	}

	return rows == 1, nil
}

func (r *campaignRepository) MarkCompleted(ctx context.Context, id int64) error {
	query := `
		UPDATE campaigns
		SET status = $2,
		    updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, models.CampaignStatusCompleted, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark campaign completed: %w", err)
	}

	return nil
}

// ResetStuck is the operator escape hatch for a campaign left in "sending"
// after a crashed dispatch.
func (r *campaignRepository) ResetStuck(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE campaigns
		SET status = $2,
		    updated_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query,
		id, models.CampaignStatusScheduled, time.Now(), models.CampaignStatusSending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to reset campaign: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check reset result: %w", err)
	}

	return rows == 1, nil
}

// Delete removes a campaign. Messages keep their rows with campaign_id set
// null by the FK, preserving delivery history.
func (r *campaignRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM campaigns WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

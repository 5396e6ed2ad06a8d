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

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (contact_id, campaign_id, content, message_type, media_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now()
	message.CreatedAt = now
	message.UpdatedAt = now
	if message.Status == "" {
		message.Status = models.MessageStatusPending
	}

	err := r.db.QueryRowContext(ctx, query,
		message.ContactID, message.CampaignID, message.Content,
		message.MessageType, message.MediaURL, message.Status, now, now,
	).Scan(&message.ID)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	query := `
		SELECT id, contact_id, campaign_id, content, message_type, media_url, status,
		       provider_message_id, error_message, sent_at, delivered_at, read_at, created_at, updated_at
		FROM messages
		WHERE id = $1
	`

	var message models.Message
	err := r.db.GetContext(ctx, &message, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return &message, nil
}

func (r *messageRepository) ListByCampaign(ctx context.Context, campaignID int64) ([]*models.Message, error) {
	query := `
		SELECT id, contact_id, campaign_id, content, message_type, media_url, status,
		       provider_message_id, error_message, sent_at, delivered_at, read_at, created_at, updated_at
		FROM messages
		WHERE campaign_id = $1
		ORDER BY id ASC
	`

	var messages []*models.Message
	err := r.db.SelectContext(ctx, &messages, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages by campaign: %w", err)
	}

	return messages, nil
}

// MarkSent records a successful provider call. Only pending rows move, so a
// duplicate confirmation cannot overwrite a later state.
func (r *messageRepository) MarkSent(ctx context.Context, id int64, providerMessageID string) error {
	query := `
		UPDATE messages
		SET status = $2,
		    provider_message_id = $3,
		    sent_at = $4,
		    updated_at = $4
		WHERE id = $1 AND status = $5
	`

	_, err := r.db.ExecContext(ctx, query,
		id, models.MessageStatusSent, providerMessageID, time.Now(), models.MessageStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message sent: %w", err)
	}

	return nil
}

// MarkFailed records a provider failure. Failed is terminal.
func (r *messageRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	query := `
		UPDATE messages
		SET status = $2,
		    error_message = $3,
		    updated_at = $4
		WHERE id = $1 AND status = $5
	`

	_, err := r.db.ExecContext(ctx, query,
		id, models.MessageStatusFailed, errorMessage, time.Now(), models.MessageStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message failed: %w", err)
	}

	return nil
}

// MarkDelivered applies a delivery receipt. The guard keeps the status chain
// forward-only when receipts arrive out of order.
func (r *messageRepository) MarkDelivered(ctx context.Context, providerMessageID string) error {
	query := `
		UPDATE messages
		SET status = $2,
		    delivered_at = $3,
		    updated_at = $3
		WHERE provider_message_id = $1 AND status = $4
	`

	_, err := r.db.ExecContext(ctx, query,
		providerMessageID, models.MessageStatusDelivered, time.Now(), models.MessageStatusSent,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message delivered: %w", err)
	}

	return nil
}

// MarkRead applies a read receipt. A read receipt may arrive before the
// delivery receipt, so both sent and delivered rows qualify.
func (r *messageRepository) MarkRead(ctx context.Context, providerMessageID string) error {
	query := `
		UPDATE messages
		SET status = $2,
		    read_at = $3,
		    updated_at = $3
		WHERE provider_message_id = $1 AND status IN ($4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		providerMessageID, models.MessageStatusRead, time.Now(),
		models.MessageStatusSent, models.MessageStatusDelivered,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}

	return nil
}

// CountByStatus aggregates a campaign's messages by status. The per-status
// counts always sum to the campaign's message total.
func (r *messageRepository) CountByStatus(ctx context.Context, campaignID int64) (map[models.MessageStatus]int64, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM messages
		WHERE campaign_id = $1
		GROUP BY status
	`

	rows, err := r.db.QueryxContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages by status: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[models.MessageStatus]int64)
	for rows.Next() {
		var status models.MessageStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}

	return counts, nil
}

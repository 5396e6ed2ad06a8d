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

type instanceRepository struct {
	db *sqlx.DB
}

func NewInstanceRepository(db *sqlx.DB) InstanceRepository {
	return &instanceRepository{
		db: db,
	}
}

// Upsert records the latest provider-reported state for an instance.
func (r *instanceRepository) Upsert(ctx context.Context, instance *models.WhatsAppInstance) error {
	query := `
		INSERT INTO whatsapp_instances (instance_id, status, phone_connected, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (instance_id) DO UPDATE
		SET status = EXCLUDED.status,
		    phone_connected = EXCLUDED.phone_connected,
		    updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	now := time.Now()
	instance.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		instance.InstanceID, instance.Status, instance.PhoneConnected, now,
	).Scan(&instance.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert instance: %w", err)
	}

	return nil
}

func (r *instanceRepository) List(ctx context.Context) ([]*models.WhatsAppInstance, error) {
	query := `
		SELECT id, instance_id, status, phone_connected, created_at, updated_at
		FROM whatsapp_instances
		ORDER BY id ASC
	`

	var instances []*models.WhatsAppInstance
	err := r.db.SelectContext(ctx, &instances, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}

	return instances, nil
}

// GetConnected picks the sending channel for dispatch. Oldest connected
// instance wins, keeping channel selection stable across sweeps.
func (r *instanceRepository) GetConnected(ctx context.Context) (*models.WhatsAppInstance, error) {
	query := `
		SELECT id, instance_id, status, phone_connected, created_at, updated_at
		FROM whatsapp_instances
		WHERE status = $1
		ORDER BY id ASC
		LIMIT 1
	`

	var instance models.WhatsAppInstance
	err := r.db.GetContext(ctx, &instance, query, models.InstanceStatusConnected)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connected instance: %w", err)
	}

	return &instance, nil
}

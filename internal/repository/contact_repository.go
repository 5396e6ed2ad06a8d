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

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) ContactRepository {
	return &contactRepository{
		db: db,
	}
}

// Create inserts a new contact and fills in its generated fields.
func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	query := `
		INSERT INTO contacts (name, phone, email, segment, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		contact.Name, contact.Phone, contact.Email, contact.Segment, contact.IsActive, now, now,
	).Scan(&contact.ID)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

func (r *contactRepository) GetByID(ctx context.Context, id int64) (*models.Contact, error) {
	query := `
		SELECT id, name, phone, email, segment, is_active, created_at, updated_at
		FROM contacts
		WHERE id = $1
	`

	var contact models.Contact
	err := r.db.GetContext(ctx, &contact, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return &contact, nil
}

func (r *contactRepository) List(ctx context.Context, offset, limit int) ([]*models.Contact, error) {
	query := `
		SELECT id, name, phone, email, segment, is_active, created_at, updated_at
		FROM contacts
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	var contacts []*models.Contact
	err := r.db.SelectContext(ctx, &contacts, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	return contacts, nil
}

// ListBySegment resolves campaign recipients. Ordering by id keeps the
// recipient set deterministic across runs.
func (r *contactRepository) ListBySegment(ctx context.Context, segment string) ([]*models.Contact, error) {
	query := `
		SELECT id, name, phone, email, segment, is_active, created_at, updated_at
		FROM contacts
		WHERE is_active = TRUE
	`

	args := []interface{}{}
	if segment != "" {
		query += ` AND segment = $1`
		args = append(args, segment)
	}
	query += ` ORDER BY id ASC`

	var contacts []*models.Contact
	err := r.db.SelectContext(ctx, &contacts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts by segment: %w", err)
	}

	return contacts, nil
}

func (r *contactRepository) Update(ctx context.Context, contact *models.Contact) error {
	query := `
		UPDATE contacts
		SET name = $2,
		    phone = $3,
		    email = $4,
		    segment = $5,
		    is_active = $6,
		    updated_at = $7
		WHERE id = $1
	`

	contact.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		contact.ID, contact.Name, contact.Phone, contact.Email, contact.Segment, contact.IsActive, contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Deactivate soft-deletes a contact. Rows referenced by messages keep their
// history; hard deletes are left to the FK cascade.
func (r *contactRepository) Deactivate(ctx context.Context, id int64) error {
	query := `
		UPDATE contacts
		SET is_active = FALSE,
		    updated_at = $2
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to deactivate contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivate result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

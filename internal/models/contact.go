// Package models defines data structures used throughout the application.
package models

import (
	"database/sql"
	"time"
)

// Contact represents a contact in the database. Phone is stored normalized
// (digits with country code). Segment is a free-text tag; empty means the
// contact belongs to no segment.
type Contact struct {
	ID        int64          `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Phone     string         `db:"phone" json:"phone"`
	Email     sql.NullString `db:"email" json:"email,omitempty"`
	Segment   string         `db:"segment" json:"segment"`
	IsActive  bool           `db:"is_active" json:"is_active"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

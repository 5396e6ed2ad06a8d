package models

import (
	"database/sql"
	"time"
)

type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "pending"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
	MessageStatusFailed    MessageStatus = "failed"
)

// Message represents one delivery attempt for a contact. CampaignID is null
// for ad-hoc sends; when a campaign is deleted the column is set null so
// delivery history survives. Status moves forward only:
// pending -> sent -> delivered -> read, or pending -> failed (terminal).
type Message struct {
	ID                int64          `db:"id" json:"id"`
	ContactID         int64          `db:"contact_id" json:"contact_id"`
	CampaignID        sql.NullInt64  `db:"campaign_id" json:"campaign_id,omitempty"`
	Content           string         `db:"content" json:"content"`
	MessageType       MessageType    `db:"message_type" json:"message_type"`
	MediaURL          sql.NullString `db:"media_url" json:"media_url,omitempty"`
	Status            MessageStatus  `db:"status" json:"status"`
	ProviderMessageID sql.NullString `db:"provider_message_id" json:"provider_message_id,omitempty"`
	ErrorMessage      sql.NullString `db:"error_message" json:"error_message,omitempty"`
	SentAt            sql.NullTime   `db:"sent_at" json:"sent_at,omitempty"`
	DeliveredAt       sql.NullTime   `db:"delivered_at" json:"delivered_at,omitempty"`
	ReadAt            sql.NullTime   `db:"read_at" json:"read_at,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

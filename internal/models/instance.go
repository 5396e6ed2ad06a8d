package models

import (
	"database/sql"
	"time"
)

type InstanceStatus string

const (
	InstanceStatusDisconnected InstanceStatus = "disconnected"
	InstanceStatusConnecting   InstanceStatus = "connecting"
	InstanceStatusConnected    InstanceStatus = "connected"
)

// WhatsAppInstance mirrors a provider-side session. Dispatch requires at
// least one connected instance to pick a sending channel from.
type WhatsAppInstance struct {
	ID             int64          `db:"id" json:"id"`
	InstanceID     string         `db:"instance_id" json:"instance_id"`
	Status         InstanceStatus `db:"status" json:"status"`
	PhoneConnected sql.NullString `db:"phone_connected" json:"phone_connected,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

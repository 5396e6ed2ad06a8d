package models

import (
	"database/sql"
	"time"
)

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusCompleted CampaignStatus = "completed"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeAudio MessageType = "audio"
	MessageTypeVideo MessageType = "video"
)

// Campaign represents a campaign definition. An empty TargetSegment targets
// all active contacts. A campaign with all sends failed still completes;
// there is no distinct "failed" campaign status.
type Campaign struct {
	ID            int64          `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Message       string         `db:"message" json:"message"`
	MessageType   MessageType    `db:"message_type" json:"message_type"`
	MediaURL      sql.NullString `db:"media_url" json:"media_url,omitempty"`
	TargetSegment string         `db:"target_segment" json:"target_segment"`
	Status        CampaignStatus `db:"status" json:"status"`
	ScheduledAt   sql.NullTime   `db:"scheduled_at" json:"scheduled_at,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

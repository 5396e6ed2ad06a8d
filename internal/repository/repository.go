package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// repositoryImpl is the concrete implementation of Repository interface.
type repositoryImpl struct {
	db       *sqlx.DB
	contact  ContactRepository
	campaign CampaignRepository
	message  MessageRepository
	instance InstanceRepository
}

// NewRepository creates a new repository instance.
func NewRepository(db *sqlx.DB) Repository {
	return &repositoryImpl{
		db:       db,
		contact:  NewContactRepository(db),
		campaign: NewCampaignRepository(db),
		message:  NewMessageRepository(db),
		instance: NewInstanceRepository(db),
	}
}

// Contact returns the contact repository.
func (r *repositoryImpl) Contact() ContactRepository {
	return r.contact
}

// Campaign returns the campaign repository.
func (r *repositoryImpl) Campaign() CampaignRepository {
	return r.campaign
}

// Message returns the message repository.
func (r *repositoryImpl) Message() MessageRepository {
	return r.message
}

// Instance returns the WhatsApp instance repository.
func (r *repositoryImpl) Instance() InstanceRepository {
	return r.instance
}

// Ping checks if the database connection is healthy.
func (r *repositoryImpl) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return r.db.PingContext(ctx)
}

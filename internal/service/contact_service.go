package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/models"
	"github.com/thiagogitai/sinconsult-crm/internal/provider"
	"github.com/thiagogitai/sinconsult-crm/internal/repository"
)

type contactService struct {
	repo   repository.Repository
	logger *zap.Logger
}

func NewContactService(repo repository.Repository, logger *zap.Logger) ContactService {
	return &contactService{
		repo:   repo,
		logger: logger,
	}
}

// Create stores a new contact. The phone is normalized on write so dispatch
// always reads provider-ready numbers.
func (s *contactService) Create(ctx context.Context, input ContactInput) (*models.Contact, error) {
	if err := validateContactInput(input); err != nil {
		return nil, err
	}

	contact := &models.Contact{
		Name:     strings.TrimSpace(input.Name),
		Phone:    provider.NormalizePhone(input.Phone),
		Segment:  strings.TrimSpace(input.Segment),
		IsActive: true,
	}
	if input.Email != "" {
		contact.Email = sql.NullString{String: input.Email, Valid: true}
	}

	if err := s.repo.Contact().Create(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

func (s *contactService) GetByID(ctx context.Context, id int64) (*models.Contact, error) {
	return s.repo.Contact().GetByID(ctx, id)
}

func (s *contactService) List(ctx context.Context, page, limit int) ([]*models.Contact, error) {
	offset := (page - 1) * limit
	return s.repo.Contact().List(ctx, offset, limit)
}

func (s *contactService) Update(ctx context.Context, id int64, input ContactInput) (*models.Contact, error) {
	if err := validateContactInput(input); err != nil {
		return nil, err
	}

	contact, err := s.repo.Contact().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	contact.Name = strings.TrimSpace(input.Name)
	contact.Phone = provider.NormalizePhone(input.Phone)
	contact.Segment = strings.TrimSpace(input.Segment)
	contact.Email = sql.NullString{String: input.Email, Valid: input.Email != ""}

	if err := s.repo.Contact().Update(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

// Deactivate soft-deletes a contact so its delivery history stays intact.
func (s *contactService) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Contact().Deactivate(ctx, id)
}

func validateContactInput(input ContactInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(input.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	return nil
}

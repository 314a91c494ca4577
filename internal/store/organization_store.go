package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/appdeck/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
)

// OrganizationStore defines the interface for organization storage operations.
// Organizations are the tenancy boundary: folder and app visibility never
// crosses an organization.
type OrganizationStore interface {
	// Create creates a new organization in the store.
	// Returns ErrOrganizationAlreadyExists if an organization with the same ID already exists.
	Create(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// FindByName retrieves an organization by its unique name.
	// Returns ErrOrganizationNotFound if no organization has that name.
	FindByName(ctx context.Context, name string) (*models.Organization, error)
}

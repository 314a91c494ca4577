package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/appdeck/internal/models"
)

// Sentinel errors for folder store operations
var (
	ErrFolderNotFound       = errors.New("folder not found")
	ErrFolderAlreadyExists  = errors.New("folder already exists")
	ErrFolderAppExists      = errors.New("app is already in the folder")
	ErrFolderAppNotFound    = errors.New("app is not in the folder")
	ErrFolderAppOrgMismatch = errors.New("app and folder belong to different organizations")
)

// FolderStore defines the interface for folder and folder membership storage.
type FolderStore interface {
	// Create creates a new folder in the store.
	// Returns ErrFolderAlreadyExists if a folder with the same ID already exists.
	Create(ctx context.Context, folder *models.Folder) error

	// Get retrieves a folder by ID, without its memberships.
	// Returns ErrFolderNotFound if the folder doesn't exist.
	Get(ctx context.Context, folderID uuid.UUID) (*models.Folder, error)

	// ListByOrganization returns every folder in the organization, ordered by
	// name ascending, with FolderApps hydrated. This is the admin listing.
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Folder, error)

	// ListVisible returns the distinct folders in the organization that
	// either contain at least one of the given apps or contain no apps at
	// all, ordered by name ascending, with FolderApps hydrated. Folders with
	// no memberships are included for every organization member regardless of
	// the viewable set.
	ListVisible(ctx context.Context, orgID uuid.UUID, viewableAppIDs []uuid.UUID) ([]*models.Folder, error)

	// ListAppIDs returns the ids of the apps in the folder.
	ListAppIDs(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error)

	// AddApp adds an app to a folder.
	// Returns ErrFolderAppExists if the membership already exists and
	// ErrFolderAppOrgMismatch if the app belongs to a different organization
	// than the folder.
	AddApp(ctx context.Context, folderID uuid.UUID, appID uuid.UUID) error

	// RemoveApp removes an app from a folder.
	// Returns ErrFolderAppNotFound if the membership doesn't exist.
	RemoveApp(ctx context.Context, folderID uuid.UUID, appID uuid.UUID) error
}

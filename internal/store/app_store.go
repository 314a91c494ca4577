package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/appdeck/internal/models"
)

// Sentinel errors for app store operations
var (
	ErrAppNotFound      = errors.New("app not found")
	ErrAppAlreadyExists = errors.New("app already exists")
)

// AppStore defines the interface for app storage and the app viewability
// queries. An app is viewable by a user when the user belongs to a group
// holding a read grant on the app, when the app is public in the user's
// organization, or when the user owns the app. Every caller that needs the
// viewability set goes through ListViewableAppIDs (or the page/count variants
// which apply the same predicate) so the rule cannot drift between call sites.
type AppStore interface {
	// Create creates a new app in the store.
	// Returns ErrAppAlreadyExists if an app with the same ID already exists.
	Create(ctx context.Context, app *models.App) error

	// Get retrieves an app by ID.
	// Returns ErrAppNotFound if the app doesn't exist.
	Get(ctx context.Context, appID uuid.UUID) (*models.App, error)

	// GrantGroupRead records a read grant for a group on an app.
	GrantGroupRead(ctx context.Context, appID uuid.UUID, groupPermissionID uuid.UUID) error

	// ListViewableAppIDs returns the ids of every app the user may view,
	// across all folders. The result carries no ordering guarantee.
	ListViewableAppIDs(ctx context.Context, userID uuid.UUID, orgID uuid.UUID) ([]uuid.UUID, error)

	// CountViewable returns how many of the given apps the user may view.
	CountViewable(ctx context.Context, userID uuid.UUID, orgID uuid.UUID, appIDs []uuid.UUID) (int, error)

	// ListViewablePage returns a window of the apps the user may view among
	// the given ids, ordered by creation time descending before the window is
	// applied. Owner and GroupPermissions are hydrated on the returned apps.
	ListViewablePage(ctx context.Context, userID uuid.UUID, orgID uuid.UUID, appIDs []uuid.UUID, limit int, offset int) ([]*models.App, error)
}

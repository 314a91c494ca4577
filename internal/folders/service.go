package folders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/appdeck/internal/models"
	"github.com/wolfeidau/appdeck/internal/store"
	"github.com/wolfeidau/appdeck/internal/telemetry"
)

// PageSize is the fixed number of apps returned per page by ListAppsInFolder.
const PageSize = 10

// GroupChecker answers group membership questions for a user. It is injected
// rather than taken from a concrete store so tests can substitute fixtures.
// store.UserStore satisfies this interface.
type GroupChecker interface {
	HasGroup(ctx context.Context, userID uuid.UUID, groupName string) (bool, error)
}

// Service resolves folder visibility and folder app membership for a user.
// Admins see every folder in their organization; everyone else sees folders
// containing at least one app they may view, plus all empty folders in their
// organization. All calls are stateless and independent; store failures
// propagate unchanged.
type Service struct {
	folders store.FolderStore
	apps    store.AppStore
	groups  GroupChecker
}

// NewService creates a folder service on top of the given stores.
func NewService(folders store.FolderStore, apps store.AppStore, groups GroupChecker) *Service {
	return &Service{
		folders: folders,
		apps:    apps,
		groups:  groups,
	}
}

// CreateFolder persists a new folder in the user's organization and returns
// it. Name validation is the caller's responsibility.
func (s *Service) CreateFolder(ctx context.Context, user *models.User, name string) (*models.Folder, error) {
	folderID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate folder id: %w", err)
	}

	now := time.Now()
	folder := &models.Folder{
		FolderID:  folderID,
		OrgID:     user.OrgID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, err
	}

	telemetry.GetMetrics().FoldersCreatedTotal.Add(ctx, 1)

	log.Debug().
		Str("folder_id", folder.FolderID.String()).
		Str("org_id", folder.OrgID.String()).
		Msg("Created folder")

	return folder, nil
}

// ListFolders returns the folders visible to the user, ordered by name
// ascending, with memberships hydrated. Admins get every folder in their
// organization. Everyone else gets the distinct folders containing at least
// one viewable app, plus every empty folder in the organization - empty
// folders are visible to all organization members regardless of the viewable
// set.
func (s *Service) ListFolders(ctx context.Context, user *models.User) ([]*models.Folder, error) {
	metrics := telemetry.GetMetrics()
	started := time.Now()
	defer func() {
		metrics.FolderListDuration.Record(ctx, float64(time.Since(started).Milliseconds()))
	}()
	metrics.FolderListTotal.Add(ctx, 1)

	admin, err := s.groups.HasGroup(ctx, user.UserID, models.GroupAdmin)
	if err != nil {
		return nil, err
	}

	if admin {
		metrics.AdminListingsTotal.Add(ctx, 1)
		return s.folders.ListByOrganization(ctx, user.OrgID)
	}

	viewableAppIDs, err := s.apps.ListViewableAppIDs(ctx, user.UserID, user.OrgID)
	if err != nil {
		return nil, err
	}
	metrics.ViewableAppQueriesTotal.Add(ctx, 1)

	return s.folders.ListVisible(ctx, user.OrgID, viewableAppIDs)
}

// GetFolder looks a folder up by id. No permission filtering is applied;
// callers must have authorized folder access already.
// Returns store.ErrFolderNotFound if the folder doesn't exist.
func (s *Service) GetFolder(ctx context.Context, folderID uuid.UUID) (*models.Folder, error) {
	return s.folders.Get(ctx, folderID)
}

// CountAppsInFolder returns how many apps in the folder the user may view.
func (s *Service) CountAppsInFolder(ctx context.Context, user *models.User, folder *models.Folder) (int, error) {
	appIDs, err := s.folders.ListAppIDs(ctx, folder.FolderID)
	if err != nil {
		return 0, err
	}

	telemetry.GetMetrics().FolderAppCountsTotal.Add(ctx, 1)

	if len(appIDs) == 0 {
		return 0, nil
	}

	return s.apps.CountViewable(ctx, user.UserID, user.OrgID, appIDs)
}

// ListAppsInFolder returns one page of the apps in the folder the user may
// view, newest first. Pages are 1-indexed and PageSize long; ordering is
// applied to the full viewable set before the page window, so pages are
// disjoint and together enumerate exactly the viewable apps in the folder.
// Owner and GroupPermissions are hydrated on the returned apps.
func (s *Service) ListAppsInFolder(ctx context.Context, user *models.User, folder *models.Folder, page int) ([]*models.App, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be 1 or greater, got %d", page)
	}

	appIDs, err := s.folders.ListAppIDs(ctx, folder.FolderID)
	if err != nil {
		return nil, err
	}

	telemetry.GetMetrics().FolderAppsListedTotal.Add(ctx, 1)

	if len(appIDs) == 0 {
		return nil, nil
	}

	return s.apps.ListViewablePage(ctx, user.UserID, user.OrgID, appIDs, PageSize, PageSize*(page-1))
}

// AddAppToFolder adds an app to a folder. The app must belong to the same
// organization as the folder.
func (s *Service) AddAppToFolder(ctx context.Context, folder *models.Folder, appID uuid.UUID) error {
	return s.folders.AddApp(ctx, folder.FolderID, appID)
}

// RemoveAppFromFolder removes an app from a folder.
func (s *Service) RemoveAppFromFolder(ctx context.Context, folder *models.Folder, appID uuid.UUID) error {
	return s.folders.RemoveApp(ctx, folder.FolderID, appID)
}

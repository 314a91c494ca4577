package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/appdeck/internal/models"
	"github.com/wolfeidau/appdeck/internal/store"
)

// AppStore implements store.AppStore using in-memory storage.
// Group read grants are resolved against the user store, the same join the
// SQL implementation performs against user_group_permissions.
type AppStore struct {
	mu sync.RWMutex

	apps   map[uuid.UUID]*models.App                  // app_id -> App
	grants map[uuid.UUID][]*models.AppGroupPermission // app_id -> group grants

	users *UserStore
}

// NewAppStore creates a new in-memory app store backed by the given user
// store for group membership lookups.
func NewAppStore(users *UserStore) *AppStore {
	return &AppStore{
		apps:   make(map[uuid.UUID]*models.App),
		grants: make(map[uuid.UUID][]*models.AppGroupPermission),
		users:  users,
	}
}

// Create creates a new app in memory.
func (s *AppStore) Create(ctx context.Context, app *models.App) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apps[app.AppID]; exists {
		return store.ErrAppAlreadyExists
	}

	// Clone to avoid external modifications
	clone := *app
	clone.Owner = nil
	clone.GroupPermissions = nil
	s.apps[app.AppID] = &clone

	return nil
}

// Get retrieves an app by ID.
func (s *AppStore) Get(ctx context.Context, appID uuid.UUID) (*models.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, exists := s.apps[appID]
	if !exists {
		return nil, store.ErrAppNotFound
	}

	clone := *app
	return &clone, nil
}

// GrantGroupRead records a read grant for a group on an app.
func (s *AppStore) GrantGroupRead(ctx context.Context, appID uuid.UUID, groupPermissionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apps[appID]; !exists {
		return store.ErrAppNotFound
	}

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	s.grants[appID] = append(s.grants[appID], &models.AppGroupPermission{
		AppGroupPermissionID: id,
		AppID:                appID,
		GroupPermissionID:    groupPermissionID,
		Read:                 true,
	})

	return nil
}

// ListViewableAppIDs returns the ids of every app the user may view.
func (s *AppStore) ListViewableAppIDs(ctx context.Context, userID uuid.UUID, orgID uuid.UUID) ([]uuid.UUID, error) {
	groupIDs := s.users.groupIDs(userID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []uuid.UUID
	for _, app := range s.apps {
		if s.viewable(app, userID, orgID, groupIDs) {
			ids = append(ids, app.AppID)
		}
	}
	return ids, nil
}

// CountViewable returns how many of the given apps the user may view.
func (s *AppStore) CountViewable(ctx context.Context, userID uuid.UUID, orgID uuid.UUID, appIDs []uuid.UUID) (int, error) {
	groupIDs := s.users.groupIDs(userID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, appID := range appIDs {
		app, exists := s.apps[appID]
		if exists && s.viewable(app, userID, orgID, groupIDs) {
			count++
		}
	}
	return count, nil
}

// ListViewablePage returns a window of the viewable apps among the given ids,
// ordered by creation time descending before the window is applied.
func (s *AppStore) ListViewablePage(ctx context.Context, userID uuid.UUID, orgID uuid.UUID, appIDs []uuid.UUID, limit int, offset int) ([]*models.App, error) {
	groupIDs := s.users.groupIDs(userID)

	s.mu.RLock()

	var matched []*models.App
	for _, appID := range appIDs {
		app, exists := s.apps[appID]
		if !exists || !s.viewable(app, userID, orgID, groupIDs) {
			continue
		}

		clone := *app
		clone.GroupPermissions = cloneGrants(s.grants[appID])
		matched = append(matched, &clone)
	}

	s.mu.RUnlock()

	// Order the full result set before windowing, ties broken by id so
	// pages are stable.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].AppID.String() > matched[j].AppID.String()
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}

	for _, app := range matched {
		if owner, exists := s.users.getUser(app.OwnerUserID); exists {
			app.Owner = owner
		}
	}

	return matched, nil
}

// viewable evaluates the app viewability predicate: a group read grant the
// user holds, a public app in the user's organization, or direct ownership.
// Callers must hold at least a read lock.
func (s *AppStore) viewable(app *models.App, userID uuid.UUID, orgID uuid.UUID, groupIDs map[uuid.UUID]bool) bool {
	if app.OwnerUserID == userID {
		return true
	}
	if app.IsPublic && app.OrgID == orgID {
		return true
	}
	for _, grant := range s.grants[app.AppID] {
		if grant.Read && groupIDs[grant.GroupPermissionID] {
			return true
		}
	}
	return false
}

func cloneGrants(grants []*models.AppGroupPermission) []*models.AppGroupPermission {
	if len(grants) == 0 {
		return nil
	}
	out := make([]*models.AppGroupPermission, 0, len(grants))
	for _, g := range grants {
		clone := *g
		out = append(out, &clone)
	}
	return out
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/appdeck/internal/models"
	"github.com/wolfeidau/appdeck/internal/store"
)

// FolderStore implements store.FolderStore using in-memory storage.
type FolderStore struct {
	mu sync.RWMutex

	folders     map[uuid.UUID]*models.Folder      // folder_id -> Folder
	memberships map[uuid.UUID][]*models.FolderApp // folder_id -> memberships

	apps *AppStore
}

// NewFolderStore creates a new in-memory folder store backed by the given app
// store, used to enforce that memberships stay within one organization.
func NewFolderStore(apps *AppStore) *FolderStore {
	return &FolderStore{
		folders:     make(map[uuid.UUID]*models.Folder),
		memberships: make(map[uuid.UUID][]*models.FolderApp),
		apps:        apps,
	}
}

// Create creates a new folder in memory.
func (s *FolderStore) Create(ctx context.Context, folder *models.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.folders[folder.FolderID]; exists {
		return store.ErrFolderAlreadyExists
	}

	// Clone to avoid external modifications
	clone := *folder
	clone.FolderApps = nil
	s.folders[folder.FolderID] = &clone

	return nil
}

// Get retrieves a folder by ID, without its memberships.
func (s *FolderStore) Get(ctx context.Context, folderID uuid.UUID) (*models.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folder, exists := s.folders[folderID]
	if !exists {
		return nil, store.ErrFolderNotFound
	}

	clone := *folder
	return &clone, nil
}

// ListByOrganization returns every folder in the organization, ordered by
// name ascending, with memberships hydrated.
func (s *FolderStore) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Folder
	for _, folder := range s.folders {
		if folder.OrgID != orgID {
			continue
		}
		result = append(result, s.hydrate(folder))
	}

	sortFoldersByName(result)
	return result, nil
}

// ListVisible returns the distinct folders in the organization that contain
// at least one of the given apps or contain no apps at all, ordered by name
// ascending.
func (s *FolderStore) ListVisible(ctx context.Context, orgID uuid.UUID, viewableAppIDs []uuid.UUID) ([]*models.Folder, error) {
	viewable := make(map[uuid.UUID]bool, len(viewableAppIDs))
	for _, id := range viewableAppIDs {
		viewable[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Folder
	for _, folder := range s.folders {
		if folder.OrgID != orgID {
			continue
		}

		memberships := s.memberships[folder.FolderID]

		// Empty folders are always shown to every organization member.
		visible := len(memberships) == 0
		for _, fa := range memberships {
			if viewable[fa.AppID] {
				visible = true
				break
			}
		}

		if visible {
			result = append(result, s.hydrate(folder))
		}
	}

	sortFoldersByName(result)
	return result, nil
}

// ListAppIDs returns the ids of the apps in the folder.
func (s *FolderStore) ListAppIDs(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.folders[folderID]; !exists {
		return nil, store.ErrFolderNotFound
	}

	var ids []uuid.UUID
	for _, fa := range s.memberships[folderID] {
		ids = append(ids, fa.AppID)
	}
	return ids, nil
}

// AddApp adds an app to a folder.
func (s *FolderStore) AddApp(ctx context.Context, folderID uuid.UUID, appID uuid.UUID) error {
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	folder, exists := s.folders[folderID]
	if !exists {
		return store.ErrFolderNotFound
	}

	if app.OrgID != folder.OrgID {
		return store.ErrFolderAppOrgMismatch
	}

	for _, fa := range s.memberships[folderID] {
		if fa.AppID == appID {
			return store.ErrFolderAppExists
		}
	}

	s.memberships[folderID] = append(s.memberships[folderID], &models.FolderApp{
		FolderID:  folderID,
		AppID:     appID,
		CreatedAt: time.Now(),
	})

	return nil
}

// RemoveApp removes an app from a folder.
func (s *FolderStore) RemoveApp(ctx context.Context, folderID uuid.UUID, appID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.folders[folderID]; !exists {
		return store.ErrFolderNotFound
	}

	memberships := s.memberships[folderID]
	for i, fa := range memberships {
		if fa.AppID == appID {
			s.memberships[folderID] = append(memberships[:i], memberships[i+1:]...)
			return nil
		}
	}

	return store.ErrFolderAppNotFound
}

// hydrate clones the folder with its memberships attached. Callers must hold
// at least a read lock.
func (s *FolderStore) hydrate(folder *models.Folder) *models.Folder {
	clone := *folder
	for _, fa := range s.memberships[folder.FolderID] {
		faClone := *fa
		clone.FolderApps = append(clone.FolderApps, &faClone)
	}
	return &clone
}

func sortFoldersByName(folders []*models.Folder) {
	sort.Slice(folders, func(i, j int) bool {
		if folders[i].Name != folders[j].Name {
			return folders[i].Name < folders[j].Name
		}
		return folders[i].FolderID.String() < folders[j].FolderID.String()
	})
}

package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/appdeck/internal/models"
	"github.com/wolfeidau/appdeck/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
// It also holds groups and group memberships, mirroring the
// group_permissions and user_group_permissions tables.
type UserStore struct {
	mu sync.RWMutex

	users       map[uuid.UUID]*models.User            // user_id -> User
	groups      map[uuid.UUID]*models.GroupPermission // group_permission_id -> GroupPermission
	memberships map[uuid.UUID][]uuid.UUID             // user_id -> group_permission_ids
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:       make(map[uuid.UUID]*models.User),
		groups:      make(map[uuid.UUID]*models.GroupPermission),
		memberships: make(map[uuid.UUID][]uuid.UUID),
	}
}

// Create creates a new user in memory.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.UserID]; exists {
		return store.ErrUserAlreadyExists
	}

	for _, existing := range s.users {
		if existing.OrgID == user.OrgID && existing.Email == user.Email {
			return store.ErrUserAlreadyExists
		}
	}

	// Clone to avoid external modifications
	clone := *user
	s.users[user.UserID] = &clone

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// FindByEmail retrieves a user by email within an organization.
func (s *UserStore) FindByEmail(ctx context.Context, orgID uuid.UUID, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.OrgID == orgID && user.Email == email {
			clone := *user
			return &clone, nil
		}
	}

	return nil, store.ErrUserNotFound
}

// CreateGroup creates a group within an organization.
func (s *UserStore) CreateGroup(ctx context.Context, group *models.GroupPermission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if g.OrgID == group.OrgID && g.GroupName == group.GroupName {
			return store.ErrGroupAlreadyExists
		}
	}

	clone := *group
	s.groups[group.GroupPermissionID] = &clone

	return nil
}

// AddToGroup adds a user to a group.
func (s *UserStore) AddToGroup(ctx context.Context, userID uuid.UUID, groupPermissionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[groupPermissionID]; !exists {
		return store.ErrGroupNotFound
	}

	for _, id := range s.memberships[userID] {
		if id == groupPermissionID {
			return store.ErrAlreadyMemberOfGroup
		}
	}

	s.memberships[userID] = append(s.memberships[userID], groupPermissionID)

	return nil
}

// HasGroup reports whether the user belongs to a group with the given name.
func (s *UserStore) HasGroup(ctx context.Context, userID uuid.UUID, groupName string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, groupID := range s.memberships[userID] {
		if group, exists := s.groups[groupID]; exists && group.GroupName == groupName {
			return true, nil
		}
	}

	return false, nil
}

// groupIDs returns the ids of the groups the user belongs to. Used by the
// in-memory app store to evaluate read grants, the way the SQL stores join
// user_group_permissions.
func (s *UserStore) groupIDs(userID uuid.UUID) map[uuid.UUID]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[uuid.UUID]bool, len(s.memberships[userID]))
	for _, id := range s.memberships[userID] {
		ids[id] = true
	}
	return ids
}

// getUser returns the stored user without cloning. Used by the in-memory app
// store to hydrate app owners.
func (s *UserStore) getUser(userID uuid.UUID) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, false
	}
	clone := *user
	return &clone, true
}

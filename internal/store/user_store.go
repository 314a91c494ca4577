package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/appdeck/internal/models"
)

// Sentinel errors for user and group store operations
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrGroupNotFound        = errors.New("group not found")
	ErrGroupAlreadyExists   = errors.New("group already exists")
	ErrAlreadyMemberOfGroup = errors.New("user is already a member of the group")
)

// UserStore defines the interface for user and group membership storage.
// HasGroup is the membership check the folder resolver depends on; it is
// deliberately part of this interface so tests can substitute fixtures.
type UserStore interface {
	// Create creates a new user in the store.
	// Returns ErrUserAlreadyExists if a user with the same ID already exists.
	Create(ctx context.Context, user *models.User) error

	// Get retrieves a user by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// FindByEmail retrieves a user by email within an organization. Emails
	// are unique per organization.
	// Returns ErrUserNotFound if no such user exists.
	FindByEmail(ctx context.Context, orgID uuid.UUID, email string) (*models.User, error)

	// CreateGroup creates a group within an organization.
	// Returns ErrGroupAlreadyExists if the organization already has a group
	// with the same name.
	CreateGroup(ctx context.Context, group *models.GroupPermission) error

	// AddToGroup adds a user to a group.
	// Returns ErrGroupNotFound if the group doesn't exist, and
	// ErrAlreadyMemberOfGroup if the membership already exists.
	AddToGroup(ctx context.Context, userID uuid.UUID, groupPermissionID uuid.UUID) error

	// HasGroup reports whether the user belongs to a group with the given
	// name in their organization.
	HasGroup(ctx context.Context, userID uuid.UUID, groupName string) (bool, error)
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/appdeck/internal/models"
	"github.com/wolfeidau/appdeck/internal/store"
)

// UserStore implements store.UserStore using PostgreSQL. It owns the users,
// group_permissions and user_group_permissions tables.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{
		pool: pool,
	}
}

// Create creates a new user in the database.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			user_id, org_id, email, name, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := s.pool.Exec(ctx, query,
		user.UserID,
		user.OrgID,
		user.Email,
		user.Name,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Debug().
		Str("user_id", user.UserID.String()).
		Str("org_id", user.OrgID.String()).
		Msg("Created user")

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT user_id, org_id, email, name, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	var user models.User
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.OrgID,
		&user.Email,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// FindByEmail retrieves a user by email within an organization.
func (s *UserStore) FindByEmail(ctx context.Context, orgID uuid.UUID, email string) (*models.User, error) {
	query := `
		SELECT user_id, org_id, email, name, created_at, updated_at
		FROM users
		WHERE org_id = $1 AND email = $2
	`

	var user models.User
	err := s.pool.QueryRow(ctx, query, orgID, email).Scan(
		&user.UserID,
		&user.OrgID,
		&user.Email,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// CreateGroup creates a group within an organization.
func (s *UserStore) CreateGroup(ctx context.Context, group *models.GroupPermission) error {
	query := `
		INSERT INTO group_permissions (
			group_permission_id, org_id, group_name, created_at
		) VALUES (
			$1, $2, $3, $4
		)
	`

	_, err := s.pool.Exec(ctx, query,
		group.GroupPermissionID,
		group.OrgID,
		group.GroupName,
		group.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrGroupAlreadyExists
		}
		return fmt.Errorf("failed to create group: %w", err)
	}

	return nil
}

// AddToGroup adds a user to a group.
func (s *UserStore) AddToGroup(ctx context.Context, userID uuid.UUID, groupPermissionID uuid.UUID) error {
	membershipID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate membership id: %w", err)
	}

	query := `
		INSERT INTO user_group_permissions (
			user_group_permission_id, user_id, group_permission_id
		) VALUES (
			$1, $2, $3
		)
	`

	_, err = s.pool.Exec(ctx, query, membershipID, userID, groupPermissionID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyMemberOfGroup
		}
		if isForeignKeyViolation(err) {
			return store.ErrGroupNotFound
		}
		return fmt.Errorf("failed to add user to group: %w", err)
	}

	log.Debug().
		Str("user_id", userID.String()).
		Str("group_permission_id", groupPermissionID.String()).
		Msg("Added user to group")

	return nil
}

// HasGroup reports whether the user belongs to a group with the given name
// in their organization.
func (s *UserStore) HasGroup(ctx context.Context, userID uuid.UUID, groupName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM user_group_permissions ugp
			JOIN group_permissions gp ON gp.group_permission_id = ugp.group_permission_id
			WHERE ugp.user_id = $1 AND gp.group_name = $2
		)
	`

	var member bool
	if err := s.pool.QueryRow(ctx, query, userID, groupName).Scan(&member); err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", err)
	}

	return member, nil
}

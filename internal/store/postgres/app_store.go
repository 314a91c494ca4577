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

// viewableAppsSQL selects the ids of the apps a user ($1) may view within an
// organization ($2): a read grant held through one of the user's groups, a
// public app in the organization, or direct ownership. Every query that needs
// the viewable set embeds this fragment as a CTE so the predicate cannot
// drift between call sites.
const viewableAppsSQL = `
	SELECT a.app_id
	FROM apps a
	WHERE EXISTS (
		SELECT 1
		FROM app_group_permissions agp
		JOIN user_group_permissions ugp
			ON ugp.group_permission_id = agp.group_permission_id
		WHERE agp.app_id = a.app_id
			AND agp.read
			AND ugp.user_id = $1
	)
	OR (a.is_public AND a.org_id = $2)
	OR a.owner_user_id = $1
`

// AppStore implements store.AppStore using PostgreSQL. It owns the apps and
// app_group_permissions tables.
type AppStore struct {
	pool *pgxpool.Pool
}

// NewAppStore creates a new PostgreSQL-backed app store.
func NewAppStore(pool *pgxpool.Pool) *AppStore {
	return &AppStore{
		pool: pool,
	}
}

// Create creates a new app in the database.
func (s *AppStore) Create(ctx context.Context, app *models.App) error {
	query := `
		INSERT INTO apps (
			app_id, org_id, owner_user_id, name, slug, is_public, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := s.pool.Exec(ctx, query,
		app.AppID,
		app.OrgID,
		app.OwnerUserID,
		app.Name,
		app.Slug,
		app.IsPublic,
		app.CreatedAt,
		app.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAppAlreadyExists
		}
		return fmt.Errorf("failed to create app: %w", err)
	}

	log.Debug().
		Str("app_id", app.AppID.String()).
		Str("org_id", app.OrgID.String()).
		Msg("Created app")

	return nil
}

// Get retrieves an app by ID.
func (s *AppStore) Get(ctx context.Context, appID uuid.UUID) (*models.App, error) {
	query := `
		SELECT app_id, org_id, owner_user_id, name, slug, is_public, created_at, updated_at
		FROM apps
		WHERE app_id = $1
	`

	var app models.App
	err := s.pool.QueryRow(ctx, query, appID).Scan(
		&app.AppID,
		&app.OrgID,
		&app.OwnerUserID,
		&app.Name,
		&app.Slug,
		&app.IsPublic,
		&app.CreatedAt,
		&app.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAppNotFound
		}
		return nil, fmt.Errorf("failed to get app: %w", err)
	}

	return &app, nil
}

// GrantGroupRead records a read grant for a group on an app.
func (s *AppStore) GrantGroupRead(ctx context.Context, appID uuid.UUID, groupPermissionID uuid.UUID) error {
	grantID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate grant id: %w", err)
	}

	query := `
		INSERT INTO app_group_permissions (
			app_group_permission_id, app_id, group_permission_id, read, "update", "delete"
		) VALUES (
			$1, $2, $3, TRUE, FALSE, FALSE
		)
	`

	_, err = s.pool.Exec(ctx, query, grantID, appID, groupPermissionID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrAppNotFound
		}
		return fmt.Errorf("failed to grant group read: %w", err)
	}

	return nil
}

// ListViewableAppIDs returns the ids of every app the user may view.
func (s *AppStore) ListViewableAppIDs(ctx context.Context, userID uuid.UUID, orgID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, viewableAppsSQL, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list viewable apps: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan app id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating viewable apps: %w", err)
	}

	return ids, nil
}

// CountViewable returns how many of the given apps the user may view.
func (s *AppStore) CountViewable(ctx context.Context, userID uuid.UUID, orgID uuid.UUID, appIDs []uuid.UUID) (int, error) {
	query := `
		WITH viewable_apps AS (` + viewableAppsSQL + `)
		SELECT COUNT(*)
		FROM viewable_apps
		WHERE app_id = ANY($3)
	`

	var count int
	if err := s.pool.QueryRow(ctx, query, userID, orgID, appIDs).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count viewable apps: %w", err)
	}

	return count, nil
}

// ListViewablePage returns a window of the viewable apps among the given ids,
// newest first. Ordering is applied to the full intersection before the
// window, so consecutive pages are disjoint and exhaustive. The owning user
// and group read grants are hydrated on each returned app.
func (s *AppStore) ListViewablePage(ctx context.Context, userID uuid.UUID, orgID uuid.UUID, appIDs []uuid.UUID, limit int, offset int) ([]*models.App, error) {
	query := `
		WITH viewable_apps AS (` + viewableAppsSQL + `)
		SELECT
			a.app_id, a.org_id, a.owner_user_id, a.name, a.slug, a.is_public,
			a.created_at, a.updated_at,
			u.user_id, u.org_id, u.email, u.name, u.created_at, u.updated_at
		FROM apps a
		JOIN viewable_apps v ON v.app_id = a.app_id
		JOIN users u ON u.user_id = a.owner_user_id
		WHERE a.app_id = ANY($3)
		ORDER BY a.created_at DESC, a.app_id DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := s.pool.Query(ctx, query, userID, orgID, appIDs, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list viewable apps in folder: %w", err)
	}
	defer rows.Close()

	var apps []*models.App
	for rows.Next() {
		var app models.App
		var owner models.User
		err := rows.Scan(
			&app.AppID,
			&app.OrgID,
			&app.OwnerUserID,
			&app.Name,
			&app.Slug,
			&app.IsPublic,
			&app.CreatedAt,
			&app.UpdatedAt,
			&owner.UserID,
			&owner.OrgID,
			&owner.Email,
			&owner.Name,
			&owner.CreatedAt,
			&owner.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan app: %w", err)
		}
		app.Owner = &owner
		apps = append(apps, &app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating apps: %w", err)
	}

	if err := s.attachGroupPermissions(ctx, apps); err != nil {
		return nil, err
	}

	return apps, nil
}

// attachGroupPermissions hydrates the group permission rows for the given
// page of apps.
func (s *AppStore) attachGroupPermissions(ctx context.Context, apps []*models.App) error {
	if len(apps) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*models.App, len(apps))
	ids := make([]uuid.UUID, 0, len(apps))
	for _, app := range apps {
		byID[app.AppID] = app
		ids = append(ids, app.AppID)
	}

	query := `
		SELECT app_group_permission_id, app_id, group_permission_id, read, "update", "delete"
		FROM app_group_permissions
		WHERE app_id = ANY($1)
	`

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to list app group permissions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var grant models.AppGroupPermission
		err := rows.Scan(
			&grant.AppGroupPermissionID,
			&grant.AppID,
			&grant.GroupPermissionID,
			&grant.Read,
			&grant.Update,
			&grant.Delete,
		)
		if err != nil {
			return fmt.Errorf("failed to scan app group permission: %w", err)
		}
		if app, ok := byID[grant.AppID]; ok {
			app.GroupPermissions = append(app.GroupPermissions, &grant)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating app group permissions: %w", err)
	}

	return nil
}

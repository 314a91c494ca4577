package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/appdeck/internal/models"
	"github.com/wolfeidau/appdeck/internal/store"
)

// FolderStore implements store.FolderStore using PostgreSQL. It owns the
// folders and folder_apps tables.
type FolderStore struct {
	pool *pgxpool.Pool
}

// NewFolderStore creates a new PostgreSQL-backed folder store.
func NewFolderStore(pool *pgxpool.Pool) *FolderStore {
	return &FolderStore{
		pool: pool,
	}
}

// Create creates a new folder in the database.
func (s *FolderStore) Create(ctx context.Context, folder *models.Folder) error {
	query := `
		INSERT INTO folders (
			folder_id, org_id, name, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := s.pool.Exec(ctx, query,
		folder.FolderID,
		folder.OrgID,
		folder.Name,
		folder.CreatedAt,
		folder.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrFolderAlreadyExists
		}
		return fmt.Errorf("failed to create folder: %w", err)
	}

	log.Debug().
		Str("folder_id", folder.FolderID.String()).
		Str("org_id", folder.OrgID.String()).
		Msg("Created folder")

	return nil
}

// Get retrieves a folder by ID, without its memberships.
func (s *FolderStore) Get(ctx context.Context, folderID uuid.UUID) (*models.Folder, error) {
	query := `
		SELECT folder_id, org_id, name, created_at, updated_at
		FROM folders
		WHERE folder_id = $1
	`

	var folder models.Folder
	err := s.pool.QueryRow(ctx, query, folderID).Scan(
		&folder.FolderID,
		&folder.OrgID,
		&folder.Name,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrFolderNotFound
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

// ListByOrganization returns every folder in the organization, ordered by
// name ascending, with memberships hydrated.
func (s *FolderStore) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Folder, error) {
	query := `
		SELECT folder_id, org_id, name, created_at, updated_at
		FROM folders
		WHERE org_id = $1
		ORDER BY name ASC, folder_id ASC
	`

	rows, err := s.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	folders, err := scanFolders(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachMemberships(ctx, folders); err != nil {
		return nil, err
	}

	return folders, nil
}

// ListVisible returns the distinct folders in the organization that either
// contain at least one of the given apps or contain no apps at all, ordered
// by name ascending. Folders with no memberships are included for every
// organization member regardless of the viewable set; an empty viewable set
// therefore returns exactly the empty folders.
func (s *FolderStore) ListVisible(ctx context.Context, orgID uuid.UUID, viewableAppIDs []uuid.UUID) ([]*models.Folder, error) {
	query := `
		SELECT DISTINCT f.folder_id, f.org_id, f.name, f.created_at, f.updated_at
		FROM folders f
		LEFT JOIN folder_apps fa ON fa.folder_id = f.folder_id
		WHERE f.org_id = $1
			AND (fa.app_id = ANY($2) OR fa.app_id IS NULL)
		ORDER BY f.name ASC, f.folder_id ASC
	`

	// ANY over an empty array matches nothing, leaving only the IS NULL
	// branch, so the query stays well-formed for users with no viewable apps.
	if viewableAppIDs == nil {
		viewableAppIDs = []uuid.UUID{}
	}

	rows, err := s.pool.Query(ctx, query, orgID, viewableAppIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list visible folders: %w", err)
	}

	folders, err := scanFolders(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachMemberships(ctx, folders); err != nil {
		return nil, err
	}

	return folders, nil
}

// ListAppIDs returns the ids of the apps in the folder.
func (s *FolderStore) ListAppIDs(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.Get(ctx, folderID); err != nil {
		return nil, err
	}

	query := `
		SELECT app_id
		FROM folder_apps
		WHERE folder_id = $1
	`

	rows, err := s.pool.Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folder apps: %w", err)
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
		return nil, fmt.Errorf("error iterating folder apps: %w", err)
	}

	return ids, nil
}

// AddApp adds an app to a folder. The app must belong to the same
// organization as the folder.
func (s *FolderStore) AddApp(ctx context.Context, folderID uuid.UUID, appID uuid.UUID) error {
	folder, err := s.Get(ctx, folderID)
	if err != nil {
		return err
	}

	var appOrgID uuid.UUID
	err = s.pool.QueryRow(ctx, `SELECT org_id FROM apps WHERE app_id = $1`, appID).Scan(&appOrgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrAppNotFound
		}
		return fmt.Errorf("failed to get app organization: %w", err)
	}

	if appOrgID != folder.OrgID {
		return store.ErrFolderAppOrgMismatch
	}

	query := `
		INSERT INTO folder_apps (folder_id, app_id, created_at)
		VALUES ($1, $2, $3)
	`

	_, err = s.pool.Exec(ctx, query, folderID, appID, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrFolderAppExists
		}
		return fmt.Errorf("failed to add app to folder: %w", err)
	}

	log.Debug().
		Str("folder_id", folderID.String()).
		Str("app_id", appID.String()).
		Msg("Added app to folder")

	return nil
}

// RemoveApp removes an app from a folder.
func (s *FolderStore) RemoveApp(ctx context.Context, folderID uuid.UUID, appID uuid.UUID) error {
	query := `
		DELETE FROM folder_apps
		WHERE folder_id = $1 AND app_id = $2
	`

	result, err := s.pool.Exec(ctx, query, folderID, appID)
	if err != nil {
		return fmt.Errorf("failed to remove app from folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrFolderAppNotFound
	}

	return nil
}

// attachMemberships hydrates the membership rows for the given folders.
func (s *FolderStore) attachMemberships(ctx context.Context, folders []*models.Folder) error {
	if len(folders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*models.Folder, len(folders))
	ids := make([]uuid.UUID, 0, len(folders))
	for _, folder := range folders {
		byID[folder.FolderID] = folder
		ids = append(ids, folder.FolderID)
	}

	query := `
		SELECT folder_id, app_id, created_at
		FROM folder_apps
		WHERE folder_id = ANY($1)
	`

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to list folder memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fa models.FolderApp
		if err := rows.Scan(&fa.FolderID, &fa.AppID, &fa.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan folder membership: %w", err)
		}
		if folder, ok := byID[fa.FolderID]; ok {
			folder.FolderApps = append(folder.FolderApps, &fa)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating folder memberships: %w", err)
	}

	return nil
}

// scanFolders drains a folder result set. It closes the rows.
func scanFolders(rows pgx.Rows) ([]*models.Folder, error) {
	defer rows.Close()

	var folders []*models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.FolderID,
			&folder.OrgID,
			&folder.Name,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, &folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folders: %w", err)
	}

	return folders, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Folder groups apps within an organization. The organization is fixed at
// creation time and never changes.
type Folder struct {
	FolderID  uuid.UUID // UUIDv7
	OrgID     uuid.UUID // UUIDv7, FK to organizations
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Hydrated by list operations; nil for an empty folder.
	FolderApps []*FolderApp
}

// FolderApp is a folder membership row linking an app into a folder.
type FolderApp struct {
	FolderID  uuid.UUID // FK to folders
	AppID     uuid.UUID // FK to apps
	CreatedAt time.Time
}

// AppIDs returns the ids of the member apps.
func (f *Folder) AppIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(f.FolderApps))
	for _, fa := range f.FolderApps {
		ids = append(ids, fa.AppID)
	}
	return ids
}

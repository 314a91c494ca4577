package models

import (
	"time"

	"github.com/google/uuid"
)

// App represents an application built on the platform. A user can view an app
// when they belong to a group holding a read grant on it, when the app is
// public within their organization, or when they own it.
type App struct {
	AppID       uuid.UUID // UUIDv7
	OrgID       uuid.UUID // UUIDv7, FK to organizations
	OwnerUserID uuid.UUID // UUIDv7, FK to users
	Name        string
	Slug        string
	IsPublic    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Hydrated by list operations; nil/empty otherwise.
	Owner            *User
	GroupPermissions []*AppGroupPermission
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// GroupPermission is a named group within an organization. Users join groups
// via UserGroupPermission rows; apps grant rights to groups via
// AppGroupPermission rows.
type GroupPermission struct {
	GroupPermissionID uuid.UUID // UUIDv7
	OrgID             uuid.UUID // UUIDv7, FK to organizations
	GroupName         string    // "admin", "all_users", or custom
	CreatedAt         time.Time
}

// UserGroupPermission records a user's membership in a group.
type UserGroupPermission struct {
	UserGroupPermissionID uuid.UUID // UUIDv7
	UserID                uuid.UUID // FK to users
	GroupPermissionID     uuid.UUID // FK to group_permissions
}

// AppGroupPermission grants a group per-app rights. Read is the grant the
// folder visibility queries care about.
type AppGroupPermission struct {
	AppGroupPermissionID uuid.UUID // UUIDv7
	AppID                uuid.UUID // FK to apps
	GroupPermissionID    uuid.UUID // FK to group_permissions
	Read                 bool
	Update               bool
	Delete               bool
}

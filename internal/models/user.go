package models

import (
	"time"

	"github.com/google/uuid"
)

// Well-known group names. Groups are per-organization rows in
// group_permissions; these two are created for every organization.
const (
	GroupAdmin    = "admin"
	GroupAllUsers = "all_users"
)

// User represents a platform user. Users act within a single organization
// and gain app access through group memberships, app ownership, or public
// apps in their organization.
type User struct {
	UserID    uuid.UUID // UUIDv7
	OrgID     uuid.UUID // UUIDv7, FK to organizations
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

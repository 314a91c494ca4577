package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a workspace (tenant) in the platform.
// Every user, app and folder belongs to exactly one organization.
type Organization struct {
	OrgID     uuid.UUID // UUIDv7
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

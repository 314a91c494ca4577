package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/appdeck/internal/models"
	"github.com/wolfeidau/appdeck/internal/store"
)

func newOrganization(t *testing.T, name string) *models.Organization {
	t.Helper()

	orgID, err := uuid.NewV7()
	require.NoError(t, err)

	now := time.Now()
	return &models.Organization{
		OrgID:     orgID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryOrganizationStore(t *testing.T) {
	t.Run("create and get", func(t *testing.T) {
		st := NewOrganizationStore()
		ctx := context.Background()

		org := newOrganization(t, "acme")
		require.NoError(t, st.Create(ctx, org))

		retrieved, err := st.Get(ctx, org.OrgID)
		require.NoError(t, err)
		require.Equal(t, org.Name, retrieved.Name)
	})

	t.Run("duplicate name returns error", func(t *testing.T) {
		st := NewOrganizationStore()
		ctx := context.Background()

		require.NoError(t, st.Create(ctx, newOrganization(t, "acme")))

		err := st.Create(ctx, newOrganization(t, "acme"))
		require.Equal(t, store.ErrOrganizationAlreadyExists, err)
	})

	t.Run("find by name", func(t *testing.T) {
		st := NewOrganizationStore()
		ctx := context.Background()

		org := newOrganization(t, "acme")
		require.NoError(t, st.Create(ctx, org))

		found, err := st.FindByName(ctx, "acme")
		require.NoError(t, err)
		require.Equal(t, org.OrgID, found.OrgID)

		_, err = st.FindByName(ctx, "unknown")
		require.Equal(t, store.ErrOrganizationNotFound, err)
	})

	t.Run("get nonexistent organization returns error", func(t *testing.T) {
		st := NewOrganizationStore()
		ctx := context.Background()

		_, err := st.Get(ctx, uuid.Must(uuid.NewV7()))
		require.Equal(t, store.ErrOrganizationNotFound, err)
	})
}

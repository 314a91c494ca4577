package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/appdeck/internal/models"
	"github.com/wolfeidau/appdeck/internal/store/memory"
)

const fixtureYAML = `
organizations:
  - name: acme
    groups:
      - support
    users:
      - email: admin@acme.example
        name: Admin
        groups:
          - admin
      - email: dev@acme.example
        name: Dev
        groups:
          - support
    apps:
      - name: crm
        slug: crm
        owner: dev@acme.example
        public: false
        read_groups:
          - support
      - name: portal
        slug: portal
        owner: admin@acme.example
        public: true
    folders:
      - name: sales
        apps:
          - crm
          - portal
      - name: scratch
`

func TestParse(t *testing.T) {
	t.Run("valid fixture", func(t *testing.T) {
		fixture, err := Parse(strings.NewReader(fixtureYAML))
		require.NoError(t, err)
		require.Len(t, fixture.Organizations, 1)

		org := fixture.Organizations[0]
		require.Equal(t, "acme", org.Name)
		require.Equal(t, []string{"support"}, org.Groups)
		require.Len(t, org.Users, 2)
		require.Len(t, org.Apps, 2)
		require.Len(t, org.Folders, 2)
		require.Equal(t, []string{"crm", "portal"}, org.Folders[0].Apps)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		_, err := Parse(strings.NewReader("organizations:\n  - title: acme\n"))
		require.Error(t, err)
	})
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	newStores := func() Stores {
		users := memory.NewUserStore()
		apps := memory.NewAppStore(users)

		return Stores{
			Organizations: memory.NewOrganizationStore(),
			Users:         users,
			Apps:          apps,
			Folders:       memory.NewFolderStore(apps),
		}
	}

	t.Run("applies a full fixture", func(t *testing.T) {
		stores := newStores()

		fixture, err := Parse(strings.NewReader(fixtureYAML))
		require.NoError(t, err)
		require.NoError(t, Apply(ctx, stores, fixture))

		org, err := stores.Organizations.FindByName(ctx, "acme")
		require.NoError(t, err)

		admin, err := stores.Users.FindByEmail(ctx, org.OrgID, "admin@acme.example")
		require.NoError(t, err)
		dev, err := stores.Users.FindByEmail(ctx, org.OrgID, "dev@acme.example")
		require.NoError(t, err)

		// Every user is auto-joined to all_users; explicit groups hold too.
		ok, err := stores.Users.HasGroup(ctx, admin.UserID, models.GroupAdmin)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = stores.Users.HasGroup(ctx, dev.UserID, models.GroupAllUsers)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = stores.Users.HasGroup(ctx, dev.UserID, "support")
		require.NoError(t, err)
		require.True(t, ok)

		// The support read grant plus the public app make both folder apps
		// viewable to the dev user.
		ids, err := stores.Apps.ListViewableAppIDs(ctx, dev.UserID, dev.OrgID)
		require.NoError(t, err)
		require.Len(t, ids, 2)

		listed, err := stores.Folders.ListByOrganization(ctx, org.OrgID)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		require.Equal(t, "sales", listed[0].Name)
		require.Len(t, listed[0].FolderApps, 2)
		require.Equal(t, "scratch", listed[1].Name)
		require.Empty(t, listed[1].FolderApps)
	})

	t.Run("unknown owner fails", func(t *testing.T) {
		stores := newStores()

		fixture, err := Parse(strings.NewReader(`
organizations:
  - name: acme
    apps:
      - name: crm
        owner: nobody@acme.example
`))
		require.NoError(t, err)

		err = Apply(ctx, stores, fixture)
		require.ErrorContains(t, err, "unknown owner")
	})

	t.Run("unknown group fails", func(t *testing.T) {
		stores := newStores()

		fixture, err := Parse(strings.NewReader(`
organizations:
  - name: acme
    users:
      - email: dev@acme.example
        groups:
          - missing
`))
		require.NoError(t, err)

		err = Apply(ctx, stores, fixture)
		require.ErrorContains(t, err, "unknown group")
	})

	t.Run("unknown folder app fails", func(t *testing.T) {
		stores := newStores()

		fixture, err := Parse(strings.NewReader(`
organizations:
  - name: acme
    folders:
      - name: sales
        apps:
          - missing
`))
		require.NoError(t, err)

		err = Apply(ctx, stores, fixture)
		require.ErrorContains(t, err, "unknown app")
	})
}

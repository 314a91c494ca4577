package folders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/appdeck/internal/models"
	"github.com/wolfeidau/appdeck/internal/store"
	"github.com/wolfeidau/appdeck/internal/store/memory"
)

// fixture wires a service onto fresh in-memory stores for one organization.
type fixture struct {
	ctx     context.Context
	users   *memory.UserStore
	apps    *memory.AppStore
	folders *memory.FolderStore
	svc     *Service
	orgID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := memory.NewUserStore()
	apps := memory.NewAppStore(users)
	folderStore := memory.NewFolderStore(apps)

	return &fixture{
		ctx:     context.Background(),
		users:   users,
		apps:    apps,
		folders: folderStore,
		svc:     NewService(folderStore, apps, users),
		orgID:   uuid.Must(uuid.NewV7()),
	}
}

func (f *fixture) addUserIn(t *testing.T, orgID uuid.UUID, email string) *models.User {
	t.Helper()

	user := &models.User{
		UserID:    uuid.Must(uuid.NewV7()),
		OrgID:     orgID,
		Email:     email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, f.users.Create(f.ctx, user))
	return user
}

func (f *fixture) addUser(t *testing.T, email string) *models.User {
	return f.addUserIn(t, f.orgID, email)
}

func (f *fixture) addGroup(t *testing.T, name string) *models.GroupPermission {
	t.Helper()

	group := &models.GroupPermission{
		GroupPermissionID: uuid.Must(uuid.NewV7()),
		OrgID:             f.orgID,
		GroupName:         name,
		CreatedAt:         time.Now(),
	}
	require.NoError(t, f.users.CreateGroup(f.ctx, group))
	return group
}

func (f *fixture) join(t *testing.T, user *models.User, group *models.GroupPermission) {
	t.Helper()
	require.NoError(t, f.users.AddToGroup(f.ctx, user.UserID, group.GroupPermissionID))
}

func (f *fixture) addApp(t *testing.T, owner *models.User, name string, public bool, createdAt time.Time) *models.App {
	t.Helper()

	app := &models.App{
		AppID:       uuid.Must(uuid.NewV7()),
		OrgID:       owner.OrgID,
		OwnerUserID: owner.UserID,
		Name:        name,
		IsPublic:    public,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	require.NoError(t, f.apps.Create(f.ctx, app))
	return app
}

func folderNames(folders []*models.Folder) []string {
	names := make([]string, 0, len(folders))
	for _, f := range folders {
		names = append(names, f.Name)
	}
	return names
}

func TestService_CreateFolder(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice@example.com")

	folder, err := f.svc.CreateFolder(f.ctx, user, "sales")
	require.NoError(t, err)
	require.Equal(t, "sales", folder.Name)
	require.Equal(t, user.OrgID, folder.OrgID)
	require.NotEqual(t, uuid.Nil, folder.FolderID)

	got, err := f.svc.GetFolder(f.ctx, folder.FolderID)
	require.NoError(t, err)
	require.Equal(t, folder.FolderID, got.FolderID)
}

func TestService_GetFolder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetFolder(f.ctx, uuid.Must(uuid.NewV7()))
	require.Equal(t, store.ErrFolderNotFound, err)
}

func TestService_ListFolders(t *testing.T) {
	t.Run("admin sees every folder ordered by name", func(t *testing.T) {
		f := newFixture(t)
		admin := f.addUser(t, "admin@example.com")
		f.join(t, admin, f.addGroup(t, models.GroupAdmin))

		owner := f.addUser(t, "owner@example.com")
		hidden := f.addApp(t, owner, "secrets", false, time.Now())

		for _, name := range []string{"zeta", "alpha"} {
			_, err := f.svc.CreateFolder(f.ctx, admin, name)
			require.NoError(t, err)
		}
		mid, err := f.svc.CreateFolder(f.ctx, admin, "mid")
		require.NoError(t, err)
		require.NoError(t, f.svc.AddAppToFolder(f.ctx, mid, hidden.AppID))

		folders, err := f.svc.ListFolders(f.ctx, admin)
		require.NoError(t, err)
		require.Equal(t, []string{"alpha", "mid", "zeta"}, folderNames(folders))
	})

	t.Run("member sees folders with viewable apps plus empty folders", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")
		member := f.addUser(t, "member@example.com")

		public := f.addApp(t, owner, "portal", true, time.Now())
		private := f.addApp(t, owner, "secrets", false, time.Now())

		withPublic, err := f.svc.CreateFolder(f.ctx, owner, "b-portal")
		require.NoError(t, err)
		require.NoError(t, f.svc.AddAppToFolder(f.ctx, withPublic, public.AppID))

		withPrivate, err := f.svc.CreateFolder(f.ctx, owner, "c-internal")
		require.NoError(t, err)
		require.NoError(t, f.svc.AddAppToFolder(f.ctx, withPrivate, private.AppID))

		_, err = f.svc.CreateFolder(f.ctx, owner, "a-empty")
		require.NoError(t, err)

		folders, err := f.svc.ListFolders(f.ctx, member)
		require.NoError(t, err)
		require.Equal(t, []string{"a-empty", "b-portal"}, folderNames(folders))

		// The owner additionally sees the folder holding their private app.
		folders, err = f.svc.ListFolders(f.ctx, owner)
		require.NoError(t, err)
		require.Equal(t, []string{"a-empty", "b-portal", "c-internal"}, folderNames(folders))
	})

	t.Run("group read grant makes a folder visible", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")
		member := f.addUser(t, "member@example.com")

		app := f.addApp(t, owner, "crm", false, time.Now())
		group := f.addGroup(t, "support")
		f.join(t, member, group)
		require.NoError(t, f.apps.GrantGroupRead(f.ctx, app.AppID, group.GroupPermissionID))

		folder, err := f.svc.CreateFolder(f.ctx, owner, "sales")
		require.NoError(t, err)
		require.NoError(t, f.svc.AddAppToFolder(f.ctx, folder, app.AppID))

		folders, err := f.svc.ListFolders(f.ctx, member)
		require.NoError(t, err)
		require.Equal(t, []string{"sales"}, folderNames(folders))
	})

	t.Run("member with no viewable apps still sees empty folders", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")
		member := f.addUser(t, "member@example.com")

		private := f.addApp(t, owner, "secrets", false, time.Now())
		withPrivate, err := f.svc.CreateFolder(f.ctx, owner, "internal")
		require.NoError(t, err)
		require.NoError(t, f.svc.AddAppToFolder(f.ctx, withPrivate, private.AppID))

		_, err = f.svc.CreateFolder(f.ctx, owner, "empty")
		require.NoError(t, err)

		folders, err := f.svc.ListFolders(f.ctx, member)
		require.NoError(t, err)
		require.Equal(t, []string{"empty"}, folderNames(folders))
	})

	t.Run("folders never cross organizations", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")
		_, err := f.svc.CreateFolder(f.ctx, owner, "home")
		require.NoError(t, err)

		outsider := f.addUserIn(t, uuid.Must(uuid.NewV7()), "outsider@example.com")
		folders, err := f.svc.ListFolders(f.ctx, outsider)
		require.NoError(t, err)
		require.Empty(t, folders)

		// Public apps are only viewable within their own organization, so a
		// folder holding one stays hidden from other organizations too.
		public := f.addApp(t, owner, "portal", true, time.Now())
		withPublic, err := f.svc.CreateFolder(f.ctx, owner, "portal")
		require.NoError(t, err)
		require.NoError(t, f.svc.AddAppToFolder(f.ctx, withPublic, public.AppID))

		folders, err = f.svc.ListFolders(f.ctx, outsider)
		require.NoError(t, err)
		require.Empty(t, folders)
	})
}

func TestService_CountAppsInFolder(t *testing.T) {
	t.Run("counts only viewable apps", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")
		member := f.addUser(t, "member@example.com")

		private := f.addApp(t, owner, "secrets", false, time.Now())
		public := f.addApp(t, owner, "portal", true, time.Now())

		folder, err := f.svc.CreateFolder(f.ctx, owner, "mixed")
		require.NoError(t, err)
		require.NoError(t, f.svc.AddAppToFolder(f.ctx, folder, private.AppID))
		require.NoError(t, f.svc.AddAppToFolder(f.ctx, folder, public.AppID))

		count, err := f.svc.CountAppsInFolder(f.ctx, owner, folder)
		require.NoError(t, err)
		require.Equal(t, 2, count)

		count, err = f.svc.CountAppsInFolder(f.ctx, member, folder)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("empty folder counts zero", func(t *testing.T) {
		f := newFixture(t)
		user := f.addUser(t, "alice@example.com")

		folder, err := f.svc.CreateFolder(f.ctx, user, "empty")
		require.NoError(t, err)

		count, err := f.svc.CountAppsInFolder(f.ctx, user, folder)
		require.NoError(t, err)
		require.Equal(t, 0, count)
	})

	t.Run("missing folder returns error", func(t *testing.T) {
		f := newFixture(t)
		user := f.addUser(t, "alice@example.com")

		_, err := f.svc.CountAppsInFolder(f.ctx, user, &models.Folder{FolderID: uuid.Must(uuid.NewV7())})
		require.Equal(t, store.ErrFolderNotFound, err)
	})
}

func TestService_ListAppsInFolder(t *testing.T) {
	t.Run("rejects page below one", func(t *testing.T) {
		f := newFixture(t)
		user := f.addUser(t, "alice@example.com")
		folder, err := f.svc.CreateFolder(f.ctx, user, "sales")
		require.NoError(t, err)

		_, err = f.svc.ListAppsInFolder(f.ctx, user, folder, 0)
		require.Error(t, err)

		_, err = f.svc.ListAppsInFolder(f.ctx, user, folder, -3)
		require.Error(t, err)
	})

	t.Run("empty folder returns no apps", func(t *testing.T) {
		f := newFixture(t)
		user := f.addUser(t, "alice@example.com")
		folder, err := f.svc.CreateFolder(f.ctx, user, "empty")
		require.NoError(t, err)

		apps, err := f.svc.ListAppsInFolder(f.ctx, user, folder, 1)
		require.NoError(t, err)
		require.Empty(t, apps)
	})

	t.Run("pages are newest first, disjoint, and cover the viewable set", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")

		folder, err := f.svc.CreateFolder(f.ctx, owner, "sales")
		require.NoError(t, err)

		// 15 apps with strictly increasing creation times, so newest-first
		// ordering is app 14 down to app 0.
		base := time.Now().Add(-time.Hour)
		created := make([]*models.App, 15)
		for i := range created {
			app := f.addApp(t, owner, fmt.Sprintf("app-%02d", i), false, base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, f.svc.AddAppToFolder(f.ctx, folder, app.AppID))
			created[i] = app
		}

		page1, err := f.svc.ListAppsInFolder(f.ctx, owner, folder, 1)
		require.NoError(t, err)
		require.Len(t, page1, PageSize)

		page2, err := f.svc.ListAppsInFolder(f.ctx, owner, folder, 2)
		require.NoError(t, err)
		require.Len(t, page2, 5)

		page3, err := f.svc.ListAppsInFolder(f.ctx, owner, folder, 3)
		require.NoError(t, err)
		require.Empty(t, page3)

		// Ordering holds across the page boundary.
		all := append(append([]*models.App{}, page1...), page2...)
		for i, app := range all {
			require.Equal(t, created[14-i].AppID, app.AppID)
		}

		count, err := f.svc.CountAppsInFolder(f.ctx, owner, folder)
		require.NoError(t, err)
		require.Equal(t, len(page1)+len(page2), count)
	})

	t.Run("viewability filter applies before the page window", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")
		member := f.addUser(t, "member@example.com")

		folder, err := f.svc.CreateFolder(f.ctx, owner, "mixed")
		require.NoError(t, err)

		// Interleave public and private apps; the member only sees the
		// public half, which must still fill the first page contiguously.
		base := time.Now().Add(-time.Hour)
		var public []*models.App
		for i := 0; i < 24; i++ {
			app := f.addApp(t, owner, fmt.Sprintf("app-%02d", i), i%2 == 0, base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, f.svc.AddAppToFolder(f.ctx, folder, app.AppID))
			if app.IsPublic {
				public = append(public, app)
			}
		}

		page1, err := f.svc.ListAppsInFolder(f.ctx, member, folder, 1)
		require.NoError(t, err)
		require.Len(t, page1, PageSize)

		page2, err := f.svc.ListAppsInFolder(f.ctx, member, folder, 2)
		require.NoError(t, err)
		require.Len(t, page2, 2)

		all := append(append([]*models.App{}, page1...), page2...)
		require.Len(t, all, len(public))
		for i, app := range all {
			require.Equal(t, public[len(public)-1-i].AppID, app.AppID)
			require.True(t, app.IsPublic)
		}
	})

	t.Run("hydrates owners on returned apps", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")

		folder, err := f.svc.CreateFolder(f.ctx, owner, "sales")
		require.NoError(t, err)

		app := f.addApp(t, owner, "crm", false, time.Now())
		require.NoError(t, f.svc.AddAppToFolder(f.ctx, folder, app.AppID))

		apps, err := f.svc.ListAppsInFolder(f.ctx, owner, folder, 1)
		require.NoError(t, err)
		require.Len(t, apps, 1)
		require.NotNil(t, apps[0].Owner)
		require.Equal(t, owner.Email, apps[0].Owner.Email)
	})
}

func TestService_FolderMembership(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner@example.com")

	folder, err := f.svc.CreateFolder(f.ctx, owner, "sales")
	require.NoError(t, err)
	app := f.addApp(t, owner, "crm", false, time.Now())

	require.NoError(t, f.svc.AddAppToFolder(f.ctx, folder, app.AppID))
	require.Equal(t, store.ErrFolderAppExists, f.svc.AddAppToFolder(f.ctx, folder, app.AppID))

	count, err := f.svc.CountAppsInFolder(f.ctx, owner, folder)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, f.svc.RemoveAppFromFolder(f.ctx, folder, app.AppID))
	require.Equal(t, store.ErrFolderAppNotFound, f.svc.RemoveAppFromFolder(f.ctx, folder, app.AppID))

	count, err = f.svc.CountAppsInFolder(f.ctx, owner, folder)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

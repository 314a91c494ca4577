// Package seed loads YAML fixture files into the stores. It exists for
// development and demo environments where the platform needs a populated
// workspace without the full provisioning flow.
package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/appdeck/internal/models"
	"github.com/wolfeidau/appdeck/internal/store"
	"gopkg.in/yaml.v3"
)

// Fixture is the top-level structure of a seed file. Entities reference each
// other by name within an organization; ids are generated at load time.
type Fixture struct {
	Organizations []OrganizationFixture `yaml:"organizations"`
}

type OrganizationFixture struct {
	Name    string          `yaml:"name"`
	Groups  []string        `yaml:"groups"`
	Users   []UserFixture   `yaml:"users"`
	Apps    []AppFixture    `yaml:"apps"`
	Folders []FolderFixture `yaml:"folders"`
}

type UserFixture struct {
	Email  string   `yaml:"email"`
	Name   string   `yaml:"name"`
	Groups []string `yaml:"groups"`
}

type AppFixture struct {
	Name       string   `yaml:"name"`
	Slug       string   `yaml:"slug"`
	Owner      string   `yaml:"owner"` // email of the owning user
	Public     bool     `yaml:"public"`
	ReadGroups []string `yaml:"read_groups"`
}

type FolderFixture struct {
	Name string   `yaml:"name"`
	Apps []string `yaml:"apps"` // names of member apps
}

// Stores collects the store interfaces the loader writes to.
type Stores struct {
	Organizations store.OrganizationStore
	Users         store.UserStore
	Apps          store.AppStore
	Folders       store.FolderStore
}

// Parse reads a fixture from YAML.
func Parse(r io.Reader) (*Fixture, error) {
	var fixture Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &fixture, nil
}

// Apply creates every entity in the fixture. The well-known admin and
// all_users groups are created for each organization whether or not the
// fixture lists them.
func Apply(ctx context.Context, stores Stores, fixture *Fixture) error {
	for _, orgFixture := range fixture.Organizations {
		if err := applyOrganization(ctx, stores, orgFixture); err != nil {
			return fmt.Errorf("organization %q: %w", orgFixture.Name, err)
		}
	}
	return nil
}

func applyOrganization(ctx context.Context, stores Stores, fixture OrganizationFixture) error {
	now := time.Now()

	orgID, err := uuid.NewV7()
	if err != nil {
		return err
	}

	org := &models.Organization{
		OrgID:     orgID,
		Name:      fixture.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := stores.Organizations.Create(ctx, org); err != nil {
		return err
	}

	groupNames := append([]string{models.GroupAdmin, models.GroupAllUsers}, fixture.Groups...)
	groupIDs := make(map[string]uuid.UUID, len(groupNames))
	for _, name := range groupNames {
		if _, exists := groupIDs[name]; exists {
			continue
		}

		groupID, err := uuid.NewV7()
		if err != nil {
			return err
		}

		group := &models.GroupPermission{
			GroupPermissionID: groupID,
			OrgID:             orgID,
			GroupName:         name,
			CreatedAt:         now,
		}
		if err := stores.Users.CreateGroup(ctx, group); err != nil {
			return fmt.Errorf("group %q: %w", name, err)
		}
		groupIDs[name] = groupID
	}

	userIDs := make(map[string]uuid.UUID, len(fixture.Users))
	for _, userFixture := range fixture.Users {
		userID, err := uuid.NewV7()
		if err != nil {
			return err
		}

		user := &models.User{
			UserID:    userID,
			OrgID:     orgID,
			Email:     userFixture.Email,
			Name:      userFixture.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := stores.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("user %q: %w", userFixture.Email, err)
		}
		userIDs[userFixture.Email] = userID

		for _, groupName := range append([]string{models.GroupAllUsers}, userFixture.Groups...) {
			groupID, ok := groupIDs[groupName]
			if !ok {
				return fmt.Errorf("user %q references unknown group %q", userFixture.Email, groupName)
			}
			if err := stores.Users.AddToGroup(ctx, userID, groupID); err != nil {
				return fmt.Errorf("user %q group %q: %w", userFixture.Email, groupName, err)
			}
		}
	}

	appIDs := make(map[string]uuid.UUID, len(fixture.Apps))
	for _, appFixture := range fixture.Apps {
		ownerID, ok := userIDs[appFixture.Owner]
		if !ok {
			return fmt.Errorf("app %q references unknown owner %q", appFixture.Name, appFixture.Owner)
		}

		appID, err := uuid.NewV7()
		if err != nil {
			return err
		}

		app := &models.App{
			AppID:       appID,
			OrgID:       orgID,
			OwnerUserID: ownerID,
			Name:        appFixture.Name,
			Slug:        appFixture.Slug,
			IsPublic:    appFixture.Public,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := stores.Apps.Create(ctx, app); err != nil {
			return fmt.Errorf("app %q: %w", appFixture.Name, err)
		}
		appIDs[appFixture.Name] = appID

		for _, groupName := range appFixture.ReadGroups {
			groupID, ok := groupIDs[groupName]
			if !ok {
				return fmt.Errorf("app %q references unknown group %q", appFixture.Name, groupName)
			}
			if err := stores.Apps.GrantGroupRead(ctx, appID, groupID); err != nil {
				return fmt.Errorf("app %q group %q: %w", appFixture.Name, groupName, err)
			}
		}
	}

	for _, folderFixture := range fixture.Folders {
		folderID, err := uuid.NewV7()
		if err != nil {
			return err
		}

		folder := &models.Folder{
			FolderID:  folderID,
			OrgID:     orgID,
			Name:      folderFixture.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := stores.Folders.Create(ctx, folder); err != nil {
			return fmt.Errorf("folder %q: %w", folderFixture.Name, err)
		}

		for _, appName := range folderFixture.Apps {
			appID, ok := appIDs[appName]
			if !ok {
				return fmt.Errorf("folder %q references unknown app %q", folderFixture.Name, appName)
			}
			if err := stores.Folders.AddApp(ctx, folderID, appID); err != nil {
				return fmt.Errorf("folder %q app %q: %w", folderFixture.Name, appName, err)
			}
		}
	}

	log.Info().
		Str("org_id", orgID.String()).
		Str("name", fixture.Name).
		Int("users", len(fixture.Users)).
		Int("apps", len(fixture.Apps)).
		Int("folders", len(fixture.Folders)).
		Msg("Seeded organization")

	return nil
}

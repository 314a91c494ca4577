package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/wolfeidau/appdeck/internal/logger"
	"github.com/wolfeidau/appdeck/internal/seed"
)

// SeedCmd loads a YAML fixture file into the configured store. Intended for
// development and demo environments.
type SeedCmd struct {
	File string `arg:"" help:"path to the YAML fixture file" type:"existingfile"`

	Store StoreFlags `embed:""`
}

func (c *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	fixture, err := seed.Parse(f)
	if err != nil {
		return err
	}

	stores, err := buildStores(ctx, c.Store)
	if err != nil {
		return err
	}
	defer stores.Close()

	err = seed.Apply(ctx, seed.Stores{
		Organizations: stores.Organizations,
		Users:         stores.Users,
		Apps:          stores.Apps,
		Folders:       stores.Folders,
	}, fixture)
	if err != nil {
		return err
	}

	log.Info().Str("file", c.File).Int("organizations", len(fixture.Organizations)).Msg("Seed complete")
	return nil
}

package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/appdeck/internal/store"
	memorystore "github.com/wolfeidau/appdeck/internal/store/memory"
	postgresstore "github.com/wolfeidau/appdeck/internal/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

// StoreFlags selects and configures the storage backend shared by the
// server and seed commands.
type StoreFlags struct {
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"APPDECK_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"APPDECK_POSTGRES_AUTO_MIGRATE"`
}

// StoreSet bundles the concrete stores behind their interfaces, along with a
// Close releasing the underlying pool for the postgres backend.
type StoreSet struct {
	Organizations store.OrganizationStore
	Users         store.UserStore
	Apps          store.AppStore
	Folders       store.FolderStore

	Close func()
}

// buildStores wires up the configured storage backend. The initial postgres
// connection is retried with exponential backoff so the server tolerates a
// database that is still starting.
func buildStores(ctx context.Context, flags StoreFlags) (*StoreSet, error) {
	switch flags.StoreType {
	case "postgres":
		cfg := &postgresstore.PoolConfig{
			ConnString:      flags.PostgresStore.ConnString,
			MaxConns:        flags.PostgresStore.MaxConns,
			MinConns:        flags.PostgresStore.MinConns,
			MaxConnLifetime: flags.PostgresStore.MaxConnLifetime,
			MaxConnIdleTime: flags.PostgresStore.MaxConnIdleTime,
		}

		pool, err := backoff.Retry(ctx, func() (*pgxpool.Pool, error) {
			pool, err := postgresstore.NewPool(ctx, cfg)
			if err != nil {
				log.Warn().Err(err).Msg("Database not ready, retrying")
				return nil, err
			}
			return pool, nil
		}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(5))
		if err != nil {
			return nil, err
		}

		if flags.PostgresStore.AutoMigrate {
			if err := postgresstore.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}

		return &StoreSet{
			Organizations: postgresstore.NewOrganizationStore(pool),
			Users:         postgresstore.NewUserStore(pool),
			Apps:          postgresstore.NewAppStore(pool),
			Folders:       postgresstore.NewFolderStore(pool),
			Close:         pool.Close,
		}, nil

	default:
		users := memorystore.NewUserStore()
		apps := memorystore.NewAppStore(users)

		return &StoreSet{
			Organizations: memorystore.NewOrganizationStore(),
			Users:         users,
			Apps:          apps,
			Folders:       memorystore.NewFolderStore(apps),
			Close:         func() {},
		}, nil
	}
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

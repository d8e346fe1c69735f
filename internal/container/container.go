package container

import (
	"context"
	"fmt"

	"rolstat/adapters/excel"
	"rolstat/adapters/filestore"
	"rolstat/adapters/gochart"
	"rolstat/adapters/memory"
	"rolstat/adapters/postgres"
	"rolstat/adapters/sqlite"
	"rolstat/app"
	"rolstat/domain/core"
	"rolstat/internal"
	"rolstat/internal/config"
	"rolstat/internal/errors"
	"rolstat/internal/events"
	"rolstat/internal/migration"
	"rolstat/internal/storage"
	"rolstat/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Log    *internal.Logger

	// Infrastructure
	DB    *sqlx.DB
	Store ports.KeyValueStore
	Hub   *events.Hub

	// Services
	Workbench *app.Workbench
	Charts    *app.ChartSurface
	Importer  *excel.DataReader

	watch        func(ctx context.Context) error
	subscription ports.Subscription
}

// New opens the configured store and wires the services on top of it. The
// workbench and the chart surface write as distinct origins, so the surface
// hears the workbench's changes as another context would.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	c := &Container{
		Config: cfg,
		Log:    logger.Named("container"),
		Hub:    events.NewHub(logger),
	}
	if err := c.initStore(ctx, logger); err != nil {
		return nil, err
	}

	c.Workbench = app.NewWorkbench(cfg.Grid.Rows, cfg.Grid.Cols,
		storage.NewBridge(c.Store, core.NewOrigin(), logger), logger)
	c.Charts = app.NewChartSurface(
		storage.NewBridge(c.Store, core.NewOrigin(), logger),
		gochart.NewRenderer(cfg.Charts.Width, cfg.Charts.Height, logger),
		logger)
	c.subscription = c.Charts.Subscribe(c.Hub)
	c.Importer = excel.NewDataReader(logger)

	c.Log.Info("container initialized with %s store", cfg.Store.Backend)
	return c, nil
}

// initStore opens the backend named by the configuration
func (c *Container) initStore(ctx context.Context, logger *internal.Logger) error {
	cfg := c.Config.Store
	switch cfg.Backend {
	case config.BackendMemory:
		c.Store = memory.NewStore(c.Hub)

	case config.BackendFile:
		store, err := filestore.NewStore(cfg.Dir, c.Hub, logger)
		if err != nil {
			return errors.StorageError("open file store", err)
		}
		c.Store = store
		c.watch = store.Watch

	case config.BackendSQLite:
		store, err := sqlite.NewStore(cfg.SQLitePath, c.Hub)
		if err != nil {
			return errors.StorageError("open sqlite store", err)
		}
		c.Store = store

	case config.BackendPostgres:
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
		if err != nil {
			return errors.DatabaseError("failed to connect to database", err)
		}
		if err := migration.NewRunner().Run(ctx, db); err != nil {
			db.Close()
			return errors.Wrap(err, "database migration failed")
		}
		store := postgres.NewKVStore(db, c.Hub, logger)
		c.DB = db
		c.Store = store
		c.watch = func(ctx context.Context) error { return store.Listen(ctx, cfg.DatabaseURL) }

	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown store backend %q", cfg.Backend))
	}
	return nil
}

// Watch relays changes made by other processes until ctx is done. Backends
// without cross-process notification return once ctx is done.
func (c *Container) Watch(ctx context.Context) error {
	if c.watch == nil {
		<-ctx.Done()
		return nil
	}
	return c.watch(ctx)
}

// Shutdown releases the store
func (c *Container) Shutdown(ctx context.Context) error {
	if c.subscription != nil {
		c.subscription.Close()
	}
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}

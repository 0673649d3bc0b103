package radarconfig

import (
	"context"
	"errors"

	"github.com/lunagic/radar/radar"
	"github.com/lunagic/radar/radarservices/cache"
	"github.com/lunagic/radar/radarservices/database"
	"github.com/lunagic/radar/radarservices/queue"
	"github.com/lunagic/radar/radarservices/storage"
)

// Services wires the configured drivers together. Builders made through it
// compile through the cache when one is configured and publish audit events
// when a queue is configured.
type Services struct {
	Database         database.Driver
	Driver           radar.Driver
	ConnectionString string
	Storage          storage.Driver

	// Statements is nil when no cache is configured.
	Statements *cache.CompileCache

	// Audit is nil when no queue is configured.
	Audit       *queue.Queue[queue.AuditEvent]
	queueDriver queue.Driver
}

func (config Config) Services(ctx context.Context) (*Services, error) {
	databaseDriver, err := config.Driver()
	if err != nil {
		return nil, err
	}

	services := &Services{
		Database:         databaseDriver,
		Driver:           databaseDriver,
		ConnectionString: databaseDriver.ConnectionString(),
	}

	cacheDriver, err := config.Cache(ctx)
	if err != nil {
		return nil, err
	}

	if cacheDriver != nil {
		services.Statements = cache.NewCompileCache(databaseDriver, cacheDriver, config.CacheTTL)
		services.Driver = services.Statements
	}

	queueDriver, err := config.Queue()
	if err != nil {
		return nil, err
	}

	if queueDriver != nil {
		services.queueDriver = queueDriver

		audit, err := queue.NewQueue[queue.AuditEvent](ctx, queueDriver, config.AuditName)
		if err != nil {
			return nil, errors.Join(err, services.Close())
		}

		services.Audit = &audit
	}

	services.Storage, err = config.Storage()
	if err != nil {
		return nil, errors.Join(err, services.Close())
	}

	return services, nil
}

func (services *Services) configFuncs(configFuncs []radar.ConfigFunc) []radar.ConfigFunc {
	result := []radar.ConfigFunc{}
	if services.Audit != nil {
		result = append(result, queue.WithAudit(*services.Audit))
	}

	return append(result, configFuncs...)
}

// New returns a builder that acquires a connection per Execute.
func (services *Services) New(configFuncs ...radar.ConfigFunc) (*radar.Builder, error) {
	return radar.New(
		services.Driver,
		append(
			[]radar.ConfigFunc{radar.WithConnectionString(services.ConnectionString)},
			services.configFuncs(configFuncs)...,
		)...,
	)
}

func (services *Services) Begin(ctx context.Context, configFuncs ...radar.ConfigFunc) (*radar.Transaction, error) {
	return radar.Begin(ctx, services.Driver, services.ConnectionString, services.configFuncs(configFuncs)...)
}

// Snapshot executes builder and stores the rows at filePath.
func (services *Services) Snapshot(ctx context.Context, builder *radar.Builder, filePath string) (radar.Rows, error) {
	rows, err := builder.Execute(ctx)
	if err != nil {
		return nil, err
	}

	if err := storage.Snapshot(ctx, services.Storage, filePath, rows); err != nil {
		return nil, err
	}

	return rows, nil
}

func (services *Services) Restore(ctx context.Context, filePath string) (radar.Rows, error) {
	return storage.Restore(ctx, services.Storage, filePath)
}

// Snapshots lists the snapshots stored below directory.
func (services *Services) Snapshots(ctx context.Context, directory string) ([]string, error) {
	return storage.Snapshots(ctx, services.Storage, directory)
}

func (services *Services) Close() error {
	err := services.Database.Close()
	if services.queueDriver != nil {
		err = errors.Join(err, services.queueDriver.Close())
	}

	return err
}

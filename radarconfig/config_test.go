package radarconfig_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lunagic/radar/radar"
	"github.com/lunagic/radar/radarconfig"
	"github.com/lunagic/radar/radarservices/queue"
	"gotest.tools/v3/assert"
)

var errStop = errors.New("stop")

func TestLoad(t *testing.T) {
	t.Setenv("RADAR_DRIVER_DATABASE", "postgres")
	t.Setenv("RADAR_CACHE_TTL", "5m")
	t.Setenv("POSTGRES_USER", "radar")
	t.Setenv("POSTGRES_NAME", "app")
	t.Setenv("POSTGRES_PORT", "6543")

	config, err := radarconfig.Load()
	assert.NilError(t, err)

	assert.Equal(t, "postgres", config.DriverDatabase)
	assert.Equal(t, 5*time.Minute, config.CacheTTL)
	assert.Equal(t, 6543, config.PostgresPort)

	// Defaults survive where nothing is set
	assert.Equal(t, "127.0.0.1", config.PostgresHost)
	assert.Equal(t, "local", config.DriverStorage)

	connectionString, err := config.ConnectionString()
	assert.NilError(t, err)
	assert.Equal(t, "host=127.0.0.1 port=6543 user=radar password= dbname=app sslmode=disable", connectionString)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("MYSQL_PORT", "not a number")

	_, err := radarconfig.Load()
	assert.Assert(t, err != nil)
}

func TestDrivers(t *testing.T) {
	testCases := map[string]string{
		"sqlite":   "sqlite",
		"duckdb":   "duckdb",
		"postgres": "postgres",
		"mysql":    "mysql",
	}

	for name, dialect := range testCases {
		t.Run(name, func(t *testing.T) {
			config := radarconfig.NewConfig()
			config.DriverDatabase = name

			driver, err := config.Driver()
			assert.NilError(t, err)
			assert.Equal(t, dialect, driver.Dialect())
		})
	}
}

func TestUnknownDrivers(t *testing.T) {
	config := radarconfig.NewConfig()
	config.DriverDatabase = "oracle"
	config.DriverCache = "memcached"
	config.DriverQueue = "kafka"
	config.DriverStorage = "ftp"

	_, err := config.Driver()
	assert.DeepEqual(t, radarconfig.ErrUnknownDriver{Kind: "database", Name: "oracle"}, err)

	_, err = config.Cache(t.Context())
	assert.DeepEqual(t, radarconfig.ErrUnknownDriver{Kind: "cache", Name: "memcached"}, err)

	_, err = config.Queue()
	assert.DeepEqual(t, radarconfig.ErrUnknownDriver{Kind: "queue", Name: "kafka"}, err)

	_, err = config.Storage()
	assert.DeepEqual(t, radarconfig.ErrUnknownDriver{Kind: "storage", Name: "ftp"}, err)

	assert.Error(t, err, "invalid storage driver: ftp")
}

func TestVault(t *testing.T) {
	config := radarconfig.NewConfig()

	{ // Confirm no key means no vault
		v, err := config.Vault()
		assert.NilError(t, err)
		assert.Assert(t, v == nil)
	}

	{ // Confirm a bad key is reported
		config.Key = "short"
		_, err := config.Vault()
		assert.Assert(t, err != nil)
	}

	{ // Confirm a good key works
		config.Key = "secret_key_secret_key_secret_key"
		v, err := config.Vault()
		assert.NilError(t, err)
		assert.Assert(t, v != nil)
	}
}

func TestServices(t *testing.T) {
	directory := t.TempDir()

	config := radarconfig.NewConfig()
	config.SQLitePath = filepath.Join(directory, "database.sqlite")
	config.LocalStoragePath = filepath.Join(directory, "snapshots")
	config.Key = "secret_key_secret_key_secret_key"
	config.DriverCache = "memory"
	config.DriverQueue = "memory"

	services, err := config.Services(t.Context())
	assert.NilError(t, err)
	t.Cleanup(func() {
		assert.NilError(t, services.Close())
	})

	assert.Equal(t, "sqlite", services.Driver.Dialect())
	assert.Assert(t, services.Audit != nil)

	{ // Seed the table straight through the database driver
		connection, err := services.Database.Connect(t.Context(), services.ConnectionString)
		assert.NilError(t, err)

		for _, statement := range []string{
			"CREATE TABLE users (id INTEGER, name TEXT)",
			"INSERT INTO users (id, name) VALUES (1, 'Aaron')",
		} {
			_, err := services.Database.Run(t.Context(), connection, radar.Statement{Query: statement})
			assert.NilError(t, err)
		}

		assert.NilError(t, services.Database.Release(t.Context(), connection))
	}

	{ // Confirm writes through a transaction are audited
		transaction, err := services.Begin(t.Context())
		assert.NilError(t, err)

		_, err = transaction.Builder().Into("users").Insert(map[string]any{"id": 2, "name": "Ada"}).Execute(t.Context())
		assert.NilError(t, err)
		assert.NilError(t, transaction.Commit(t.Context()))
	}

	builder, err := services.New()
	assert.NilError(t, err)
	builder.Select("id", "name").From("users").Where(map[string]any{"name": "Aaron"})

	{ // Confirm snapshot and restore
		rows, err := services.Snapshot(t.Context(), builder, "aaron.json")
		assert.NilError(t, err)
		assert.Equal(t, 1, len(rows))

		restored, err := services.Restore(t.Context(), "aaron.json")
		assert.NilError(t, err)
		assert.Equal(t, "Aaron", restored[0]["name"])

		snapshots, err := services.Snapshots(t.Context(), ".")
		assert.NilError(t, err)
		assert.DeepEqual(t, []string{"aaron.json"}, snapshots)
	}

	{ // Confirm the transaction write and the snapshot query were audited in order
		events := auditEvents(t, services, 2)

		assert.Equal(t, "sqlite", events[0].Dialect)
		assert.Assert(t, strings.HasPrefix(events[0].Query, "INSERT"))

		assert.Equal(t, 1, events[1].RowCount)
		assert.Assert(t, strings.HasPrefix(events[1].Query, "SELECT"))
	}

	{ // Confirm the compile cache can be purged
		assert.Assert(t, services.Statements != nil)
		assert.NilError(t, services.Statements.Purge(t.Context()))

		rows, err := builder.Execute(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, 1, len(rows))
	}
}

// auditEvents consumes count events. The handler fails on the last one to
// stop consuming, which leaves that event queued.
func auditEvents(t *testing.T, services *radarconfig.Services, count int) []queue.AuditEvent {
	t.Helper()

	events := []queue.AuditEvent{}
	err := services.Audit.Consume(t.Context(), func(ctx context.Context, delivery queue.Delivery[queue.AuditEvent]) error {
		events = append(events, delivery.Payload)
		if len(events) == count {
			return errStop
		}

		return nil
	})
	assert.ErrorIs(t, err, errStop)

	return events
}

package radarconfig

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/lunagic/radar/radarservices/cache"
	"github.com/lunagic/radar/radarservices/database"
	"github.com/lunagic/radar/radarservices/queue"
	"github.com/lunagic/radar/radarservices/storage"
	"github.com/lunagic/radar/radarservices/vault"
)

type ErrUnknownDriver struct {
	Kind string
	Name string
}

func (err ErrUnknownDriver) Error() string {
	return fmt.Sprintf("invalid %s driver: %s", err.Kind, err.Name)
}

type Config struct {
	// Radar
	Key       string        `env:"RADAR_KEY"`
	CacheTTL  time.Duration `env:"RADAR_CACHE_TTL"`
	AuditName string        `env:"RADAR_AUDIT_QUEUE"`
	// Radar Drivers
	DriverDatabase string `env:"RADAR_DRIVER_DATABASE"`
	DriverCache    string `env:"RADAR_DRIVER_CACHE"`
	DriverQueue    string `env:"RADAR_DRIVER_QUEUE"`
	DriverStorage  string `env:"RADAR_DRIVER_STORAGE"`
	// Services
	AmazonS3AccessKeyID     string `env:"AMAZON_S3_ACCESS_KEY_ID"`
	AmazonS3AccessKeySecret string `env:"AMAZON_S3_ACCESS_KEY_SECRET"`
	AmazonS3Bucket          string `env:"AMAZON_S3_BUCKET"`
	AmazonS3Endpoint        string `env:"AMAZON_S3_ENDPOINT"`
	AmazonS3Prefix          string `env:"AMAZON_S3_PREFIX"`
	AmazonS3Region          string `env:"AMAZON_S3_REGION"`
	DuckDBPath              string `env:"DUCKDB_PATH"`
	LocalStoragePath        string `env:"LOCAL_STORAGE_PATH"`
	MySQLHost               string `env:"MYSQL_HOST"`
	MySQLName               string `env:"MYSQL_NAME"`
	MySQLPass               string `env:"MYSQL_PASS"`
	MySQLPort               int    `env:"MYSQL_PORT"`
	MySQLUser               string `env:"MYSQL_USER"`
	PostgresHost            string `env:"POSTGRES_HOST"`
	PostgresName            string `env:"POSTGRES_NAME"`
	PostgresPass            string `env:"POSTGRES_PASS"`
	PostgresPort            int    `env:"POSTGRES_PORT"`
	PostgresUser            string `env:"POSTGRES_USER"`
	RabbitMQHost            string `env:"RABBITMQ_HOST"`
	RabbitMQPass            string `env:"RABBITMQ_PASS"`
	RabbitMQPort            int    `env:"RABBITMQ_PORT"`
	RabbitMQUser            string `env:"RABBITMQ_USER"`
	RedisHost               string `env:"REDIS_HOST"`
	RedisNumber             int    `env:"REDIS_NUMBER"`
	RedisPass               string `env:"REDIS_PASS"`
	RedisPort               int    `env:"REDIS_PORT"`
	RedisUser               string `env:"REDIS_USER"`
	SQLitePath              string `env:"SQLITE_PATH"`
}

func NewConfig() Config {
	return Config{
		AuditName:        "radar-audit",
		CacheTTL:         time.Hour,
		DriverCache:      "none",
		DriverDatabase:   "sqlite",
		DriverQueue:      "none",
		DriverStorage:    "local",
		DuckDBPath:       "database.duckdb",
		LocalStoragePath: "snapshots",
		MySQLHost:        "127.0.0.1",
		MySQLPort:        3306,
		PostgresHost:     "127.0.0.1",
		PostgresPort:     5432,
		RabbitMQHost:     "127.0.0.1",
		RabbitMQPort:     5672,
		RedisHost:        "127.0.0.1",
		RedisPort:        6379,
		SQLitePath:       "database.sqlite",
	}
}

// Load overlays the process environment on top of NewConfig.
func Load() (Config, error) {
	config := NewConfig()
	if err := env.Parse(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (config Config) Driver() (database.Driver, error) {
	switch config.DriverDatabase {
	case "sqlite":
		return database.NewDriverSQLite(database.DriverSQLiteConfig{
			Path: config.SQLitePath,
		}), nil
	case "duckdb":
		return database.NewDriverDuckDB(database.DriverDuckDBConfig{
			Path: config.DuckDBPath,
		}), nil
	case "postgres":
		return database.NewDriverPostgres(database.DriverPostgresConfig{
			Host: config.PostgresHost,
			Port: config.PostgresPort,
			User: config.PostgresUser,
			Pass: config.PostgresPass,
			Name: config.PostgresName,
		}), nil
	case "mysql":
		return database.NewDriverMySQL(database.DriverMySQLConfig{
			Host: config.MySQLHost,
			Port: config.MySQLPort,
			User: config.MySQLUser,
			Pass: config.MySQLPass,
			Name: config.MySQLName,
		}), nil
	}

	return nil, ErrUnknownDriver{Kind: "database", Name: config.DriverDatabase}
}

func (config Config) ConnectionString() (string, error) {
	driver, err := config.Driver()
	if err != nil {
		return "", err
	}

	return driver.ConnectionString(), nil
}

// Cache returns nil when caching is turned off.
func (config Config) Cache(ctx context.Context) (cache.Driver, error) {
	switch config.DriverCache {
	case "none":
		return nil, nil
	case "memory":
		return cache.NewDriverMemory(ctx)
	case "redis":
		return cache.NewDriverRedis(cache.DriverRedisConfig{
			Host:   config.RedisHost,
			Number: config.RedisNumber,
			Pass:   config.RedisPass,
			Port:   config.RedisPort,
			User:   config.RedisUser,
		})
	}

	return nil, ErrUnknownDriver{Kind: "cache", Name: config.DriverCache}
}

// Queue returns nil when auditing is turned off.
func (config Config) Queue() (queue.Driver, error) {
	switch config.DriverQueue {
	case "none":
		return nil, nil
	case "memory":
		return queue.NewDriverMemory()
	case "rabbitmq":
		return queue.NewDriverRabbitMQ(queue.DriverRabbitMQConfig{
			Host: config.RabbitMQHost,
			Pass: config.RabbitMQPass,
			Port: config.RabbitMQPort,
			User: config.RabbitMQUser,
		})
	}

	return nil, ErrUnknownDriver{Kind: "queue", Name: config.DriverQueue}
}

func (config Config) Storage() (storage.Driver, error) {
	switch config.DriverStorage {
	case "local":
		v, err := config.Vault()
		if err != nil {
			return nil, err
		}

		return storage.NewDriverLocal(config.LocalStoragePath, v)
	case "s3":
		return storage.NewDriverS3(storage.DriverS3Config{
			Endpoint:        config.AmazonS3Endpoint,
			Region:          config.AmazonS3Region,
			Bucket:          config.AmazonS3Bucket,
			AccessKeyID:     config.AmazonS3AccessKeyID,
			AccessKeySecret: config.AmazonS3AccessKeySecret,
			Prefix:          config.AmazonS3Prefix,
		})
	}

	return nil, ErrUnknownDriver{Kind: "storage", Name: config.DriverStorage}
}

// Vault returns nil when no key is configured.
func (config Config) Vault() (*vault.Vault, error) {
	if config.Key == "" {
		return nil, nil
	}

	v, err := vault.New([]byte(config.Key))
	if err != nil {
		return nil, err
	}

	return &v, nil
}

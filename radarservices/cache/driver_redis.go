package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// purgeBatch is how many keys one SCAN step asks for and one UNLINK removes.
const purgeBatch = 100

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

type DriverRedisConfig struct {
	Host   string
	Number int
	Pass   string
	Port   int
	User   string
}

func (config DriverRedisConfig) options() *redis.Options {
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Username: config.User,
		Password: config.Pass,
		DB:       config.Number,
	}
}

// NewDriverRedis shares compiled statements between processes through a
// redis compatible server. Nothing is dialed until the first call.
func NewDriverRedis(config DriverRedisConfig) (Driver, error) {
	return &driverRedis{
		client: redis.NewClient(config.options()),
	}, nil
}

type driverRedis struct {
	client *redis.Client
}

func (driver *driverRedis) Load(ctx context.Context, key string) ([]byte, error) {
	payload, err := driver.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}

	return payload, err
}

func (driver *driverRedis) Store(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return driver.client.Set(ctx, key, payload, ttl).Err()
}

func (driver *driverRedis) Forget(ctx context.Context, key string) error {
	return driver.client.Unlink(ctx, key).Err()
}

// Purge walks the keyspace with SCAN, unlinking matches in batches.
func (driver *driverRedis) Purge(ctx context.Context, prefix string) error {
	iterator := driver.client.Scan(ctx, 0, globEscaper.Replace(prefix)+"*", purgeBatch).Iterator()

	batch := make([]string, 0, purgeBatch)
	for iterator.Next(ctx) {
		batch = append(batch, iterator.Val())
		if len(batch) < purgeBatch {
			continue
		}

		if err := driver.client.Unlink(ctx, batch...).Err(); err != nil {
			return err
		}

		batch = batch[:0]
	}

	if err := iterator.Err(); err != nil {
		return err
	}

	if len(batch) == 0 {
		return nil
	}

	return driver.client.Unlink(ctx, batch...).Err()
}

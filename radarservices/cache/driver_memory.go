package cache

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// NewDriverMemory keeps entries in process. Expired entries are swept once a
// minute until ctx is done.
func NewDriverMemory(ctx context.Context) (Driver, error) {
	driver := &driverMemory{
		entries: map[string]memoryEntry{},
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				driver.sweep(now)
			}
		}
	}()

	return driver, nil
}

type driverMemory struct {
	mutex   sync.Mutex
	entries map[string]memoryEntry
}

func (driver *driverMemory) Load(ctx context.Context, key string) ([]byte, error) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	entry, found := driver.entries[key]
	if !found || !time.Now().Before(entry.expiresAt) {
		return nil, ErrNotFound
	}

	return slices.Clone(entry.payload), nil
}

func (driver *driverMemory) Store(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	driver.entries[key] = memoryEntry{
		payload:   slices.Clone(payload),
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

func (driver *driverMemory) Forget(ctx context.Context, key string) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	delete(driver.entries, key)

	return nil
}

func (driver *driverMemory) Purge(ctx context.Context, prefix string) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	for key := range driver.entries {
		if strings.HasPrefix(key, prefix) {
			delete(driver.entries, key)
		}
	}

	return nil
}

func (driver *driverMemory) sweep(now time.Time) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	for key, entry := range driver.entries {
		if !now.Before(entry.expiresAt) {
			delete(driver.entries, key)
		}
	}
}

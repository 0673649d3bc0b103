package cache_test

import (
	"testing"
	"time"

	"github.com/lunagic/radar/radarservices/cache"
	"gotest.tools/v3/assert"
)

func TestDriverMemory(t *testing.T) {
	t.Parallel()

	driver, err := cache.NewDriverMemory(t.Context())
	assert.NilError(t, err)

	testSuite(t, driver)
}

func TestDriverMemoryCopiesEntries(t *testing.T) {
	driver, err := cache.NewDriverMemory(t.Context())
	assert.NilError(t, err)

	entry := []byte("SELECT 1")
	assert.NilError(t, driver.Store(t.Context(), "key", entry, time.Minute))
	entry[0] = 'X'

	loaded, err := driver.Load(t.Context(), "key")
	assert.NilError(t, err)
	assert.Equal(t, "SELECT 1", string(loaded))

	loaded[0] = 'X'

	again, err := driver.Load(t.Context(), "key")
	assert.NilError(t, err)
	assert.Equal(t, "SELECT 1", string(again))
}

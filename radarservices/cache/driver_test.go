package cache_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/radar/radarservices/cache"
	"gotest.tools/v3/assert"
)

// testSuite checks the storage contract the compile cache relies on.
func testSuite(t *testing.T, driver cache.Driver) {
	prefix := "radar-compile-" + uuid.NewString() + "-"
	key := prefix + "first"
	entry := []byte(`{"query":"SELECT 1"}`)

	{ // Confirm a missing key is reported as not found
		_, err := driver.Load(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}

	{ // Confirm a stored entry loads back byte for byte
		assert.NilError(t, driver.Store(t.Context(), key, entry, 30*time.Second))

		loaded, err := driver.Load(t.Context(), key)
		assert.NilError(t, err)
		assert.DeepEqual(t, entry, loaded)
	}

	{ // Confirm forgetting removes the entry
		assert.NilError(t, driver.Forget(t.Context(), key))

		_, err := driver.Load(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}

	{ // Confirm purge only removes keys under the prefix
		other := "radar-compile-" + uuid.NewString()

		for _, name := range []string{"a", "b", "c"} {
			assert.NilError(t, driver.Store(t.Context(), prefix+name, entry, 30*time.Second))
		}
		assert.NilError(t, driver.Store(t.Context(), other, entry, 30*time.Second))

		assert.NilError(t, driver.Purge(t.Context(), prefix))

		for _, name := range []string{"a", "b", "c"} {
			_, err := driver.Load(t.Context(), prefix+name)
			assert.ErrorIs(t, err, cache.ErrNotFound)
		}

		_, err := driver.Load(t.Context(), other)
		assert.NilError(t, err)
	}

	{ // Confirm entries expire
		key := prefix + "expiring"
		assert.NilError(t, driver.Store(t.Context(), key, entry, time.Second))

		_, err := driver.Load(t.Context(), key)
		assert.NilError(t, err)

		time.Sleep(2 * time.Second)

		_, err = driver.Load(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}
}

package storage_test

import (
	"context"
	"encoding/json"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lunagic/radar/radar"
	"github.com/lunagic/radar/radarservices/storage"
	"gotest.tools/v3/assert"
)

func testSuite(t *testing.T, driver storage.Driver) {
	fileName := uuid.NewString()
	fileContents := uuid.NewString()

	{ // Confirm the driver is ready
		assert.NilError(t, driver.IsReady(t.Context()))
	}

	{ // Confirm file does not already exist
		found, err := driver.Exists(t.Context(), fileName)
		assert.NilError(t, err)

		if found {
			t.Fatalf("file found before putting the file, bad test: %s", fileName)
		}
	}

	{ // Put the file in storage
		assert.NilError(t, driver.Put(t.Context(), fileName, strings.NewReader(fileContents)))
		t.Cleanup(func() {
			_ = driver.Delete(context.Background(), fileName)
		})
	}

	{ // Confirm the file is now in storage
		found, err := driver.Exists(t.Context(), fileName)
		assert.NilError(t, err)
		assert.Assert(t, found, "file not found after putting it")
	}

	{ // Confirm the file contents
		reader, err := driver.Get(t.Context(), fileName)
		assert.NilError(t, err)

		actualContents, err := io.ReadAll(reader)
		assert.NilError(t, err)
		assert.NilError(t, reader.Close())
		assert.Equal(t, string(actualContents), fileContents)
	}

	{ // Confirm snapshots round trip
		snapshotDirectory := "snapshots/" + uuid.NewString()
		snapshotName := snapshotDirectory + "/users.json"
		t.Cleanup(func() {
			_ = driver.Delete(context.Background(), snapshotName)
			_ = driver.Delete(context.Background(), snapshotDirectory+"/notes.txt")
		})

		assert.NilError(t, storage.Snapshot(t.Context(), driver, snapshotName, radar.Rows{
			{"id": 9007199254740993, "name": "Aaron", "tags": []string{"a"}},
			{"id": 2, "name": nil},
		}))

		assert.NilError(t, driver.Put(t.Context(), snapshotDirectory+"/notes.txt", strings.NewReader("not a snapshot")))

		snapshots, err := storage.Snapshots(t.Context(), driver, snapshotDirectory)
		assert.NilError(t, err)
		assert.DeepEqual(t, []string{snapshotName}, snapshots)

		rows, err := storage.Restore(t.Context(), driver, snapshotName)
		assert.NilError(t, err)
		assert.Equal(t, 2, len(rows))
		assert.Equal(t, json.Number("9007199254740993"), rows[0]["id"])
		assert.Equal(t, "Aaron", rows[0]["name"])
		assert.DeepEqual(t, []any{"a"}, rows[0]["tags"])
		assert.Equal(t, nil, rows[1]["name"])
	}

	{ // Confirm listing finds the file by its relative path
		paths, err := driver.List(t.Context(), ".")
		assert.NilError(t, err)
		assert.Assert(t, slices.Contains(paths, fileName), "file %s missing from %v", fileName, paths)
	}

	{ // Confirm missing files are reported as not found
		_, err := driver.Get(t.Context(), uuid.NewString())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	}

	{ // Confirm paths cannot leave the storage root
		_, err := driver.Exists(t.Context(), "../"+fileName)
		assert.ErrorIs(t, err, storage.ErrInvalidPath)
	}

	{ // Delete the file
		assert.NilError(t, driver.Delete(t.Context(), fileName))
	}

	{ // Confirm it no longer exists
		found, err := driver.Exists(t.Context(), fileName)
		assert.NilError(t, err)

		if found {
			t.Fatalf("file found after deleting: %s", fileName)
		}
	}

	{ // Confirm deleting a file that does not exist does not error out
		assert.NilError(t, driver.Delete(t.Context(), fileName))
	}
}

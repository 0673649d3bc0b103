package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"path"

	"github.com/lunagic/radar/radar"
)

// Snapshot writes rows to filePath as a JSON array.
func Snapshot(ctx context.Context, driver Driver, filePath string, rows radar.Rows) error {
	if rows == nil {
		rows = radar.Rows{}
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	return driver.Put(ctx, filePath, bytes.NewReader(payload))
}

// Restore reads rows written by Snapshot. Numbers come back as json.Number
// so integers keep their precision.
func Restore(ctx context.Context, driver Driver, filePath string) (radar.Rows, error) {
	reader, err := driver.Get(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.UseNumber()

	rows := radar.Rows{}
	if err := decoder.Decode(&rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// Snapshots lists the snapshot files below directory, oldest name first.
func Snapshots(ctx context.Context, driver Driver, directory string) ([]string, error) {
	paths, err := driver.List(ctx, directory)
	if err != nil {
		return nil, err
	}

	snapshots := []string{}
	for _, filePath := range paths {
		if path.Ext(filePath) == ".json" {
			snapshots = append(snapshots, filePath)
		}
	}

	return snapshots, nil
}

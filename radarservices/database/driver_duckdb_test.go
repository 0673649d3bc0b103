package database_test

import (
	"fmt"
	"testing"

	"github.com/lunagic/radar/radarservices/database"
)

func TestDuckDB(t *testing.T) {
	t.Parallel()
	testSuite(t, database.NewDriverDuckDB(database.DriverDuckDBConfig{
		Path: fmt.Sprintf("%s/database.duckdb", t.TempDir()),
	}))
}

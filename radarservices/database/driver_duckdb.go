package database

import (
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

func NewDriverDuckDB(config DriverDuckDBConfig) Driver {
	return newSQLDriver(dialectDuckDB{config: config})
}

// DriverDuckDBConfig points at a database file. DuckDB keeps an empty path
// in memory, which radar cannot address since it needs a connection string.
type DriverDuckDBConfig struct {
	Path string
}

func (config DriverDuckDBConfig) ConnectionString() string {
	return config.Path
}

type dialectDuckDB struct {
	config DriverDuckDBConfig
}

func (dialect dialectDuckDB) name() string {
	return "duckdb"
}

func (dialect dialectDuckDB) driverName() string {
	return "duckdb"
}

func (dialect dialectDuckDB) connectionString() string {
	return dialect.config.ConnectionString()
}

func (dialect dialectDuckDB) quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (dialect dialectDuckDB) usesNumberedParameters() bool {
	return false
}

func (dialect dialectDuckDB) beginStatement() string {
	return "BEGIN TRANSACTION"
}

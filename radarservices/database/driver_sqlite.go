package database

import (
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

func NewDriverSQLite(config DriverSQLiteConfig) Driver {
	return newSQLDriver(dialectSQLite{config: config})
}

type DriverSQLiteConfig struct {
	Path string
}

func (config DriverSQLiteConfig) ConnectionString() string {
	return fmt.Sprintf("file:%s?cache=shared&_foreign_keys=on", config.Path)
}

type dialectSQLite struct {
	config DriverSQLiteConfig
}

func (dialect dialectSQLite) name() string {
	return "sqlite"
}

func (dialect dialectSQLite) driverName() string {
	return "sqlite3"
}

func (dialect dialectSQLite) connectionString() string {
	return dialect.config.ConnectionString()
}

func (dialect dialectSQLite) quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (dialect dialectSQLite) usesNumberedParameters() bool {
	return false
}

func (dialect dialectSQLite) beginStatement() string {
	return "BEGIN"
}

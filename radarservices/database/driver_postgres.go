package database

import (
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

func NewDriverPostgres(config DriverPostgresConfig) Driver {
	return newSQLDriver(dialectPostgres{config: config})
}

type DriverPostgresConfig struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

func (config DriverPostgresConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		config.Host,
		config.Port,
		config.User,
		config.Pass,
		config.Name,
	)
}

type dialectPostgres struct {
	config DriverPostgresConfig
}

func (dialect dialectPostgres) name() string {
	return "postgres"
}

func (dialect dialectPostgres) driverName() string {
	return "postgres"
}

func (dialect dialectPostgres) connectionString() string {
	return dialect.config.ConnectionString()
}

func (dialect dialectPostgres) quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (dialect dialectPostgres) usesNumberedParameters() bool {
	return true
}

func (dialect dialectPostgres) beginStatement() string {
	return "BEGIN"
}

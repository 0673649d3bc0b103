package database

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/go-sql-driver/mysql"
)

func NewDriverMySQL(config DriverMySQLConfig) Driver {
	_ = mysql.SetLogger(log.New(io.Discard, "", log.LstdFlags))

	return newSQLDriver(dialectMySQL{config: config})
}

type DriverMySQLConfig struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

func (config DriverMySQLConfig) ConnectionString() string {
	return fmt.Sprintf(
		"%s:%s@(%s:%d)/%s?parseTime=true",
		config.User,
		config.Pass,
		config.Host,
		config.Port,
		config.Name,
	)
}

type dialectMySQL struct {
	config DriverMySQLConfig
}

func (dialect dialectMySQL) name() string {
	return "mysql"
}

func (dialect dialectMySQL) driverName() string {
	return "mysql"
}

func (dialect dialectMySQL) connectionString() string {
	return dialect.config.ConnectionString()
}

func (dialect dialectMySQL) quote(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

func (dialect dialectMySQL) usesNumberedParameters() bool {
	return false
}

func (dialect dialectMySQL) beginStatement() string {
	return "START TRANSACTION"
}

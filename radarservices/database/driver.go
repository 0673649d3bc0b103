package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/lunagic/radar/radar"
	"github.com/lunagic/radar/radarservices/database/internal/utils"
)

var (
	ErrNoTable             = errors.New("query has no table")
	ErrInvalidLimit        = errors.New("limit must not be negative")
	ErrUnsupportedOperator = errors.New("unsupported where operator")
)

type ErrUnsupportedType struct {
	Type string
}

func (err ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported type: %s", err.Type)
}

// Driver is a radar.Driver backed by database/sql. Close shuts down every
// pool the driver opened.
type Driver interface {
	radar.Driver
	ConnectionString() string
	Ping(ctx context.Context) error
	Close() error
}

// dialect is what differs between the SQL databases.
type dialect interface {
	name() string
	driverName() string
	connectionString() string
	quote(identifier string) string
	usesNumberedParameters() bool
	beginStatement() string
}

func newSQLDriver(dialect dialect) *sqlDriver {
	return &sqlDriver{
		dialect: dialect,
		pools:   map[string]*sqlx.DB{},
	}
}

type sqlDriver struct {
	dialect dialect
	mutex   sync.Mutex
	pools   map[string]*sqlx.DB
}

func (driver *sqlDriver) Dialect() string {
	return driver.dialect.name()
}

func (driver *sqlDriver) ConnectionString() string {
	return driver.dialect.connectionString()
}

func (driver *sqlDriver) Compile(ctx context.Context, query radar.Query) (radar.Statement, error) {
	return compile(driver.dialect, query)
}

func (driver *sqlDriver) pool(connectionString string) (*sqlx.DB, error) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	if db, found := driver.pools[connectionString]; found {
		return db, nil
	}

	db, err := sqlx.Open(driver.dialect.driverName(), connectionString)
	if err != nil {
		return nil, err
	}

	driver.pools[connectionString] = db

	return db, nil
}

func (driver *sqlDriver) Ping(ctx context.Context) error {
	db, err := driver.pool(driver.ConnectionString())
	if err != nil {
		return err
	}

	return db.PingContext(ctx)
}

func (driver *sqlDriver) Connect(ctx context.Context, connectionString string) (radar.Connection, error) {
	db, err := driver.pool(connectionString)
	if err != nil {
		return nil, err
	}

	conn, err := db.Connx(ctx)
	if err != nil {
		return nil, err
	}

	return conn, nil
}

func (driver *sqlDriver) Release(ctx context.Context, connection radar.Connection) error {
	conn, err := asConn(connection)
	if err != nil {
		return err
	}

	return conn.Close()
}

func (driver *sqlDriver) Run(ctx context.Context, connection radar.Connection, statement radar.Statement) (radar.Rows, error) {
	conn, err := asConn(connection)
	if err != nil {
		return nil, err
	}

	query, args, err := utils.Prepare(statement.Query, statement.Parameters, driver.dialect.usesNumberedParameters())
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := radar.Rows{}
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}

		for column, value := range row {
			if raw, isBytes := value.([]byte); isBytes {
				row[column] = string(raw)
			}
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (driver *sqlDriver) Begin(ctx context.Context, connection radar.Connection) error {
	return driver.exec(ctx, connection, driver.dialect.beginStatement())
}

func (driver *sqlDriver) Commit(ctx context.Context, connection radar.Connection) error {
	return driver.exec(ctx, connection, "COMMIT")
}

func (driver *sqlDriver) Rollback(ctx context.Context, connection radar.Connection) error {
	return driver.exec(ctx, connection, "ROLLBACK")
}

func (driver *sqlDriver) exec(ctx context.Context, connection radar.Connection, query string) error {
	conn, err := asConn(connection)
	if err != nil {
		return err
	}

	_, err = conn.ExecContext(ctx, query)

	return err
}

func (driver *sqlDriver) Close() error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	errs := []error{}
	for connectionString, db := range driver.pools {
		errs = append(errs, db.Close())
		delete(driver.pools, connectionString)
	}

	return errors.Join(errs...)
}

func asConn(connection radar.Connection) (*sqlx.Conn, error) {
	conn, ok := connection.(*sqlx.Conn)
	if !ok {
		return nil, ErrUnsupportedType{Type: fmt.Sprintf("%T", connection)}
	}

	return conn, nil
}

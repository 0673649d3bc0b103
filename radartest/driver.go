package radartest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/lunagic/radar/radar"
)

const (
	CallCompile  = "compile"
	CallConnect  = "connect"
	CallRelease  = "release"
	CallRun      = "run"
	CallBegin    = "begin"
	CallCommit   = "commit"
	CallRollback = "rollback"
)

// NewDriver returns a driver that answers every Run with rows and records
// each capability it is asked for, in order.
func NewDriver(rows radar.Rows) *Driver {
	return &Driver{
		Rows: rows,
	}
}

// Driver is an in-memory radar.Driver for tests. Setting one of the *Err
// fields makes the matching capability fail with it.
type Driver struct {
	Rows        radar.Rows
	CompileErr  error
	ConnectErr  error
	ReleaseErr  error
	RunErr      error
	BeginErr    error
	CommitErr   error
	RollbackErr error

	mutex       sync.Mutex
	calls       []string
	queries     []radar.Query
	statements  []radar.Statement
	connections []radar.Connection
	nextID      int
}

// Connection is the handle the test driver hands out.
type Connection struct {
	ID int
}

func (driver *Driver) record(call string) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	driver.calls = append(driver.calls, call)
}

// Calls is the ordered log of capabilities used so far.
func (driver *Driver) Calls() []string {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	return slices.Clone(driver.calls)
}

func (driver *Driver) Count(call string) int {
	count := 0
	for _, c := range driver.Calls() {
		if c == call {
			count++
		}
	}

	return count
}

// Queries are the descriptors handed to Compile.
func (driver *Driver) Queries() []radar.Query {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	return slices.Clone(driver.queries)
}

// Statements are the statements handed to Run.
func (driver *Driver) Statements() []radar.Statement {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	return slices.Clone(driver.statements)
}

// Connections are the connections statements were run on.
func (driver *Driver) Connections() []radar.Connection {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	return slices.Clone(driver.connections)
}

func (driver *Driver) Dialect() string {
	return "test"
}

func (driver *Driver) Compile(ctx context.Context, query radar.Query) (radar.Statement, error) {
	driver.record(CallCompile)

	driver.mutex.Lock()
	driver.queries = append(driver.queries, query)
	count := len(driver.queries)
	driver.mutex.Unlock()

	if driver.CompileErr != nil {
		return radar.Statement{}, driver.CompileErr
	}

	return radar.Statement{
		Query:      fmt.Sprintf("statement %d", count),
		Parameters: map[string]any{},
	}, nil
}

func (driver *Driver) Connect(ctx context.Context, connectionString string) (radar.Connection, error) {
	driver.record(CallConnect)
	if driver.ConnectErr != nil {
		return nil, driver.ConnectErr
	}

	driver.mutex.Lock()
	defer driver.mutex.Unlock()
	driver.nextID++

	return &Connection{ID: driver.nextID}, nil
}

func (driver *Driver) Release(ctx context.Context, connection radar.Connection) error {
	driver.record(CallRelease)

	return driver.ReleaseErr
}

func (driver *Driver) Run(ctx context.Context, connection radar.Connection, statement radar.Statement) (radar.Rows, error) {
	driver.record(CallRun)

	driver.mutex.Lock()
	driver.statements = append(driver.statements, statement)
	driver.connections = append(driver.connections, connection)
	driver.mutex.Unlock()

	if driver.RunErr != nil {
		return nil, driver.RunErr
	}

	return driver.Rows, nil
}

func (driver *Driver) Begin(ctx context.Context, connection radar.Connection) error {
	driver.record(CallBegin)

	return driver.BeginErr
}

func (driver *Driver) Commit(ctx context.Context, connection radar.Connection) error {
	driver.record(CallCommit)

	return driver.CommitErr
}

func (driver *Driver) Rollback(ctx context.Context, connection radar.Connection) error {
	driver.record(CallRollback)

	return driver.RollbackErr
}

package radar

import "context"

// Driver is the capability set a datastore has to provide for radar to
// compile and execute queries against it.
type Driver interface {
	Dialect() string
	Compile(ctx context.Context, query Query) (Statement, error)
	Connect(ctx context.Context, connectionString string) (Connection, error)
	Release(ctx context.Context, connection Connection) error
	Run(ctx context.Context, connection Connection, statement Statement) (Rows, error)
	Begin(ctx context.Context, connection Connection) error
	Commit(ctx context.Context, connection Connection) error
	Rollback(ctx context.Context, connection Connection) error
}

// Connection is an opaque handle owned by the driver that produced it.
type Connection any

// Statement is a compiled query. Parameters are keyed by their named
// placeholder (":name") as it appears in Query.
type Statement struct {
	Query      string
	Parameters map[string]any
}

type Row map[string]any

type Rows []Row

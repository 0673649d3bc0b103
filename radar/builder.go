package radar

import (
	"log/slog"
	"slices"

	"github.com/lunagic/radar/radartools"
)

// New builds an empty query for the given driver. Execute needs either a
// connection string or a connection, see WithConnectionString and
// WithConnection.
func New(
	driver Driver,
	configFuncs ...ConfigFunc,
) (*Builder, error) {
	if driver == nil {
		return nil, ErrMissingDriver
	}

	builder := &Builder{
		driver:       driver,
		logger:       slog.Default(),
		preRunFuncs:  []PreRunFunc{},
		postRunFuncs: []PostRunFunc{},
	}

	for _, configFunc := range configFuncs {
		if err := configFunc(builder); err != nil {
			return nil, err
		}
	}

	return builder, nil
}

// Builder accumulates a Query through chained calls. None of the chained
// calls perform I/O, that only happens in Execute. A Builder is not safe for
// concurrent use.
type Builder struct {
	driver           Driver
	connectionString string
	connection       Connection
	transaction      *Transaction
	query            Query
	logger           *slog.Logger
	preRunFuncs      []PreRunFunc
	postRunFuncs     []PostRunFunc
}

// fork returns a builder with the same driver and hooks but an empty query
// and no connection settings.
func (builder *Builder) fork() *Builder {
	return &Builder{
		driver:       builder.driver,
		logger:       builder.logger,
		preRunFuncs:  slices.Clone(builder.preRunFuncs),
		postRunFuncs: slices.Clone(builder.postRunFuncs),
	}
}

// Dialect names the datastore the builder's driver compiles for.
func (builder *Builder) Dialect() string {
	return builder.driver.Dialect()
}

// Logger is the logger Execute reports to.
func (builder *Builder) Logger() *slog.Logger {
	return builder.logger
}

// Select adds columns to the selection, keeping the first position of each.
// A lone Wildcard replaces the selection with every column, and columns
// selected after it replace the wildcard.
func (builder *Builder) Select(columns ...string) *Builder {
	// The wildcard overrides everything else
	if len(columns) == 1 && columns[0] == Wildcard {
		builder.query.Select = &Selection{All: true}
		return builder
	}

	current := []string{}
	if builder.query.Select != nil && !builder.query.Select.All {
		current = builder.query.Select.Columns
	}

	builder.query.Select = &Selection{
		Columns: radartools.Unique(append(slices.Clone(current), columns...)),
	}

	return builder
}

// From sets the table. Once Schema has been called the schema is kept and
// only the table changes.
func (builder *Builder) From(table string) *Builder {
	if builder.query.From == nil || !builder.query.From.Structured {
		builder.query.From = &Source{Table: table}
		return builder
	}

	// Keep the schema that was already attached
	builder.query.From.Table = table

	return builder
}

// Where deep merges criteria into the existing criteria. A nested map is an
// operator map, for example {"age": {">": 18}}.
func (builder *Builder) Where(criteria map[string]any) *Builder {
	builder.query.Where = mergeMaps(builder.query.Where, criteria)

	return builder
}

// Schema promotes the source to its structured form. Called before From it
// leaves the table empty until From is called.
func (builder *Builder) Schema(schema string) *Builder {
	if builder.query.From == nil {
		builder.query.From = &Source{}
	}

	builder.query.From.Schema = schema
	builder.query.From.Structured = true

	return builder
}

// Insert deep merges values into the row to insert, like Where.
func (builder *Builder) Insert(values map[string]any) *Builder {
	builder.query.Insert = mergeMaps(builder.query.Insert, values)

	return builder
}

// Into names the table Insert writes to.
func (builder *Builder) Into(table string) *Builder {
	builder.query.Into = table

	return builder
}

// Limit caps the number of rows returned. The last call wins.
func (builder *Builder) Limit(count int) *Builder {
	builder.query.Limit = &count

	return builder
}

// Query returns a copy of the accumulated descriptor.
func (builder *Builder) Query() Query {
	return builder.query.Clone()
}

// Reset clears the accumulated descriptor. Execute leaves it untouched so it
// can be inspected or run again.
func (builder *Builder) Reset() *Builder {
	builder.query = Query{}

	return builder
}

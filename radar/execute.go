package radar

import (
	"context"
	"errors"
)

// Execute compiles the accumulated query and runs it. With a connection
// string a connection is acquired for this call and always released again,
// with a pinned connection the statement runs on it directly.
func (builder *Builder) Execute(ctx context.Context) (Rows, error) {
	if builder.connectionString == "" && builder.connection == nil {
		return nil, ErrMissingConnection
	}

	if builder.connectionString == "" && builder.transaction != nil && builder.transaction.State() != StateBegun {
		return nil, ErrTransactionClosed
	}

	statement, err := builder.driver.Compile(ctx, builder.query.Clone())
	if err != nil {
		return nil, err
	}

	if builder.connectionString != "" {
		return builder.runAdHoc(ctx, statement)
	}

	return builder.run(ctx, builder.connection, statement)
}

func (builder *Builder) runAdHoc(ctx context.Context, statement Statement) (Rows, error) {
	connection, err := builder.driver.Connect(ctx, builder.connectionString)
	if err != nil {
		return nil, err
	}

	rows, runErr := builder.run(ctx, connection, statement)
	releaseErr := builder.driver.Release(context.WithoutCancel(ctx), connection)

	if err := errors.Join(runErr, releaseErr); err != nil {
		return nil, err
	}

	return rows, nil
}

func (builder *Builder) run(ctx context.Context, connection Connection, statement Statement) (Rows, error) {
	for _, preRunFunc := range builder.preRunFuncs {
		if err := preRunFunc(ctx, statement); err != nil {
			return nil, err
		}
	}

	rows, err := builder.driver.Run(ctx, connection, statement)
	if err != nil {
		return nil, err
	}

	for _, postRunFunc := range builder.postRunFuncs {
		if err := postRunFunc(ctx, statement, rows); err != nil {
			return nil, err
		}
	}

	return rows, nil
}

package radar

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

type TransactionState int

const (
	StateBegun TransactionState = iota
	StateCommitted
	StateRolledBack
)

func (state TransactionState) String() string {
	switch state {
	case StateBegun:
		return "begun"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled back"
	}

	return "unknown"
}

// Begin acquires a connection and opens a transaction on it. If the begin
// statement fails the connection is rolled back and released, and the
// begin error is returned.
func Begin(
	ctx context.Context,
	driver Driver,
	connectionString string,
	configFuncs ...ConfigFunc,
) (*Transaction, error) {
	if connectionString == "" {
		return nil, ErrMissingConnectionString
	}

	base, err := New(driver, configFuncs...)
	if err != nil {
		return nil, err
	}

	connection, err := driver.Connect(ctx, connectionString)
	if err != nil {
		return nil, err
	}

	transaction := &Transaction{
		id:         uuid.NewString(),
		base:       base,
		connection: connection,
		state:      StateBegun,
	}

	if err := driver.Begin(ctx, connection); err != nil {
		cleanupCtx := context.WithoutCancel(ctx)

		// The begin error wins over anything that goes wrong cleaning up
		if rollbackErr := driver.Rollback(cleanupCtx, connection); rollbackErr != nil {
			base.logger.WarnContext(ctx, "Radar Transaction Rollback After Failed Begin",
				"transaction", transaction.id,
				"error", rollbackErr,
			)
		}

		if releaseErr := driver.Release(cleanupCtx, connection); releaseErr != nil {
			base.logger.WarnContext(ctx, "Radar Transaction Release After Failed Begin",
				"transaction", transaction.id,
				"error", releaseErr,
			)
		}

		return nil, err
	}

	base.logger.DebugContext(ctx, "Radar Transaction Begin",
		"transaction", transaction.id,
		"dialect", driver.Dialect(),
	)

	return transaction, nil
}

// Transaction pins a single connection for its lifetime. Commit and Rollback
// are terminal, each releases the connection exactly once.
type Transaction struct {
	id         string
	base       *Builder
	connection Connection
	mutex      sync.Mutex
	state      TransactionState
}

func (transaction *Transaction) ID() string {
	return transaction.id
}

func (transaction *Transaction) State() TransactionState {
	transaction.mutex.Lock()
	defer transaction.mutex.Unlock()

	return transaction.state
}

// Builder returns a new builder bound to the transaction's connection and
// driver.
func (transaction *Transaction) Builder() *Builder {
	builder := transaction.base.fork()
	builder.connection = transaction.connection
	builder.transaction = transaction

	return builder
}

func (transaction *Transaction) Commit(ctx context.Context) error {
	return transaction.finish(ctx, StateCommitted, transaction.base.driver.Commit)
}

func (transaction *Transaction) Rollback(ctx context.Context) error {
	return transaction.finish(ctx, StateRolledBack, transaction.base.driver.Rollback)
}

func (transaction *Transaction) finish(
	ctx context.Context,
	target TransactionState,
	action func(ctx context.Context, connection Connection) error,
) error {
	transaction.mutex.Lock()
	defer transaction.mutex.Unlock()

	if transaction.state != StateBegun {
		return ErrTransactionClosed
	}

	transaction.state = target

	actionErr := action(ctx, transaction.connection)
	releaseErr := transaction.base.driver.Release(context.WithoutCancel(ctx), transaction.connection)
	err := errors.Join(actionErr, releaseErr)

	transaction.base.logger.DebugContext(ctx, "Radar Transaction Finish",
		"transaction", transaction.id,
		"state", target.String(),
		"error", err,
	)

	return err
}

// WithTransaction runs handler inside a transaction. It commits when handler
// returns nil and rolls back when it returns an error or panics. A handler
// may finish the transaction itself.
func WithTransaction(
	ctx context.Context,
	driver Driver,
	connectionString string,
	handler func(ctx context.Context, transaction *Transaction) error,
	configFuncs ...ConfigFunc,
) error {
	transaction, err := Begin(ctx, driver, connectionString, configFuncs...)
	if err != nil {
		return err
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			_ = transaction.Rollback(ctx)
			panic(recovered)
		}
	}()

	if handlerErr := handler(ctx, transaction); handlerErr != nil {
		if transaction.State() != StateBegun {
			return handlerErr
		}

		return errors.Join(handlerErr, transaction.Rollback(ctx))
	}

	if transaction.State() != StateBegun {
		return nil
	}

	return transaction.Commit(ctx)
}

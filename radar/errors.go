package radar

import "errors"

var (
	ErrMissingDriver           = errors.New("missing a driver for radar to use")
	ErrMissingConnection       = errors.New("missing a connection string or connection for radar to use")
	ErrMissingConnectionString = errors.New("missing connection string for radar transaction")
	ErrTransactionClosed       = errors.New("transaction already closed")
)

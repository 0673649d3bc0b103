package radar

import (
	"context"
	"log/slog"
)

type ConfigFunc func(builder *Builder) error

type PreRunFunc func(ctx context.Context, statement Statement) error

type PostRunFunc func(ctx context.Context, statement Statement, rows Rows) error

func WithConnectionString(connectionString string) ConfigFunc {
	return func(builder *Builder) error {
		builder.connectionString = connectionString

		return nil
	}
}

// WithConnection pins the builder to a connection the caller owns, Execute
// will neither acquire nor release it.
func WithConnection(connection Connection) ConfigFunc {
	return func(builder *Builder) error {
		builder.connection = connection

		return nil
	}
}

func WithPreRunFunc(preRunFunc PreRunFunc) ConfigFunc {
	return func(builder *Builder) error {
		builder.preRunFuncs = append(builder.preRunFuncs, preRunFunc)

		return nil
	}
}

func WithPostRunFunc(postRunFunc PostRunFunc) ConfigFunc {
	return func(builder *Builder) error {
		builder.postRunFuncs = append(builder.postRunFuncs, postRunFunc)

		return nil
	}
}

func WithLogger(logger *slog.Logger) ConfigFunc {
	return func(builder *Builder) error {
		builder.logger = logger
		builder.preRunFuncs = append(builder.preRunFuncs, func(ctx context.Context, statement Statement) error {
			logger.InfoContext(ctx, "Radar Run",
				"dialect", builder.driver.Dialect(),
				"statement", statement.Query,
				"args", statement.Parameters,
			)

			return nil
		})

		return nil
	}
}

package queue

import (
	"context"
	"time"

	"github.com/lunagic/radar/radar"
)

// AuditEvent describes one statement that ran successfully.
type AuditEvent struct {
	Dialect    string         `json:"dialect"`
	Query      string         `json:"query"`
	Parameters map[string]any `json:"parameters"`
	RowCount   int            `json:"rowCount"`
	ExecutedAt time.Time      `json:"executedAt"`
}

// WithAudit publishes an AuditEvent to q after every successful run. The
// statement has already run by then, so a failed publish is logged to the
// builder's logger and Execute still succeeds.
func WithAudit(q Queue[AuditEvent]) radar.ConfigFunc {
	return func(builder *radar.Builder) error {
		return radar.WithPostRunFunc(func(ctx context.Context, statement radar.Statement, rows radar.Rows) error {
			messageID, err := q.Publish(ctx, AuditEvent{
				Dialect:    builder.Dialect(),
				Query:      statement.Query,
				Parameters: statement.Parameters,
				RowCount:   len(rows),
				ExecutedAt: time.Now().UTC(),
			})
			if err != nil {
				builder.Logger().WarnContext(ctx, "Radar Audit Dropped",
					"queue", q.Name(),
					"query", statement.Query,
					"error", err,
				)

				return nil
			}

			builder.Logger().DebugContext(ctx, "Radar Audit",
				"queue", q.Name(),
				"message", messageID,
			)

			return nil
		})(builder)
	}
}

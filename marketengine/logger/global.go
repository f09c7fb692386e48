package logger

import (
	"log/slog"
	"time"
)

// LogAction logs one sequenced market action.
func LogAction(id string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "act"),
		slog.String("action_id", id),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Warn("Action rejected", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Info("Action executed", attrs...)
	}
}

// LogQuery logs database operations.
func LogQuery(query string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "db"),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Query failed", append(attrs,
			slog.String("query", query),
			slog.Any("error", err),
		)...)
	} else {
		slog.Debug("Query executed", append(attrs,
			slog.String("query", query),
		)...)
	}
}

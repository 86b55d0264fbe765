package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// sqlLogLimit truncates SQL in log output; staging loads produce
	// statements with thousands of bound values.
	sqlLogLimit = 200

	// slowQueryThreshold flags queries worth a warning even when debug
	// logging is off. Registry-scale batch statements routinely take
	// seconds, so this is deliberately generous.
	slowQueryThreshold = 10 * time.Second
)

// queryLogger routes GORM's internal logging through the process slog
// logger. Level filtering is slog's job; LogMode is a no-op.
type queryLogger struct{}

func (l queryLogger) LogMode(logger.LogLevel) logger.Interface { return l }

func (l queryLogger) Info(_ context.Context, msg string, args ...any) {
	slog.Info(fmt.Sprintf(msg, args...))
}

func (l queryLogger) Warn(_ context.Context, msg string, args ...any) {
	slog.Warn(fmt.Sprintf(msg, args...))
}

func (l queryLogger) Error(_ context.Context, msg string, args ...any) {
	slog.Error(fmt.Sprintf(msg, args...))
}

// Trace runs after every SQL statement. Real errors log at Error level;
// gorm.ErrRecordNotFound is the normal empty result of First() and stays at
// Debug with the successful queries.
func (l queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		slog.Error("query failed",
			"sql", clipSQL(sql), "rows", rows, "duration", elapsed, "error", err)

	case elapsed >= slowQueryThreshold:
		sql, rows := fc()
		slog.Warn("slow query",
			"sql", clipSQL(sql), "rows", rows, "duration", elapsed)

	case slog.Default().Enabled(ctx, slog.LevelDebug):
		sql, rows := fc()
		slog.Debug("query",
			"sql", clipSQL(sql), "rows", rows, "duration", elapsed)
	}
}

// clipSQL keeps the head and tail of an oversized statement. Both ends
// matter: the head names the operation, the tail carries the WHERE.
func clipSQL(sql string) string {
	if len(sql) <= sqlLogLimit {
		return sql
	}
	half := (sqlLogLimit - 3) / 2
	return sql[:half] + "..." + sql[len(sql)-half:]
}

package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	gormlogger "gorm.io/gorm/logger"
)

// sqlLogger writes GORM statement logs through zerolog. Failed statements
// log at error, slow ones at warn and, at Info level, every statement at
// debug. Missing rows are not failures for this store.
type sqlLogger struct {
	zl    zerolog.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func newSQLLogger(zl zerolog.Logger, level gormlogger.LogLevel, slow time.Duration) *sqlLogger {
	return &sqlLogger{zl: zl.With().Str("component", "sql").Logger(), level: level, slow: slow}
}

// sqlLogLevel maps DB_LOG_LEVEL onto GORM levels; unknown values mean warn.
func sqlLogLevel(s string) gormlogger.LogLevel {
	switch s {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (l *sqlLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *sqlLogger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.zl.Info().Msg(fmt.Sprintf(msg, data...))
	}
}

func (l *sqlLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.zl.Warn().Msg(fmt.Sprintf(msg, data...))
	}
}

func (l *sqlLogger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.zl.Error().Msg(fmt.Sprintf(msg, data...))
	}
}

func (l *sqlLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var ev *zerolog.Event
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		ev = l.zl.Error().Err(err)
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		ev = l.zl.Warn().Dur("threshold", l.slow)
	case l.level >= gormlogger.Info:
		ev = l.zl.Debug()
	default:
		return
	}

	sql, rows := fc()
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		ev = ev.Str("trace_id", sc.TraceID().String())
	}
	ev.Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("sql")
}

package db

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

// customLogger wraps GORM's default logger, downgrading schema-mismatch
// messages (unparsable fields, missing columns, unsupported data types,
// and inserts into a missing column) from error-level noise to
// debug-level; everything else goes to the default logger (grounded on
// the teacher's internal/db/custom_logger.go).
type customLogger struct {
	logger.Interface
	slogger *slog.Logger
}

func NewCustomLogger(logLevel logger.LogLevel, slogger *slog.Logger) logger.Interface {
	return &customLogger{
		Interface: logger.Default.LogMode(logLevel),
		slogger:   slogger,
	}
}

func (l *customLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if strings.Contains(msg, "failed to parse field") ||
		(strings.Contains(msg, "column") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "unsupported data type") {
		l.slogger.Debug("gorm field mismatch (expected during migration)", "msg", msg)
		return
	}
	l.Interface.Error(ctx, msg, data...)
}

func (l *customLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	sql, _ := fc()
	if err != nil && strings.Contains(sql, "INSERT INTO") &&
		strings.Contains(err.Error(), "column") && strings.Contains(err.Error(), "does not exist") {
		l.slogger.Debug("schema mismatch on insert (non-critical)", "table", extractTableName(sql), "error", err.Error())
		return
	}
	l.Interface.Trace(ctx, begin, fc, err)
}

func extractTableName(sql string) string {
	parts := strings.Split(sql, " ")
	for i, part := range parts {
		if strings.ToUpper(part) == "INTO" && i+1 < len(parts) {
			return strings.Trim(parts[i+1], "\"")
		}
	}
	return "unknown"
}

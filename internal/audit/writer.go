package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/insforge/core/internal/apperror"
	"gorm.io/gorm"
)

// SecuritySink is the subset of *logging.ClickHouseLogger this package
// needs, accepted as an interface so the optional ClickHouse fan-out
// never becomes a hard dependency of Writer's constructor signature.
type SecuritySink interface {
	LogSecurity(ctx context.Context, entry SecurityEvent) error
}

// SecurityEvent is the shape handed to an optional SecuritySink; callers
// adapt it to logging.SecurityLogEntry (ch: tags) at the fan-out site.
type SecurityEvent struct {
	Timestamp time.Time
	EventType string
	Severity  string
	Actor     string
	Resource  string
	Action    string
	Result    string
	Message   string
	Metadata  map[string]string
}

// Writer implements the Audit Writer (C7): Postgres is the source of
// truth; an optional SecuritySink gets a best-effort fan-out copy.
type Writer struct {
	db     *gorm.DB
	sink   SecuritySink
	logger *slog.Logger
}

// New constructs a Writer. sink may be nil (no ClickHouse configured).
func New(db *gorm.DB, sink SecuritySink, logger *slog.Logger) *Writer {
	return &Writer{db: db, sink: sink, logger: logger}
}

// Write appends one record. Per spec §4.7/§9, this must only ever be
// called after the originating mutation's transaction has committed —
// callers are responsible for that ordering, Write itself has no
// transaction to join. A failed insert is logged and returned as an
// Internal error; callers log or discard it and carry on, so an audit
// write failure never aborts the mutation it describes (§4.7's
// availability-over-completeness tradeoff).
func (w *Writer) Write(ctx context.Context, actor, action, module string, details map[string]any, ipAddress string) error {
	rec := Record{
		ID:        uuid.New().String(),
		Actor:     actor,
		Action:    action,
		Module:    module,
		Details:   details,
		IPAddress: ipAddress,
		CreatedAt: time.Now(),
	}
	if err := w.db.WithContext(ctx).Create(&rec).Error; err != nil {
		w.logger.Error("audit write failed", "action", action, "module", module, "error", err)
		return apperror.Wrap(apperror.Internal, "audit write failed", err)
	}

	if w.sink != nil {
		if err := w.sink.LogSecurity(ctx, SecurityEvent{
			Timestamp: rec.CreatedAt,
			EventType: action,
			Severity:  "info",
			Actor:     actor,
			Resource:  module,
			Action:    action,
			Result:    "success",
		}); err != nil {
			w.logger.Warn("audit clickhouse fan-out failed", "action", action, "error", err)
		}
	}
	return nil
}

// Query implements the filter contract from spec §4.7: results ordered by
// createdAt desc.
func (w *Writer) Query(ctx context.Context, filter Filter) ([]Record, error) {
	q := w.db.WithContext(ctx).Model(&Record{})
	if filter.Actor != "" {
		q = q.Where("actor = ?", filter.Actor)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.Module != "" {
		q = q.Where("module = ?", filter.Module)
	}
	if filter.Start != nil {
		q = q.Where("created_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		q = q.Where("created_at <= ?", *filter.End)
	}
	q = q.Order("created_at desc")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []Record
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperror.Wrap(apperror.Internal, "audit query failed", err)
	}
	return rows, nil
}

// Stats returns per-module counts and the 10 most recent records for the
// last `days` days.
func (w *Writer) Stats(ctx context.Context, days int) (Stats, error) {
	since := time.Now().AddDate(0, 0, -days)

	var byModule []ModuleCount
	if err := w.db.WithContext(ctx).Model(&Record{}).
		Select("module, count(*) as count").
		Where("created_at >= ?", since).
		Group("module").
		Scan(&byModule).Error; err != nil {
		return Stats{}, apperror.Wrap(apperror.Internal, "audit stats query failed", err)
	}

	var recent []Record
	if err := w.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at desc").
		Limit(10).
		Find(&recent).Error; err != nil {
		return Stats{}, apperror.Wrap(apperror.Internal, "audit recent query failed", err)
	}

	return Stats{ByModule: byModule, Recent: recent}, nil
}

// CleanupOlderThan hard-deletes records older than the retention window.
// Default retention is 90 days (spec §4.7); callers pass 0 to use it.
func (w *Writer) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = 90
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	res := w.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&Record{})
	if res.Error != nil {
		return 0, apperror.Wrap(apperror.Internal, "audit cleanup failed", res.Error)
	}
	return res.RowsAffected, nil
}

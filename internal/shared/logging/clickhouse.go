package logging

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseConfig holds ClickHouse connection configuration.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	TLS      bool
}

// ClickHouseLogger is the optional C7 SecuritySink fan-out target:
// Postgres is the audit trail's source of truth (internal/audit.Writer),
// this is a best-effort copy for ClickHouse-backed log aggregation
// (grounded on the teacher's multi-stream ClickHouse logger, trimmed to
// the one stream this module's audit trail actually feeds).
type ClickHouseLogger struct {
	conn   driver.Conn
	config *ClickHouseConfig
}

// SecurityLogEntry represents one security event row.
type SecurityLogEntry struct {
	Timestamp time.Time         `ch:"timestamp"`
	EventType string            `ch:"event_type"`
	Severity  string            `ch:"severity"`
	Actor     string            `ch:"actor"`
	Resource  string            `ch:"resource"`
	Action    string            `ch:"action"`
	Result    string            `ch:"result"`
	Message   string            `ch:"message"`
	Metadata  map[string]string `ch:"metadata"`
}

// NewClickHouseLogger creates a new ClickHouse logger instance.
func NewClickHouseLogger(config *ClickHouseConfig) (*ClickHouseLogger, error) {
	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", config.Host, config.Port)},
		Auth: clickhouse.Auth{
			Database: config.Database,
			Username: config.Username,
			Password: config.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      time.Second * 30,
		MaxOpenConns:     10,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	}

	if config.TLS {
		options.TLS = &tls.Config{InsecureSkipVerify: false}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseLogger{conn: conn, config: config}, nil
}

// LogSecurity inserts one security event row.
func (ch *ClickHouseLogger) LogSecurity(ctx context.Context, entry SecurityLogEntry) error {
	query := `INSERT INTO security_events (
		timestamp, event_type, severity, actor, resource, action, result, message, metadata
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err := ch.conn.Exec(ctx, query,
		entry.Timestamp, entry.EventType, entry.Severity, entry.Actor,
		entry.Resource, entry.Action, entry.Result, entry.Message, entry.Metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to insert security log: %w", err)
	}
	return nil
}

// Close closes the ClickHouse connection.
func (ch *ClickHouseLogger) Close() error {
	if ch.conn != nil {
		return ch.conn.Close()
	}
	return nil
}

// Health checks the health of the ClickHouse connection.
func (ch *ClickHouseLogger) Health(ctx context.Context) error {
	return ch.conn.Ping(ctx)
}

package logging

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/insforge/core/internal/config"
)

// InitializeLogging builds the process-wide slog.Logger and, if
// clickhouse.address is set, the optional ClickHouse security-event
// fan-out logger C7's SecuritySink wraps.
func InitializeLogging(clickHouseCfg config.ClickHouseConfig) (*slog.Logger, *ClickHouseLogger, error) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(getEnv("LOG_LEVEL", "info"))}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))

	if clickHouseCfg.Address == "" {
		return logger, nil, nil
	}

	host, portStr, err := net.SplitHostPort(clickHouseCfg.Address)
	if err != nil {
		host, portStr = clickHouseCfg.Address, "9000"
	}

	chLogger, err := NewClickHouseLogger(&ClickHouseConfig{
		Host:     host,
		Port:     parseInt(portStr, 9000),
		Database: clickHouseCfg.Database,
		Username: clickHouseCfg.User,
		Password: clickHouseCfg.Password,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize ClickHouse logger: %w", err)
	}
	return logger, chLogger, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

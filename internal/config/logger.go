package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds the service logger. Production writes JSON at info,
// other environments write text at debug with source locations in
// development. LOG_LEVEL overrides the level when it names a slog level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: c.IsDevelopment(),
		Level:     c.logLevel(),
	}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if c.IsProduction() {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("service", "idverify"))
}

func (c *Config) logLevel() slog.Level {
	level := slog.LevelDebug
	if c.IsProduction() {
		level = slog.LevelInfo
	}
	if c.LogLevel != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err == nil {
			level = parsed
		}
	}
	return level
}

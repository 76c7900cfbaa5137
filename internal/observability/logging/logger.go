package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger builds the structured logger shared by the api and worker
// binaries. Every record carries the service name; unknown levels fall back
// to info.
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromString(level),
	})
	return slog.New(handler).With(slog.String("service", service))
}

func levelFromString(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/san-kum/isingsim/internal/config"
)

// New creates a JSON slog.Logger on stderr, teeing into a rotated file when
// cfg.File is set.
func New(cfg config.LoggingConfig) *slog.Logger {
	return slog.New(slog.NewJSONHandler(writer(cfg, os.Stderr), &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}))
}

func writer(cfg config.LoggingConfig, console io.Writer) io.Writer {
	if cfg.File == "" {
		return console
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		// Fallback to the console if the directory cannot be created
		return console
	}

	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	fileLogger := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize, // Megabytes
		MaxBackups: cfg.MaxBackups,
		MaxAge:     28, // Days
		Compress:   true,
	}
	return io.MultiWriter(console, fileLogger)
}

func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Package logging configures structured JSON logging for openswap commands.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures slog to emit structured JSON to stdout and installs the
// result as the default logger. Lines carry the service name and, when given,
// the environment.
func Setup(service, env string) *slog.Logger {
	return setup(os.Stdout, service, env)
}

// SetupFile is Setup writing to a size-rotated log file instead of stdout.
func SetupFile(service, env, path string) *slog.Logger {
	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    64, // megabytes
		MaxBackups: 5,
		Compress:   true,
	}
	return setup(sink, service, env)
}

func setup(sink io.Writer, service, env string) *slog.Logger {
	handler := slog.NewJSONHandler(sink, &slog.HandlerOptions{
		ReplaceAttr: renameAttrs,
	})

	attrs := []slog.Attr{slog.String("service", strings.TrimSpace(service))}
	if env = strings.TrimSpace(env); env != "" {
		attrs = append(attrs, slog.String("env", env))
	}
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}

	base := slog.New(handler).With(args...)
	slog.SetDefault(base)

	// Route the standard library logger through the same handler so package
	// code using log.Printf stays structured.
	bridge := slog.NewLogLogger(handler.WithAttrs(attrs), slog.LevelInfo)
	bridge.SetFlags(0)
	log.SetOutput(bridge.Writer())
	log.SetFlags(0)
	log.SetPrefix("")

	return base
}

func renameAttrs(groups []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		return slog.Attr{Key: "timestamp", Value: attr.Value}
	case slog.LevelKey:
		return slog.String("severity", strings.ToUpper(attr.Value.String()))
	case slog.MessageKey:
		return slog.Attr{Key: "message", Value: attr.Value}
	}
	return attr
}

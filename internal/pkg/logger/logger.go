package logger

import (
	"io"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/go-chi/httplog/v3"
)

// New builds the JSON logger shared by the process and the HTTP access log.
// Attributes follow the ECS schema so both streams line up.
func New(w io.Writer, appCfg config.AppConfig, service string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(appCfg.Env != "production")

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(appCfg.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", service),
		slog.String("env", appCfg.Env),
	)
}

func ParseLevel(level string) slog.Level {
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

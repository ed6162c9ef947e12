// Package main is the entry point for the Akeneo to commercetools sync.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/composable-com/ct-connect-akeneo/cmd/akeneo-sync/app"
	"github.com/composable-com/ct-connect-akeneo/internal/config"
)

// getLogLevel reads AKENEO_SYNC_LOG_LEVEL, falling back to LOG_LEVEL.
func getLogLevel(v *viper.Viper) slog.Level {
	levelStr := v.GetString("LOG_LEVEL")
	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}
	return config.ParseLogLevel(levelStr)
}

// traceHandler wraps an slog.Handler to automatically inject OpenTelemetry
// trace_id and span_id into every log record, enabling log-trace correlation.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

func main() {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Logs go to stderr to keep stdout clean for commands that output data
	baseHandler, closeLog := config.NewLogHandler(v.GetString("LOG_FILE"), getLogLevel(v))
	slog.SetDefault(slog.New(&traceHandler{Handler: baseHandler}))

	err := app.NewRootCmd().Execute()
	_ = closeLog()
	if err != nil {
		os.Exit(1)
	}
}

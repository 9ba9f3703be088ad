package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// ServiceName tags OTel log records and GELF messages.
const ServiceName = "monbattle"

// consoleOut is swapped by tests.
var consoleOut io.Writer = os.Stdout

// Options configures SlogManager.Setup. Every writer is optional; without
// File the console receives the output.
type Options struct {
	Level    string
	File     io.Writer
	Graylog  io.Writer
	Provider *sdklog.LoggerProvider
	// Context adds dynamic attributes (battle ID, turn) to every record.
	Context ContextProvider
}

// SlogManager manages slog-based logging with optional OTel integration.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds the handler chain. Calling it again replaces the logger.
func (m *SlogManager) Setup(opts Options) {
	lvl := parseLevel(opts.Level)
	m.logProvider = opts.Provider

	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler
	if opts.File != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.File, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(consoleOut, handlerOpts))
	}
	if opts.Graylog != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.Graylog, handlerOpts))
	}
	if opts.Provider != nil {
		handlers = append(handlers, otelslog.NewHandler(ServiceName, otelslog.WithLoggerProvider(opts.Provider)))
	}

	var h slog.Handler = NewMultiHandler(handlers...)
	if opts.Context != nil {
		h = NewContextHandler(h, opts.Context)
	}

	m.logger = slog.New(h)
	m.logger.Info("Logging initialized", "level", opts.Level)
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}

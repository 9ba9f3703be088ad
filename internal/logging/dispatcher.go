package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewZerolog builds a console-format zerolog logger for components that
// log through zerolog (dispatcher, database, influx). ctx may be nil.
func NewZerolog(out io.Writer, level string, ctx *BattleContext) zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}).Level(zerologLevel(level)).With().Timestamp().Logger()

	if ctx == nil {
		return logger
	}
	return logger.Hook(zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
		if id, turn := ctx.Current(); id != "" {
			e.Str("battleId", id).Int("turn", turn)
		}
	}))
}

// Sampled wraps logger so bursts of per-turn debug lines are thinned:
// five records per period, then one in n.
func Sampled(logger zerolog.Logger, period time.Duration, n uint32) zerolog.Logger {
	return logger.With().Bool("sampled", true).Logger().Sample(&zerolog.BurstSampler{
		Burst:       5,
		Period:      period,
		NextSampler: &zerolog.BasicSampler{N: n},
	})
}

func zerologLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// DispatcherLogger adapts zerolog.Logger to the dispatcher.Logger interface.
type DispatcherLogger struct {
	logger zerolog.Logger
}

// NewDispatcherLogger creates a new DispatcherLogger wrapping a zerolog.Logger.
func NewDispatcherLogger(logger zerolog.Logger) *DispatcherLogger {
	return &DispatcherLogger{logger: logger.With().Str("component", "dispatcher").Logger()}
}

// Debug logs a debug message with optional key-value pairs.
func (l *DispatcherLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(toFields(keysAndValues)).Msg(msg)
}

// Info logs an info message with optional key-value pairs.
func (l *DispatcherLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info().Fields(toFields(keysAndValues)).Msg(msg)
}

// Error logs an error message with optional key-value pairs.
func (l *DispatcherLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error().Fields(toFields(keysAndValues)).Msg(msg)
}

// toFields converts key-value pairs to a map for zerolog.
func toFields(keysAndValues []any) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}

package sdk

import (
	"context"

	"go.uber.org/zap"
)

// Logger is the structured logger used by migrations and chain clients.
type Logger interface {
	Infof(template string, args ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

type contextLoggerValueT string

const ContextLoggerValue = contextLoggerValueT("market-updates-logger")

// ContextWithLogger returns a copy of ctx carrying lggr.
func ContextWithLogger(ctx context.Context, lggr Logger) context.Context {
	return context.WithValue(ctx, ContextLoggerValue, lggr)
}

// LoggerFrom returns the logger stored in ctx, or a production zap logger.
func LoggerFrom(ctx context.Context) Logger {
	value := ctx.Value(ContextLoggerValue)
	logger, ok := value.(Logger)
	if !ok {
		logger = zap.Must(zap.NewProduction()).Sugar()
	}

	return logger
}

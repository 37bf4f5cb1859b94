package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// Adapter exposes a zerolog.Logger through the key/value logging interfaces of the arrivals packages.
type Adapter struct {
	logger zerolog.Logger
}

// NewAdapter wraps logger.
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// Debug logs at debug level; args are alternating keys and values.
func (a *Adapter) Debug(msg string, args ...any) {
	a.write(a.logger.Debug(), msg, args)
}

// Info logs at info level.
func (a *Adapter) Info(msg string, args ...any) {
	a.write(a.logger.Info(), msg, args)
}

// Warn logs at warn level.
func (a *Adapter) Warn(msg string, args ...any) {
	a.write(a.logger.Warn(), msg, args)
}

// Error logs at error level.
func (a *Adapter) Error(msg string, args ...any) {
	a.write(a.logger.Error(), msg, args)
}

// DebugContext logs at debug level, using the logger stored in ctx when there is one.
func (a *Adapter) DebugContext(ctx context.Context, msg string, args ...any) {
	a.write(a.fromContext(ctx).Debug(), msg, args)
}

// InfoContext logs at info level, using the logger stored in ctx when there is one.
func (a *Adapter) InfoContext(ctx context.Context, msg string, args ...any) {
	a.write(a.fromContext(ctx).Info(), msg, args)
}

// WarnContext logs at warn level, using the logger stored in ctx when there is one.
func (a *Adapter) WarnContext(ctx context.Context, msg string, args ...any) {
	a.write(a.fromContext(ctx).Warn(), msg, args)
}

// ErrorContext logs at error level, using the logger stored in ctx when there is one.
func (a *Adapter) ErrorContext(ctx context.Context, msg string, args ...any) {
	a.write(a.fromContext(ctx).Error(), msg, args)
}

func (a *Adapter) fromContext(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}

	return &a.logger
}

func (a *Adapter) write(event *zerolog.Event, msg string, args []any) {
	if event == nil {
		return
	}

	if len(args)%2 == 1 {
		args = append(args, "!MISSING")
	}

	event.Fields(args).Msg(msg)
}

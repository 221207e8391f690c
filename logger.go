package jwtstrategy

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// Logger defines an optional logging interface compatible with
// log/slog: a message followed by alternating key/value pairs. All
// call sites are nil-safe, so logging stays off unless configured.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NewLogrusLogger returns a Logger adapter for logrus.FieldLogger.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return &logrusAdapter{l: l}
}

type logrusAdapter struct{ l logrus.FieldLogger }

func (a *logrusAdapter) Debug(msg string, args ...any) { a.l.WithFields(fields(args)).Debug(msg) }
func (a *logrusAdapter) Info(msg string, args ...any)  { a.l.WithFields(fields(args)).Info(msg) }
func (a *logrusAdapter) Warn(msg string, args ...any)  { a.l.WithFields(fields(args)).Warn(msg) }
func (a *logrusAdapter) Error(msg string, args ...any) { a.l.WithFields(fields(args)).Error(msg) }

// NewZapLogger returns a Logger adapter for zap.SugaredLogger.
func NewZapLogger(l *zap.SugaredLogger) Logger {
	return &zapAdapter{l: l}
}

type zapAdapter struct{ l *zap.SugaredLogger }

func (a *zapAdapter) Debug(msg string, args ...any) { a.l.Debugw(msg, args...) }
func (a *zapAdapter) Info(msg string, args ...any)  { a.l.Infow(msg, args...) }
func (a *zapAdapter) Warn(msg string, args ...any)  { a.l.Warnw(msg, args...) }
func (a *zapAdapter) Error(msg string, args ...any) { a.l.Errorw(msg, args...) }

// NewZerologLogger returns a Logger adapter for zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologAdapter{l: l}
}

type zerologAdapter struct{ l zerolog.Logger }

func (a *zerologAdapter) Debug(msg string, args ...any) { zerologEmit(a.l.Debug(), msg, args) }
func (a *zerologAdapter) Info(msg string, args ...any)  { zerologEmit(a.l.Info(), msg, args) }
func (a *zerologAdapter) Warn(msg string, args ...any)  { zerologEmit(a.l.Warn(), msg, args) }
func (a *zerologAdapter) Error(msg string, args ...any) { zerologEmit(a.l.Error(), msg, args) }

func zerologEmit(ev *zerolog.Event, msg string, args []any) {
	for k, v := range fields(args) {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

// fields converts slog-style alternating key/value args into a field
// map. A trailing key without a value is kept with a nil value.
func fields(args []any) map[string]any {
	m := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 < len(args) {
			m[key] = args[i+1]
		} else {
			m[key] = nil
		}
	}
	return m
}

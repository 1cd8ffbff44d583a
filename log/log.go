// Package log provides the logging surface used throughout the executor
// factory build pipeline.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level name constants accepted by SetLevel.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var zapLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Logger is the logging interface used by every package in this module.
// You may replace Default with any implementation satisfying it.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// With returns a child logger that annotates every line with the given
	// key/value pairs (e.g. backend name, op-sequence index).
	With(args ...any) Logger
}

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "lvl",
	NameKey:        "name",
	CallerKey:      "caller",
	MessageKey:     "message",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalColorLevelEncoder,
	EncodeTime:     zapcore.RFC3339TimeEncoder,
	EncodeDuration: zapcore.SecondsDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

type sugaredLogger struct {
	s *zap.SugaredLogger
}

func newSugared() *sugaredLogger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zapLevel,
	)
	return &sugaredLogger{s: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()}
}

func (l *sugaredLogger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l *sugaredLogger) Infof(format string, args ...any)  { l.s.Infof(format, args...) }
func (l *sugaredLogger) Warnf(format string, args ...any)  { l.s.Warnf(format, args...) }
func (l *sugaredLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }

func (l *sugaredLogger) With(args ...any) Logger {
	return &sugaredLogger{s: l.s.With(args...)}
}

// Default is the package-level logger used by the factory, executor and
// tensor packages.
var Default Logger = newSugared()

// SetLevel sets the log level. Unrecognized levels fall back to info.
func SetLevel(level string) {
	switch level {
	case LevelDebug:
		zapLevel.SetLevel(zapcore.DebugLevel)
	case LevelInfo:
		zapLevel.SetLevel(zapcore.InfoLevel)
	case LevelWarn:
		zapLevel.SetLevel(zapcore.WarnLevel)
	case LevelError:
		zapLevel.SetLevel(zapcore.ErrorLevel)
	default:
		zapLevel.SetLevel(zapcore.InfoLevel)
	}
}

// Debugf logs at debug level on Default.
func Debugf(format string, args ...any) { Default.Debugf(format, args...) }

// Infof logs at info level on Default.
func Infof(format string, args ...any) { Default.Infof(format, args...) }

// Warnf logs at warn level on Default.
func Warnf(format string, args ...any) { Default.Warnf(format, args...) }

// Errorf logs at error level on Default.
func Errorf(format string, args ...any) { Default.Errorf(format, args...) }

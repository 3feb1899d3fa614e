// Package logger provides named, colored loggers backed by zap.
package logger

import (
	"errors"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const colorReset = "\033[0m"

var ErrEmptyName = errors.New("logger name is empty")

// Logger writes leveled messages prefixed with a colored component name.
type Logger struct {
	sugar *zap.SugaredLogger
}

type options struct {
	filePath string
	level    zapcore.Level
	noStdout bool
}

// Option configures a Logger.
type Option func(*options)

// WithFile tees the log into a size-rotated file.
func WithFile(path string) Option {
	return func(o *options) {
		o.filePath = path
	}
}

// WithFileOnly writes only to the rotated file. Used when the terminal belongs to a renderer.
func WithFileOnly(path string) Option {
	return func(o *options) {
		o.filePath = path
		o.noStdout = true
	}
}

// WithLevel sets the minimum level ("debug", "info", "warn", "error").
// Unknown levels keep the default of info.
func WithLevel(level string) Option {
	return func(o *options) {
		if l, err := zapcore.ParseLevel(level); err == nil {
			o.level = l
		}
	}
}

// New creates a logger named name whose name is printed in color to out.
func New(name, color string, out io.Writer, opts ...Option) (*Logger, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	o := &options{level: zapcore.InfoLevel}
	for _, opt := range opts {
		opt(o)
	}

	cores := make([]zapcore.Core, 0, 2)
	if out != nil && !o.noStdout {
		cfg := encoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeName = func(n string, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(color + "[" + n + "]" + colorReset)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(out), o.level))
	}

	if o.filePath != "" {
		lj := &lumberjack.Logger{
			Filename:   o.filePath,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(lj), o.level))
	}

	return &Logger{sugar: zap.New(zapcore.NewTee(cores...)).Named(name).Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeName:    zapcore.FullNameEncoder,
	}
}

func (l *Logger) Debug(msg string)   { l.sugar.Debug(msg) }
func (l *Logger) Info(msg string)    { l.sugar.Info(msg) }
func (l *Logger) Warning(msg string) { l.sugar.Warn(msg) }
func (l *Logger) Error(msg string)   { l.sugar.Error(msg) }

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process logger.
type Options struct {
	Debug bool

	// FilePath enables a rolling JSON log file next to stdout when set.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewProductionLogger creates a production-ready logger with JSON encoding on stdout
func NewProductionLogger(debugMode bool) (*zap.Logger, error) {
	return New(Options{Debug: debugMode})
}

// New builds a JSON logger writing to stdout and, when FilePath is set, to a
// size-rotated file as well.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Debug {
		level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	encoder := zapcore.NewJSONEncoder(encoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	if opts.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// Sync flushes any buffered log entries. It's safe to call Sync() multiple times.
func Sync(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	return logger.Sync()
}

// Package logging builds the CLI's zap logger: a console core on stderr and,
// when a log file is configured, a JSON core writing to a rotating file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/javajack/deliverables/internal/config"
)

// Logger is a zap logger together with the file it may own.
type Logger struct {
	*zap.Logger
	file io.Closer
}

// New creates the logger. The console only shows warnings unless verbose is
// set, since status lines already report progress; the file gets cfg.Level.
// console defaults to os.Stderr.
func New(cfg config.LogConfig, verbose bool, console io.Writer) (*Logger, error) {
	if console == nil {
		console = os.Stderr
	}
	consoleLevel := zapcore.WarnLevel
	if verbose {
		consoleLevel = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(zapcore.AddSync(console)), consoleLevel),
	}

	l := &Logger{}
	if cfg.File != "" {
		fileLevel, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge, // days
			LocalTime:  true,
		}
		l.file = rotator
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			fileLevel,
		))
	}
	l.Logger = zap.New(zapcore.NewTee(cores...))
	return l, nil
}

// Close flushes the logger and closes the log file, if any.
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

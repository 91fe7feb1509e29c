package contract

import (
	"os"
	"sync"

	"github.com/huangsam/benchtable/schema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	loggerMu sync.RWMutex
	logger   = zap.NewNop()
	logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// Logger returns the process-wide logger.
func Logger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger replaces the process-wide logger and returns the previous one.
func SetLogger(l *zap.Logger) *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	prev := logger
	logger = l
	return prev
}

// InitLogger builds the process-wide logger for the given encoding. Quiet mode
// only lets warnings and errors through.
func InitLogger(format schema.LogFormat, quiet bool) error {
	config := zap.NewProductionConfig()
	config.Level = logLevel
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.DisableStacktrace = true
	config.Sampling = nil
	if format != schema.JSONLog {
		config.Encoding = "console"
		config.EncoderConfig.TimeKey = ""
		config.EncoderConfig.CallerKey = ""
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	SetQuiet(quiet)

	l, err := config.Build()
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// SetQuiet raises the log level to warnings when quiet is set.
func SetQuiet(quiet bool) {
	if quiet {
		logLevel.SetLevel(zap.WarnLevel)
	} else {
		logLevel.SetLevel(zap.InfoLevel)
	}
}

// SyncLogger flushes buffered log entries.
func SyncLogger() {
	_ = Logger().Sync()
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger().Error(msg, zap.Error(err))
	SyncLogger()
	os.Exit(1)
}

// LogWarn logs a warning message.
func LogWarn(msg string, err error) {
	Logger().Warn(msg, zap.Error(err))
}

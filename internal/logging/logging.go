package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logPrefix = "kgit"

type AppLogger struct {
	logger *log.Logger
	debug  bool
	closer io.Closer
}

// Options controls how NewAppLoggerWithOptions builds a logger.
type Options struct {
	Debug   bool   // debug level with caller info
	Verbose bool   // info level instead of warn
	LogFile string // debug output goes here instead of stderr when set
}

var (
	defaultLogger *AppLogger
	mu            sync.Mutex
)

// GetDefault returns the default logger instance (singleton-like for convenience)
func GetDefault() *AppLogger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewAppLogger()
	}
	return defaultLogger
}

// SetDefault replaces the logger used by the package-level functions.
func SetDefault(l *AppLogger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// Package-level convenience functions for quick logging
func Info(msg string, keyvals ...interface{}) {
	GetDefault().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	GetDefault().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	GetDefault().Error(msg, keyvals...)
}

func Debug(msg string, keyvals ...interface{}) {
	GetDefault().Debug(msg, keyvals...)
}

func LogPerformance(operation string, start time.Time) {
	GetDefault().LogPerformance(operation, start)
}

// NewAppLogger builds a logger from the environment: KGIT_DEBUG or DEBUG enable
// debug output, KGIT_LOG_FILE redirects it to a file.
func NewAppLogger() *AppLogger {
	return NewAppLoggerWithOptions(Options{
		Debug:   os.Getenv("KGIT_DEBUG") != "" || os.Getenv("DEBUG") != "",
		LogFile: os.Getenv("KGIT_LOG_FILE"),
	})
}

func NewAppLoggerWithOptions(opts Options) *AppLogger {
	var logger *log.Logger
	var closer io.Closer

	if opts.Debug {
		var out io.Writer = os.Stderr
		if opts.LogFile != "" {
			rotating := newRotatingFile(opts.LogFile)
			out = rotating
			closer = rotating
		}

		logger = log.NewWithOptions(out, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Prefix:          logPrefix,
		})
		logger.SetLevel(log.DebugLevel)

		if opts.LogFile != "" {
			logger.Info("Debug logging enabled", "log_file", opts.LogFile)
		}
	} else {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          logPrefix,
		})
		if opts.Verbose {
			logger.SetLevel(log.InfoLevel)
		} else {
			logger.SetLevel(log.WarnLevel)
		}
	}

	return &AppLogger{
		logger: logger,
		debug:  opts.Debug,
		closer: closer,
	}
}

// newRotatingFile opens the debug log with size-based rotation. Limits can be
// overridden with KGIT_LOG_MAX_SIZE (MB), KGIT_LOG_MAX_BACKUPS and KGIT_LOG_MAX_AGE (days).
func newRotatingFile(path string) *lumberjack.Logger {
	l := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1,
		MaxBackups: 2,
		MaxAge:     30,
	}

	if v, err := strconv.Atoi(os.Getenv("KGIT_LOG_MAX_SIZE")); err == nil && v > 0 {
		l.MaxSize = v
	}
	if v, err := strconv.Atoi(os.Getenv("KGIT_LOG_MAX_BACKUPS")); err == nil && v >= 0 {
		l.MaxBackups = v
	}
	if v, err := strconv.Atoi(os.Getenv("KGIT_LOG_MAX_AGE")); err == nil && v > 0 {
		l.MaxAge = v
	}

	return l
}

// Close releases the debug log file, if any.
func (al *AppLogger) Close() error {
	if al == nil || al.closer == nil {
		return nil
	}
	return al.closer.Close()
}

// IsDebug reports whether debug output is enabled.
func (al *AppLogger) IsDebug() bool {
	return al != nil && al.debug
}

func (al *AppLogger) Info(msg string, keyvals ...interface{}) {
	al.logger.Info(msg, keyvals...)
}

func (al *AppLogger) Warn(msg string, keyvals ...interface{}) {
	al.logger.Warn(msg, keyvals...)
}

func (al *AppLogger) Error(msg string, keyvals ...interface{}) {
	al.logger.Error(msg, keyvals...)
}

func (al *AppLogger) Debug(msg string, keyvals ...interface{}) {
	if al.debug {
		al.logger.Debug(msg, keyvals...)
	}
}

// Pretty print any object
func (al *AppLogger) DebugObject(name string, obj interface{}) {
	if al.debug {
		al.logger.Debug("Object dump", "name", name, "object", fmt.Sprintf("%+v", obj))
	}
}

// Log performance metrics
func (al *AppLogger) LogPerformance(operation string, start time.Time) {
	if al.debug {
		duration := time.Since(start)
		al.logger.Debug("Performance",
			"operation", operation,
			"duration", duration,
		)
	}
}

// LogBranchSwitch records a change of the checked-out branch
func (al *AppLogger) LogBranchSwitch(from, to string) {
	if al.debug {
		al.logger.Debug("Branch switch",
			"from", from,
			"to", to,
		)
	}
}

// Testing Helper - NewTestLogger creates a logger that writes to a buffer for testing
func NewTestLogger() (*AppLogger, *bytes.Buffer) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
		Prefix:          "Test",
	})
	logger.SetLevel(log.DebugLevel)

	return &AppLogger{
		logger: logger,
		debug:  true,
	}, &buf
}

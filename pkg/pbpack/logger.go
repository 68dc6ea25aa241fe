package pbpack

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/Mearman/PebbleOS/internal/common"
)

// DefaultLogger implements the Logger interface with structured JSON logging.
type DefaultLogger struct {
	level  common.LogLevel
	logger *log.Logger
}

// NewDefaultLogger creates a new default logger at info level.
func NewDefaultLogger() common.Logger {
	return NewDefaultLoggerWithLevel(common.LogLevelInfo)
}

// NewDefaultLoggerWithLevel creates a logger with a specific log level.
func NewDefaultLoggerWithLevel(level common.LogLevel) common.Logger {
	return &DefaultLogger{
		level:  level,
		logger: log.New(os.Stderr, "", 0),
	}
}

// Debug logs a debug message.
func (l *DefaultLogger) Debug(msg string, fields ...interface{}) {
	if l.level <= common.LogLevelDebug {
		l.log("DEBUG", msg, fields...)
	}
}

// Info logs an info message.
func (l *DefaultLogger) Info(msg string, fields ...interface{}) {
	if l.level <= common.LogLevelInfo {
		l.log("INFO", msg, fields...)
	}
}

// Warn logs a warning message.
func (l *DefaultLogger) Warn(msg string, fields ...interface{}) {
	if l.level <= common.LogLevelWarn {
		l.log("WARN", msg, fields...)
	}
}

// Error logs an error message.
func (l *DefaultLogger) Error(msg string, fields ...interface{}) {
	if l.level <= common.LogLevelError {
		l.log("ERROR", msg, fields...)
	}
}

// log formats and outputs a log message.
func (l *DefaultLogger) log(level, msg string, fields ...interface{}) {
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level,
		"message":   msg,
	}

	// Process fields as key-value pairs
	for i := 0; i < len(fields)-1; i += 2 {
		if key, ok := fields[i].(string); ok {
			entry[key] = fields[i+1]
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.Printf(`{"level":"ERROR","message":"failed to marshal log entry","error":"%s"}`, err)
		return
	}

	l.logger.Println(string(data))
}

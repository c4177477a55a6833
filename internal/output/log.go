// SPDX-License-Identifier: AGPL-3.0-or-later

// Package output provides the process-wide logger.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the global logger instance.
var Logger *log.Logger

var stdout io.Writer = os.Stdout

func init() {
	Logger = NewLogger(os.Stderr, false)
}

// NewLogger builds a logger writing to w. Verbose loggers log at debug level
// and report timestamps and callers.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: verbose,
		ReportCaller:    verbose,
	})
}

// SetupLogging configures the global logger based on verbosity.
func SetupLogging(verbose bool) {
	Logger = NewLogger(os.Stderr, verbose)
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// SetOutput redirects Println, usually to a command's output stream.
func SetOutput(w io.Writer) {
	stdout = w
}

// Println prints a message to stdout with a newline.
func Println(msg string) {
	_, _ = io.WriteString(stdout, msg+"\n")
}

// Package logger configures the command line logger.
package logger

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// New creates a logger writing to w, and makes it the default logger.
// Debug messages, which carry all compiler and engine tracing, are only
// shown when verbose.
func New(w io.Writer, verbose, noColor bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		Prefix:          "gotrig",
	})

	l.SetLevel(log.InfoLevel)
	if verbose {
		l.SetLevel(log.DebugLevel)
	}

	l.SetColorProfile(termenv.ANSI256)
	if noColor {
		l.SetColorProfile(termenv.Ascii)
	}

	log.SetDefault(l)
	return l
}

// Logf adapts l to the printf-style trace functions taken by WithLogf
// options, logging at debug level.
func Logf(l *log.Logger) func(mess string, args ...interface{}) {
	return func(mess string, args ...interface{}) {
		l.Debugf(mess, args...)
	}
}

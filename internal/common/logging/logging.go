// Package logging configures logrus for the clustersim binaries and provides helpers shared by the library
// packages, which never write to the standard logger directly.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const Stacktrace = "stacktrace"

// NullLogger discards everything. Library code defaults to it when no logger is supplied.
var NullLogger = &log.Logger{
	Out:       io.Discard,
	Formatter: new(log.TextFormatter),
	Hooks:     make(log.LevelHooks),
	Level:     log.PanicLevel,
}

// NullEntry returns an entry backed by NullLogger.
func NullEntry() *log.Entry {
	return log.NewEntry(NullLogger)
}

// CommandLineFormatter prints only the message, used for output meant to be read by a person at a terminal.
type CommandLineFormatter struct{}

func (f *CommandLineFormatter) Format(entry *log.Entry) ([]byte, error) {
	return []byte(fmt.Sprintf("%s\n", entry.Message)), nil
}

// ConfigureCommandLineLogging sets up the standard logger for the clustersim binary.
// If plain is set, only messages are printed; otherwise the full text format with timestamps is used.
func ConfigureCommandLineLogging(level string, plain bool) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.WithStack(err)
	}
	if plain {
		log.SetFormatter(&CommandLineFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: true})
	}
	log.SetOutput(os.Stdout)
	log.SetLevel(lvl)
	return nil
}

// Unexported but considered part of the stable interface of pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Unexported but considered part of the stable interface of pkg/errors.
type causer interface {
	Cause() error
}

// WithStacktrace returns a new log.Entry obtained by adding error information and, if available, a stack trace
// as fields to the provided entry.
func WithStacktrace(logger *log.Entry, err error) *log.Entry {
	logger = logger.WithError(err)
	stack := ExtractStack(err)
	if stack != nil {
		logger = logger.WithField(Stacktrace, stack)
	}
	return logger
}

// ExtractStack walks down the list of errors and retrieves the first errors.StackTrace it encounters.
// If no stacktraces are found, it returns nil.
func ExtractStack(err error) errors.StackTrace {
	if stackErr, ok := err.(stackTracer); ok {
		return stackErr.StackTrace()
	} else if causeErr, ok := err.(causer); ok {
		return ExtractStack(causeErr.Cause())
	}
	return nil
}

// OrNull returns logger, or an entry that discards everything if logger is nil.
func OrNull(logger *log.Entry) *log.Entry {
	if logger == nil {
		return NullEntry()
	}
	return logger
}

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and is instantiated at package initialization.
// Each module/package should create its own sub-logger. This allows to create unique logging instances depending
// on the use case.
var GlobalLogger = NewLogger(zerolog.Disabled, false)

// Logger describes a custom logging object that can log events to any arbitrary channel and can handle specialized
// output to console as well.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// multiLogger describes a logger that will be used to output logs to any arbitrary channel(s) in structured format.
	multiLogger zerolog.Logger

	// consoleLogger describes a logger that will be used to output unstructured output to console.
	consoleLogger zerolog.Logger

	// writers describes a list of io.Writer objects where log output will go.
	writers []io.Writer
}

// NewLogger will create a new Logger object with a specific log level. The Logger can output to console, if enabled,
// and output logs to any number of arbitrary io.Writer channels.
func NewLogger(level zerolog.Level, consoleEnabled bool, writers ...io.Writer) *Logger {
	// The two base loggers are effectively loggers that are disabled.
	// We are creating instances of them so that we do not get nil pointer dereferences down the line.
	baseMultiLogger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	baseConsoleLogger := zerolog.New(os.Stdout).Level(zerolog.Disabled)

	// If we are provided a list of writers, update the multi logger.
	if len(writers) > 0 {
		baseMultiLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	}

	// If console logging is enabled, update the console logger.
	if consoleEnabled {
		consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout}
		baseConsoleLogger = zerolog.New(consoleWriter).Level(level)
	}

	return &Logger{
		level:         level,
		multiLogger:   baseMultiLogger,
		consoleLogger: baseConsoleLogger,
		writers:       writers,
	}
}

// NewSubLogger will create a new Logger with unique context in the form of a key-value pair. The expected use of this
// function is for each package to have their own unique logger so that parsing of logs is "grep-able" based on some key.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	subMultiLogger := l.multiLogger.With().Str(key, value).Logger()
	subConsoleLogger := l.consoleLogger.With().Str(key, value).Logger()
	return &Logger{
		level:         l.level,
		multiLogger:   subMultiLogger,
		consoleLogger: subConsoleLogger,
		writers:       l.writers,
	}
}

// AddWriter will add a writer to the list of channels where structured log output will be sent. If the writer is
// already registered, this function is a no-op.
func (l *Logger) AddWriter(writer io.Writer) {
	// Check to see if the writer is already in the array of writers
	for _, w := range l.writers {
		if writer == w {
			return
		}
	}

	// Add it to the list of writers and update the multi logger
	l.writers = append(l.writers, writer)
	l.multiLogger = zerolog.New(zerolog.MultiLevelWriter(l.writers...)).Level(l.level).With().Timestamp().Logger()
}

// RemoveWriter will remove a writer from the list of writers that the logger manages. If the writer does not exist,
// this function is a no-op.
func (l *Logger) RemoveWriter(writer io.Writer) {
	for i, w := range l.writers {
		if writer == w {
			l.writers = append(l.writers[:i], l.writers[i+1:]...)
			l.multiLogger = zerolog.New(zerolog.MultiLevelWriter(l.writers...)).Level(l.level).With().Timestamp().Logger()
			return
		}
	}
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.multiLogger = l.multiLogger.Level(level)
	l.consoleLogger = l.consoleLogger.Level(level)
}

// Trace is a wrapper function that will log a trace event
func (l *Logger) Trace(args ...any) {
	l.log(zerolog.TraceLevel, args...)
}

// Debug is a wrapper function that will log a debug event
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info is a wrapper function that will log an info event
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn is a wrapper function that will log a warning event
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error is a wrapper function that will log an error event
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// Panic is a wrapper function that will log a panic event and then panic with the formatted message.
// The event is emitted through WithLevel so both log targets receive it before the panic is raised.
func (l *Logger) Panic(args ...any) {
	msg, _ := buildMsg(args...)
	l.log(zerolog.PanicLevel, args...)
	panic(msg)
}

// log is the internal helper that builds a message out of the provided arguments and emits it at the given level
// to both the multi logger and the console logger.
func (l *Logger) log(level zerolog.Level, args ...any) {
	msg, errs := buildMsg(args...)
	multiEvent := l.multiLogger.WithLevel(level)
	consoleEvent := l.consoleLogger.WithLevel(level)
	attachErrors(multiEvent, errs)
	attachErrors(consoleEvent, errs)
	multiEvent.Msg(msg)
	consoleEvent.Msg(msg)
}

// buildMsg splits the provided arguments into a space-joined message string and a list of errors. Errors are
// attached to log events as structured fields instead of being stringified into the message.
func buildMsg(args ...any) (string, []error) {
	var (
		parts []string
		errs  []error
	)
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			errs = append(errs, err)
			continue
		}
		parts = append(parts, fmt.Sprintf("%v", arg))
	}
	return strings.Join(parts, " "), errs
}

// attachErrors attaches the given errors to a log event, enabling stack trace capture for wrapped errors.
func attachErrors(event *zerolog.Event, errs []error) {
	for _, err := range errs {
		event.Stack().Err(err)
	}
}

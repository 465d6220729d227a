// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log = newConsole(os.Stderr)

func newConsole(w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Logger()
}

// Init sets up console logging on stderr. Debug output is enabled when debug
// is true or the DEBUG environment variable is set.
func Init(debug bool) {
	log = newConsole(os.Stderr)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if _, exists := os.LookupEnv("DEBUG"); exists || debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// SetOutput redirects log output, writing plain JSON lines to w.
func SetOutput(w io.Writer) {
	log = zerolog.New(w).With().Timestamp().Logger()
}

// Debug starts a debug level event
func Debug() *zerolog.Event {
	return log.Debug()
}

// Info starts an info level event
func Info() *zerolog.Event {
	return log.Info()
}

// Warn starts a warning level event
func Warn() *zerolog.Event {
	return log.Warn()
}

// Error starts an error level event
func Error() *zerolog.Event {
	return log.Error()
}

// Formatter adapts the logger to printf-style logging interfaces such as
// resty's. Every line carries a component field.
type Formatter struct {
	component string
}

// Component returns a Formatter tagging its lines with name.
func Component(name string) Formatter {
	return Formatter{component: name}
}

func (f Formatter) Errorf(format string, v ...any) {
	log.Error().Str("component", f.component).Msg(trimLine(format, v))
}

func (f Formatter) Warnf(format string, v ...any) {
	log.Warn().Str("component", f.component).Msg(trimLine(format, v))
}

func (f Formatter) Debugf(format string, v ...any) {
	log.Debug().Str("component", f.component).Msg(trimLine(format, v))
}

func trimLine(format string, v []any) string {
	return strings.TrimRight(fmt.Sprintf(format, v...), "\n")
}

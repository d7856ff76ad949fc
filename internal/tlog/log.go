// Package tlog is a "toggled logger" that can be enabled and disabled and
// provides coloring.
package tlog

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
)

const (
	// ProgramName is used in log reports.
	ProgramName = "agiledecrypt"
)

// Colors. fatih/color turns these into no-ops when stdout is not a
// terminal or NO_COLOR is set.
var (
	colorGrey   = color.New(color.Faint)
	colorRed    = color.New(color.FgRed)
	colorGreen  = color.New(color.FgGreen)
	colorYellow = color.New(color.FgYellow)
)

// Green returns "s" colored green, for success messages.
func Green(s string) string {
	return colorGreen.Sprint(s)
}

// Yellow returns "s" colored yellow.
func Yellow(s string) string {
	return colorYellow.Sprint(s)
}

// JSONDump writes the object in json form.
func JSONDump(obj interface{}) string {
	b, err := json.MarshalIndent(obj, "", "\t")
	if err != nil {
		return err.Error()
	}

	return string(b)
}

// toggledLogger - a Logger than can be enabled and disabled
type toggledLogger struct {
	// Enable or disable output
	Enabled bool
	// Message color, nil for none
	color *color.Color

	*log.Logger
}

func trimNewline(msg string) string {
	return strings.TrimSuffix(msg, "\n")
}

func (l *toggledLogger) colorize(msg string) string {
	if l.color == nil {
		return msg
	}
	return l.color.Sprint(msg)
}

func (l *toggledLogger) Printf(format string, v ...interface{}) {
	if !l.Enabled {
		return
	}
	l.Logger.Println(l.colorize(trimNewline(fmt.Sprintf(format, v...))))
}

func (l *toggledLogger) Println(v ...interface{}) {
	if !l.Enabled {
		return
	}
	l.Logger.Println(l.colorize(trimNewline(fmt.Sprint(v...))))
}

// Debug logs debug messages
// Can be enabled by passing "-d"
var Debug *toggledLogger

// Info logs informational message
// Can be disabled by passing "-q"
var Info *toggledLogger

// Warn logs warnings,
// meaning nothing serious by itself but might indicate problems.
var Warn *toggledLogger

// Fatal error, we are about to exit
var Fatal *toggledLogger

func init() {
	// stdout carries the decrypted package when no output file is given,
	// so all logging goes to stderr.
	Debug = &toggledLogger{
		color:  colorGrey,
		Logger: log.New(os.Stderr, "", 0),
	}
	Info = &toggledLogger{
		Enabled: true,
		Logger:  log.New(os.Stderr, "", 0),
	}
	Warn = &toggledLogger{
		Enabled: true,
		color:   colorYellow,
		Logger:  log.New(os.Stderr, "", 0),
	}
	Fatal = &toggledLogger{
		Enabled: true,
		color:   colorRed,
		Logger:  log.New(os.Stderr, "", 0),
	}
}

// SetOutput redirects all loggers to "w".
func SetOutput(w io.Writer) {
	for _, l := range []*toggledLogger{Debug, Info, Warn, Fatal} {
		l.SetOutput(w)
	}
}

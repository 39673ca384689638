// Package report implements every output artefact named in the module's
// external interfaces: the per-iteration CSV streams, checkpoint CSV,
// wallclock and metadata files, static graph/placement dumps, integrity
// error files, and the process-wide zerolog setup.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var colourDisabled bool

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
	colorCyan
	colorWhite

	colorBold = 1
)

func colorize(s interface{}, c int) string {
	if colourDisabled {
		return fmt.Sprintf("%s", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}

// SetLevel sets the global log level: 0 info, 1 debug, 2+ trace.
func SetLevel(level int) {
	switch level {
	case 0:
		log.Logger = log.With().Logger().Level(zerolog.InfoLevel)
	case 1:
		log.Logger = log.With().Logger().Level(zerolog.DebugLevel)
	default:
		log.Logger = log.With().Logger().Level(zerolog.TraceLevel)
	}
}

// SetupLogging configures the process-wide zerolog logger: a colourised
// console writer when writing to a terminal, or (when outdir is non-empty) a
// plain writer that also tees to <outdir>/log.txt.
func SetupLogging(level int, noColour bool, outdir string) error {
	colourDisabled = noColour
	zerolog.CallerMarshalFunc = callerMarshal

	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly, NoColor: noColour}
	cw.FormatCaller = consoleFormatCaller
	cw.FormatLevel = consoleFormatLevel
	cw.PartsOrder = []string{
		zerolog.TimestampFieldName,
		zerolog.CallerFieldName,
		zerolog.LevelFieldName,
		zerolog.MessageFieldName,
	}

	if outdir == "" {
		log.Logger = log.With().Caller().Logger().Output(cw)
		SetLevel(level)
		return nil
	}

	f, err := os.Create(filepath.Join(outdir, "log.txt"))
	if err != nil {
		return fmt.Errorf("report: creating log.txt: %w", err)
	}
	fileWriter := zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339, NoColor: true}
	fileWriter.PartsOrder = cw.PartsOrder
	multi := zerolog.MultiLevelWriter(cw, fileWriter)
	log.Logger = log.With().Caller().Timestamp().Logger().Output(multi)
	SetLevel(level)
	return nil
}

// callerMarshal renders a caller as "file.line", right-padded to line up
// across log lines. This module's tree is a handful of flat packages
// (anneal, place, report, cmd/anneal), so callers never run long enough to
// need the teacher's truncate-and-ellipsize handling for deeply nested
// cmd/lp-*/explore/x paths; a fixed short width is enough here.
func callerMarshal(pc uintptr, file string, line int) string {
	short := file
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			short = file[i+1:]
			break
		}
	}
	return colorize(fmt.Sprintf("%12s.%-3s", short, strconv.Itoa(line)), colorBlack)
}

func consoleFormatCaller(i any) string {
	var c string
	if cc, ok := i.(string); ok {
		c = cc
	}
	if len(c) > 0 {
		if cwd, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(cwd, c); err == nil {
				c = rel
			}
		}
		c = colorize(c, colorBold)
	}
	return c
}

// consoleFormatLevel covers the levels this module actually emits: selection
// patience warnings, CSV/artefact write errors, Fatal on unrecoverable setup
// failures, Info on completion, Debug for memory/loading telemetry. Trace and
// Panic are never logged here (worker-loop invariant violations use a plain
// Go panic, not log.Panic), so they fall through to the generic default
// rather than carrying a dedicated colour.
func consoleFormatLevel(i any) string {
	var l string
	if ll, ok := i.(string); ok {
		switch ll {
		case zerolog.LevelDebugValue:
			l = colorize("| DEBUG |", colorYellow)
		case zerolog.LevelInfoValue:
			l = colorize("| INFO  |", colorGreen)
		case zerolog.LevelWarnValue:
			l = colorize("| WARN  |", colorRed)
		case zerolog.LevelErrorValue:
			l = colorize(colorize("| ERROR |", colorRed), colorBold)
		case zerolog.LevelFatalValue:
			l = colorize(colorize("| FATAL |", colorRed), colorBold)
		default:
			l = colorize(ll, colorBold)
		}
	} else if i == nil {
		l = colorize("| ??? |", colorBold)
	} else {
		l = strings.ToUpper(fmt.Sprintf("| %5s |", i))
	}
	return l
}

// MemoryStats logs current runtime memory statistics at debug level. Called
// once annealing finishes so a large grid fixture's peak allocation shows up
// alongside the run's other debug output.
func MemoryStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Debug().Msg(fmt.Sprintf("(MiB): Alloc: %d Sys: %d TotalAlloc: %d HeapInuse: %d. (#): NumGC: %d",
		m.Alloc/1024/1024, m.Sys/1024/1024, m.TotalAlloc/1024/1024, m.HeapInuse/1024/1024, m.NumGC))
}

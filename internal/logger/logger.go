package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. It writes JSON to stdout until Init is called.
var Log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the global logger for the given environment and level.
func Init(env, level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	ctx := zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "devmatch")
	if env == "development" {
		ctx = ctx.Caller()
	}
	Log = ctx.Logger()
}

// Nop silences logging, used by tests.
func Nop() {
	Log = zerolog.Nop()
}

func Info() *zerolog.Event {
	return Log.Info()
}

func Error() *zerolog.Event {
	return Log.Error()
}

func Warn() *zerolog.Event {
	return Log.Warn()
}

func Debug() *zerolog.Event {
	return Log.Debug()
}

package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a timestamped logger at the given level writing to stdout.
// console selects the human readable writer instead of JSON lines.
func New(level string, console bool) (*zerolog.Logger, error) {
	return newLogger(os.Stdout, level, console)
}

func newLogger(out io.Writer, level string, console bool) (*zerolog.Logger, error) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	if console {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	c := zerolog.New(out).
		With().
		Timestamp().
		Logger().
		Level(l)

	return &c, nil
}

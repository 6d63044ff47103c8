package util

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the console logger and, when file is set, a rotated log file.
// The returned closer must be called on exit.
func NewLogger(level, file string, console io.Writer) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, NoColor: true, TimeFormat: "15:04:05"}}
	var closer io.Closer = nopCloser{}
	if file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    5, // MB
			MaxBackups: 3,
		}
		writers = append(writers, lj)
		closer = lj
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(lvl).With().Timestamp().Logger()
	return l, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"sessionctl/cli/internal/xdg"
)

// New builds the diagnostic logger. Output is human-readable; level is a
// zerolog level name and an empty string means info.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		l, err := zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), err
		}
		lvl = l
	}
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		FormatMessage: func(i any) string {
			if s, ok := i.(string); ok {
				return Mask(s)
			}
			return ""
		},
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// OpenLogFile opens sessionctl.log in the state directory for appending.
// The caller closes it.
func OpenLogFile() (*os.File, error) {
	dir, err := xdg.StateDir()
	if err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "sessionctl.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}

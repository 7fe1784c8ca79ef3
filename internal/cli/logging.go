package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// newLogger builds the console logger used by every command.
func newLogger(w io.Writer, level string, noColor bool) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	writer := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !shouldUseStyling(w, noColor),
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(writer).Level(parsed).With().Timestamp().Logger(), nil
}

// isVerbose reports whether a level emits per-attempt debug lines.
func isVerbose(level string) bool {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	return err == nil && parsed <= zerolog.DebugLevel && parsed != zerolog.NoLevel
}

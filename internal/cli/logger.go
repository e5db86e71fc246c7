package cli

import (
	"fmt"
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// newLogHandler builds the charm logger every component logs through. It is used as a
// slog.Handler.
func newLogHandler(w io.Writer, level string, asJSON bool) (slog.Handler, error) {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           lvl,
		Prefix:          "chartbridge",
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if asJSON {
		logger.SetFormatter(charmlog.JSONFormatter)
	}
	return logger, nil
}

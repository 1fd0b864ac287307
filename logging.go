package foundationdb

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// newLogger builds the single structured logger threaded through
// MultiVersionApi and DatabaseState. Every log line carries the
// component name via "component" and, where applicable, "library" and
// "protocol_version" attributes (spec SPEC_FULL §4.J).
func newLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "15:04:05",
	}))
}

// component returns a child logger scoped to one named part of the
// facade, so every line it emits is pre-tagged.
func component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With("component", name)
}

package logger

import (
	"log/slog"
	"os"
)

// New returns the structured logger the whole service shares.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

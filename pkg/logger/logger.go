package logger

import (
	"io"
	"log/slog"
	"os"
)

// Log discards everything until Init is called, so tests can run without setup.
var Log = slog.New(slog.NewTextHandler(io.Discard, nil))

func Init() {
	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler)
}

package pfb

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pfb-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithFile adds the file name to the logger.
func (l *Logger) WithFile(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("file", name),
	}
}

// WithSubgrid adds the topology coordinate of a subgrid to the logger.
func (l *Logger) WithSubgrid(x, y, z int) *Logger {
	return &Logger{
		Logger: l.Logger.With("grid_x", x, "grid_y", y, "grid_z", z),
	}
}

// LogOpen logs parsing of the file header and topology.
func (l *Logger) LogOpen(ctx context.Context, fh FileHeader, t Topology, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "header parsed",
		"nx", fh.NX,
		"ny", fh.NY,
		"nz", fh.NZ,
		"subgrids", fh.NumSubgrids,
		"p", t.P,
		"q", t.Q,
		"r", t.R,
	)
}

// LogRead logs a subgrid read.
func (l *Logger) LogRead(ctx context.Context, loc SubgridLocation, err error) {
	if err != nil {
		l.ErrorContext(ctx, "subgrid read failed",
			"grid_x", loc.GridX,
			"grid_y", loc.GridY,
			"grid_z", loc.GridZ,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "subgrid read completed",
		"grid_x", loc.GridX,
		"grid_y", loc.GridY,
		"grid_z", loc.GridZ,
		"offset", loc.DataOffset,
		"bytes", loc.DataLen(),
	)
}

// LogScan logs a sequential or multi-subgrid read.
func (l *Logger) LogScan(ctx context.Context, op string, subgrids int, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"subgrids", subgrids,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, op+" completed",
		"subgrids", subgrids,
	)
}

package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// NewLogger builds the operational JSON logger used by the binaries.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// ErrorLog is the append-only per-card failure log. Only error records reach it.
type ErrorLog struct {
	*slog.Logger
	closer io.Closer
}

// OpenErrorLog opens (or creates) path in append mode.
func OpenErrorLog(path string) (*ErrorLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open error log: %w", err)
	}
	return &ErrorLog{Logger: NewErrorLogger(f), closer: f}, nil
}

// NewErrorLogger writes text records at ERROR severity and above to w.
// Writes are serialized so the log stays line-atomic under a parallel runner.
func NewErrorLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(&lockedWriter{w: w}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func (l *ErrorLog) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// AuditLog appends one record per event to a file. The file is opened for
// every write and never held open, so several short-lived processes can share
// it.
type AuditLog struct {
	Path string
}

// NewAuditLog returns an audit log writing to path. An empty path disables it.
func NewAuditLog(path string) *AuditLog {
	return &AuditLog{Path: path}
}

// Record appends msg with its attributes. Errors are returned, not logged, so
// callers decide whether a missing audit trail matters.
func (a *AuditLog) Record(msg string, args ...any) error {
	if a == nil || a.Path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(a.Path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}
	f, err := os.OpenFile(a.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log %s: %w", a.Path, err)
	}

	h := slog.NewTextHandler(f, nil)
	r := slog.NewRecord(time.Now(), slog.LevelInfo, msg, 0)
	r.Add(args...)
	if err := h.Handle(context.Background(), r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return f.Close()
}

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spectro/linux-roles-mcp/paths"
)

// Logger is the process-wide log handle. It owns the log file (if any) and
// the level variable so debug output can be toggled after construction.
type Logger struct {
	*slog.Logger

	level *slog.LevelVar
	mu    sync.Mutex
	file  *os.File
	path  string
}

// DefaultLogPath returns the default log file path for the named binary
func DefaultLogPath(name string) (string, error) {
	dir, err := paths.LogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".log"), nil
}

// DefaultAuditPath returns the default audit log path for the named binary
func DefaultAuditPath(name string) (string, error) {
	dir, err := paths.LogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+"-audit.log"), nil
}

// New builds a logger writing to path. An empty path logs to stderr, which
// keeps stdout free for protocol traffic.
func New(path string, debug bool) (*Logger, error) {
	l := &Logger{level: new(slog.LevelVar)}
	l.SetDebug(debug)

	var w io.Writer = os.Stderr
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		l.file = f
		l.path = path
		w = f
	}

	l.Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l.level}))
	l.Debug("logger initialized", "path", path)
	return l, nil
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		level:  new(slog.LevelVar),
	}
}

// SetDebug enables or disables debug level logging
func (l *Logger) SetDebug(enabled bool) {
	if enabled {
		l.level.Set(slog.LevelDebug)
	} else {
		l.level.Set(slog.LevelInfo)
	}
}

// Path returns the log file path, or "" when logging to stderr.
func (l *Logger) Path() string {
	return l.path
}

// WithComponent returns a logger with the component name attached.
//
// Example:
//
//	log := l.WithComponent("rpc")
//	log.Info("request", "method", "tools/list")
//	// Output: level=INFO msg=request component=rpc method=tools/list
func (l *Logger) WithComponent(component string) *slog.Logger {
	return l.With("component", component)
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

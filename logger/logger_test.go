package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spectro/linux-roles-mcp/paths"
)

// setupTestLogger creates a temp log file and a logger writing to it.
func setupTestLogger(t *testing.T, debug bool) (*Logger, string) {
	t.Helper()

	logPath := filepath.Join(t.TempDir(), "nested", "test.log")
	l, err := New(logPath, debug)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestNew_StructuredLogging(t *testing.T) {
	l, logPath := setupTestLogger(t, false)

	l.Info("role run", "role", "aide", "exitCode", 7)

	content := readLog(t, logPath)
	if !strings.Contains(content, "role run") {
		t.Error("Should contain message")
	}
	if !strings.Contains(content, "role=aide") {
		t.Error("Should contain role=aide")
	}
	if !strings.Contains(content, "exitCode=7") {
		t.Error("Should contain exitCode=7")
	}
	if !strings.Contains(content, "time=") {
		t.Error("Log line should contain timestamp")
	}
	if l.Path() != logPath {
		t.Errorf("Path() = %q, want %q", l.Path(), logPath)
	}
}

func TestNew_EmptyPathUsesStderr(t *testing.T) {
	l, err := New("", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Path() != "" {
		t.Errorf("Path() = %q, want empty", l.Path())
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

func TestNew_AppendsToExistingFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "append.log")
	if err := os.WriteFile(logPath, []byte("previous line\n"), 0644); err != nil {
		t.Fatal(err)
	}

	l, err := New(logPath, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("new line")
	l.Close()

	content := readLog(t, logPath)
	if !strings.HasPrefix(content, "previous line\n") {
		t.Error("existing content should be preserved")
	}
	if !strings.Contains(content, "new line") {
		t.Error("new message should be appended")
	}
}

func TestLogLevel_Filtering(t *testing.T) {
	l, logPath := setupTestLogger(t, false)

	l.Debug("debug-filtered")
	l.Info("info-visible")

	l.SetDebug(true)
	l.Debug("debug-visible")

	content := readLog(t, logPath)
	if strings.Contains(content, "debug-filtered") {
		t.Error("Debug message should be filtered at Info level")
	}
	if !strings.Contains(content, "info-visible") {
		t.Error("Info message should be visible at Info level")
	}
	if !strings.Contains(content, "debug-visible") {
		t.Error("Debug message should be visible after SetDebug(true)")
	}
	if !strings.Contains(content, "level=DEBUG") {
		t.Error("Should contain level=DEBUG marker")
	}
}

func TestWithComponent(t *testing.T) {
	l, logPath := setupTestLogger(t, false)

	l.WithComponent("rpc").Info("request handled", "method", "tools/list")

	content := readLog(t, logPath)
	if !strings.Contains(content, "component=rpc") {
		t.Error("Should contain 'component=rpc' attribute")
	}
	if !strings.Contains(content, "method=tools/list") {
		t.Error("Should contain 'method=tools/list' attribute")
	}
}

func TestLog_Concurrent(t *testing.T) {
	l, _ := setupTestLogger(t, true)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := range 100 {
				l.Debug("concurrent test", "goroutine", n, "iteration", j)
			}
		}(i)
	}
	wg.Wait()
}

func TestClose_Twice(t *testing.T) {
	l, _ := setupTestLogger(t, false)
	if err := l.Close(); err != nil {
		t.Fatalf("first Close() = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Info("dropped")
	l.SetDebug(true)
	l.WithComponent("x").Debug("dropped too")
}

func TestDefaultPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")
	paths.Reset()
	t.Cleanup(paths.Reset)

	logPath, err := DefaultLogPath("linux-roles-mcp")
	if err != nil {
		t.Fatalf("DefaultLogPath: %v", err)
	}
	if want := filepath.Join(home, ".linux-roles-mcp", "logs", "linux-roles-mcp.log"); logPath != want {
		t.Errorf("DefaultLogPath = %q, want %q", logPath, want)
	}

	auditPath, err := DefaultAuditPath("linux-roles-approver")
	if err != nil {
		t.Fatalf("DefaultAuditPath: %v", err)
	}
	if want := filepath.Join(home, ".linux-roles-mcp", "logs", "linux-roles-approver-audit.log"); auditPath != want {
		t.Errorf("DefaultAuditPath = %q, want %q", auditPath, want)
	}
}

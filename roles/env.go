// Package roles generates and runs Ansible playbooks for Linux System Roles
// and reads the installed role collection.
package roles

import (
	"log/slog"
	"os"
)

// Env is the explicit execution context shared by the dispatcher and the
// runner. It is built once at startup and never mutated.
type Env struct {
	Logger  *slog.Logger
	Environ []string // environment handed unmodified to every child process
	TempDir string   // where per-invocation playbooks are written
}

// NewEnv snapshots the current process environment. An empty tempDir means
// os.TempDir().
func NewEnv(logger *slog.Logger, tempDir string) Env {
	if logger == nil {
		logger = slog.Default()
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return Env{
		Logger:  logger,
		Environ: os.Environ(),
		TempDir: tempDir,
	}
}

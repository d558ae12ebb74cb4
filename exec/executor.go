// Package exec provides an abstraction over command execution for testability.
// Production code runs real processes through RealExecutor while tests inject
// a MockExecutor that returns pre-recorded responses.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Run executes a command and returns stdout, stderr, and any error.
	// A non-zero exit is reported as an error carrying the exit code (see ExitCode).
	Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error)

	// Output executes a command and returns stdout.
	Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

// RealExecutor executes commands using os/exec.
type RealExecutor struct {
	// Env is the environment handed to every child. Nil inherits the
	// current process environment.
	Env []string

	// GracePeriod is how long a cancelled command may take to exit after
	// SIGTERM before its process group is killed. Zero kills immediately.
	GracePeriod time.Duration
}

// NewRealExecutor returns a RealExecutor that passes env to its children.
func NewRealExecutor(env []string) *RealExecutor {
	return &RealExecutor{Env: env}
}

func (e *RealExecutor) command(ctx context.Context, dir, name string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	setProcessGroup(cmd, e.GracePeriod)
	if e.Env != nil {
		cmd.Env = e.Env
	}
	return cmd
}

// Run executes a command and returns stdout, stderr, and any error.
func (e *RealExecutor) Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error) {
	cmd := e.command(ctx, dir, name, args)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), err
}

// Output executes a command and returns stdout.
func (e *RealExecutor) Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	return e.command(ctx, dir, name, args).Output()
}

// ExitError reports a process that ran and exited non-zero. Mocks return it
// to simulate a failing command; *exec.ExitError plays the same role for
// real processes.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExitCode extracts the exit code from a Run error. ok is false when err did
// not come from a process that ran to completion (e.g. the executable was
// missing or the process was killed by a signal).
func ExitCode(err error) (code int, ok bool) {
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) {
		return 0, false
	}
	code = coder.ExitCode()
	if code < 0 {
		return code, false
	}
	return code, true
}

// MockResponse defines the response for a mocked command.
type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Err    error

	// Block makes the call wait until ctx is done and return ctx.Err().
	Block bool

	// Before is called with the invocation before the response is returned,
	// while any files named in args still exist.
	Before func(call MockCall)
}

// CommandMatcher is a function that determines if a command matches.
type CommandMatcher func(dir, name string, args []string) bool

// MockRule defines a matching rule and its response.
type MockRule struct {
	Match    CommandMatcher
	Response MockResponse
}

// MockExecutor returns pre-recorded responses for commands.
// Commands are matched in order of rule registration.
type MockExecutor struct {
	mu       sync.RWMutex
	rules    []MockRule
	calls    []MockCall
	fallback CommandExecutor
}

// MockCall records a command invocation for verification.
type MockCall struct {
	Dir  string
	Name string
	Args []string
}

// NewMockExecutor creates a new MockExecutor.
// If fallback is provided, unmatched commands will be delegated to it.
func NewMockExecutor(fallback CommandExecutor) *MockExecutor {
	return &MockExecutor{
		fallback: fallback,
	}
}

// AddRule adds a matching rule with its response.
func (e *MockExecutor) AddRule(match CommandMatcher, response MockResponse) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, MockRule{Match: match, Response: response})
}

// AddExactMatch adds a rule that matches a specific command exactly.
func (e *MockExecutor) AddExactMatch(name string, args []string, response MockResponse) {
	e.AddRule(func(dir, n string, a []string) bool {
		if n != name || len(a) != len(args) {
			return false
		}
		for i, arg := range args {
			if a[i] != arg {
				return false
			}
		}
		return true
	}, response)
}

// AddPrefixMatch adds a rule that matches commands starting with specific args.
func (e *MockExecutor) AddPrefixMatch(name string, prefixArgs []string, response MockResponse) {
	e.AddRule(func(dir, n string, a []string) bool {
		if n != name || len(a) < len(prefixArgs) {
			return false
		}
		for i, arg := range prefixArgs {
			if a[i] != arg {
				return false
			}
		}
		return true
	}, response)
}

// GetCalls returns all recorded command invocations.
func (e *MockExecutor) GetCalls() []MockCall {
	e.mu.RLock()
	defer e.mu.RUnlock()
	calls := make([]MockCall, len(e.calls))
	copy(calls, e.calls)
	return calls
}

// ClearCalls clears the recorded command invocations.
func (e *MockExecutor) ClearCalls() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}

func (e *MockExecutor) findMatch(dir, name string, args []string) *MockResponse {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, rule := range e.rules {
		if rule.Match(dir, name, args) {
			resp := rule.Response
			return &resp
		}
	}
	return nil
}

func (e *MockExecutor) recordCall(dir, name string, args []string) MockCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	call := MockCall{Dir: dir, Name: name, Args: append([]string(nil), args...)}
	e.calls = append(e.calls, call)
	return call
}

func (e *MockExecutor) respond(ctx context.Context, call MockCall, resp *MockResponse) (stdout, stderr []byte, err error) {
	if resp.Before != nil {
		resp.Before(call)
	}
	if resp.Block {
		<-ctx.Done()
		return resp.Stdout, resp.Stderr, ctx.Err()
	}
	return resp.Stdout, resp.Stderr, resp.Err
}

// Run executes a mocked command.
func (e *MockExecutor) Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error) {
	call := e.recordCall(dir, name, args)

	if resp := e.findMatch(dir, name, args); resp != nil {
		return e.respond(ctx, call, resp)
	}

	if e.fallback != nil {
		return e.fallback.Run(ctx, dir, name, args...)
	}

	// Default: return empty success
	return nil, nil, nil
}

// Output executes a mocked command.
func (e *MockExecutor) Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	call := e.recordCall(dir, name, args)

	if resp := e.findMatch(dir, name, args); resp != nil {
		stdout, _, err := e.respond(ctx, call, resp)
		return stdout, err
	}

	if e.fallback != nil {
		return e.fallback.Output(ctx, dir, name, args...)
	}

	return nil, nil
}

// Ensure implementations satisfy the interface.
var _ CommandExecutor = (*RealExecutor)(nil)
var _ CommandExecutor = (*MockExecutor)(nil)

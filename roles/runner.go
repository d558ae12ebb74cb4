package roles

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spectro/linux-roles-mcp/exec"
	"github.com/spectro/linux-roles-mcp/outcome"
)

// RunnerOptions configures how playbooks are run.
type RunnerOptions struct {
	Command string        // playbook executable, normally ansible-playbook
	Args    []string      // extra arguments placed before the playbook path
	Become  bool          // run the play with privilege escalation
	Timeout time.Duration // zero disables the bound

	// GracePeriod is how long a timed-out playbook may run after SIGTERM.
	GracePeriod time.Duration
}

// Runner applies roles by generating a playbook and running it.
type Runner struct {
	env        Env
	executor   exec.CommandExecutor
	classifier *outcome.Classifier
	opts       RunnerOptions
}

// NewRunner creates a runner. A nil executor runs real processes with the
// environment captured in env; a nil classifier uses the default families.
func NewRunner(env Env, executor exec.CommandExecutor, classifier *outcome.Classifier, opts RunnerOptions) *Runner {
	if executor == nil {
		executor = &exec.RealExecutor{Env: env.Environ, GracePeriod: opts.GracePeriod}
	}
	if classifier == nil {
		classifier = outcome.DefaultClassifier()
	}
	if opts.Command == "" {
		opts.Command = "ansible-playbook"
	}
	return &Runner{
		env:        env,
		executor:   executor,
		classifier: classifier,
		opts:       opts,
	}
}

// Run applies one role and classifies the result. An error is returned only
// when the command could not be run at all (missing executable, unwritable
// temp dir, cancelled context); every exit of a started process is an Outcome.
func (r *Runner) Run(ctx context.Context, inv Invocation) (outcome.Outcome, error) {
	log := r.env.Logger.With("role", inv.Role)
	log.Info("running role", "vars", inv.Vars)

	data, err := MarshalPlaybook(NewPlaybook(inv, r.opts.Become))
	if err != nil {
		return outcome.Outcome{}, err
	}

	path := filepath.Join(r.env.TempDir, playbookFileName(inv.Role))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return outcome.Outcome{}, fmt.Errorf("failed to write playbook %s: %w", path, err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove playbook", "path", path, "error", err)
		}
	}()

	runCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	args := append(append([]string(nil), r.opts.Args...), path)
	stdout, stderr, err := r.executor.Run(runCtx, "", r.opts.Command, args...)
	if err == nil {
		log.Info("role completed")
		return outcome.Success(string(stdout)), nil
	}

	if ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		log.Error("role timed out", "timeout", r.opts.Timeout)
		return outcome.TimedOut(string(stdout), string(stderr), r.opts.Timeout), nil
	}
	if ctx.Err() != nil {
		return outcome.Outcome{}, fmt.Errorf("role %s interrupted: %w", inv.Role, ctx.Err())
	}

	code, ok := exec.ExitCode(err)
	if !ok {
		return outcome.Outcome{}, fmt.Errorf("failed to run %s: %w", r.opts.Command, err)
	}

	o := r.classifier.Classify(inv.Role, code, string(stdout), string(stderr))
	if o.Status == outcome.StatusError {
		log.Error("role failed", "exitCode", code, "stderr", string(stderr))
	} else {
		log.Info("role finished with recognised exit", "exitCode", code, "status", o.Status)
	}
	return o, nil
}

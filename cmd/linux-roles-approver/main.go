// Command linux-roles-approver is the approval hook an MCP host runs before
// a role is applied. It reads one pending call from stdin and prints one
// decision to stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/spectro/linux-roles-mcp/approval"
	"github.com/spectro/linux-roles-mcp/config"
	"github.com/spectro/linux-roles-mcp/logger"
)

const binaryName = "linux-roles-approver"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var configPath, ttyPath string
	var auto bool

	flagSet := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "path to config.toml")
	flagSet.BoolVar(&auto, "auto", false, "approve without prompting; the user already confirmed in chat")
	flagSet.StringVar(&ttyPath, "tty", "", "terminal to prompt on (default: /dev/tty)")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		// stdout must still carry a decision
		return approval.Run(ctx, blockedGate{err}, stdin, stdout, nil)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return approval.Run(ctx, blockedGate{err}, stdin, stdout, nil)
	}
	if ttyPath == "" {
		ttyPath = cfg.Approval.TTY
	}

	auditPath := cfg.Approval.AuditLog
	if auditPath == "" {
		// Without a logs dir the decision is still made, only unrecorded.
		auditPath, _ = logger.DefaultAuditPath(binaryName)
	}

	var gate approval.Gate
	if auto {
		gate = approval.NewAutoApprove(cfg.Approval.GatedTool, stderr)
	} else {
		gate = approval.NewInteractive(ttyPath, stderr)
	}
	return approval.Run(ctx, gate, stdin, stdout, logger.NewAuditLog(auditPath))
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// blockedGate refuses every request because the approver could not start.
type blockedGate struct {
	err error
}

func (g blockedGate) Decide(context.Context, io.Reader) (approval.Decision, int) {
	return approval.Fail(g.err.Error()), 0
}

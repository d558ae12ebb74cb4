// Command linux-roles-mcp serves Linux System Roles as MCP tools over stdio.
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

	"github.com/spectro/linux-roles-mcp/cli"
	"github.com/spectro/linux-roles-mcp/config"
	"github.com/spectro/linux-roles-mcp/logger"
	"github.com/spectro/linux-roles-mcp/mcp"
	"github.com/spectro/linux-roles-mcp/roles"
)

const binaryName = "linux-roles-mcp"

// version is overridden at build time with -ldflags "-X main.version=...".
var version = mcp.ServerVersion

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var configPath string
	var debug, check, showVersion bool

	flagSet := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "path to config.toml (default: $XDG_CONFIG_HOME/linux-roles-mcp/config.toml)")
	flagSet.BoolVar(&debug, "debug", false, "enable debug logging")
	flagSet.BoolVar(&check, "check", false, "check prerequisites and the roles collection, then exit")
	flagSet.BoolVar(&showVersion, "version", false, "print the version and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if showVersion {
		fmt.Fprintf(stdout, "%s %s\n", binaryName, version)
		return 0
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	catalog := &roles.Catalog{
		Dir:        cfg.RolesDir,
		Collection: cfg.Collection,
		Label:      cfg.CollectionLabel,
		DocLimit:   cfg.DocLimit,
	}

	if check {
		return runCheck(ctx, cfg, catalog, stdout)
	}

	log, err := logger.New(cfg.LogFile, cfg.Debug || debug)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer log.Close()

	auditPath := cfg.AuditLog
	if auditPath == "" {
		if auditPath, err = logger.DefaultAuditPath(binaryName); err != nil {
			log.Warn("audit log disabled", "error", err)
		}
	}

	env := roles.NewEnv(log.WithComponent("roles"), cfg.TempDir)
	runner := roles.NewRunner(env, nil, nil, roles.RunnerOptions{
		Command:     cfg.PlaybookCommand,
		Args:        cfg.PlaybookArgs,
		Become:      cfg.Become,
		Timeout:     cfg.TimeoutDuration(),
		GracePeriod: cfg.KillGraceDuration(),
	})
	dispatcher := mcp.NewDispatcher(env, runner, catalog, logger.NewAuditLog(auditPath))

	log.Info("configuration loaded",
		"config", cfg.FilePath(),
		"roles_dir", cfg.RolesDir,
		"timeout", cfg.TimeoutDuration(),
	)

	server := mcp.NewServer(stdin, stdout, dispatcher,
		mcp.WithLogger(log.Logger),
		mcp.WithVersion(version),
	)
	if err := server.Run(ctx); err != nil {
		log.Error("server stopped", "error", err)
		return 1
	}
	log.Info("server stopped")
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// runCheck reports prerequisite status and whether the collection is
// installed. It returns 1 when roles could not run.
func runCheck(ctx context.Context, cfg *config.Config, catalog *roles.Catalog, stdout io.Writer) int {
	checker := cli.NewChecker(os.Environ())
	results := checker.CheckAll(ctx, cli.DefaultPrerequisites(cfg.PlaybookCommand, cfg.Become))
	fmt.Fprint(stdout, cli.FormatCheckResults(results))

	code := 0
	if err := cli.ValidateRequired(results); err != nil {
		fmt.Fprintf(stdout, "\n%v\n", err)
		code = 1
	}

	names, err := catalog.Roles()
	if err != nil {
		fmt.Fprintf(stdout, "\nRoles: ✗ %s: %v\n", cfg.RolesDir, err)
		return 1
	}
	fmt.Fprintf(stdout, "\nRoles: ✓ %d in %s\n", len(names), cfg.RolesDir)
	return code
}

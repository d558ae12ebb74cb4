package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/spectro/linux-roles-mcp/paths"
)

// Defaults for a stock SUSE Linux System Roles install.
const (
	DefaultRolesDir        = "/usr/share/ansible/collections/ansible_collections/suse/linux_system_roles/roles"
	DefaultCollection      = "suse.linux_system_roles"
	DefaultCollectionLabel = "SUSE Linux System Roles"
	DefaultPlaybookCommand = "ansible-playbook"
	DefaultTimeout         = "1h"
	DefaultKillGrace       = "10s"
	DefaultDocLimit        = 8000
	DefaultGatedTool       = "run_system_role"
	DefaultTTY             = "/dev/tty"
)

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Config holds the server and approver configuration
type Config struct {
	RolesDir        string   `toml:"roles_dir"`
	Collection      string   `toml:"collection"`
	CollectionLabel string   `toml:"collection_label"`
	PlaybookCommand string   `toml:"playbook_command"`
	PlaybookArgs    []string `toml:"playbook_args"`
	Become          bool     `toml:"become"`
	TempDir         string   `toml:"temp_dir"`   // "" means os.TempDir()
	Timeout         string   `toml:"timeout"`    // Go duration; "0" disables
	KillGrace       string   `toml:"kill_grace"` // SIGTERM to SIGKILL delay on timeout
	DocLimit        int      `toml:"doc_limit"`  // README bytes returned before truncation
	LogFile         string   `toml:"log_file"`   // "" logs to stderr
	Debug           bool     `toml:"debug"`
	AuditLog        string   `toml:"audit_log"`

	Approval Approval `toml:"approval"`

	filePath string
}

// Approval configures the approval gate binary
type Approval struct {
	GatedTool string `toml:"gated_tool"`
	AuditLog  string `toml:"audit_log"`
	TTY       string `toml:"tty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		RolesDir:        DefaultRolesDir,
		Collection:      DefaultCollection,
		CollectionLabel: DefaultCollectionLabel,
		PlaybookCommand: DefaultPlaybookCommand,
		Become:          true,
		Timeout:         DefaultTimeout,
		KillGrace:       DefaultKillGrace,
		DocLimit:        DefaultDocLimit,
		Approval: Approval{
			GatedTool: DefaultGatedTool,
			TTY:       DefaultTTY,
		},
	}
}

// Load reads the config from the default location.
// A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := paths.ConfigFilePath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads, expands and validates the config file at path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.filePath = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// FilePath returns the path the config was loaded from.
func (c *Config) FilePath() string {
	return c.filePath
}

// TimeoutDuration returns the parsed execution timeout. Zero means unbounded.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := parseTimeout(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// KillGraceDuration returns how long a timed-out playbook gets to exit after
// SIGTERM.
func (c *Config) KillGraceDuration() time.Duration {
	d, err := parseTimeout(c.KillGrace)
	if err != nil {
		return 0
	}
	return d
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func (c *Config) expandEnvVars() {
	c.RolesDir = expandEnvVars(c.RolesDir)
	c.PlaybookCommand = expandEnvVars(c.PlaybookCommand)
	c.TempDir = expandEnvVars(c.TempDir)
	c.LogFile = expandEnvVars(c.LogFile)
	c.AuditLog = expandEnvVars(c.AuditLog)
	for i := range c.PlaybookArgs {
		c.PlaybookArgs[i] = expandEnvVars(c.PlaybookArgs[i])
	}
	c.Approval.AuditLog = expandEnvVars(c.Approval.AuditLog)
	c.Approval.TTY = expandEnvVars(c.Approval.TTY)
}

// expandEnvVars replaces ${VAR_NAME} with the value of the environment variable.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarRe.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match // leave unresolved vars as-is
	})
}

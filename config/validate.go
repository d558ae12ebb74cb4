package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.RolesDir) == "" {
		errs = append(errs, errors.New("roles_dir must not be empty"))
	}
	if strings.TrimSpace(c.Collection) == "" {
		errs = append(errs, errors.New("collection must not be empty"))
	}
	if strings.TrimSpace(c.PlaybookCommand) == "" {
		errs = append(errs, errors.New("playbook_command must not be empty"))
	}
	if d, err := parseTimeout(c.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("timeout %q: %w", c.Timeout, err))
	} else if d < 0 {
		errs = append(errs, fmt.Errorf("timeout %q must not be negative", c.Timeout))
	}
	if d, err := parseTimeout(c.KillGrace); err != nil {
		errs = append(errs, fmt.Errorf("kill_grace %q: %w", c.KillGrace, err))
	} else if d < 0 {
		errs = append(errs, fmt.Errorf("kill_grace %q must not be negative", c.KillGrace))
	}
	if c.DocLimit <= 0 {
		errs = append(errs, fmt.Errorf("doc_limit must be positive, got %d", c.DocLimit))
	}
	if strings.TrimSpace(c.Approval.GatedTool) == "" {
		errs = append(errs, errors.New("approval.gated_tool must not be empty"))
	}
	if strings.TrimSpace(c.Approval.TTY) == "" {
		errs = append(errs, errors.New("approval.tty must not be empty"))
	}

	return errors.Join(errs...)
}

// Package cli checks the external tools the server shells out to.
package cli

import (
	"context"
	"fmt"
	osexec "os/exec"
	"strings"
	"time"

	"github.com/spectro/linux-roles-mcp/exec"
)

const versionTimeout = 10 * time.Second

// Prerequisite represents a required CLI tool
type Prerequisite struct {
	Name        string // Command name (e.g., "ansible-playbook")
	Required    bool   // Whether roles can run without it
	Description string
	InstallURL  string
}

// DefaultPrerequisites returns the tools needed to run roles with
// playbookCommand. sudo is listed when roles run with privilege escalation.
func DefaultPrerequisites(playbookCommand string, become bool) []Prerequisite {
	prereqs := []Prerequisite{
		{
			Name:        playbookCommand,
			Required:    true,
			Description: "Ansible playbook runner",
			InstallURL:  "https://docs.ansible.com/ansible/latest/installation_guide/",
		},
	}
	if become {
		prereqs = append(prereqs, Prerequisite{
			Name:        "sudo",
			Required:    false, // Ansible may use another become method
			Description: "Privilege escalation for become: true",
			InstallURL:  "https://www.sudo.ws",
		})
	}
	return prereqs
}

// CheckResult contains the result of checking a prerequisite
type CheckResult struct {
	Prerequisite Prerequisite
	Found        bool
	Path         string
	Version      string
	Error        error
}

// Checker looks tools up on PATH and asks them for a version.
type Checker struct {
	LookPath func(name string) (string, error)
	Executor exec.CommandExecutor
}

// NewChecker returns a Checker backed by the real PATH and processes.
func NewChecker(env []string) *Checker {
	return &Checker{LookPath: osexec.LookPath, Executor: exec.NewRealExecutor(env)}
}

// Check verifies that a CLI tool is available in PATH
func (c *Checker) Check(ctx context.Context, prereq Prerequisite) CheckResult {
	result := CheckResult{Prerequisite: prereq}

	path, err := c.LookPath(prereq.Name)
	if err != nil {
		result.Error = fmt.Errorf("%s not found in PATH", prereq.Name)
		return result
	}

	result.Found = true
	result.Path = path
	result.Version = c.version(ctx, path)
	return result
}

// CheckAll verifies all prerequisites in order.
func (c *Checker) CheckAll(ctx context.Context, prereqs []Prerequisite) []CheckResult {
	results := make([]CheckResult, len(prereqs))
	for i, prereq := range prereqs {
		results[i] = c.Check(ctx, prereq)
	}
	return results
}

// ValidateRequired returns an error naming every missing required tool.
func ValidateRequired(results []CheckResult) error {
	var missing []string
	for _, r := range results {
		if !r.Prerequisite.Required || r.Found {
			continue
		}
		missing = append(missing, fmt.Sprintf("  - %s (%s)\n    Install: %s",
			r.Prerequisite.Name, r.Prerequisite.Description, r.Prerequisite.InstallURL))
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required CLI tools:\n%s", strings.Join(missing, "\n"))
	}
	return nil
}

// version returns the first line of `<path> --version`, or "" if the tool
// does not answer.
func (c *Checker) version(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	output, err := c.Executor.Output(ctx, "", path, "--version")
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(output), "\n")
	line = strings.TrimSpace(line)
	if len(line) > 100 {
		line = line[:100] + "..."
	}
	return line
}

// FormatCheckResults formats check results for display
func FormatCheckResults(results []CheckResult) string {
	var sb strings.Builder

	sb.WriteString("CLI Prerequisites:\n")
	for _, r := range results {
		status := "✓"
		if !r.Found {
			if r.Prerequisite.Required {
				status = "✗"
			} else {
				status = "○"
			}
		}

		sb.WriteString(fmt.Sprintf("  %s %s", status, r.Prerequisite.Name))
		if r.Found && r.Version != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", r.Version))
		} else if !r.Found {
			if r.Prerequisite.Required {
				sb.WriteString(" [REQUIRED]")
			} else {
				sb.WriteString(" [optional]")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

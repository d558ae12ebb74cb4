package roles

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Invocation is one request to apply a role.
type Invocation struct {
	Role string
	Vars map[string]any
}

// Play is a single Ansible play.
type Play struct {
	Hosts      string `yaml:"hosts"`
	Connection string `yaml:"connection"`
	Become     bool   `yaml:"become"`
	Tasks      []Task `yaml:"tasks"`
}

// Task includes one role with its variables.
type Task struct {
	Name        string         `yaml:"name"`
	IncludeRole IncludeRole    `yaml:"include_role"`
	Vars        map[string]any `yaml:"vars"`
}

// IncludeRole names the role a task pulls in.
type IncludeRole struct {
	Name string `yaml:"name"`
}

// NewPlaybook returns the one-play, one-task playbook applying inv to the
// local host. Variables travel as structured YAML, never through a shell.
func NewPlaybook(inv Invocation, become bool) []Play {
	vars := inv.Vars
	if vars == nil {
		vars = map[string]any{}
	}
	return []Play{{
		Hosts:      "localhost",
		Connection: "local",
		Become:     become,
		Tasks: []Task{{
			Name:        fmt.Sprintf("Include %s role", inv.Role),
			IncludeRole: IncludeRole{Name: inv.Role},
			Vars:        vars,
		}},
	}}
}

// MarshalPlaybook encodes a playbook as YAML.
func MarshalPlaybook(plays []Play) ([]byte, error) {
	data, err := yaml.Marshal(plays)
	if err != nil {
		return nil, fmt.Errorf("failed to encode playbook: %w", err)
	}
	return data, nil
}

// playbookFileName returns a file name unique to this invocation. Only the
// role's safe characters are kept so the name cannot escape the temp dir.
func playbookFileName(role string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, role)
	return fmt.Sprintf("%s-%s-playbook.yml", safe, uuid.New().String())
}

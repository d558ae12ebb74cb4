package outcome

import (
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Rule maps a failed run onto a specific status. A rule matches when the exit
// code is one of ExitCodes, or stdout contains any of Markers.
type Rule struct {
	ExitCodes []int
	Markers   []string
	Status    Status
	Message   string
}

func (r Rule) matches(code int, stdout string) bool {
	if slices.Contains(r.ExitCodes, code) {
		return true
	}
	for _, m := range r.Markers {
		if strings.Contains(stdout, m) {
			return true
		}
	}
	return false
}

// Family groups rules that apply to a class of actions.
type Family struct {
	Name  string
	Match func(action string) bool
	Rules []Rule
}

// Classifier maps a non-zero exit onto an Outcome. Families are checked in
// registration order and rules in declaration order; first match wins.
type Classifier struct {
	mu       sync.RWMutex
	families []Family
}

// NewClassifier returns a classifier with no families; every failure
// classifies as a plain error.
func NewClassifier(families ...Family) *Classifier {
	return &Classifier{families: families}
}

// DefaultClassifier returns the classifier with the built-in families.
func DefaultClassifier() *Classifier {
	return NewClassifier(AIDEFamily())
}

// AIDEFamily recognises the exit codes and report lines of the AIDE
// file-integrity checker. AIDE uses a bitmask exit code: 7 means added,
// removed and changed entries were found, 4 means a new database was written.
func AIDEFamily() Family {
	return Family{
		Name:  "aide",
		Match: func(action string) bool { return strings.Contains(action, "aide") },
		Rules: []Rule{
			{
				ExitCodes: []int{7},
				Markers:   rcMarkers(7, "AIDE found differences"),
				Status:    StatusIntegrityViolation,
				Message:   "AIDE found differences between the database and the filesystem.",
			},
			{
				ExitCodes: []int{4},
				Markers:   rcMarkers(4, "New AIDE database written"),
				Status:    StatusUpdated,
				Message:   "AIDE database updated successfully.",
			},
		},
	}
}

// rcMarkers returns the Ansible task-result form of an exit code plus any
// extra report lines.
func rcMarkers(rc int, extra ...string) []string {
	return append([]string{`"rc": ` + strconv.Itoa(rc)}, extra...)
}

// Register appends a family. It is checked after those already present.
func (c *Classifier) Register(f Family) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.families = append(c.families, f)
}

// Classify maps a non-zero exit of action onto an Outcome. It is pure: the
// same inputs always yield the same outcome.
func (c *Classifier) Classify(action string, code int, stdout, stderr string) Outcome {
	o := Outcome{
		Status:   StatusError,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: code,
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, f := range c.families {
		if f.Match == nil || !f.Match(action) {
			continue
		}
		for _, r := range f.Rules {
			if r.matches(code, stdout) {
				o.Status = r.Status
				o.Message = r.Message
				return o
			}
		}
	}
	return o
}

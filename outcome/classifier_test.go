package outcome

import (
	"strings"
	"testing"
)

func TestClassify_AIDE(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name        string
		action      string
		code        int
		stdout      string
		wantStatus  Status
		wantMessage string
	}{
		{
			name:        "exit 7",
			action:      "aide",
			code:        7,
			wantStatus:  StatusIntegrityViolation,
			wantMessage: "AIDE found differences between the database and the filesystem.",
		},
		{
			name:       "rc 7 in task output",
			action:     "suse.linux_system_roles.aide",
			code:       2,
			stdout:     `fatal: [localhost]: FAILED! => {"changed": true, "rc": 7}`,
			wantStatus: StatusIntegrityViolation,
		},
		{
			name:       "report line",
			action:     "aide",
			code:       2,
			stdout:     "AIDE found differences between database and filesystem!!",
			wantStatus: StatusIntegrityViolation,
		},
		{
			name:        "exit 4",
			action:      "aide",
			code:        4,
			wantStatus:  StatusUpdated,
			wantMessage: "AIDE database updated successfully.",
		},
		{
			name:       "new database written",
			action:     "aide",
			code:       2,
			stdout:     "New AIDE database written to /var/lib/aide/aide.db.new",
			wantStatus: StatusUpdated,
		},
		{
			name:       "rc 4 in task output",
			action:     "aide",
			code:       2,
			stdout:     `{"rc": 4}`,
			wantStatus: StatusUpdated,
		},
		{
			name:       "aide other failure",
			action:     "aide",
			code:       2,
			stdout:     "PLAY RECAP failed=1",
			wantStatus: StatusError,
		},
		{
			name:       "exit 7 outside the family",
			action:     "firewall",
			code:       7,
			stdout:     "AIDE found differences",
			wantStatus: StatusError,
		},
		{
			name:       "integrity rule wins over update rule",
			action:     "aide",
			code:       4,
			stdout:     `"rc": 7`,
			wantStatus: StatusIntegrityViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := c.Classify(tt.action, tt.code, tt.stdout, "stderr text")
			if o.Status != tt.wantStatus {
				t.Fatalf("Status = %q, want %q", o.Status, tt.wantStatus)
			}
			if tt.wantMessage != "" && o.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", o.Message, tt.wantMessage)
			}
			if o.ExitCode != tt.code {
				t.Errorf("ExitCode = %d, want %d", o.ExitCode, tt.code)
			}
			if o.Stdout != tt.stdout || o.Stderr != "stderr text" {
				t.Error("stdout and stderr must be carried through")
			}
		})
	}
}

func TestClassify_Pure(t *testing.T) {
	c := DefaultClassifier()
	first := c.Classify("aide", 7, "x", "y")
	for range 5 {
		if got := c.Classify("aide", 7, "x", "y"); got != first {
			t.Fatalf("Classify is not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestClassify_NoFamilies(t *testing.T) {
	o := NewClassifier().Classify("aide", 7, "AIDE found differences", "")
	if o.Status != StatusError {
		t.Errorf("Status = %q, want error", o.Status)
	}
	if o.Message != "" {
		t.Errorf("plain errors carry no message, got %q", o.Message)
	}
}

func TestRegister(t *testing.T) {
	c := DefaultClassifier()
	c.Register(Family{
		Name:  "selinux",
		Match: func(action string) bool { return strings.HasSuffix(action, "selinux") },
		Rules: []Rule{{
			ExitCodes: []int{3},
			Status:    StatusUpdated,
			Message:   "SELinux policy reloaded.",
		}},
	})

	if o := c.Classify("suse.linux_system_roles.selinux", 3, "", ""); o.Status != StatusUpdated {
		t.Errorf("registered family not applied: %+v", o)
	}
	// Earlier families keep precedence.
	if o := c.Classify("aide", 7, "", ""); o.Status != StatusIntegrityViolation {
		t.Errorf("built-in family lost: %+v", o)
	}
	// A family with a nil matcher is skipped.
	c.Register(Family{Name: "broken", Rules: []Rule{{ExitCodes: []int{1}, Status: StatusUpdated}}})
	if o := c.Classify("anything", 1, "", ""); o.Status != StatusError {
		t.Errorf("nil matcher should never match: %+v", o)
	}
}

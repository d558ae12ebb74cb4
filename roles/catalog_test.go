package roles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestCatalog(t *testing.T, roles ...string) *Catalog {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "ansible_collections", "suse", "linux_system_roles", "roles")
	for _, r := range roles {
		if err := os.MkdirAll(filepath.Join(dir, r), 0755); err != nil {
			t.Fatal(err)
		}
	}
	return &Catalog{
		Dir:        dir,
		Collection: "suse.linux_system_roles",
		Label:      "SUSE Linux System Roles",
		DocLimit:   8000,
	}
}

func TestCatalog_List(t *testing.T) {
	c := newTestCatalog(t, "timesync", "aide", ".git", "firewall")

	want := "Available SUSE Linux System Roles:\n" +
		"  - suse.linux_system_roles.aide\n" +
		"  - suse.linux_system_roles.firewall\n" +
		"  - suse.linux_system_roles.timesync"
	if got := c.List(); got != want {
		t.Errorf("List() =\n%s\nwant\n%s", got, want)
	}
}

func TestCatalog_ListMissingCollection(t *testing.T) {
	root := t.TempDir()
	c := &Catalog{
		Dir:   filepath.Join(root, "ansible_collections", "suse", "linux_system_roles", "roles"),
		Label: "SUSE Linux System Roles",
	}

	want := "SUSE Linux System Roles collection not found at " + root + string(filepath.Separator)
	if got := c.List(); got != want {
		t.Errorf("List() = %q, want %q", got, want)
	}
}

func TestCatalog_ListUnreadable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "roles")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	c := &Catalog{Dir: file, Label: "X"}

	if got := c.List(); !strings.HasPrefix(got, "Error listing roles: ") {
		t.Errorf("List() = %q", got)
	}
}

func TestCatalog_Documentation(t *testing.T) {
	c := newTestCatalog(t, "aide")
	readme := filepath.Join(c.Dir, "aide", "README.md")
	if err := os.WriteFile(readme, []byte("# aide\n\nVariables: aide_db_fix"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"aide", "suse.linux_system_roles.aide"} {
		if got := c.Documentation(name); got != "# aide\n\nVariables: aide_db_fix" {
			t.Errorf("Documentation(%q) = %q", name, got)
		}
	}
}

func TestCatalog_DocumentationNotFound(t *testing.T) {
	c := newTestCatalog(t)

	want := "Documentation not found for role 'nope'. Use list_available_roles to see available roles."
	if got := c.Documentation("nope"); got != want {
		t.Errorf("Documentation() = %q, want %q", got, want)
	}
}

func TestCatalog_DocumentationRejectsTraversal(t *testing.T) {
	c := newTestCatalog(t)

	for _, name := range []string{"../../etc", "aide/../../x", `..\x`, "..", "suse.linux_system_roles.."} {
		got := c.Documentation(name)
		if !strings.HasPrefix(got, "Error: invalid role_name") {
			t.Errorf("Documentation(%q) = %q, want invalid role_name", name, got)
		}
	}
}

func TestCatalog_DocumentationTruncated(t *testing.T) {
	c := newTestCatalog(t, "network")
	c.DocLimit = 10
	readme := filepath.Join(c.Dir, "network", "README.md")
	if err := os.WriteFile(readme, []byte("0123456789ABCDEF"), 0644); err != nil {
		t.Fatal(err)
	}

	want := "0123456789\n\n... (truncated, see full documentation at " + readme + ")"
	if got := c.Documentation("network"); got != want {
		t.Errorf("Documentation() = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		limit   int
		want    string
	}{
		{"under limit", "short", 10, "short"},
		{"exactly limit", "0123456789", 10, "0123456789"},
		{"over limit", "0123456789X", 10, "0123456789\n\n... (truncated, see full documentation at R)"},
		// "é" is two bytes; cutting at 5 would split it.
		{"rune boundary", "abcdé", 5, "abcd\n\n... (truncated, see full documentation at R)"},
		{"no limit", "anything", 0, "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.content, tt.limit, "R"); got != tt.want {
				t.Errorf("truncate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlaybookFileName(t *testing.T) {
	a := playbookFileName("suse.linux_system_roles.aide")
	b := playbookFileName("suse.linux_system_roles.aide")
	if a == b {
		t.Error("file names must be unique per call")
	}
	if !strings.HasPrefix(a, "suse_linux_system_roles_aide-") || !strings.HasSuffix(a, "-playbook.yml") {
		t.Errorf("unexpected name %q", a)
	}
	if got := playbookFileName("../../etc/passwd"); strings.Contains(got, "/") {
		t.Errorf("name %q contains a path separator", got)
	}
}

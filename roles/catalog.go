package roles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// Catalog reads the installed role collection.
type Catalog struct {
	Dir        string // the collection's roles/ directory
	Collection string // fully qualified collection name, e.g. suse.linux_system_roles
	Label      string // human name used in listings
	DocLimit   int    // README bytes returned before truncation
}

// Roles returns the sorted role names in the collection, skipping dotfiles.
func (c *Catalog) Roles() ([]string, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// List renders the role listing returned to clients.
func (c *Catalog) List() string {
	names, err := c.Roles()
	if os.IsNotExist(err) {
		return fmt.Sprintf("%s collection not found at %s", c.Label, collectionsRoot(c.Dir))
	}
	if err != nil {
		return fmt.Sprintf("Error listing roles: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available %s:", c.Label)
	for _, name := range names {
		fmt.Fprintf(&b, "\n  - %s.%s", c.Collection, name)
	}
	return b.String()
}

// collectionsRoot trims a roles dir back to the directory holding
// ansible_collections, which is what users recognise as the install location.
func collectionsRoot(dir string) string {
	if i := strings.Index(dir, "ansible_collections"); i > 0 {
		return dir[:i]
	}
	return dir
}

// ShortName strips the collection prefix from a fully qualified role name.
func (c *Catalog) ShortName(role string) string {
	return strings.TrimPrefix(role, c.Collection+".")
}

// ReadmePath returns the README location for role, rejecting names that
// would resolve outside the collection.
func (c *Catalog) ReadmePath(role string) (string, error) {
	name := c.ShortName(role)
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid role_name %q", role)
	}
	return filepath.Join(c.Dir, name, "README.md"), nil
}

// Documentation returns the role README, truncated to DocLimit bytes with a
// notice naming the full file.
func (c *Catalog) Documentation(role string) string {
	path, err := c.ReadmePath(role)
	if err != nil {
		return "Error: " + err.Error()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fmt.Sprintf("Documentation not found for role '%s'. Use list_available_roles to see available roles.", role)
	}
	if err != nil {
		return fmt.Sprintf("Error reading documentation: %v", err)
	}

	return truncate(string(data), c.DocLimit, path)
}

func truncate(content string, limit int, path string) string {
	if limit <= 0 || len(content) <= limit {
		return content
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "\n\n... (truncated, see full documentation at " + path + ")"
}

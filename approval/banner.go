package approval

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const ruleWidth = 80

// Banner renders the human-facing side of the gate. Colours are only
// emitted when the writer is a terminal.
type Banner struct {
	w io.Writer

	rule    lipgloss.Style
	title   lipgloss.Style
	label   lipgloss.Style
	warning lipgloss.Style
	ok      lipgloss.Style
	denied  lipgloss.Style
}

// NewBanner returns a banner writing to w, normally stderr.
func NewBanner(w io.Writer) *Banner {
	r := lipgloss.NewRenderer(w)
	return &Banner{
		w:       w,
		rule:    r.NewStyle().Faint(true),
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		label:   r.NewStyle().Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("9")),
		ok:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		denied:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

// Review shows the role and the final variables before the prompt.
func (b *Banner) Review(in RoleInput) {
	rule := b.rule.Render(strings.Repeat("=", ruleWidth))
	role := in.RoleName
	if role == "" {
		role = "unknown_role"
	}

	var sb strings.Builder
	sb.WriteString("\n" + rule + "\n")
	sb.WriteString(b.title.Render("⚠️  FINAL CONFIRMATION - Review Variables Before Execution") + "\n")
	sb.WriteString(rule + "\n")
	sb.WriteString(b.label.Render("  Role:") + " " + role + "\n")
	sb.WriteString(b.label.Render("  Final variables to be applied:") + "\n")
	if len(in.RoleVars) == 0 {
		sb.WriteString("    (no variables)\n")
	}
	for _, key := range sortedKeys(in.RoleVars) {
		sb.WriteString(fmt.Sprintf("    • %s: %s\n", key, formatValue(in.RoleVars[key])))
	}
	sb.WriteString(rule + "\n")
	sb.WriteString(b.warning.Render("⚠️  This will modify your system. Review carefully.") + "\n")
	sb.WriteString(rule + "\n")

	io.WriteString(b.w, sb.String())
}

// Ask prints the yes/no prompt without a trailing newline.
func (b *Banner) Ask() {
	io.WriteString(b.w, "\n"+b.label.Render("Approve this tool execution? [y/N]:")+" ")
}

// Approved confirms an approval to the human.
func (b *Banner) Approved() {
	io.WriteString(b.w, b.ok.Render("✓ Approved - Tool will execute")+"\n")
}

// Denied confirms a denial to the human.
func (b *Banner) Denied() {
	io.WriteString(b.w, b.denied.Render("✗ Denied - Tool execution BLOCKED")+"\n")
}

// Audit records a role run that was approved upstream.
func (b *Banner) Audit(in RoleInput) {
	vars, err := json.MarshalIndent(in.RoleVars, "", "  ")
	if err != nil {
		vars = []byte(fmt.Sprint(in.RoleVars))
	}

	var sb strings.Builder
	sb.WriteString("\n" + b.title.Render("[System Role Verification]") + "\n")
	sb.WriteString(fmt.Sprintf("Executing role %s with vars:\n", in.RoleName))
	sb.WriteString(string(vars) + "\n")
	sb.WriteString(b.ok.Render("[Auto-approved - user confirmed in chat]") + "\n\n")

	io.WriteString(b.w, sb.String())
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatValue prints scalars as-is and lists or objects as JSON.
func formatValue(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}

package approval

import (
	"context"
	"io"
	"strings"
)

// AutoApprove approves every request. Calls whose tool name contains
// GatedTool are printed for audit first; everything else is approved without
// looking at tool_input.
type AutoApprove struct {
	GatedTool string
	Banner    *Banner
}

// NewAutoApprove prints gated calls to stderr.
func NewAutoApprove(gatedTool string, stderr io.Writer) *AutoApprove {
	return &AutoApprove{GatedTool: gatedTool, Banner: NewBanner(stderr)}
}

func (g *AutoApprove) Decide(_ context.Context, in io.Reader) (Decision, int) {
	req, d, code, ok := readRequest(in)
	if !ok {
		return d, code
	}
	if g.GatedTool == "" || !strings.Contains(req.ToolName, g.GatedTool) {
		return Approve(), 0
	}

	input, err := req.RoleInput()
	if err != nil {
		return Block(err.Error()), 0
	}
	g.Banner.Audit(input)
	return Approve(), 0
}

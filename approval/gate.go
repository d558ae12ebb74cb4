package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spectro/linux-roles-mcp/logger"
)

// Gate decides one pending request read from in and returns the decision
// with the process exit code.
type Gate interface {
	Decide(ctx context.Context, in io.Reader) (Decision, int)
}

// readRequest reads the pending request. When ok is false the returned
// decision and exit code are final.
func readRequest(in io.Reader) (req Request, d Decision, code int, ok bool) {
	req, err := ReadRequest(in)
	switch {
	case errors.Is(err, errNoInput):
		return Request{}, Block("No input received"), 1, false
	case err != nil:
		return Request{}, Fail(err.Error()), 0, false
	}
	return req, Decision{}, 0, true
}

// Run drives gate once: it decides, records the decision in audit and writes
// exactly one decision line to out. The returned value is the process exit
// code.
func Run(ctx context.Context, gate Gate, in io.Reader, out io.Writer, audit *logger.AuditLog) int {
	audit.Record("Approver started")

	var input strings.Builder
	d, code := decideSafely(ctx, gate, io.TeeReader(in, &input))
	audit.Record("Approver decided",
		"input", strings.TrimSpace(input.String()),
		"decision", d.Kind.String(),
		"reason", d.Reason,
	)

	line, err := json.Marshal(d)
	if err != nil {
		line, _ = json.Marshal(Fail(err.Error()))
	}
	if _, err := fmt.Fprintf(out, "%s\n", line); err != nil {
		return 1
	}
	return code
}

func decideSafely(ctx context.Context, gate Gate, in io.Reader) (d Decision, code int) {
	defer func() {
		if r := recover(); r != nil {
			d, code = Fail(fmt.Sprint(r)), 0
		}
	}()
	return gate.Decide(ctx, in)
}

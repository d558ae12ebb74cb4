package approval

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errNoInput = errors.New("no input")

// Request is the pending tool call handed to the gate by the host.
type Request struct {
	ToolName  string
	ToolInput json.RawMessage
}

// RoleInput is the argument object of a gated role run.
type RoleInput struct {
	RoleName string         `json:"role_name"`
	RoleVars map[string]any `json:"role_vars"`
}

type wireRequest struct {
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input"`
}

// ReadRequest reads the first line of r and decodes it. A blank or missing
// line returns errNoInput.
func ReadRequest(r io.Reader) (Request, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return Request{}, fmt.Errorf("failed to read request: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return Request{}, errNoInput
	}
	return ParseRequest([]byte(line))
}

// ParseRequest decodes one request line. tool_input is kept raw until a gate
// asks for it.
func ParseRequest(line []byte) (Request, error) {
	var w wireRequest
	if err := json.Unmarshal(line, &w); err != nil {
		return Request{}, fmt.Errorf("invalid request: %w", err)
	}
	return Request{ToolName: w.ToolName, ToolInput: w.ToolInput}, nil
}

// RoleInput decodes tool_input, which mcphost sends as a JSON-encoded string
// and other hosts send as an object. Absent input decodes to an empty
// RoleInput.
func (r Request) RoleInput() (RoleInput, error) {
	raw := bytes.TrimSpace(r.ToolInput)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return RoleInput{RoleVars: map[string]any{}}, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return RoleInput{}, fmt.Errorf("invalid tool_input: %w", err)
		}
		raw = []byte(s)
	}

	var in RoleInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return RoleInput{}, fmt.Errorf("invalid tool_input: %w", err)
	}
	if in.RoleVars == nil {
		in.RoleVars = map[string]any{}
	}
	return in, nil
}

// Package approval implements the one-shot gate an MCP host runs before a
// gated tool call. The gate reads one pending request from stdin and writes
// exactly one decision object to stdout. Everything meant for a human goes to
// stderr.
package approval

import (
	"encoding/json"
	"fmt"
)

// Kind tags a Decision. The zero value is invalid and never serializes.
type Kind int

const (
	KindApproved Kind = iota + 1
	KindBlocked
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindApproved:
		return "approved"
	case KindBlocked:
		return "blocked"
	case KindFailed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Decision is the gate's verdict on one request.
type Decision struct {
	Kind   Kind
	Reason string
}

// Approve lets the call proceed.
func Approve() Decision {
	return Decision{Kind: KindApproved}
}

// Block stops the call with a human-readable reason.
func Block(reason string) Decision {
	return Decision{Kind: KindBlocked, Reason: reason}
}

// Fail records an internal gate error. It is reported to the host as a block.
func Fail(detail string) Decision {
	return Decision{Kind: KindFailed, Reason: detail}
}

// Approved reports whether d lets the call run.
func (d Decision) Approved() bool {
	return d.Kind == KindApproved
}

type wireDecision struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

// MarshalJSON writes the host-facing form of the decision.
func (d Decision) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case KindApproved:
		return json.Marshal(wireDecision{Decision: "approve"})
	case KindBlocked:
		return json.Marshal(wireDecision{Decision: "block", Reason: d.Reason})
	case KindFailed:
		return json.Marshal(wireDecision{Decision: "block", Reason: "Hook error: " + d.Reason})
	default:
		return nil, fmt.Errorf("cannot encode decision of %s", d.Kind)
	}
}

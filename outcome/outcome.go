// Package outcome defines the result of running an administrative action and
// the table-driven classifier that maps a non-zero exit onto it.
package outcome

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the closed set of outcome kinds.
type Status string

const (
	StatusSuccess            Status = "success"
	StatusError              Status = "error"
	StatusIntegrityViolation Status = "integrity_violation"
	StatusUpdated            Status = "updated"
	StatusTimedOut           Status = "timed_out"
)

// Outcome is the classified result of one action execution.
type Outcome struct {
	Status   Status
	Stdout   string
	Stderr   string
	ExitCode int
	Message  string
}

// Success builds the outcome of a zero exit.
func Success(stdout string) Outcome {
	return Outcome{Status: StatusSuccess, Stdout: stdout}
}

// TimedOut builds the outcome of a run that hit its deadline.
func TimedOut(stdout, stderr string, limit time.Duration) Outcome {
	return Outcome{
		Status:   StatusTimedOut,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: -1,
		Message:  fmt.Sprintf("Role execution exceeded the %s timeout.", limit),
	}
}

type successJSON struct {
	Status Status `json:"status"`
	Stdout string `json:"stdout"`
}

type errorJSON struct {
	Status Status `json:"status"`
	Stderr string `json:"stderr"`
	Stdout string `json:"stdout"`
	RC     int    `json:"rc"`
}

type classifiedJSON struct {
	Status  Status `json:"status"`
	Stderr  string `json:"stderr"`
	Stdout  string `json:"stdout"`
	RC      int    `json:"rc"`
	Message string `json:"message"`
}

// MarshalJSON emits only the fields that belong to the status.
func (o Outcome) MarshalJSON() ([]byte, error) {
	switch o.Status {
	case StatusSuccess:
		return json.Marshal(successJSON{Status: o.Status, Stdout: o.Stdout})
	case StatusError:
		return json.Marshal(errorJSON{Status: o.Status, Stderr: o.Stderr, Stdout: o.Stdout, RC: o.ExitCode})
	case StatusIntegrityViolation, StatusUpdated, StatusTimedOut:
		return json.Marshal(classifiedJSON{
			Status:  o.Status,
			Stderr:  o.Stderr,
			Stdout:  o.Stdout,
			RC:      o.ExitCode,
			Message: o.Message,
		})
	default:
		return nil, fmt.Errorf("unknown outcome status %q", o.Status)
	}
}

// Indented renders the outcome as two-space indented JSON, the form handed
// back to the client as tool text.
func (o Outcome) Indented() (string, error) {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

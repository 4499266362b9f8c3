package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

var (
	ErrUnknownReference  = errors.New("unknown reference")
	ErrUnknownFunction   = errors.New("unknown function")
	ErrArityMismatch     = errors.New("arity mismatch")
	ErrCycleDetected     = errors.New("cycle detected")
	ErrMissingOutput     = errors.New("missing output")
	ErrMultipleOutputs   = errors.New("multiple outputs")
	ErrDegenerateRange   = errors.New("degenerate range")
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	ErrInvalidStore      = errors.New("invalid store")
)

// Error is a compile failure tied to a place in the patch.
type Error struct {
	// Err is one of the Err* sentinels.
	Err error
	// Name is the offending identifier or call name, if any.
	Name string
	// Subject is the source range of the offending identifier or call.
	Subject hcl.Range
	Detail  string
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Subject.Filename != "" {
		sb.WriteString(e.Subject.String())
		sb.WriteString(": ")
	}
	sb.WriteString(e.Err.Error())
	if e.Name != "" {
		fmt.Fprintf(&sb, " %q", e.Name)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic converts the error for rendering with the HCL diagnostic
// writers.
func (e *Error) Diagnostic() *hcl.Diagnostic {
	summary := e.Err.Error()
	summary = strings.ToUpper(summary[:1]) + summary[1:]
	d := &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   e.Detail,
	}
	if e.Subject.Filename != "" {
		d.Subject = e.Subject.Ptr()
	}
	return d
}

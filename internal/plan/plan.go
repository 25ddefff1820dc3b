// Package plan reads YAML fix plans and runs them against a dataset.
//
// A plan is an ordered list of steps. Each step names its target either by
// finding identifier (as reported by the diagnostics pass) or by geometry
// index, the fix type to apply, and optional numeric parameters. A step may
// also state the outcome it expects, which turns a plan into a repeatable
// regression check for a dataset.
//
//	session: nightly-roads
//	steps:
//	  - finding: dangle-3-end
//	    fix: SNAP
//	    params: {tolerance: 1.0}
//	  - index: 4
//	    fix: delete
//	  - finding: dangle-1-start
//	    fix: snap
//	    expect: {success: false, reason: NO_CANDIDATE_WITHIN_TOLERANCE}
//	assertions:
//	  - type: finding_absent
//	    finding: short-5
package plan

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/fix"
)

// Plan is a parsed fix plan.
type Plan struct {
	// Session is an optional label recorded with the audit session.
	Session string `yaml:"session,omitempty"`

	// Description explains what the plan repairs.
	Description string `yaml:"description,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked by Verify once every step has run.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one fix to apply.
type Step struct {
	// Finding is a finding identifier such as "dangle-3-end".
	Finding string `yaml:"finding,omitempty"`

	// Index addresses a geometry directly. Exactly one of Finding and Index
	// is set.
	Index *int `yaml:"index,omitempty"`

	// Fix is the fix type name, matched case-insensitively.
	Fix string `yaml:"fix"`

	// Params overrides strategy defaults ("tolerance", "interval").
	Params map[string]float64 `yaml:"params,omitempty"`

	// Expect, when set, is compared with the outcome.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is the outcome a step is expected to produce.
type Expect struct {
	Success bool       `yaml:"success"`
	Reason  fix.Reason `yaml:"reason,omitempty"`
}

// Target renders the step's target for logs and listings.
func (s Step) Target() string {
	if s.Index != nil {
		return fmt.Sprintf("index %d", *s.Index)
	}
	return s.Finding
}

var knownReasons = []fix.Reason{
	fix.ReasonUnknownFixType,
	fix.ReasonIndexOutOfRange,
	fix.ReasonNoCandidate,
	fix.ReasonNotApplicable,
	fix.ReasonInvalidParameter,
	fix.ReasonInternal,
}

// ErrEmptyPlan is returned for a plan without steps.
var ErrEmptyPlan = errors.New("steps list is required and must be non-empty")

// Load reads and parses a plan file.
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields (typos), or fails validation.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates plan YAML.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // reject typos such as "step:" or "fixes:"
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse plan YAML: %w", err)
	}
	if err := validate(&p); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return &p, nil
}

func validate(p *Plan) error {
	if len(p.Steps) == 0 {
		return ErrEmptyPlan
	}
	for i, step := range p.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	for i, a := range p.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(s Step) error {
	switch {
	case s.Finding == "" && s.Index == nil:
		return fmt.Errorf("one of finding or index is required")
	case s.Finding != "" && s.Index != nil:
		return fmt.Errorf("finding and index are mutually exclusive")
	case s.Index != nil && *s.Index < 0:
		return fmt.Errorf("index must be non-negative, got %d", *s.Index)
	}
	if s.Fix == "" {
		return fmt.Errorf("fix is required")
	}
	if _, ok := fix.ParseType(s.Fix); !ok {
		return fmt.Errorf("unknown fix type %q", s.Fix)
	}
	if s.Expect != nil && s.Expect.Reason != "" {
		if s.Expect.Success {
			return fmt.Errorf("expect: reason is only valid with success: false")
		}
		if !slices.Contains(knownReasons, s.Expect.Reason) {
			return fmt.Errorf("expect: unknown reason %q", s.Expect.Reason)
		}
	}
	return nil
}

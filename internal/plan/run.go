package plan

import (
	"fmt"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/fix"
)

// Applier applies fixes to a loaded dataset. *engine.Engine implements it.
type Applier interface {
	ApplyFix(id, fixType string, params fix.Params) fix.Outcome
	ApplyIndex(index int, fixType string, params fix.Params) fix.Outcome
}

// StepResult is the outcome of one step.
type StepResult struct {
	Step    int
	Target  string
	Fix     string
	Params  map[string]float64
	Outcome fix.Outcome

	// Mismatch describes how the outcome differed from the step's
	// expectation. Empty when it matched or nothing was expected.
	Mismatch string
}

// OK reports whether the step went as planned: it matched its expectation,
// or it succeeded when none was given.
func (r StepResult) OK() bool {
	return r.Mismatch == ""
}

// Result collects the step results of a run.
type Result struct {
	Steps []StepResult
}

// Applied counts the steps that changed the fix log.
func (r *Result) Applied() int {
	n := 0
	for _, s := range r.Steps {
		if s.Outcome.Success {
			n++
		}
	}
	return n
}

// Failed counts the steps that did not go as planned.
func (r *Result) Failed() int {
	n := 0
	for _, s := range r.Steps {
		if !s.OK() {
			n++
		}
	}
	return n
}

// Run applies every step in order. Failed steps do not stop the run. When
// observe is non-nil it is called after each step.
func Run(a Applier, p *Plan, observe func(StepResult)) *Result {
	result := &Result{Steps: make([]StepResult, 0, len(p.Steps))}
	for i, step := range p.Steps {
		var out fix.Outcome
		if step.Index != nil {
			out = a.ApplyIndex(*step.Index, step.Fix, step.Params)
		} else {
			out = a.ApplyFix(step.Finding, step.Fix, step.Params)
		}

		sr := StepResult{
			Step:     i + 1,
			Target:   step.Target(),
			Fix:      step.Fix,
			Params:   step.Params,
			Outcome:  out,
			Mismatch: compare(step.Expect, out),
		}
		result.Steps = append(result.Steps, sr)
		if observe != nil {
			observe(sr)
		}
	}
	return result
}

func compare(want *Expect, got fix.Outcome) string {
	if want == nil {
		if got.Success {
			return ""
		}
		return fmt.Sprintf("failed: %s", got.Message)
	}
	if want.Success != got.Success {
		return fmt.Sprintf("expected success=%t, got success=%t (%s)", want.Success, got.Success, got.Message)
	}
	if want.Reason != "" && want.Reason != got.Reason {
		return fmt.Sprintf("expected reason %s, got %s", want.Reason, got.Reason)
	}
	return ""
}

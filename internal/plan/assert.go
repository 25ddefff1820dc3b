package plan

import (
	"context"
	"fmt"
	"slices"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/diagnose"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/geom"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/store"
)

// Assertion types.
const (
	AssertFindingAbsent  = "finding_absent"
	AssertFindingPresent = "finding_present"
	AssertTombstone      = "tombstone"
	AssertFixCount       = "fix_count"
)

var assertionTypes = []string{AssertFindingAbsent, AssertFindingPresent, AssertTombstone, AssertFixCount}

// Assertion is checked against the dataset after every step has run.
//
//	assertions:
//	  - type: finding_absent
//	    finding: short-5
//	  - type: tombstone
//	    index: 3
//	  - type: fix_count
//	    count: 2
type Assertion struct {
	Type    string `yaml:"type"`
	Finding string `yaml:"finding,omitempty"`
	Index   *int   `yaml:"index,omitempty"`
	Count   *int   `yaml:"count,omitempty"`
}

// Inspector reads the state assertions are checked against.
// *engine.Engine implements it.
type Inspector interface {
	Diagnose(ctx context.Context) []diagnose.Finding
	Get(index int) (geom.Geometry, error)
	FixLog() []store.FixRecord
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion %s failed: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

func validateAssertion(a Assertion) error {
	if !slices.Contains(assertionTypes, a.Type) {
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	switch a.Type {
	case AssertFindingAbsent, AssertFindingPresent:
		if a.Finding == "" {
			return fmt.Errorf("%s: finding is required", a.Type)
		}
	case AssertTombstone:
		if a.Index == nil || *a.Index < 0 {
			return fmt.Errorf("%s: a non-negative index is required", a.Type)
		}
	case AssertFixCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("%s: a non-negative count is required", a.Type)
		}
	}
	return nil
}

// Verify checks every assertion of p. The result has one entry per
// assertion, nil where it held. The dataset is diagnosed at most once.
func Verify(ctx context.Context, in Inspector, p *Plan) []*AssertionError {
	var findings map[string]bool
	results := make([]*AssertionError, len(p.Assertions))
	found := func(id string) bool {
		if findings == nil {
			findings = make(map[string]bool)
			for _, f := range in.Diagnose(ctx) {
				findings[f.ID] = true
			}
		}
		return findings[id]
	}

	for i, a := range p.Assertions {
		var fail *AssertionError
		switch a.Type {
		case AssertFindingAbsent:
			if found(a.Finding) {
				fail = &AssertionError{Type: a.Type, Expected: a.Finding + " resolved", Actual: "still reported"}
			}
		case AssertFindingPresent:
			if !found(a.Finding) {
				fail = &AssertionError{Type: a.Type, Expected: a.Finding + " reported", Actual: "not reported"}
			}
		case AssertTombstone:
			g, err := in.Get(*a.Index)
			switch {
			case err != nil:
				fail = &AssertionError{Type: a.Type, Expected: fmt.Sprintf("geometry %d deleted", *a.Index), Actual: err.Error()}
			case !g.IsTombstone():
				fail = &AssertionError{Type: a.Type, Expected: fmt.Sprintf("geometry %d deleted", *a.Index), Actual: g.Kind().String()}
			}
		case AssertFixCount:
			if n := len(in.FixLog()); n != *a.Count {
				fail = &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d fixes", *a.Count), Actual: fmt.Sprintf("%d fixes", n)}
			}
		}
		results[i] = fail
	}
	return results
}

// Target renders what an assertion is about.
func (a Assertion) Target() string {
	switch {
	case a.Finding != "":
		return a.Finding
	case a.Index != nil:
		return fmt.Sprintf("index %d", *a.Index)
	case a.Count != nil:
		return fmt.Sprintf("%d", *a.Count)
	}
	return ""
}

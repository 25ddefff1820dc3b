package fix

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/store"
)

// Type names a repair strategy.
type Type string

const (
	TypeSnap      Type = "SNAP"
	TypeDelete    Type = "DELETE"
	TypeSimplify  Type = "SIMPLIFY"
	TypeBuffer    Type = "BUFFER"
	TypeMakeValid Type = "MAKE_VALID"
	TypeClose     Type = "CLOSE"
	TypeReverse   Type = "REVERSE"
	TypeDensify   Type = "DENSIFY"
	TypeOther     Type = "OTHER"
)

// Types lists every strategy in documentation order.
var Types = []Type{
	TypeSnap, TypeDelete, TypeSimplify, TypeBuffer, TypeMakeValid,
	TypeClose, TypeReverse, TypeDensify, TypeOther,
}

var upper = cases.Upper(language.Und)

// ParseType matches name against the strategy names, ignoring case.
func ParseType(name string) (Type, bool) {
	t := Type(upper.String(strings.TrimSpace(name)))
	for _, known := range Types {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// Reason is the closed set of failure causes.
type Reason string

const (
	ReasonUnknownFixType   Reason = "UNKNOWN_FIX_TYPE"
	ReasonIndexOutOfRange  Reason = "INDEX_OUT_OF_RANGE"
	ReasonNoCandidate      Reason = "NO_CANDIDATE_WITHIN_TOLERANCE"
	ReasonNotApplicable    Reason = "NOT_APPLICABLE_TO_TYPE"
	ReasonInvalidParameter Reason = "INVALID_PARAMETER"
	ReasonInternal         Reason = "INTERNAL"
)

// Outcome is the result of one apply call. Failures never mutate the store.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Reason  Reason `json:"reason,omitempty"`

	// Record is the appended fix log entry on success.
	Record *store.FixRecord `json:"-"`
}

func failed(reason Reason, format string, args ...any) Outcome {
	return Outcome{Success: false, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Failure is returned by strategies to abort a fix with a reason.
type Failure struct {
	Reason  Reason
	Message string
}

func (f *Failure) Error() string { return fmt.Sprintf("%s: %s", f.Reason, f.Message) }

func notApplicable(fixType Type, kind string) error {
	return &Failure{
		Reason:  ReasonNotApplicable,
		Message: fmt.Sprintf("%s not applicable to %s", strings.ToLower(string(fixType)), kind),
	}
}

// Params carries optional numeric strategy parameters such as "tolerance"
// and "interval".
type Params map[string]float64

func (p Params) get(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// ResolveIndex extracts a geometry index from a finding identifier: the
// identifier is split on '-' and the first all-digit token wins, so
// "dangle-12-start" resolves to 12.
func ResolveIndex(id string) (int, bool) {
	for _, tok := range strings.Split(id, "-") {
		if tok == "" || strings.TrimLeft(tok, "0123456789") != "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

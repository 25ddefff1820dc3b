// Package fix applies named repair strategies to single working geometries.
//
// # Strategies
//
// Every strategy is a geom.Visitor, so each one states its behaviour for every
// geometry kind. Kinds a strategy cannot handle fail with
// ReasonNotApplicable and leave the store untouched.
//
// # Outcomes
//
// Apply never returns an error and never panics. A successful call replaces
// the working geometry (when the strategy mutates) and appends exactly one
// store.FixRecord; a failed call appends nothing.
package fix

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/geom"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/store"
)

// Settings holds the parameter values used when a request does not override
// them.
type Settings struct {
	SnapTolerance     float64
	SimplifyTolerance float64
	DensifyInterval   float64
}

// DefaultSettings returns the stock parameters.
func DefaultSettings() Settings {
	return Settings{SnapTolerance: 0.5, SimplifyTolerance: 0.5, DensifyInterval: 1.0}
}

// Dispatcher routes fix requests to strategies.
type Dispatcher struct {
	Settings Settings

	// Now stamps fix records. Nil means time.Now.
	Now func() time.Time
}

// NewDispatcher creates a dispatcher with the given settings and clock.
func NewDispatcher(settings Settings, now func() time.Time) *Dispatcher {
	return &Dispatcher{Settings: settings, Now: now}
}

// Request is one fix attempt. Index is the resolved geometry index; a
// negative Index means the finding could not be resolved.
type Request struct {
	FindingID string
	Index     int
	FixType   string
	Params    Params
}

// RequestForID builds a Request whose index comes from the first numeric
// token of id.
func RequestForID(id, fixType string, params Params) Request {
	idx, ok := ResolveIndex(id)
	if !ok {
		idx = -1
	}
	return Request{FindingID: id, Index: idx, FixType: fixType, Params: params}
}

const msgInvalidIndex = "Invalid geometry index"

// Apply runs req against s under the store's write lock.
func (d *Dispatcher) Apply(s *store.Store, req Request) Outcome {
	if req.Index < 0 || req.Index >= s.Len() {
		return failed(ReasonIndexOutOfRange, msgInvalidIndex)
	}
	ft, ok := ParseType(req.FixType)
	if !ok {
		return failed(ReasonUnknownFixType, "Unknown fix type: %s", req.FixType)
	}

	var out Outcome
	err := s.Update(func(tx *store.Tx) error {
		rec, err := tx.Record(req.Index)
		if err != nil {
			return &Failure{Reason: ReasonIndexOutOfRange, Message: msgInvalidIndex}
		}
		strategy, err := d.strategy(ft, tx.Working(), req.Index, req.Params)
		if err != nil {
			return err
		}
		ch, err := visitGuarded(rec.Geom, strategy)
		if err != nil {
			return err
		}
		if ch.mutate {
			if err := tx.Replace(req.Index, ch.geom); err != nil {
				return fmt.Errorf("replace: %w", err)
			}
		}
		fr := store.FixRecord{
			FindingID:     req.FindingID,
			FixType:       string(ft),
			GeometryIndex: req.Index,
			OriginalWKT:   rec.Geom.WKT(),
			Result:        ch.message,
			Timestamp:     d.now(),
		}
		tx.AppendFix(fr)
		out = Outcome{Success: true, Message: ch.message, Record: &fr}
		return nil
	})
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			return Outcome{Success: false, Reason: f.Reason, Message: f.Message}
		}
		return failed(ReasonInternal, "%v", err)
	}
	return out
}

func (d *Dispatcher) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d *Dispatcher) strategy(ft Type, working []store.Record, idx int, p Params) (geom.Visitor[change], error) {
	switch ft {
	case TypeSnap:
		tol, err := nonNegative(p, "tolerance", d.Settings.SnapTolerance)
		if err != nil {
			return nil, err
		}
		return snapStrategy(working, idx, tol), nil
	case TypeDelete:
		return deleteStrategy{}, nil
	case TypeSimplify:
		tol, err := nonNegative(p, "tolerance", d.Settings.SimplifyTolerance)
		if err != nil {
			return nil, err
		}
		return simplifyStrategy(tol), nil
	case TypeBuffer:
		return bufferStrategy(), nil
	case TypeMakeValid:
		return makeValidStrategy(), nil
	case TypeClose:
		return closeStrategy{}, nil
	case TypeReverse:
		return reverseStrategy{}, nil
	case TypeDensify:
		return densifyStrategy{interval: p.get("interval", d.Settings.DensifyInterval)}, nil
	case TypeOther:
		return otherStrategy{}, nil
	}
	return nil, &Failure{Reason: ReasonUnknownFixType, Message: fmt.Sprintf("Unknown fix type: %s", ft)}
}

func nonNegative(p Params, key string, def float64) (float64, error) {
	v := p.get(key, def)
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &Failure{Reason: ReasonInvalidParameter, Message: fmt.Sprintf("%s must be a non-negative number, got %g", key, v)}
	}
	return v, nil
}

// visitGuarded converts a panic raised by the geometry library into an
// internal failure.
func visitGuarded(g geom.Geometry, v geom.Visitor[change]) (ch change, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Failure{Reason: ReasonInternal, Message: fmt.Sprintf("%v", r)}
		}
	}()
	return geom.Visit(g, v)
}

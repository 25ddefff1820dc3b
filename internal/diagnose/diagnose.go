// Package diagnose finds topology defects in a working geometry sequence.
//
// Run is a pure function over store records. It performs three independent
// checks and concatenates their findings in this order:
//
//   - validity: GEOS well-formedness (self-intersecting rings and so on)
//   - dangles: line endpoints farther than the tolerance from every other
//     record's full geometry, so snapping onto the middle of a segment counts
//     as connected
//   - short segments: live records shorter than the minimum length
//
// A record may appear under more than one check.
package diagnose

import (
	"context"
	"fmt"
	"runtime"

	"github.com/twpayne/go-geos"
	"golang.org/x/sync/errgroup"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/geom"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/store"
)

const (
	DefaultTolerance = 0.5
	DefaultMinLength = 2.0
)

// Options tunes a diagnostics pass. Start from DefaultOptions: a zero
// Tolerance or MinLength is taken literally. Zero Workers means GOMAXPROCS.
type Options struct {
	Tolerance float64
	MinLength float64
	Workers   int
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance, MinLength: DefaultMinLength}
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Run diagnoses records and returns all findings.
func Run(ctx context.Context, records []store.Record, opts Options) ([]Finding, error) {
	opts = opts.withDefaults()

	findings := Validity(records)

	dangles, err := Dangles(ctx, records, opts.Tolerance, opts.Workers)
	if err != nil {
		return nil, err
	}
	findings = append(findings, dangles...)
	findings = append(findings, ShortSegments(records, opts.MinLength)...)
	return findings, nil
}

// Validity reports every live record GEOS considers invalid.
func Validity(records []store.Record) []Finding {
	var out []Finding
	for _, r := range records {
		if !r.Geom.IsLive() {
			continue
		}
		g := r.Geom.GEOS()
		if g.IsValid() {
			continue
		}
		ref := Ref{Kind: KindInvalid, Index: r.Index, Line: r.SourceLine, Part: NoPart}
		f := newFinding(ref, SeverityCritical, fmt.Sprintf("Line %d: %s", r.SourceLine, g.IsValidReason()))
		f.WKT = r.Geom.WKT()
		out = append(out, f)
	}
	return out
}

// ShortSegments reports live records whose length is below minLength.
func ShortSegments(records []store.Record, minLength float64) []Finding {
	var out []Finding
	for _, r := range records {
		if !r.Geom.IsLive() {
			continue
		}
		length := r.Geom.Length()
		if length >= minLength {
			continue
		}
		ref := Ref{Kind: KindShortSegment, Index: r.Index, Line: r.SourceLine, Part: NoPart}
		f := newFinding(ref, SeverityLow, fmt.Sprintf("Line %d is too short (%.4fm).", r.SourceLine, length))
		c := r.Geom.GEOS().Centroid()
		f.Location = FormatLocation(geom.Coord{X: c.X(), Y: c.Y()})
		f.WKT = r.Geom.WKT()
		out = append(out, f)
	}
	return out
}

// endpoint is one end of one line part.
type endpoint struct {
	coord     geom.Coord
	owner     int // position in records
	index     int
	line      int
	part      int
	role      Role
	connected bool
}

// Dangles reports line endpoints that are not within tolerance of any other
// live record. Parts whose first and last coordinates coincide are rings and
// never dangle.
//
// The scan is split into chunks run by an errgroup. GEOS contexts are not
// safe for concurrent use, so each chunk rebuilds the candidate geometries in
// its own context from WKB.
func Dangles(ctx context.Context, records []store.Record, tolerance float64, workers int) ([]Finding, error) {
	eps := collectEndpoints(records)
	if len(eps) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	envs := make([]geom.Envelope, len(records))
	live := make([]bool, len(records))
	wkbs := make([][]byte, len(records))
	for i, r := range records {
		env, ok := r.Geom.Envelope()
		if !ok {
			continue
		}
		envs[i] = env.Expand(tolerance)
		live[i] = true
		wkbs[i] = r.Geom.GEOS().ToWKB()
	}

	chunk := (len(eps) + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < len(eps); lo += chunk {
		hi := min(lo+chunk, len(eps))
		g.Go(func() error {
			return scanChunk(gctx, eps[lo:hi], envs, live, wkbs, tolerance)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dangle scan: %w", err)
	}

	var out []Finding
	for _, ep := range eps {
		if ep.connected {
			continue
		}
		ref := Ref{Kind: KindDangle, Index: ep.index, Line: ep.line, Part: ep.part, Role: ep.role}
		f := newFinding(ref, SeverityHigh,
			fmt.Sprintf("Dangle at %s (Line %d). No snap within %gm.", ep.role, ep.line, tolerance))
		pt := ep.coord
		f.Location = FormatLocation(pt)
		f.Point = &pt
		f.WKT = geom.NewPoint(pt).WKT()
		out = append(out, f)
	}
	return out, nil
}

func collectEndpoints(records []store.Record) []*endpoint {
	var eps []*endpoint
	for pos, r := range records {
		parts := r.Geom.Parts()
		for k, part := range parts {
			if len(part) < 2 || part[0].Equal(part[len(part)-1]) {
				continue
			}
			partNo := NoPart
			if len(parts) > 1 {
				partNo = k
			}
			for _, e := range []struct {
				c    geom.Coord
				role Role
			}{{part[0], RoleStart}, {part[len(part)-1], RoleEnd}} {
				eps = append(eps, &endpoint{
					coord: e.c,
					owner: pos,
					index: r.Index,
					line:  r.SourceLine,
					part:  partNo,
					role:  e.role,
				})
			}
		}
	}
	return eps
}

func scanChunk(ctx context.Context, eps []*endpoint, envs []geom.Envelope, live []bool, wkbs [][]byte, tolerance float64) error {
	gctx := geos.NewContext()
	cache := make(map[int]*geos.Geom)
	candidate := func(j int) (*geos.Geom, error) {
		if g, ok := cache[j]; ok {
			return g, nil
		}
		g, err := gctx.NewGeomFromWKB(wkbs[j])
		if err != nil {
			return nil, fmt.Errorf("rebuild record %d: %w", j, err)
		}
		cache[j] = g
		return g, nil
	}

	for _, ep := range eps {
		if err := ctx.Err(); err != nil {
			return err
		}
		var pt *geos.Geom
		for j := range envs {
			if j == ep.owner || !live[j] || !envs[j].Contains(ep.coord) {
				continue
			}
			other, err := candidate(j)
			if err != nil {
				return err
			}
			if pt == nil {
				pt = gctx.NewPoint([]float64{ep.coord.X, ep.coord.Y})
			}
			if pt.Distance(other) <= tolerance {
				ep.connected = true
				break
			}
		}
	}
	return nil
}

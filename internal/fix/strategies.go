package fix

import (
	"fmt"
	"math"
	"slices"

	"github.com/twpayne/go-geos"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/geom"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/store"
)

// change is what a strategy decided for the target slot.
type change struct {
	geom    geom.Geometry
	mutate  bool
	message string
}

func replaced(g *geos.Geom, format string, args ...any) (change, error) {
	return change{geom: geom.FromGEOS(g), mutate: true, message: fmt.Sprintf(format, args...)}, nil
}

func unchanged(message string) (change, error) {
	return change{message: message}, nil
}

// uniform applies the same transform to every live kind and refuses
// tombstones.
type uniform struct {
	fixType Type
	apply   func(g *geos.Geom) (change, error)
}

func (u uniform) Tombstone() (change, error) { return change{}, notApplicable(u.fixType, "a deleted geometry") }
func (u uniform) Point(g *geos.Geom) (change, error) { return u.apply(g) }
func (u uniform) LineString(g *geos.Geom) (change, error) { return u.apply(g) }
func (u uniform) MultiLineString(g *geos.Geom) (change, error) { return u.apply(g) }
func (u uniform) Polygon(g *geos.Geom) (change, error) { return u.apply(g) }
func (u uniform) Collection(g *geos.Geom) (change, error) { return u.apply(g) }

func snapStrategy(working []store.Record, self int, tolerance float64) geom.Visitor[change] {
	return uniform{fixType: TypeSnap, apply: func(g *geos.Geom) (change, error) {
		var (
			best    *geos.Geom
			minDist = math.Inf(1)
		)
		for i, r := range working {
			if i == self || !r.Geom.IsLive() {
				continue
			}
			d := g.Distance(r.Geom.GEOS())
			if d <= tolerance && d < minDist {
				minDist = d
				best = r.Geom.GEOS()
			}
		}
		if best == nil {
			return change{}, &Failure{Reason: ReasonNoCandidate, Message: "No geometry found within snap tolerance"}
		}
		return replaced(g.Snap(best, tolerance), "Snapped to nearest geometry (dist: %.4f)", minDist)
	}}
}

func simplifyStrategy(tolerance float64) geom.Visitor[change] {
	return uniform{fixType: TypeSimplify, apply: func(g *geos.Geom) (change, error) {
		return replaced(g.TopologyPreserveSimplify(tolerance), "Simplified geometry (tolerance: %g)", tolerance)
	}}
}

func bufferStrategy() geom.Visitor[change] {
	return uniform{fixType: TypeBuffer, apply: func(g *geos.Geom) (change, error) {
		return replaced(g.Buffer(0, 16), "Applied buffer(0) to fix self-intersection")
	}}
}

func makeValidStrategy() geom.Visitor[change] {
	return uniform{fixType: TypeMakeValid, apply: func(g *geos.Geom) (change, error) {
		return replaced(g.MakeValid(), "Applied make_valid() to repair geometry")
	}}
}

type deleteStrategy struct{}

func (deleteStrategy) del() (change, error) {
	return change{geom: geom.Tombstone(), mutate: true, message: "Deleted geometry"}, nil
}

func (d deleteStrategy) Tombstone() (change, error) { return d.del() }
func (d deleteStrategy) Point(*geos.Geom) (change, error) { return d.del() }
func (d deleteStrategy) LineString(*geos.Geom) (change, error) { return d.del() }
func (d deleteStrategy) MultiLineString(*geos.Geom) (change, error) { return d.del() }
func (d deleteStrategy) Polygon(*geos.Geom) (change, error) { return d.del() }
func (d deleteStrategy) Collection(*geos.Geom) (change, error) { return d.del() }

type otherStrategy struct{}

func (otherStrategy) reviewed() (change, error) {
	return unchanged("Marked as reviewed (no auto-fix available)")
}

func (o otherStrategy) Tombstone() (change, error) { return o.reviewed() }
func (o otherStrategy) Point(*geos.Geom) (change, error) { return o.reviewed() }
func (o otherStrategy) LineString(*geos.Geom) (change, error) { return o.reviewed() }
func (o otherStrategy) MultiLineString(*geos.Geom) (change, error) { return o.reviewed() }
func (o otherStrategy) Polygon(*geos.Geom) (change, error) { return o.reviewed() }
func (o otherStrategy) Collection(*geos.Geom) (change, error) { return o.reviewed() }

type closeStrategy struct{}

func (closeStrategy) Tombstone() (change, error) {
	return change{}, notApplicable(TypeClose, "a deleted geometry")
}

func (closeStrategy) Point(*geos.Geom) (change, error) {
	return change{}, notApplicable(TypeClose, "Point")
}

func (closeStrategy) LineString(g *geos.Geom) (change, error) {
	cs := geom.FromGEOS(g).Coords()
	if len(cs) == 0 || cs[0].Equal(cs[len(cs)-1]) {
		return unchanged("Ring already closed")
	}
	closed := geom.NewLineString(append(cs, cs[0]))
	return change{geom: closed, mutate: true, message: "Closed the ring by connecting end to start"}, nil
}

func (closeStrategy) MultiLineString(*geos.Geom) (change, error) {
	return change{}, notApplicable(TypeClose, "MultiLineString")
}

func (closeStrategy) Polygon(*geos.Geom) (change, error) {
	return unchanged("Ring already closed")
}

func (closeStrategy) Collection(g *geos.Geom) (change, error) {
	return change{}, notApplicable(TypeClose, g.Type())
}

type reverseStrategy struct{}

func (reverseStrategy) Tombstone() (change, error) {
	return change{}, notApplicable(TypeReverse, "a deleted geometry")
}

func (reverseStrategy) Point(*geos.Geom) (change, error) {
	return change{}, notApplicable(TypeReverse, "Point")
}

func (reverseStrategy) LineString(g *geos.Geom) (change, error) {
	cs := geom.FromGEOS(g).Coords()
	slices.Reverse(cs)
	return change{geom: geom.NewLineString(cs), mutate: true, message: "Reversed coordinate order"}, nil
}

func (reverseStrategy) MultiLineString(g *geos.Geom) (change, error) {
	parts := geom.FromGEOS(g).Parts()
	for _, p := range parts {
		slices.Reverse(p)
	}
	return change{geom: geom.NewMultiLineString(parts), mutate: true, message: "Reversed coordinate order"}, nil
}

func (reverseStrategy) Polygon(g *geos.Geom) (change, error) {
	rings := geom.FromGEOS(g).Rings()
	for _, r := range rings {
		slices.Reverse(r)
	}
	return change{geom: geom.NewPolygon(rings), mutate: true, message: "Reversed winding order"}, nil
}

func (reverseStrategy) Collection(g *geos.Geom) (change, error) {
	return change{}, notApplicable(TypeReverse, g.Type())
}

// maxDensifyPoints bounds the output of a single DENSIFY.
const maxDensifyPoints = 1_000_000

type densifyStrategy struct {
	interval float64
}

func (d densifyStrategy) Tombstone() (change, error) {
	return change{}, notApplicable(TypeDensify, "a deleted geometry")
}

func (d densifyStrategy) Point(*geos.Geom) (change, error) {
	return change{}, notApplicable(TypeDensify, "Point")
}

func (d densifyStrategy) LineString(g *geos.Geom) (change, error) {
	if d.interval <= 0 || math.IsNaN(d.interval) || math.IsInf(d.interval, 0) {
		return change{}, &Failure{Reason: ReasonInvalidParameter, Message: fmt.Sprintf("interval must be positive, got %g", d.interval)}
	}
	if n := g.Length() / d.interval; n > maxDensifyPoints {
		return change{}, &Failure{Reason: ReasonInvalidParameter, Message: fmt.Sprintf("interval %g would produce more than %d points", d.interval, maxDensifyPoints)}
	}
	pts := Resample(geom.FromGEOS(g).Coords(), d.interval)
	return change{
		geom:    geom.NewLineString(pts),
		mutate:  true,
		message: fmt.Sprintf("Densified with %d points", len(pts)),
	}, nil
}

func (d densifyStrategy) MultiLineString(*geos.Geom) (change, error) {
	return change{}, notApplicable(TypeDensify, "MultiLineString")
}

func (d densifyStrategy) Polygon(*geos.Geom) (change, error) {
	return change{}, notApplicable(TypeDensify, "Polygon")
}

func (d densifyStrategy) Collection(g *geos.Geom) (change, error) {
	return change{}, notApplicable(TypeDensify, g.Type())
}

// Resample walks cs and emits a point every interval units of arc length,
// starting at the first coordinate. The last coordinate is always emitted, so
// the result has at least two points. Original vertices between samples are
// not kept.
func Resample(cs []geom.Coord, interval float64) []geom.Coord {
	if len(cs) == 0 {
		return nil
	}
	cum := make([]float64, len(cs))
	for i := 1; i < len(cs); i++ {
		cum[i] = cum[i-1] + cs[i-1].Dist(cs[i])
	}
	total := cum[len(cum)-1]

	var out []geom.Coord
	seg := 0
	for i := 0; ; i++ {
		d := float64(i) * interval
		if d >= total && i > 0 {
			break
		}
		for seg < len(cs)-2 && cum[seg+1] < d {
			seg++
		}
		out = append(out, interpolate(cs, cum, seg, d))
		if total == 0 {
			break
		}
	}
	return append(out, cs[len(cs)-1])
}

func interpolate(cs []geom.Coord, cum []float64, seg int, d float64) geom.Coord {
	if len(cs) == 1 {
		return cs[0]
	}
	a, b := cs[seg], cs[seg+1]
	span := cum[seg+1] - cum[seg]
	if span == 0 {
		return a
	}
	t := (d - cum[seg]) / span
	return geom.Coord{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
}

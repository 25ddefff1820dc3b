package geom

import (
	"math"

	"github.com/twpayne/go-geos"
)

// Coord is a planar coordinate. Z and M ordinates are dropped.
type Coord struct {
	X float64
	Y float64
}

// Equal compares both ordinates exactly.
func (c Coord) Equal(o Coord) bool { return c.X == o.X && c.Y == o.Y }

// Dist returns the Euclidean distance between c and o.
func (c Coord) Dist(o Coord) float64 { return math.Hypot(o.X-c.X, o.Y-c.Y) }

func (c Coord) xy() []float64 { return []float64{c.X, c.Y} }

func coordsOf(g *geos.Geom) []Coord {
	if g == nil || g.IsEmpty() {
		return nil
	}
	raw := g.CoordSeq().ToCoords()
	out := make([]Coord, len(raw))
	for i, c := range raw {
		out[i] = Coord{X: c[0], Y: c[1]}
	}
	return out
}

func toRaw(cs []Coord) [][]float64 {
	raw := make([][]float64, len(cs))
	for i, c := range cs {
		raw[i] = c.xy()
	}
	return raw
}

// Parts decomposes line-typed geometries into their line parts: one part for
// a LineString, one per member for a MultiLineString. Other kinds have none.
func (g Geometry) Parts() [][]Coord {
	if g.IsEmpty() {
		return nil
	}
	switch g.kind {
	case KindLineString:
		return [][]Coord{coordsOf(g.g)}
	case KindMultiLineString:
		n := g.g.NumGeometries()
		parts := make([][]Coord, 0, n)
		for i := 0; i < n; i++ {
			parts = append(parts, coordsOf(g.g.Geometry(i)))
		}
		return parts
	}
	return nil
}

// Rings returns the exterior ring followed by the interior rings of a polygon.
func (g Geometry) Rings() [][]Coord {
	if g.kind != KindPolygon || g.IsEmpty() {
		return nil
	}
	return polygonRings(g.g)
}

func polygonRings(p *geos.Geom) [][]Coord {
	rings := [][]Coord{coordsOf(p.ExteriorRing())}
	for i := 0; i < p.NumInteriorRings(); i++ {
		rings = append(rings, coordsOf(p.InteriorRing(i)))
	}
	return rings
}

// Coords returns the coordinate sequence of a point or line string.
func (g Geometry) Coords() []Coord {
	switch g.kind {
	case KindPoint, KindLineString:
		return coordsOf(g.g)
	}
	return nil
}

// NewLineString builds a LineString from coordinates.
func NewLineString(cs []Coord) Geometry {
	return FromGEOS(geos.NewLineString(toRaw(cs)))
}

// NewMultiLineString builds a MultiLineString with one member per part.
func NewMultiLineString(parts [][]Coord) Geometry {
	members := make([]*geos.Geom, len(parts))
	for i, p := range parts {
		members[i] = geos.NewLineString(toRaw(p))
	}
	return FromGEOS(geos.NewCollection(geos.TypeIDMultiLineString, members))
}

// NewPolygon builds a Polygon from an exterior ring and optional holes.
func NewPolygon(rings [][]Coord) Geometry {
	raw := make([][][]float64, len(rings))
	for i, r := range rings {
		raw[i] = toRaw(r)
	}
	return FromGEOS(geos.NewPolygon(raw))
}

// NewPoint builds a Point.
func NewPoint(c Coord) Geometry {
	return FromGEOS(geos.NewPoint(c.xy()))
}

// Envelope is an axis-aligned bounding box.
type Envelope struct {
	MinX, MinY, MaxX, MaxY float64
}

// Expand returns e grown by d on every side.
func (e Envelope) Expand(d float64) Envelope {
	return Envelope{MinX: e.MinX - d, MinY: e.MinY - d, MaxX: e.MaxX + d, MaxY: e.MaxY + d}
}

// Contains reports whether c lies inside or on e.
func (e Envelope) Contains(c Coord) bool {
	return c.X >= e.MinX && c.X <= e.MaxX && c.Y >= e.MinY && c.Y <= e.MaxY
}

// Envelope returns the bounding box of all coordinates of g. The second
// result is false for tombstones and empty geometries.
func (g Geometry) Envelope() (Envelope, bool) {
	if g.IsEmpty() {
		return Envelope{}, false
	}
	e := Envelope{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	walkCoords(g.g, func(c Coord) {
		e.MinX = math.Min(e.MinX, c.X)
		e.MinY = math.Min(e.MinY, c.Y)
		e.MaxX = math.Max(e.MaxX, c.X)
		e.MaxY = math.Max(e.MaxY, c.Y)
	})
	return e, e.MinX <= e.MaxX
}

func walkCoords(g *geos.Geom, fn func(Coord)) {
	if g == nil || g.IsEmpty() {
		return
	}
	switch g.TypeID() {
	case geos.TypeIDPoint, geos.TypeIDLineString, geos.TypeIDLinearRing:
		for _, c := range coordsOf(g) {
			fn(c)
		}
	case geos.TypeIDPolygon:
		for _, ring := range polygonRings(g) {
			for _, c := range ring {
				fn(c)
			}
		}
	default:
		for i := 0; i < g.NumGeometries(); i++ {
			walkCoords(g.Geometry(i), fn)
		}
	}
}

package geom

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-geos"
)

// Kind tags the variant held by a Geometry.
type Kind int

const (
	KindTombstone Kind = iota
	KindPoint
	KindLineString
	KindMultiLineString
	KindPolygon
	KindCollection
)

var kindNames = map[Kind]string{
	KindTombstone:       "Tombstone",
	KindPoint:           "Point",
	KindLineString:      "LineString",
	KindMultiLineString: "MultiLineString",
	KindPolygon:         "Polygon",
	KindCollection:      "Collection",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ErrEmptyText is returned by Parse when there is no geometry text at all.
var ErrEmptyText = errors.New("empty geometry text")

// Geometry is a tagged geometry value. The zero value is a tombstone.
type Geometry struct {
	kind Kind
	g    *geos.Geom
}

// Tombstone returns the marker for a slot that holds no live geometry.
func Tombstone() Geometry {
	return Geometry{kind: KindTombstone}
}

// FromGEOS classifies g. A nil g yields a tombstone.
func FromGEOS(g *geos.Geom) Geometry {
	if g == nil {
		return Tombstone()
	}
	return Geometry{kind: classify(g.TypeID()), g: g}
}

// Parse reads a single WKT geometry.
func Parse(text string) (Geometry, error) {
	if text == "" {
		return Geometry{}, ErrEmptyText
	}
	g, err := geos.NewGeomFromWKT(text)
	if err != nil {
		return Geometry{}, fmt.Errorf("parse wkt: %w", err)
	}
	return FromGEOS(g), nil
}

// MustParse is Parse for literals in tests and examples.
func MustParse(text string) Geometry {
	g, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return g
}

func classify(typeID geos.TypeID) Kind {
	switch typeID {
	case geos.TypeIDPoint:
		return KindPoint
	case geos.TypeIDLineString, geos.TypeIDLinearRing:
		return KindLineString
	case geos.TypeIDMultiLineString:
		return KindMultiLineString
	case geos.TypeIDPolygon:
		return KindPolygon
	default:
		return KindCollection
	}
}

// Kind returns the variant tag.
func (g Geometry) Kind() Kind { return g.kind }

// IsTombstone reports whether the slot holds no live geometry.
func (g Geometry) IsTombstone() bool { return g.kind == KindTombstone || g.g == nil }

// IsEmpty reports whether g is a tombstone or an empty GEOS geometry.
func (g Geometry) IsEmpty() bool {
	return g.IsTombstone() || g.g.IsEmpty()
}

// IsLive reports whether g should be analysed and exported.
func (g Geometry) IsLive() bool { return !g.IsEmpty() }

// GEOS returns the wrapped geometry, nil for tombstones.
func (g Geometry) GEOS() *geos.Geom { return g.g }

// WKT returns the text form, or "" for a tombstone.
func (g Geometry) WKT() string {
	if g.IsTombstone() {
		return ""
	}
	return g.g.ToWKT()
}

// Clone returns a deep-independent copy.
func (g Geometry) Clone() Geometry {
	if g.IsTombstone() {
		return Tombstone()
	}
	return Geometry{kind: g.kind, g: g.g.Clone()}
}

// Length returns the planar length (perimeter for polygons), 0 for tombstones.
func (g Geometry) Length() float64 {
	if g.IsEmpty() {
		return 0
	}
	return g.g.Length()
}

func (g Geometry) String() string {
	if g.IsTombstone() {
		return "TOMBSTONE"
	}
	return g.WKT()
}

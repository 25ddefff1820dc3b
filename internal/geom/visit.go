package geom

import (
	"fmt"

	"github.com/twpayne/go-geos"
)

// Visitor declares behaviour for every Kind. Implementations receive the
// GEOS geometry for live kinds.
type Visitor[T any] interface {
	Tombstone() (T, error)
	Point(g *geos.Geom) (T, error)
	LineString(g *geos.Geom) (T, error)
	MultiLineString(g *geos.Geom) (T, error)
	Polygon(g *geos.Geom) (T, error)
	Collection(g *geos.Geom) (T, error)
}

// Visit dispatches g to the Visitor method for its Kind.
func Visit[T any](g Geometry, v Visitor[T]) (T, error) {
	if g.IsTombstone() {
		return v.Tombstone()
	}
	switch g.kind {
	case KindPoint:
		return v.Point(g.g)
	case KindLineString:
		return v.LineString(g.g)
	case KindMultiLineString:
		return v.MultiLineString(g.g)
	case KindPolygon:
		return v.Polygon(g.g)
	case KindCollection:
		return v.Collection(g.g)
	}
	var zero T
	return zero, fmt.Errorf("visit: unhandled kind %v", g.kind)
}

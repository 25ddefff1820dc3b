// Package geom provides the geometry variant used by every other package.
//
// A Geometry is a tagged value over the GEOS geometry types this project
// handles. The tag (Kind) is closed:
//
//   - KindTombstone: a deleted or unparsable slot. Holds no GEOS geometry.
//   - KindPoint
//   - KindLineString (LinearRing input is classified here too)
//   - KindMultiLineString
//   - KindPolygon
//   - KindCollection: MultiPoint, MultiPolygon and GeometryCollection, which
//     mostly appear as BUFFER or MAKE_VALID output.
//
// # Exhaustive handling
//
// Operations whose behaviour depends on the geometry type implement Visitor
// and are dispatched with Visit. Adding a Kind means adding a Visitor method,
// which breaks compilation of every strategy until it declares its behaviour.
//
// # GEOS ownership
//
// Geometries wrap *geos.Geom values created in geos.DefaultContext. GEOS
// operations never mutate their receiver, so a Geometry is immutable once
// built; Clone exists for callers that need an independent copy.
//
// geom imports nothing internal.
package geom

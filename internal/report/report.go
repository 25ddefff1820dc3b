// Package report exports the working geometries and renders the fix report.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/twpayne/go-geos"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/geom"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/store"
)

// ErrMixedGeometryTypes is returned by Export when the live geometries do not
// share one part family and so cannot form a single homogeneous collection.
var ErrMixedGeometryTypes = errors.New("mixed geometry types cannot be exported as one collection")

// Header is the first line of a rendered report.
const Header = "AXES SYSTEMS - GEOMETRY FIX REPORT"

type family int

const (
	familyNone family = iota
	familyPoint
	familyLine
	familyPolygon
)

var collectionType = map[family]geos.TypeID{
	familyPoint:   geos.TypeIDMultiPoint,
	familyLine:    geos.TypeIDMultiLineString,
	familyPolygon: geos.TypeIDMultiPolygon,
}

func (f family) String() string {
	switch f {
	case familyPoint:
		return "point"
	case familyLine:
		return "line"
	case familyPolygon:
		return "polygon"
	}
	return "none"
}

// Export returns the WKT of the live records: "" when there are none, the
// single geometry's WKT when there is one, and otherwise one MULTIPOINT,
// MULTILINESTRING or MULTIPOLYGON holding every part.
func Export(records []store.Record) (string, error) {
	var live []geom.Geometry
	for _, r := range records {
		if r.Geom.IsLive() {
			live = append(live, r.Geom)
		}
	}
	switch len(live) {
	case 0:
		return "", nil
	case 1:
		return live[0].WKT(), nil
	}

	fam := familyNone
	var parts []*geos.Geom
	for _, g := range live {
		var err error
		parts, fam, err = flatten(g.GEOS(), parts, fam)
		if err != nil {
			return "", fmt.Errorf("export: %w", err)
		}
	}
	if fam == familyNone {
		return "", nil
	}
	return geos.NewCollection(collectionType[fam], parts).ToWKT(), nil
}

// flatten appends clones of g's basic parts to parts, checking that every
// part belongs to fam.
func flatten(g *geos.Geom, parts []*geos.Geom, fam family) ([]*geos.Geom, family, error) {
	var got family
	switch g.TypeID() {
	case geos.TypeIDPoint:
		got = familyPoint
	case geos.TypeIDLineString, geos.TypeIDLinearRing:
		got = familyLine
	case geos.TypeIDPolygon:
		got = familyPolygon
	default:
		for i := range g.NumGeometries() {
			var err error
			parts, fam, err = flatten(g.Geometry(i), parts, fam)
			if err != nil {
				return nil, fam, err
			}
		}
		return parts, fam, nil
	}

	if g.IsEmpty() {
		return parts, fam, nil
	}
	if fam != familyNone && fam != got {
		return nil, fam, fmt.Errorf("%s part after %s parts: %w", got, fam, ErrMixedGeometryTypes)
	}
	if got == familyLine && g.TypeID() == geos.TypeIDLinearRing {
		return append(parts, geos.NewLineString(g.CoordSeq().ToCoords())), got, nil
	}
	return append(parts, g.Clone()), got, nil
}

// Render formats the plain-text fix report.
func Render(originalCount int, fixes []store.FixRecord) string {
	var b strings.Builder
	b.WriteString(Header + "\n")
	b.WriteString(strings.Repeat("=", len(Header)) + "\n\n")
	fmt.Fprintf(&b, "Total Objects processed: %d\n", originalCount)
	fmt.Fprintf(&b, "Total Fixes Applied: %d\n\n", len(fixes))

	for i, fix := range fixes {
		fmt.Fprintf(&b, "FIX #%d\n", i+1)
		fmt.Fprintf(&b, "Error ID: %s\n", fix.FindingID)
		fmt.Fprintf(&b, "Type: %s\n", fix.FixType)
		fmt.Fprintf(&b, "Action: %s\n", fix.Result)
		b.WriteString(strings.Repeat("-", 30) + "\n")
	}
	return b.String()
}

// Document is the JSON form of a report.
type Document struct {
	TotalObjects int               `json:"total_objects"`
	TotalFixes   int               `json:"total_fixes"`
	Fixes        []store.FixRecord `json:"fixes"`
}

// RenderJSON formats the report as indented JSON.
func RenderJSON(originalCount int, fixes []store.FixRecord) ([]byte, error) {
	if fixes == nil {
		fixes = []store.FixRecord{}
	}
	data, err := json.MarshalIndent(Document{
		TotalObjects: originalCount,
		TotalFixes:   len(fixes),
		Fixes:        fixes,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

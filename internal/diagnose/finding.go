package diagnose

import (
	"fmt"
	"strconv"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/geom"
)

// Kind categorises a finding.
type Kind string

const (
	KindInvalid      Kind = "invalid"
	KindDangle       Kind = "dangle"
	KindShortSegment Kind = "short"

	// KindProcessingError and KindInsufficientData are produced by the guarded
	// engine facade, never by Run.
	KindProcessingError  Kind = "processing_error"
	KindInsufficientData Kind = "insufficient_data"
)

// Label returns the human-readable finding type.
func (k Kind) Label() string {
	switch k {
	case KindInvalid:
		return "Invalid Geometry"
	case KindDangle:
		return "Dangle (Unconnected Endpoint)"
	case KindShortSegment:
		return "Short Line Segment"
	case KindProcessingError:
		return "Processing Error"
	case KindInsufficientData:
		return "Insufficient Data"
	}
	return string(k)
}

// Severity ranks findings.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityLow      Severity = "LOW"
)

// Role tells which end of a line part an endpoint is.
type Role string

const (
	RoleStart Role = "start"
	RoleEnd   Role = "end"
)

// NoPart marks a Ref that does not address a single line part.
const NoPart = -1

// Ref is the structured reference to what a finding is about.
type Ref struct {
	Kind  Kind `json:"kind"`
	Index int  `json:"geometry_index"`
	Line  int  `json:"line"`

	// Part is the member number within a MultiLineString, or NoPart.
	Part int  `json:"part"`
	Role Role `json:"role,omitempty"`
}

// ID renders the deterministic finding identifier: kind, source line and,
// for dangles, the sub-location ("p<part>-" only for multi-part lines).
func (r Ref) ID() string {
	id := string(r.Kind) + "-" + strconv.Itoa(r.Line)
	if r.Part != NoPart {
		id += "-p" + strconv.Itoa(r.Part)
	}
	if r.Role != "" {
		id += "-" + string(r.Role)
	}
	return id
}

func (r Ref) String() string { return r.ID() }

// Finding is one detected defect.
type Finding struct {
	ID            string      `json:"id"`
	Ref           Ref         `json:"ref"`
	Kind          Kind        `json:"kind"`
	Type          string      `json:"type"`
	Severity      Severity    `json:"severity"`
	GeometryIndex int         `json:"geometry_index"`
	LineNumber    int         `json:"line_number"`
	Description   string      `json:"description"`
	Location      string      `json:"location,omitempty"`
	Point         *geom.Coord `json:"point,omitempty"`
	WKT           string      `json:"wkt,omitempty"`
}

func newFinding(ref Ref, sev Severity, desc string) Finding {
	return Finding{
		ID:            ref.ID(),
		Ref:           ref,
		Kind:          ref.Kind,
		Type:          ref.Kind.Label(),
		Severity:      sev,
		GeometryIndex: ref.Index,
		LineNumber:    ref.Line,
		Description:   desc,
	}
}

// FormatLocation renders a coordinate the way findings carry it.
func FormatLocation(c geom.Coord) string {
	return fmt.Sprintf("%.6f, %.6f", c.X, c.Y)
}

// ProcessingError builds the single finding reported when a diagnostics pass
// fails unexpectedly.
func ProcessingError(cause any) Finding {
	f := newFinding(Ref{Kind: KindProcessingError, Index: -1, Part: NoPart}, SeverityCritical,
		fmt.Sprintf("Failed to process geometry: %v", cause))
	f.ID = string(KindProcessingError)
	return f
}

// InsufficientData builds the finding reported when nothing live is loaded.
func InsufficientData() Finding {
	f := newFinding(Ref{Kind: KindInsufficientData, Index: -1, Part: NoPart}, SeverityLow,
		"No valid geometries found.")
	f.ID = string(KindInsufficientData)
	return f
}

// Package wkt splits multi-line WKT text into statements and parses each one.
//
// A statement spans one or more physical lines and ends on the first line
// whose trimmed text ends with ')'. Blank lines are skipped. An optional
// "<tag>;" prefix such as "SRID=4326;" is discarded: only the text after the
// last ';' is parsed.
//
// Every statement yields exactly one Statement. Statements that fail to parse,
// or that parse to an empty geometry, are tombstoned so that Statement.Index
// always identifies one source statement.
package wkt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/geom"
)

// Statement is one parsed geometry statement.
type Statement struct {
	Index      int
	SourceLine int // 1-based line of the first non-blank line of the statement
	Geom       geom.Geometry
}

// ParseError records a statement that was tombstoned.
type ParseError struct {
	Index int
	Line  int
	Text  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrEmptyGeometry marks a statement that parsed to an empty geometry.
var ErrEmptyGeometry = errors.New("empty geometry")

// ErrUnterminated marks trailing text with no closing ')'.
var ErrUnterminated = errors.New("unterminated statement")

// Result is the output of Parse.
type Result struct {
	Statements []Statement
	Errors     []*ParseError
}

// Live counts statements holding a live geometry.
func (r Result) Live() int {
	n := 0
	for _, s := range r.Statements {
		if s.Geom.IsLive() {
			n++
		}
	}
	return n
}

// Parse splits text into statements and parses each one.
func Parse(text string) Result {
	var (
		res       Result
		buf       strings.Builder
		startLine int
	)

	flush := func() {
		idx := len(res.Statements)
		raw := strings.TrimSpace(buf.String())
		g, err := parseStatement(raw)
		if err != nil {
			res.Errors = append(res.Errors, &ParseError{Index: idx, Line: startLine, Text: raw, Err: err})
			g = geom.Tombstone()
		}
		res.Statements = append(res.Statements, Statement{Index: idx, SourceLine: startLine, Geom: g})
		buf.Reset()
	}

	for i, rawLine := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		if buf.Len() == 0 {
			startLine = lineNo
		}
		buf.WriteString(line)
		buf.WriteByte(' ')
		if strings.HasSuffix(line, ")") {
			flush()
		}
	}

	if buf.Len() > 0 {
		idx := len(res.Statements)
		raw := strings.TrimSpace(buf.String())
		res.Errors = append(res.Errors, &ParseError{Index: idx, Line: startLine, Text: raw, Err: ErrUnterminated})
		res.Statements = append(res.Statements, Statement{Index: idx, SourceLine: startLine, Geom: geom.Tombstone()})
	}
	return res
}

// StripPrefix returns the text after the last ';', trimmed.
func StripPrefix(raw string) string {
	if i := strings.LastIndexByte(raw, ';'); i >= 0 {
		raw = raw[i+1:]
	}
	return strings.TrimSpace(raw)
}

func parseStatement(raw string) (geom.Geometry, error) {
	g, err := geom.Parse(StripPrefix(raw))
	if err != nil {
		return geom.Geometry{}, err
	}
	if g.IsEmpty() {
		return geom.Geometry{}, ErrEmptyGeometry
	}
	return g, nil
}

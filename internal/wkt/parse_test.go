package wkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/geom"
)

func TestParseSingleLineStatements(t *testing.T) {
	res := Parse("LINESTRING(0 0, 10 0)\nLINESTRING(20 0, 30 0)\n")

	require.Len(t, res.Statements, 2)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 2, res.Live())

	for i, st := range res.Statements {
		assert.Equal(t, i, st.Index)
		assert.Equal(t, i+1, st.SourceLine)
		assert.Equal(t, geom.KindLineString, st.Geom.Kind())
	}
}

func TestParseMultiLineStatement(t *testing.T) {
	text := "\n\nLINESTRING(\n  0 0,\n\n  5 0,\n  5 5\n)\nPOINT(1 1)"
	res := Parse(text)

	require.Len(t, res.Statements, 2)
	assert.Equal(t, 3, res.Statements[0].SourceLine)
	assert.Equal(t, []geom.Coord{{0, 0}, {5, 0}, {5, 5}}, res.Statements[0].Geom.Coords())
	assert.Equal(t, 9, res.Statements[1].SourceLine)
	assert.Equal(t, geom.KindPoint, res.Statements[1].Geom.Kind())
}

func TestParseStripsPrefix(t *testing.T) {
	res := Parse("SRID=4326;LINESTRING(0 0, 1 1)\nfoo;bar;POINT(3 4)\r\n")

	require.Len(t, res.Statements, 2)
	assert.Empty(t, res.Errors)
	assert.Equal(t, geom.KindLineString, res.Statements[0].Geom.Kind())
	assert.Equal(t, []geom.Coord{{3, 4}}, res.Statements[1].Geom.Coords())
}

func TestParseMalformedStatementIsTombstoned(t *testing.T) {
	res := Parse("LINESTRING(0 0, 1 1)\nLINESTRING(nonsense)\nPOINT(2 2)")

	require.Len(t, res.Statements, 3)
	assert.True(t, res.Statements[1].Geom.IsTombstone())
	assert.Equal(t, 2, res.Statements[1].SourceLine)
	assert.Equal(t, geom.KindPoint, res.Statements[2].Geom.Kind())
	assert.Equal(t, 2, res.Live())

	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Equal(t, 2, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Error(), "line 2")
}

func TestParseEmptyGeometryIsTombstoned(t *testing.T) {
	res := Parse("LINESTRING(0 0, 1 1)\nSRID=4326;)\nGEOMETRYCOLLECTION(POINT EMPTY)\nPOINT(5 5)")

	require.Len(t, res.Statements, 4)
	assert.True(t, res.Statements[1].Geom.IsTombstone())
	assert.True(t, res.Statements[2].Geom.IsTombstone())
	assert.Equal(t, 4, res.Statements[3].SourceLine)

	require.Len(t, res.Errors, 2)
	assert.ErrorIs(t, res.Errors[1], ErrEmptyGeometry)
}

func TestParseUnterminatedTrailingStatement(t *testing.T) {
	res := Parse("POINT(0 0)\nLINESTRING(0 0,\n 1 1")

	require.Len(t, res.Statements, 2)
	assert.True(t, res.Statements[1].Geom.IsTombstone())
	assert.Equal(t, 2, res.Statements[1].SourceLine)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrUnterminated)
}

func TestParseEmptyInput(t *testing.T) {
	res := Parse("\n   \n\t\n")
	assert.Empty(t, res.Statements)
	assert.Empty(t, res.Errors)
	assert.Zero(t, res.Live())
}

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, "POINT (1 2)", StripPrefix("SRID=4326; POINT (1 2) "))
	assert.Equal(t, "POINT (1 2)", StripPrefix("POINT (1 2)"))
	assert.Equal(t, ")", StripPrefix("a;b;)"))
}

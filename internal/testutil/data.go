package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// NetworkWKT is a small road network: lines 1 and 2 share an endpoint, line 3
// stops 0.3 short of line 2, line 4 is isolated and too short, and the last
// statement is a self-intersecting polygon.
const NetworkWKT = `LINESTRING(0 0, 10 0)
LINESTRING(10 0, 10 10)
LINESTRING(10.3 5,
  20 5)
LINESTRING(40 40, 41 40)
POLYGON((0 20, 10 30, 10 20, 0 30, 0 20))
`

// WriteFile writes content to name inside a fresh temp dir and returns the
// full path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

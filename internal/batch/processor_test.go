package batch

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTriangleBundle writes a minimal binary bundle holding a single
// position-only triangle mesh.
func writeTriangleBundle(t *testing.T, dir string) string {
	t.Helper()

	u32 := func(b []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(b, v) }
	f32 := func(b []byte, v float32) []byte { return u32(b, math.Float32bits(v)) }
	str := func(b []byte, s string) []byte { return append(u32(b, uint32(len(s))), s...) }

	var body []byte
	body = u32(body, 1) // mesh count
	body = u32(body, 1) // attribute count
	body = u32(body, 3)
	body = str(body, "GL_FLOAT")
	body = str(body, "VERTEX_ATTRIB_POSITION")
	body = u32(body, 9)
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		body = f32(body, v)
	}
	body = u32(body, 1) // part count
	body = str(body, "part0")
	body = u32(body, 3)
	for _, i := range []uint16{0, 1, 2} {
		body = binary.LittleEndian.AppendUint16(body, i)
	}
	for _, v := range []float32{0, 0, 0, 1, 1, 0} {
		body = f32(body, v)
	}

	// Header: signature, version, one reference whose offset points just
	// past its own offset field.
	out := []byte{'C', '3', 'B', 0, 0, 6}
	out = u32(out, 1)
	out = str(out, "mesh")
	out = u32(out, 34)
	offset := len(out) + 4
	out = u32(out, uint32(offset))
	out = append(out, body...)

	path := filepath.Join(dir, "triangle.c3b")
	require.NoError(t, os.WriteFile(path, out, 0644))
	return path
}

func TestRunRendersBundle(t *testing.T) {
	dir := t.TempDir()
	path := writeTriangleBundle(t, dir)

	cfg := Config{
		OutputDir:   filepath.Join(dir, "out"),
		RenderSize:  32,
		Supersample: 2,
		Workers:     2,
	}
	results := Run(cfg, []string{path})
	require.Len(t, results, 1)
	require.True(t, results[0].Success, results[0].Error)

	info, err := os.Stat(results[0].Image)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Equal(t, "triangle.webp", filepath.Base(results[0].Image))
}

func TestRunReportsFailures(t *testing.T) {
	cfg := Config{OutputDir: t.TempDir(), RenderSize: 16, Supersample: 1, Workers: 1}
	results := Run(cfg, []string{"/nonexistent/model.c3b"})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Error)
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	results := []Result{
		{Path: "a.c3b", Image: filepath.Join(dir, "a.webp"), Success: true},
		{Path: "b.c3b", Error: "no triangles in bundle"},
	}
	require.NoError(t, WriteManifest(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"a.webp"`)
	assert.Contains(t, string(data), "no triangles in bundle")
}

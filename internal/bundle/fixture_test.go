package bundle

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// payload accumulates one section body in file byte order.
type payload struct {
	data []byte
}

func (p *payload) u8(v byte) *payload {
	p.data = append(p.data, v)
	return p
}

func (p *payload) u16(v uint16) *payload {
	p.data = binary.LittleEndian.AppendUint16(p.data, v)
	return p
}

func (p *payload) u32(v uint32) *payload {
	p.data = binary.LittleEndian.AppendUint32(p.data, v)
	return p
}

func (p *payload) f32(v float32) *payload {
	return p.u32(math.Float32bits(v))
}

func (p *payload) f32s(vs ...float32) *payload {
	for _, v := range vs {
		p.f32(v)
	}
	return p
}

func (p *payload) str(s string) *payload {
	p.u32(uint32(len(s)))
	p.data = append(p.data, s...)
	return p
}

func (p *payload) identity() *payload {
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			if col == row {
				p.f32(1)
			} else {
				p.f32(0)
			}
		}
	}
	return p
}

type section struct {
	id   string
	typ  uint32
	body []byte
}

// writeC3B assembles a complete binary bundle file in a temp dir and returns
// its path. Section offsets are computed from the header layout.
func writeC3B(t *testing.T, major, minor byte, sections ...section) string {
	t.Helper()

	headerSize := 4 + 2 + 4
	for _, s := range sections {
		headerSize += 4 + len(s.id) + 4 + 4
	}

	var out payload
	out.data = append(out.data, 'C', '3', 'B', 0)
	out.u8(major).u8(minor)
	out.u32(uint32(len(sections)))

	offset := headerSize
	for _, s := range sections {
		out.str(s.id)
		out.u32(s.typ)
		out.u32(uint32(offset))
		offset += len(s.body)
	}
	for _, s := range sections {
		out.data = append(out.data, s.body...)
	}

	path := filepath.Join(t.TempDir(), "fixture.c3b")
	require.NoError(t, os.WriteFile(path, out.data, 0644))
	return path
}

// writeC3T drops a JSON bundle document into a temp dir.
func writeC3T(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.c3t")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	return path
}

// loadBundle loads path or fails the test.
func loadBundle(t *testing.T, path string) *Bundle {
	t.Helper()
	b := New()
	require.NoError(t, b.Load(path))
	return b
}

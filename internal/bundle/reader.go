package bundle

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/flywave/go3d/mat4"
)

// Reader is a sequential cursor over a loaded bundle buffer. All reads are
// bounds-checked; truncation is reported through ok flags or short counts,
// never a panic. On a failed read the cursor is clamped to the end of the
// buffer so every following read also fails.
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// CanRead reports whether count elements of elemSize bytes fit in the
// remaining buffer. Loaders call this before allocating count-sized slices
// so a malformed count cannot force a huge allocation.
func (r *Reader) CanRead(elemSize, count int) bool {
	if elemSize <= 0 || count < 0 {
		return false
	}
	return count <= r.Remaining()/elemSize
}

func (r *Reader) fail() {
	r.pos = len(r.data)
}

func (r *Reader) ReadUint8() (byte, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}
	b := r.data[r.pos]
	r.pos++
	return b, true
}

// ReadBytes copies len(dst) bytes into dst and returns the number copied.
// A short read leaves dst partially filled and exhausts the cursor.
func (r *Reader) ReadBytes(dst []byte) int {
	n := copy(dst, r.data[r.pos:])
	if n < len(dst) {
		r.fail()
		return n
	}
	r.pos += n
	return n
}

func (r *Reader) ReadUint16() (uint16, bool) {
	if r.pos+2 > len(r.data) {
		r.fail()
		return 0, false
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, true
}

func (r *Reader) ReadUint32() (uint32, bool) {
	if r.pos+4 > len(r.data) {
		r.fail()
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, true
}

func (r *Reader) ReadFloat() (float32, bool) {
	v, ok := r.ReadUint32()
	return math.Float32frombits(v), ok
}

// ReadFloats fills dst completely or reports failure.
func (r *Reader) ReadFloats(dst []float32) bool {
	if r.pos+4*len(dst) > len(r.data) {
		r.fail()
		return false
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.pos:]))
		r.pos += 4
	}
	return true
}

// ReadUint16s fills dst completely or reports failure.
func (r *Reader) ReadUint16s(dst []uint16) bool {
	if r.pos+2*len(dst) > len(r.data) {
		r.fail()
		return false
	}
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint16(r.data[r.pos:])
		r.pos += 2
	}
	return true
}

// ReadString reads a 4-byte length prefix followed by that many bytes.
// Truncation yields the empty string.
func (r *Reader) ReadString() string {
	n, ok := r.ReadUint32()
	if !ok {
		return ""
	}
	if int(n) > r.Remaining() {
		r.fail()
		return ""
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s
}

// ReadMatrix reads 16 floats in column-major file order.
func (r *Reader) ReadMatrix() (mat4.T, bool) {
	var f [16]float32
	if !r.ReadFloats(f[:]) {
		return mat4.Ident, false
	}
	return matFromSlice(f[:]), true
}

// SeekTo moves the cursor. Targets outside the buffer are rejected and leave
// the cursor unchanged.
func (r *Reader) SeekTo(offset int64, whence int) bool {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = int64(r.pos) + offset
	case io.SeekEnd:
		target = int64(len(r.data)) + offset
	default:
		return false
	}
	if target < 0 || target > int64(len(r.data)) {
		return false
	}
	r.pos = int(target)
	return true
}

// matFromSlice builds a matrix from up to 16 column-major floats. Missing
// trailing elements keep their identity values.
func matFromSlice(f []float32) mat4.T {
	m := mat4.Ident
	if len(f) > 16 {
		f = f[:16]
	}
	for i, v := range f {
		m[i/4][i%4] = v
	}
	return m
}

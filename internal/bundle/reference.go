package bundle

import "io"

// Section type tags used by reference-table entries.
const (
	refTypeScene            uint32 = 1
	refTypeNode             uint32 = 2
	refTypeAnimations       uint32 = 3
	refTypeAnimation        uint32 = 4
	refTypeAnimationChannel uint32 = 5
	refTypeModel            uint32 = 10
	refTypeMaterial         uint32 = 16
	refTypeEffect           uint32 = 18
	refTypeCamera           uint32 = 32
	refTypeLight            uint32 = 33
	refTypeMesh             uint32 = 34
	refTypeMeshPart         uint32 = 35
	refTypeMeshSkin         uint32 = 36
)

// Reference is one index entry of a binary bundle: a named, typed section at
// a byte offset. The table is rebuilt on every load and dropped on Clear.
type Reference struct {
	ID     string
	Type   uint32
	Offset uint32
}

// seekToFirstType scans the reference table for the first entry of the given
// type (and id, when non-empty) and positions the binary reader at its
// offset. A missing entry or an out-of-range offset reports not-found.
func (b *Bundle) seekToFirstType(typ uint32, id string) *Reference {
	for i := range b.references {
		ref := &b.references[i]
		if ref.Type != typ {
			continue
		}
		if id != "" && id != ref.ID {
			continue
		}
		if !b.reader.SeekTo(int64(ref.Offset), io.SeekStart) {
			return nil
		}
		return ref
	}
	return nil
}

package bundle

import (
	"fmt"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// loadMeshesBinary parses the current binary mesh list. Any short read
// aborts the whole list; no partial aggregate escapes.
func loadMeshesBinary(b *Bundle) ([]*MeshData, error) {
	if b.seekToFirstType(refTypeMesh, "") == nil {
		return nil, fmt.Errorf("%w: mesh", ErrSectionNotFound)
	}
	r := b.reader

	meshCount, ok := r.ReadUint32()
	if !ok {
		return nil, fmt.Errorf("%w: mesh count", ErrTruncated)
	}

	var meshes []*MeshData
	for i := uint32(0); i < meshCount; i++ {
		attribCount, ok := r.ReadUint32()
		if !ok || attribCount < 1 {
			return nil, fmt.Errorf("%w: mesh attribute count", ErrTruncated)
		}
		mesh := &MeshData{Attribs: make([]MeshVertexAttrib, 0, attribCount)}
		for j := uint32(0); j < attribCount; j++ {
			size, ok := r.ReadUint32()
			if !ok {
				return nil, fmt.Errorf("%w: mesh attribute size", ErrTruncated)
			}
			typ, err := ParseVertexType(r.ReadString(), int(size))
			if err != nil {
				return nil, err
			}
			attrib, err := ParseVertexAttrib(r.ReadString())
			if err != nil {
				return nil, err
			}
			mesh.Attribs = append(mesh.Attribs, MeshVertexAttrib{Type: typ, Attrib: attrib})
		}

		vertexSizeInFloat, ok := r.ReadUint32()
		if !ok || vertexSizeInFloat == 0 {
			return nil, fmt.Errorf("%w: vertex float count", ErrTruncated)
		}
		if !r.CanRead(4, int(vertexSizeInFloat)) {
			return nil, fmt.Errorf("bundle: implausible vertex float count %d", vertexSizeInFloat)
		}
		mesh.Vertex = make([]float32, vertexSizeInFloat)
		if !r.ReadFloats(mesh.Vertex) {
			return nil, fmt.Errorf("%w: vertex data", ErrTruncated)
		}

		// Oldest current-format files omit the part count; it defaults to 1.
		partCount := uint32(1)
		if n, ok := r.ReadUint32(); ok {
			partCount = n
		}
		for k := uint32(0); k < partCount; k++ {
			mesh.SubMeshIDs = append(mesh.SubMeshIDs, r.ReadString())

			indexCount, ok := r.ReadUint32()
			if !ok {
				return nil, fmt.Errorf("%w: index count", ErrTruncated)
			}
			if !r.CanRead(2, int(indexCount)) {
				return nil, fmt.Errorf("bundle: implausible index count %d", indexCount)
			}
			indices := make([]uint16, indexCount)
			if !r.ReadUint16s(indices) {
				return nil, fmt.Errorf("%w: index data", ErrTruncated)
			}
			mesh.SubMeshIndices = append(mesh.SubMeshIndices, indices)

			// Versions 0.3 through 0.5 store no per-part box.
			if b.version != "0.3" && b.version != "0.4" && b.version != "0.5" {
				var box [6]float32
				if !r.ReadFloats(box[:]) {
					return nil, fmt.Errorf("%w: sub-mesh aabb", ErrTruncated)
				}
				mesh.SubMeshAABBs = append(mesh.SubMeshAABBs, vec3d.Box{
					Min: vec3d.T{float64(box[0]), float64(box[1]), float64(box[2])},
					Max: vec3d.T{float64(box[3]), float64(box[4]), float64(box[5])},
				})
			} else {
				mesh.SubMeshAABBs = append(mesh.SubMeshAABBs,
					calculateAABB(mesh.Vertex, mesh.PerVertexSize(), indices))
			}
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// loadMeshesBinary01 parses the oldest binary layout: numeric attribute
// codes, one implicit unnamed sub-mesh.
func loadMeshesBinary01(b *Bundle) ([]*MeshData, error) {
	if b.seekToFirstType(refTypeMesh, "") == nil {
		return nil, fmt.Errorf("%w: mesh", ErrSectionNotFound)
	}
	r := b.reader

	mesh, err := readLegacyMeshHeader(r, true)
	if err != nil {
		return nil, err
	}

	indexCount, ok := r.ReadUint32()
	if !ok {
		return nil, fmt.Errorf("%w: index count", ErrTruncated)
	}
	if !r.CanRead(2, int(indexCount)) {
		return nil, fmt.Errorf("bundle: implausible index count %d", indexCount)
	}
	indices := make([]uint16, indexCount)
	if !r.ReadUint16s(indices) {
		return nil, fmt.Errorf("%w: index data", ErrTruncated)
	}
	mesh.SubMeshIndices = append(mesh.SubMeshIndices, indices)
	mesh.SubMeshAABBs = append(mesh.SubMeshAABBs,
		calculateAABB(mesh.Vertex, mesh.PerVertexSize(), indices))

	return []*MeshData{mesh}, nil
}

// loadMeshesBinary02 parses the second legacy layout: like 0.1 but with an
// explicit sub-mesh count and unrecognized attribute codes tolerated.
func loadMeshesBinary02(b *Bundle) ([]*MeshData, error) {
	if b.seekToFirstType(refTypeMesh, "") == nil {
		return nil, fmt.Errorf("%w: mesh", ErrSectionNotFound)
	}
	r := b.reader

	mesh, err := readLegacyMeshHeader(r, false)
	if err != nil {
		return nil, err
	}

	subMeshCount, ok := r.ReadUint32()
	if !ok {
		return nil, fmt.Errorf("%w: sub-mesh count", ErrTruncated)
	}
	for i := uint32(0); i < subMeshCount; i++ {
		indexCount, ok := r.ReadUint32()
		if !ok {
			return nil, fmt.Errorf("%w: index count", ErrTruncated)
		}
		if !r.CanRead(2, int(indexCount)) {
			return nil, fmt.Errorf("bundle: implausible index count %d", indexCount)
		}
		indices := make([]uint16, indexCount)
		if !r.ReadUint16s(indices) {
			return nil, fmt.Errorf("%w: index data", ErrTruncated)
		}
		mesh.SubMeshIndices = append(mesh.SubMeshIndices, indices)
		mesh.SubMeshAABBs = append(mesh.SubMeshAABBs,
			calculateAABB(mesh.Vertex, mesh.PerVertexSize(), indices))
	}

	return []*MeshData{mesh}, nil
}

// readLegacyMeshHeader reads the attribute table and vertex buffer shared by
// both legacy binary layouts. All components are floats; only the semantic
// code varies. strictAttribs rejects unknown codes, otherwise they are kept
// as VertexAttribError.
func readLegacyMeshHeader(r *Reader, strictAttribs bool) (*MeshData, error) {
	attribCount, ok := r.ReadUint32()
	if !ok || attribCount < 1 {
		return nil, fmt.Errorf("%w: mesh attribute count", ErrTruncated)
	}

	mesh := &MeshData{Attribs: make([]MeshVertexAttrib, 0, attribCount)}
	for i := uint32(0); i < attribCount; i++ {
		usage, ok := r.ReadUint32()
		if !ok {
			return nil, fmt.Errorf("%w: mesh attribute usage", ErrTruncated)
		}
		size, ok := r.ReadUint32()
		if !ok {
			return nil, fmt.Errorf("%w: mesh attribute size", ErrTruncated)
		}
		typ, err := ParseVertexType("GL_FLOAT", int(size))
		if err != nil {
			return nil, err
		}
		attrib, err := vertexAttribFromLegacyCode(usage)
		if err != nil && strictAttribs {
			return nil, err
		}
		mesh.Attribs = append(mesh.Attribs, MeshVertexAttrib{Type: typ, Attrib: attrib})
	}

	vertexSizeInFloat, ok := r.ReadUint32()
	if !ok || vertexSizeInFloat == 0 {
		return nil, fmt.Errorf("%w: vertex float count", ErrTruncated)
	}
	if !r.CanRead(4, int(vertexSizeInFloat)) {
		return nil, fmt.Errorf("bundle: implausible vertex float count %d", vertexSizeInFloat)
	}
	mesh.Vertex = make([]float32, vertexSizeInFloat)
	if !r.ReadFloats(mesh.Vertex) {
		return nil, fmt.Errorf("%w: vertex data", ErrTruncated)
	}
	return mesh, nil
}

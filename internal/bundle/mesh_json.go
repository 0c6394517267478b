package bundle

import (
	"encoding/json"
	"fmt"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

type jsonMeshAttr struct {
	Size      int    `json:"size"`
	Type      string `json:"type"`
	Attribute string `json:"attribute"`
}

type jsonMeshPart struct {
	ID      string    `json:"id"`
	Indices []uint32  `json:"indices"`
	AABB    []float32 `json:"aabb"`
}

type jsonMesh struct {
	Attributes []jsonMeshAttr  `json:"attributes"`
	Vertices   []float32       `json:"vertices"`
	Parts      []jsonMeshPart  `json:"parts"`
	AABB       json.RawMessage `json:"aabb"`
}

// jsonLegacyBody is the one-level-deeper vertex/index container of the
// legacy JSON mesh layouts.
type jsonLegacyBody struct {
	VertexSize int       `json:"vertexsize"`
	Vertices   []float32 `json:"vertices"`
	IndexNum   uint32    `json:"indexnum"`
	Indices    []uint32  `json:"indices"`
}

type jsonLegacyMesh struct {
	Attributes []jsonMeshAttr   `json:"attributes"`
	Body       []jsonLegacyBody `json:"body"`
	Vertex     []jsonLegacyBody `json:"vertex"`
	SubMesh    []jsonLegacyBody `json:"submesh"`
}

func parseJSONAttribs(attrs []jsonMeshAttr) ([]MeshVertexAttrib, error) {
	out := make([]MeshVertexAttrib, 0, len(attrs))
	for _, a := range attrs {
		typ, err := ParseVertexType(a.Type, a.Size)
		if err != nil {
			return nil, err
		}
		attrib, err := ParseVertexAttrib(a.Attribute)
		if err != nil {
			return nil, err
		}
		out = append(out, MeshVertexAttrib{Type: typ, Attrib: attrib})
	}
	return out, nil
}

func toIndexArray(indices []uint32) []uint16 {
	out := make([]uint16, len(indices))
	for i, v := range indices {
		out[i] = uint16(v)
	}
	return out
}

// loadMeshesJSON parses the current "meshes" array. A stored per-part box is
// honored only when the mesh object itself also carries an "aabb" member;
// otherwise the box is computed, mirroring the binary reader's fallback.
func loadMeshesJSON(b *Bundle) ([]*MeshData, error) {
	if b.doc.Meshes == nil {
		return nil, fmt.Errorf("%w: meshes", ErrSectionNotFound)
	}
	var jmeshes []jsonMesh
	if err := json.Unmarshal(b.doc.Meshes, &jmeshes); err != nil {
		return nil, fmt.Errorf("bundle: malformed meshes: %w", err)
	}

	var meshes []*MeshData
	for _, jm := range jmeshes {
		attribs, err := parseJSONAttribs(jm.Attributes)
		if err != nil {
			return nil, err
		}
		mesh := &MeshData{Attribs: attribs, Vertex: jm.Vertices}

		for _, part := range jm.Parts {
			mesh.SubMeshIDs = append(mesh.SubMeshIDs, part.ID)
			indices := toIndexArray(part.Indices)
			mesh.SubMeshIndices = append(mesh.SubMeshIndices, indices)

			if jm.AABB != nil && len(part.AABB) == 6 {
				mesh.SubMeshAABBs = append(mesh.SubMeshAABBs, vec3d.Box{
					Min: vec3d.T{float64(part.AABB[0]), float64(part.AABB[1]), float64(part.AABB[2])},
					Max: vec3d.T{float64(part.AABB[3]), float64(part.AABB[4]), float64(part.AABB[5])},
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

// loadMeshesJSON12 parses the "mesh" layout of 1.2 files: a single mesh
// whose vertex and index data sit in mesh[0].body[0].
func loadMeshesJSON12(b *Bundle) ([]*MeshData, error) {
	if b.doc.Mesh == nil {
		return nil, fmt.Errorf("%w: mesh", ErrSectionNotFound)
	}
	var jmeshes []jsonLegacyMesh
	if err := json.Unmarshal(b.doc.Mesh, &jmeshes); err != nil {
		return nil, fmt.Errorf("bundle: malformed mesh: %w", err)
	}
	if len(jmeshes) == 0 || len(jmeshes[0].Body) == 0 {
		return nil, fmt.Errorf("bundle: mesh body missing")
	}
	jm := jmeshes[0]
	body := jm.Body[0]

	attribs, err := parseJSONAttribs(jm.Attributes)
	if err != nil {
		return nil, err
	}
	mesh := &MeshData{Attribs: attribs, Vertex: legacyVertexBuffer(body)}

	indices := legacyIndexBuffer(body)
	mesh.SubMeshIndices = append(mesh.SubMeshIndices, indices)
	mesh.SubMeshAABBs = append(mesh.SubMeshAABBs,
		calculateAABB(mesh.Vertex, mesh.PerVertexSize(), indices))

	return []*MeshData{mesh}, nil
}

// loadMeshesJSON02 parses the "mesh" layout of 0.2 files: a single mesh with
// its vertices under mesh[0].vertex[0] and its parts under mesh[0].submesh.
func loadMeshesJSON02(b *Bundle) ([]*MeshData, error) {
	if b.doc.Mesh == nil {
		return nil, fmt.Errorf("%w: mesh", ErrSectionNotFound)
	}
	var jmeshes []jsonLegacyMesh
	if err := json.Unmarshal(b.doc.Mesh, &jmeshes); err != nil {
		return nil, fmt.Errorf("bundle: malformed mesh: %w", err)
	}
	if len(jmeshes) == 0 || len(jmeshes[0].Vertex) == 0 {
		return nil, fmt.Errorf("bundle: mesh vertex block missing")
	}
	jm := jmeshes[0]

	attribs, err := parseJSONAttribs(jm.Attributes)
	if err != nil {
		return nil, err
	}
	mesh := &MeshData{Attribs: attribs, Vertex: legacyVertexBuffer(jm.Vertex[0])}

	for _, sub := range jm.SubMesh {
		indices := legacyIndexBuffer(sub)
		mesh.SubMeshIndices = append(mesh.SubMeshIndices, indices)
		mesh.SubMeshAABBs = append(mesh.SubMeshAABBs,
			calculateAABB(mesh.Vertex, mesh.PerVertexSize(), indices))
	}

	return []*MeshData{mesh}, nil
}

// legacyVertexBuffer sizes the buffer from the declared vertexsize and fills
// it from however many values the document actually carries.
func legacyVertexBuffer(body jsonLegacyBody) []float32 {
	if body.VertexSize < 0 {
		return nil
	}
	buf := make([]float32, body.VertexSize)
	copy(buf, body.Vertices)
	return buf
}

// legacyIndexBuffer sizes the array from the declared indexnum.
func legacyIndexBuffer(body jsonLegacyBody) []uint16 {
	buf := make([]uint16, body.IndexNum)
	for i, v := range body.Indices {
		if i >= len(buf) {
			break
		}
		buf[i] = uint16(v)
	}
	return buf
}

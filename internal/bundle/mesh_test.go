package bundle

import (
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// currentMeshBody builds one current-format mesh section: a position-only
// triangle with one named part. withBox appends the explicit per-part box.
func currentMeshBody(withBox bool) []byte {
	p := &payload{}
	p.u32(1) // mesh count
	p.u32(1) // attribute count
	p.u32(3).str("GL_FLOAT").str("VERTEX_ATTRIB_POSITION")
	p.u32(9)
	p.f32s(
		0, 0, 0,
		1, 0, 0,
		0, 2, 0,
	)
	p.u32(1) // part count
	p.str("part0")
	p.u32(3)
	p.u16(0).u16(1).u16(2)
	if withBox {
		p.f32s(-5, -5, -5, 5, 5, 5)
	}
	return p.data
}

func TestLoadMeshesBinaryExplicitBox(t *testing.T) {
	path := writeC3B(t, 0, 6, section{id: "m", typ: refTypeMesh, body: currentMeshBody(true)})
	b := loadBundle(t, path)

	meshes, err := b.LoadMeshes()
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	mesh := meshes[0]
	assert.Equal(t, 12, mesh.PerVertexSize())
	assert.Equal(t, 3, mesh.VertexCount())
	assert.Equal(t, []string{"part0"}, mesh.SubMeshIDs)
	require.Len(t, mesh.SubMeshIndices, 1)
	assert.Equal(t, []uint16{0, 1, 2}, mesh.SubMeshIndices[0])

	// Version 0.6 stores the box; the file's values win over the vertices.
	require.Len(t, mesh.SubMeshAABBs, 1)
	assert.Equal(t, vec3d.T{-5, -5, -5}, mesh.SubMeshAABBs[0].Min)
	assert.Equal(t, vec3d.T{5, 5, 5}, mesh.SubMeshAABBs[0].Max)
}

func TestLoadMeshesBinaryComputedBox(t *testing.T) {
	// Versions 0.3 through 0.5 carry no stored box.
	path := writeC3B(t, 0, 5, section{id: "m", typ: refTypeMesh, body: currentMeshBody(false)})
	b := loadBundle(t, path)

	meshes, err := b.LoadMeshes()
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	box := meshes[0].SubMeshAABBs[0]
	assert.Equal(t, vec3d.T{0, 0, 0}, box.Min)
	assert.Equal(t, vec3d.T{1, 2, 0}, box.Max)
}

func TestLoadMeshesBinaryTruncatedVertexData(t *testing.T) {
	p := &payload{}
	p.u32(1)
	p.u32(1)
	p.u32(3).str("GL_FLOAT").str("VERTEX_ATTRIB_POSITION")
	p.u32(1 << 29) // more floats than the file can hold

	path := writeC3B(t, 0, 6, section{id: "m", typ: refTypeMesh, body: p.data})
	b := loadBundle(t, path)

	meshes, err := b.LoadMeshes()
	assert.Error(t, err)
	assert.Empty(t, meshes)
}

func TestLoadMeshesBinaryUnknownAttribute(t *testing.T) {
	p := &payload{}
	p.u32(1)
	p.u32(1)
	p.u32(3).str("GL_FLOAT").str("VERTEX_ATTRIB_WHATEVER")

	path := writeC3B(t, 0, 6, section{id: "m", typ: refTypeMesh, body: p.data})
	b := loadBundle(t, path)

	_, err := b.LoadMeshes()
	assert.Error(t, err)
}

func TestLoadMeshesBinary01(t *testing.T) {
	p := &payload{}
	p.u32(1)          // attribute count
	p.u32(0).u32(3)   // position, 3 floats
	p.u32(6)          // vertex floats
	p.f32s(0, 0, 0, 3, 4, 5)
	p.u32(2)
	p.u16(0).u16(1)

	path := writeC3B(t, 0, 1, section{id: "m", typ: refTypeMesh, body: p.data})
	b := loadBundle(t, path)

	meshes, err := b.LoadMeshes()
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	mesh := meshes[0]
	assert.Equal(t, VertexAttribPosition, mesh.Attribs[0].Attrib)
	assert.Empty(t, mesh.SubMeshIDs)
	require.Len(t, mesh.SubMeshIndices, 1)
	assert.Equal(t, vec3d.T{3, 4, 5}, mesh.SubMeshAABBs[0].Max)
}

func TestLoadMeshesBinary02MultipleParts(t *testing.T) {
	p := &payload{}
	p.u32(1)
	p.u32(99).u32(3) // unknown code tolerated in 0.2
	p.u32(6)
	p.f32s(0, 0, 0, 1, 1, 1)
	p.u32(2) // sub-mesh count
	p.u32(1)
	p.u16(0)
	p.u32(1)
	p.u16(1)

	path := writeC3B(t, 0, 2, section{id: "m", typ: refTypeMesh, body: p.data})
	b := loadBundle(t, path)

	meshes, err := b.LoadMeshes()
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Equal(t, VertexAttribError, meshes[0].Attribs[0].Attrib)
	assert.Len(t, meshes[0].SubMeshIndices, 2)
}

func TestLoadMeshesJSONStoredBoxNeedsMeshLevelMember(t *testing.T) {
	// Part-level boxes are honored only when the mesh itself has an "aabb"
	// member; without it the box is recomputed from the vertices.
	doc := `{"version":"0.7","meshes":[{
		"attributes":[{"size":3,"type":"GL_FLOAT","attribute":"VERTEX_ATTRIB_POSITION"}],
		"vertices":[0,0,0, 1,1,1],
		"parts":[{"id":"p","indices":[0,1],"aabb":[-9,-9,-9,9,9,9]}]
	}]}`
	b := loadBundle(t, writeC3T(t, doc))

	meshes, err := b.LoadMeshes()
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Equal(t, vec3d.T{1, 1, 1}, meshes[0].SubMeshAABBs[0].Max)
}

func TestLoadMeshesJSONStoredBox(t *testing.T) {
	doc := `{"version":"0.7","meshes":[{
		"attributes":[{"size":3,"type":"GL_FLOAT","attribute":"VERTEX_ATTRIB_POSITION"}],
		"vertices":[0,0,0, 1,1,1],
		"aabb":[-9,-9,-9,9,9,9],
		"parts":[{"id":"p","indices":[0,1],"aabb":[-9,-9,-9,9,9,9]}]
	}]}`
	b := loadBundle(t, writeC3T(t, doc))

	meshes, err := b.LoadMeshes()
	require.NoError(t, err)
	assert.Equal(t, vec3d.T{9, 9, 9}, meshes[0].SubMeshAABBs[0].Max)
}

func TestLoadMeshesJSON12(t *testing.T) {
	doc := `{"version":"1.2","mesh":[{
		"attributes":[{"size":3,"type":"GL_FLOAT","attribute":"VERTEX_ATTRIB_POSITION"}],
		"body":[{"vertexsize":6,"vertices":[0,0,0, 2,2,2],"indexnum":2,"indices":[0,1]}]
	}]}`
	b := loadBundle(t, writeC3T(t, doc))

	meshes, err := b.LoadMeshes()
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Equal(t, []uint16{0, 1}, meshes[0].SubMeshIndices[0])
	assert.Equal(t, vec3d.T{2, 2, 2}, meshes[0].SubMeshAABBs[0].Max)
}

func TestLoadMeshesJSON02EmptySubMesh(t *testing.T) {
	doc := `{"version":"0.2","mesh":[{
		"attributes":[{"size":3,"type":"GL_FLOAT","attribute":"VERTEX_ATTRIB_POSITION"}],
		"vertex":[{"vertexsize":3,"vertices":[1,2,3]}],
		"submesh":[{"indexnum":0,"indices":[]}]
	}]}`
	b := loadBundle(t, writeC3T(t, doc))

	meshes, err := b.LoadMeshes()
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	mesh := meshes[0]
	require.Len(t, mesh.SubMeshIndices, 1)
	assert.Empty(t, mesh.SubMeshIndices[0])
	// No indices referenced, so the box stays degenerate.
	assert.Equal(t, vec3d.MinBox, mesh.SubMeshAABBs[0])
}

func TestLoadMeshesJSONMissingSection(t *testing.T) {
	b := loadBundle(t, writeC3T(t, `{"version":"0.7"}`))
	_, err := b.LoadMeshes()
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

package bundle

import (
	"testing"

	"github.com/flywave/go3d/mat4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNodesBinary(t *testing.T) {
	p := &payload{}
	p.u32(1)      // node count
	p.str("root") // id
	p.u8(0)       // not a skeleton root
	p.identity()
	p.u32(1) // parts
	p.str("part0")
	p.str("mat0")
	p.u32(0) // bones
	p.u32(0) // uv mappings
	p.u32(1) // children
	p.str("child")
	p.u8(0)
	p.identity()
	p.u32(0)
	p.u32(0)

	path := writeC3B(t, 0, 6, section{id: "n", typ: refTypeNode, body: p.data})
	b := loadBundle(t, path)

	nodes, err := b.LoadNodes()
	require.NoError(t, err)
	require.Len(t, nodes.Nodes, 1)
	assert.Empty(t, nodes.Skeleton)

	root := nodes.Nodes[0]
	assert.Equal(t, "root", root.ID)
	require.Len(t, root.Parts, 1)
	assert.Equal(t, "part0", root.Parts[0].SubMeshID)
	assert.Equal(t, "mat0", root.Parts[0].MaterialID)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "child", root.Children[0].ID)
}

func TestLoadNodesBinarySkeletonFlag(t *testing.T) {
	p := &payload{}
	p.u32(1)
	p.str("skel")
	p.u8(1)
	p.identity()
	p.u32(0)
	p.u32(0)

	path := writeC3B(t, 0, 6, section{id: "n", typ: refTypeNode, body: p.data})
	b := loadBundle(t, path)

	nodes, err := b.LoadNodes()
	require.NoError(t, err)
	assert.Empty(t, nodes.Nodes)
	require.Len(t, nodes.Skeleton, 1)
	assert.Equal(t, "skel", nodes.Skeleton[0].ID)
}

func TestLoadNodesBinaryMissingPartIDs(t *testing.T) {
	p := &payload{}
	p.u32(1)
	p.str("n")
	p.u8(0)
	p.identity()
	p.u32(1)
	p.str("") // empty sub-mesh id
	p.str("mat")

	path := writeC3B(t, 0, 6, section{id: "n", typ: refTypeNode, body: p.data})
	b := loadBundle(t, path)

	_, err := b.LoadNodes()
	assert.Error(t, err)
}

func twoNodesJSON(version string) string {
	return `{"version":"` + version + `","nodes":[
		{"id":"a","transform":[1,0,0,0, 0,1,0,0, 0,0,1,0, 5,0,0,1],
		 "parts":[{"meshpartid":"p","materialid":"m",
		           "bones":[{"node":"hip","transform":[1,0,0,0, 0,1,0,0, 0,0,1,0, 0,0,0,1]}]}]},
		{"id":"b","transform":[1,0,0,0, 0,1,0,0, 0,0,1,0, 6,0,0,1]}
	]}`
}

func TestLoadNodesJSONKeepsTransform(t *testing.T) {
	b := loadBundle(t, writeC3T(t, twoNodesJSON("0.7")))

	nodes, err := b.LoadNodes()
	require.NoError(t, err)
	require.Len(t, nodes.Nodes, 2)
	assert.Equal(t, float32(5), nodes.Nodes[0].Transform[3][0])
	require.Len(t, nodes.Nodes[0].Parts, 1)
	assert.Equal(t, []string{"hip"}, nodes.Nodes[0].Parts[0].Bones)
}

func TestLoadNodesJSONLegacyIdentityForSkinned(t *testing.T) {
	// Exporters up to 0.6 baked the bind pose into skinned node transforms;
	// the stored matrix is replaced by the identity to avoid applying it
	// twice. Non-skinned siblings keep theirs.
	b := loadBundle(t, writeC3T(t, twoNodesJSON("0.5")))

	nodes, err := b.LoadNodes()
	require.NoError(t, err)
	require.Len(t, nodes.Nodes, 2)
	assert.Equal(t, mat4.Ident, nodes.Nodes[0].Transform)
	assert.Equal(t, float32(6), nodes.Nodes[1].Transform[3][0])
}

func TestLoadNodesJSONMalformedPartDropsSubtree(t *testing.T) {
	doc := `{"version":"0.7","nodes":[
		{"id":"bad","parts":[{"meshpartid":"","materialid":"m"}]},
		{"id":"ok"}
	]}`
	b := loadBundle(t, writeC3T(t, doc))

	nodes, err := b.LoadNodes()
	require.NoError(t, err)
	require.Len(t, nodes.Nodes, 1)
	assert.Equal(t, "ok", nodes.Nodes[0].ID)
}

func TestLoadNodesJSONBoneWithoutNodeDropsSubtree(t *testing.T) {
	doc := `{"version":"0.7","nodes":[
		{"id":"parent","children":[
			{"id":"bad","parts":[{"meshpartid":"p","materialid":"m","bones":[{"transform":[]}]}]},
			{"id":"good"}
		]}
	]}`
	b := loadBundle(t, writeC3T(t, doc))

	nodes, err := b.LoadNodes()
	require.NoError(t, err)
	require.Len(t, nodes.Nodes, 1)
	// The malformed child vanishes; its parent and sibling survive.
	require.Len(t, nodes.Nodes[0].Children, 1)
	assert.Equal(t, "good", nodes.Nodes[0].Children[0].ID)
}

func TestLoadNodesFromSkin(t *testing.T) {
	doc := `{"version":"1.2","skin":[
		{"bones":[{"node":"hip","bindshape":[1,0,0,0, 0,1,0,0, 0,0,1,0, 0,0,0,1]}]},
		{"id":"root","tansform":[1,0,0,0, 0,1,0,0, 0,0,1,0, 0,0,0,1],
		 "children":[{"id":"hip","tansform":[1,0,0,0, 0,1,0,0, 0,0,1,0, 0,0,0,1]}]}
	],"mesh":[]}`
	b := loadBundle(t, writeC3T(t, doc))

	nodes, err := b.LoadNodes()
	require.NoError(t, err)

	require.Len(t, nodes.Skeleton, 1)
	assert.Equal(t, "root", nodes.Skeleton[0].ID)
	require.Len(t, nodes.Skeleton[0].Children, 1)
	assert.Equal(t, "hip", nodes.Skeleton[0].Children[0].ID)

	require.Len(t, nodes.Nodes, 1)
	require.Len(t, nodes.Nodes[0].Parts, 1)
	assert.Equal(t, []string{"hip"}, nodes.Nodes[0].Parts[0].Bones)
	assert.Len(t, nodes.Nodes[0].Parts[0].InvBindPose, 1)
}

func TestLoadNodesFromSkinWithoutSkin(t *testing.T) {
	// No skin section: the synthesized hierarchy degrades to one node with
	// an empty part so static legacy models still bind a model.
	b := loadBundle(t, writeC3T(t, `{"version":"1.2","mesh":[]}`))

	nodes, err := b.LoadNodes()
	require.NoError(t, err)
	require.Len(t, nodes.Nodes, 1)
	require.Len(t, nodes.Nodes[0].Parts, 1)
	assert.Empty(t, nodes.Nodes[0].Parts[0].SubMeshID)
	assert.Empty(t, nodes.Skeleton)
}

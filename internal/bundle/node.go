package bundle

import (
	"encoding/json"
	"fmt"

	"github.com/flywave/go3d/mat4"
)

// identityTransformVersion reports whether skinned (or sole) node transforms
// are replaced by the identity. Exporters up to 0.6 baked the bind pose into
// the node transform and applying both doubles it.
func identityTransformVersion(version string) bool {
	switch version {
	case "0.1", "0.2", "0.3", "0.4", "0.5", "0.6":
		return true
	}
	return false
}

// loadNodesBinary parses the node section of a current binary bundle. Any
// read failure aborts the whole load; the cursor is unusable past a short
// record.
func loadNodesBinary(b *Bundle) (*NodeDatas, error) {
	if b.seekToFirstType(refTypeNode, "") == nil {
		return nil, fmt.Errorf("%w: node", ErrSectionNotFound)
	}
	r := b.reader

	nodeCount, ok := r.ReadUint32()
	if !ok {
		return nil, fmt.Errorf("bundle: nodes: %w: count", ErrTruncated)
	}

	nodes := &NodeDatas{}
	for i := uint32(0); i < nodeCount; i++ {
		node, skeleton, err := parseNodeBinary(b, nodeCount == 1)
		if err != nil {
			return nil, err
		}
		if skeleton {
			nodes.Skeleton = append(nodes.Skeleton, node)
		} else {
			nodes.Nodes = append(nodes.Nodes, node)
		}
	}
	return nodes, nil
}

func parseNodeBinary(b *Bundle, singleNode bool) (*NodeData, bool, error) {
	r := b.reader

	node := &NodeData{ID: r.ReadString()}
	skeletonFlag, ok := r.ReadUint8()
	if !ok {
		return nil, false, fmt.Errorf("bundle: node %q: %w: skeleton flag", node.ID, ErrTruncated)
	}
	skeleton := skeletonFlag != 0

	transform, ok := r.ReadMatrix()
	if !ok {
		return nil, false, fmt.Errorf("bundle: node %q: %w: transform", node.ID, ErrTruncated)
	}

	partCount, ok := r.ReadUint32()
	if !ok {
		return nil, false, fmt.Errorf("bundle: node %q: %w: part count", node.ID, ErrTruncated)
	}

	skinned := false
	for p := uint32(0); p < partCount; p++ {
		part := &ModelPart{
			SubMeshID:  r.ReadString(),
			MaterialID: r.ReadString(),
		}
		if part.SubMeshID == "" || part.MaterialID == "" {
			return nil, false, fmt.Errorf("bundle: node %q: part is missing a mesh or material id", node.ID)
		}

		boneCount, ok := r.ReadUint32()
		if !ok {
			return nil, false, fmt.Errorf("bundle: node %q: %w: bone count", node.ID, ErrTruncated)
		}
		if boneCount > 0 {
			skinned = true
		}
		for j := uint32(0); j < boneCount; j++ {
			part.Bones = append(part.Bones, r.ReadString())
			invBind, ok := r.ReadMatrix()
			if !ok {
				return nil, false, fmt.Errorf("bundle: node %q: %w: inverse bind pose", node.ID, ErrTruncated)
			}
			part.InvBindPose = append(part.InvBindPose, invBind)
		}

		// UV mapping table, present but unused.
		uvMappings, ok := r.ReadUint32()
		if !ok {
			return nil, false, fmt.Errorf("bundle: node %q: %w: uv mapping count", node.ID, ErrTruncated)
		}
		for j := uint32(0); j < uvMappings; j++ {
			textureIndices, ok := r.ReadUint32()
			if !ok {
				return nil, false, fmt.Errorf("bundle: node %q: %w: texture index count", node.ID, ErrTruncated)
			}
			for k := uint32(0); k < textureIndices; k++ {
				if _, ok := r.ReadUint32(); !ok {
					return nil, false, fmt.Errorf("bundle: node %q: %w: texture index", node.ID, ErrTruncated)
				}
			}
		}
		node.Parts = append(node.Parts, part)
	}

	if identityTransformVersion(b.version) && (skinned || singleNode) {
		node.Transform = mat4.Ident
	} else {
		node.Transform = transform
	}

	childCount, ok := r.ReadUint32()
	if !ok {
		return nil, false, fmt.Errorf("bundle: node %q: %w: child count", node.ID, ErrTruncated)
	}
	for c := uint32(0); c < childCount; c++ {
		child, _, err := parseNodeBinary(b, singleNode)
		if err != nil {
			return nil, false, err
		}
		node.Children = append(node.Children, child)
	}
	return node, skeleton, nil
}

type jsonNodeBone struct {
	Node      *string   `json:"node"`
	Transform []float32 `json:"transform"`
}

type jsonNodePart struct {
	MeshPartID string         `json:"meshpartid"`
	MaterialID string         `json:"materialid"`
	Bones      []jsonNodeBone `json:"bones"`
	UVMapping  [][]uint32     `json:"uvMapping"`
}

type jsonNode struct {
	ID        string         `json:"id"`
	Skeleton  bool           `json:"skeleton"`
	Transform []float32      `json:"transform"`
	Parts     []jsonNodePart `json:"parts"`
	Children  []jsonNode     `json:"children"`
}

// loadNodesJSON parses the current "nodes" array. A malformed node cuts off
// its own subtree only; siblings and the rest of the document still load.
func loadNodesJSON(b *Bundle) (*NodeDatas, error) {
	if b.doc.Nodes == nil {
		return nil, fmt.Errorf("%w: nodes", ErrSectionNotFound)
	}
	var entries []jsonNode
	if err := json.Unmarshal(b.doc.Nodes, &entries); err != nil {
		return nil, fmt.Errorf("bundle: nodes: %w", err)
	}

	nodes := &NodeDatas{}
	for i := range entries {
		node := parseNodeJSON(b, &entries[i], len(entries) == 1)
		if node == nil {
			continue
		}
		if entries[i].Skeleton {
			nodes.Skeleton = append(nodes.Skeleton, node)
		} else {
			nodes.Nodes = append(nodes.Nodes, node)
		}
	}
	return nodes, nil
}

func parseNodeJSON(b *Bundle, jn *jsonNode, singleNode bool) *NodeData {
	node := &NodeData{ID: jn.ID}

	skinned := false
	for i := range jn.Parts {
		jp := &jn.Parts[i]
		if jp.MeshPartID == "" || jp.MaterialID == "" {
			return nil
		}
		part := &ModelPart{SubMeshID: jp.MeshPartID, MaterialID: jp.MaterialID}
		if len(jp.Bones) > 0 {
			skinned = true
		}
		for _, jb := range jp.Bones {
			if jb.Node == nil {
				return nil
			}
			part.Bones = append(part.Bones, *jb.Node)
			part.InvBindPose = append(part.InvBindPose, matFromSlice(jb.Transform))
		}
		node.Parts = append(node.Parts, part)
	}

	if identityTransformVersion(b.version) && (skinned || singleNode) {
		node.Transform = mat4.Ident
	} else {
		node.Transform = matFromSlice(jn.Transform)
	}

	for i := range jn.Children {
		child := parseNodeJSON(b, &jn.Children[i], singleNode)
		if child == nil {
			continue
		}
		node.Children = append(node.Children, child)
	}
	return node
}

// loadNodesFromSkin synthesizes a node hierarchy for layouts that predate the
// node section. The skeleton is rebuilt from the skin's bone arena; a bundle
// without a skin degrades to a single empty model node.
func loadNodesFromSkin(b *Bundle) (*NodeDatas, error) {
	skin, err := b.loaders.skin(b)
	if err != nil {
		node := &NodeData{Transform: mat4.Ident}
		node.Parts = append(node.Parts, &ModelPart{})
		return &NodeDatas{Nodes: []*NodeData{node}}, nil
	}

	boneNodes := make([]*NodeData, len(skin.Bones))
	for i, bone := range skin.Bones {
		boneNodes[i] = &NodeData{ID: bone.Name, Transform: bone.Origin}
	}
	for parent, children := range skin.BoneChild {
		for _, child := range children {
			boneNodes[parent].Children = append(boneNodes[parent].Children, boneNodes[child])
		}
	}

	nodes := &NodeDatas{}
	if skin.RootBoneIndex >= 0 {
		nodes.Skeleton = append(nodes.Skeleton, boneNodes[skin.RootBoneIndex])
	}

	model := &NodeData{Transform: mat4.Ident}
	model.Parts = append(model.Parts, &ModelPart{
		Bones:       skin.SkinBoneNames(),
		InvBindPose: skin.InverseBindPoses(),
	})
	nodes.Nodes = append(nodes.Nodes, model)
	return nodes, nil
}

package bundle

import (
	"encoding/json"
	"fmt"
)

// loadSkinBinary parses the mesh-skin section: the bind-pose bone list
// followed by the root bone and the parent/child link records.
func loadSkinBinary(b *Bundle) (*SkinData, error) {
	if b.seekToFirstType(refTypeMeshSkin, "") == nil {
		return nil, fmt.Errorf("%w: meshskin", ErrSectionNotFound)
	}
	r := b.reader

	r.ReadString() // skin id, unused
	bindShape, ok := r.ReadMatrix()
	if !ok {
		return nil, fmt.Errorf("bundle: skin: %w: bind shape", ErrTruncated)
	}
	boneCount, ok := r.ReadUint32()
	if !ok {
		return nil, fmt.Errorf("bundle: skin: %w: bone count", ErrTruncated)
	}
	if boneCount == 0 {
		return nil, fmt.Errorf("bundle: skin has no bones")
	}

	skin := newSkinData()
	for i := uint32(0); i < boneCount; i++ {
		name := r.ReadString()
		invBindPose, ok := r.ReadMatrix()
		if !ok {
			return nil, fmt.Errorf("bundle: skin bone %q: %w: inverse bind pose", name, ErrTruncated)
		}
		skin.addSkinBone(name, invBindPose)
	}

	rootName := r.ReadString()
	if m, ok := r.ReadMatrix(); ok {
		bindShape = m
	}
	rootIndex := skin.skinBoneIndex(rootName)
	if rootIndex < 0 {
		rootIndex = skin.ensureNodeBone(rootName)
	}
	skin.Bones[rootIndex].Origin = bindShape
	skin.RootBoneIndex = rootIndex

	linkCount, _ := r.ReadUint32()
	for i := uint32(0); i < linkCount; i++ {
		childName := r.ReadString()
		parentName := r.ReadString()
		transform, ok := r.ReadMatrix()
		if !ok {
			return nil, fmt.Errorf("bundle: skin link %q: %w: transform", childName, ErrTruncated)
		}

		childIndex := skin.skinBoneIndex(childName)
		if childIndex < 0 {
			childIndex = skin.ensureNodeBone(childName)
		}
		skin.Bones[childIndex].Origin = transform

		parentIndex := skin.skinBoneIndex(parentName)
		if parentIndex < 0 {
			parentIndex = skin.ensureNodeBone(parentName)
		}
		skin.BoneChild[parentIndex] = append(skin.BoneChild[parentIndex], childIndex)
	}
	return skin, nil
}

type jsonSkinBone struct {
	Node      string    `json:"node"`
	BindShape []float32 `json:"bindshape"`
}

// jsonSkinNode is one node of the legacy bone tree. The transform key is
// misspelled in every file ever written; the typo is part of the format.
type jsonSkinNode struct {
	ID        string         `json:"id"`
	Transform []float32      `json:"tansform"`
	Children  []jsonSkinNode `json:"children"`
}

// loadSkinJSON parses the two-element "skin" array: element zero holds the
// bind-pose bones, element one the bone hierarchy tree.
func loadSkinJSON(b *Bundle) (*SkinData, error) {
	if b.doc.Skin == nil {
		return nil, fmt.Errorf("%w: skin", ErrSectionNotFound)
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(b.doc.Skin, &parts); err != nil {
		return nil, fmt.Errorf("bundle: skin: %w", err)
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("bundle: skin array has %d elements, need 2", len(parts))
	}

	var head struct {
		Bones []jsonSkinBone `json:"bones"`
	}
	if err := json.Unmarshal(parts[0], &head); err != nil {
		return nil, fmt.Errorf("bundle: skin bones: %w", err)
	}
	if len(head.Bones) == 0 {
		return nil, fmt.Errorf("bundle: skin has no bones")
	}

	skin := newSkinData()
	for _, jb := range head.Bones {
		skin.addSkinBone(jb.Node, matFromSlice(jb.BindShape))
	}

	var root jsonSkinNode
	if err := json.Unmarshal(parts[1], &root); err != nil {
		return nil, fmt.Errorf("bundle: skin hierarchy: %w", err)
	}
	linkSkinTree(skin, &root)
	return skin, nil
}

// linkSkinTree folds one level of the legacy bone tree into the arena and
// recurses. The first parent encountered becomes the root if none is set.
func linkSkinTree(skin *SkinData, node *jsonSkinNode) {
	parentIndex := skin.skinBoneIndex(node.ID)
	if parentIndex < 0 {
		parentIndex = skin.ensureNodeBone(node.ID)
	}
	skin.Bones[parentIndex].Origin = matFromSlice(node.Transform)
	if skin.RootBoneIndex < 0 {
		skin.RootBoneIndex = parentIndex
	}

	for i := range node.Children {
		child := &node.Children[i]
		childIndex := skin.skinBoneIndex(child.ID)
		if childIndex < 0 {
			childIndex = skin.ensureNodeBone(child.ID)
		}
		skin.BoneChild[parentIndex] = append(skin.BoneChild[parentIndex], childIndex)
		linkSkinTree(skin, child)
	}
}

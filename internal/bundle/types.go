package bundle

import (
	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/mat4"
	"github.com/flywave/go3d/quaternion"
	"github.com/flywave/go3d/vec3"
)

// MeshVertexAttrib describes one vertex attribute in the interleaved buffer.
type MeshVertexAttrib struct {
	Type   VertexType
	Attrib VertexAttrib
}

// MeshData holds one mesh: its attribute layout, the flat interleaved vertex
// buffer and one or more sub-mesh index ranges. Legacy versions carry a
// single unnamed sub-mesh, so SubMeshIDs may be shorter than SubMeshIndices.
type MeshData struct {
	Attribs        []MeshVertexAttrib
	Vertex         []float32
	SubMeshIDs     []string
	SubMeshIndices [][]uint16
	SubMeshAABBs   []vec3d.Box
}

// PerVertexSize returns the byte stride implied by the attribute layout.
func (m *MeshData) PerVertexSize() int {
	size := 0
	for _, a := range m.Attribs {
		size += a.Type.ByteSize()
	}
	return size
}

// VertexCount returns how many vertices the flat buffer holds, zero when the
// attribute layout is empty.
func (m *MeshData) VertexCount() int {
	stride := m.PerVertexSize() / 4
	if stride == 0 {
		return 0
	}
	return len(m.Vertex) / stride
}

// TextureData is one texture binding of a material. Filename is the relative
// path from the file already prefixed with the bundle's directory.
type TextureData struct {
	ID       string
	Filename string
	Usage    TextureUsage
	WrapS    WrapMode
	WrapT    WrapMode
}

type MaterialData struct {
	ID       string
	Textures []TextureData
}

// BoneKind distinguishes bones carrying an inverse bind pose from bones that
// only appear in hierarchy links.
type BoneKind uint8

const (
	SkinBone BoneKind = iota
	NodeBone
)

// Bone is one entry of the skin's bone arena. Skin bones occupy the head of
// the arena in bind-pose order; node bones are appended lazily on first
// encounter, so arena indices match the combined index space of the file.
type Bone struct {
	Name            string
	Kind            BoneKind
	InverseBindPose mat4.T // skin bones only
	Origin          mat4.T
}

// SkinData is the skeleton binding of a bundle: the bone arena, a
// parent-index to child-indices adjacency map and the designated root.
type SkinData struct {
	Bones         []Bone
	BoneChild     map[int][]int
	RootBoneIndex int

	byName map[string]int
}

func newSkinData() *SkinData {
	return &SkinData{
		BoneChild:     make(map[int][]int),
		RootBoneIndex: -1,
		byName:        make(map[string]int),
	}
}

func (s *SkinData) addSkinBone(name string, invBindPose mat4.T) int {
	if i, ok := s.byName[name]; ok {
		return i
	}
	i := len(s.Bones)
	s.Bones = append(s.Bones, Bone{Name: name, Kind: SkinBone, InverseBindPose: invBindPose, Origin: mat4.Ident})
	s.byName[name] = i
	return i
}

// skinBoneIndex resolves name against skin bones only; node bones report -1.
func (s *SkinData) skinBoneIndex(name string) int {
	if i, ok := s.byName[name]; ok && s.Bones[i].Kind == SkinBone {
		return i
	}
	return -1
}

// ensureNodeBone returns the arena index for name, appending a node bone if
// the name is unknown.
func (s *SkinData) ensureNodeBone(name string) int {
	if i, ok := s.byName[name]; ok {
		return i
	}
	i := len(s.Bones)
	s.Bones = append(s.Bones, Bone{Name: name, Kind: NodeBone, Origin: mat4.Ident})
	s.byName[name] = i
	return i
}

// SkinBoneNames returns the names of the bind-pose bones in file order.
func (s *SkinData) SkinBoneNames() []string {
	var names []string
	for _, b := range s.Bones {
		if b.Kind == SkinBone {
			names = append(names, b.Name)
		}
	}
	return names
}

// InverseBindPoses returns the bind-pose matrices parallel to SkinBoneNames.
func (s *SkinData) InverseBindPoses() []mat4.T {
	var mats []mat4.T
	for _, b := range s.Bones {
		if b.Kind == SkinBone {
			mats = append(mats, b.InverseBindPose)
		}
	}
	return mats
}

// ModelPart binds one sub-mesh to a material, optionally skinned with a
// bone-name list parallel to the inverse bind matrices.
type ModelPart struct {
	SubMeshID   string
	MaterialID  string
	Bones       []string
	InvBindPose []mat4.T
}

// NodeData is one node of the reconstructed hierarchy. A node owns its
// children exclusively.
type NodeData struct {
	ID        string
	Transform mat4.T
	Parts     []*ModelPart
	Children  []*NodeData
}

// NodeDatas splits the top-level nodes into plain scene nodes and skeleton
// roots.
type NodeDatas struct {
	Nodes    []*NodeData
	Skeleton []*NodeData
}

// Vec3Key is one keyed vector value of an animation channel.
type Vec3Key struct {
	Time  float32
	Value vec3.T
}

// QuatKey is one keyed rotation of an animation channel.
type QuatKey struct {
	Time  float32
	Value quaternion.T
}

// AnimationData is one clip: three independent per-bone channel maps. A bone
// need not have all three channels. Keys are appended in file order; the
// loader never resamples or sorts.
type AnimationData struct {
	Duration        float32
	TranslationKeys map[string][]Vec3Key
	RotationKeys    map[string][]QuatKey
	ScaleKeys       map[string][]Vec3Key
}

func newAnimationData() *AnimationData {
	return &AnimationData{
		TranslationKeys: make(map[string][]Vec3Key),
		RotationKeys:    make(map[string][]QuatKey),
		ScaleKeys:       make(map[string][]Vec3Key),
	}
}

package bundle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load errors distinguishable by errors.Is.
var (
	ErrEmptyPath            = errors.New("bundle: empty path")
	ErrUnsupportedExtension = errors.New("bundle: unsupported file extension")
	ErrInvalidSignature     = errors.New("bundle: invalid signature")
	ErrTruncated            = errors.New("bundle: truncated data")
	ErrSectionNotFound      = errors.New("bundle: section not found")
	ErrNotLoaded            = errors.New("bundle: no bundle loaded")
)

var binarySignature = []byte{'C', '3', 'B', 0}

// State is the lifecycle of a Bundle.
type State int

const (
	StateUnloaded State = iota
	StateLoadedBinary
	StateLoadedJSON
	StateFailed
)

// Bundle owns one loaded asset file and its derived parse state. A Bundle
// processes one load at a time; callers needing parallel loads use
// independent instances.
type Bundle struct {
	path      string
	modelPath string
	version   string
	state     State

	reader     *Reader
	references []Reference

	doc *jsonDocument

	loaders loaderSet
}

func New() *Bundle {
	return &Bundle{state: StateUnloaded}
}

// Version returns the detected schema version string, e.g. "0.5".
func (b *Bundle) Version() string { return b.version }

// IsBinary reports whether the loaded file was the binary encoding.
func (b *Bundle) IsBinary() bool { return b.state == StateLoadedBinary }

// Clear drops all state derived from the current file.
func (b *Bundle) Clear() {
	b.path = ""
	b.modelPath = ""
	b.version = ""
	b.state = StateUnloaded
	b.reader = nil
	b.references = nil
	b.doc = nil
	b.loaders = loaderSet{}
}

// Load reads and indexes the bundle at path, detecting the format by file
// extension (.c3b binary, .c3t JSON). Loading the already-loaded path is a
// no-op success. Any failure clears prior state.
func (b *Bundle) Load(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if path == b.path {
		return nil
	}

	b.Clear()
	b.modelPath = modelRelativePath(path)

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c3b":
		err = b.loadBinary(path)
	case ".c3t":
		err = b.loadJSON(path)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedExtension, path)
	}
	if err != nil {
		b.Clear()
		b.state = StateFailed
		return err
	}

	b.path = path
	b.loaders = selectLoaders(b.state == StateLoadedBinary, b.version)
	return nil
}

func (b *Bundle) loadBinary(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("bundle: read %s: %w", path, err)
	}
	r := NewReader(data)

	var sig [4]byte
	if r.ReadBytes(sig[:]) != 4 || !bytes.Equal(sig[:], binarySignature) {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, path)
	}

	var ver [2]byte
	if r.ReadBytes(ver[:]) != 2 {
		return fmt.Errorf("%w: version bytes in %s", ErrTruncated, path)
	}
	b.version = fmt.Sprintf("%d.%d", ver[0], ver[1])

	refCount, ok := r.ReadUint32()
	if !ok {
		return fmt.Errorf("%w: reference table size in %s", ErrTruncated, path)
	}
	// A reference is at least 12 bytes on the wire; reject counts the file
	// cannot possibly hold before allocating.
	if !r.CanRead(12, int(refCount)) {
		return fmt.Errorf("bundle: implausible reference count %d in %s", refCount, path)
	}

	refs := make([]Reference, 0, refCount)
	for i := uint32(0); i < refCount; i++ {
		var ref Reference
		if ref.ID = r.ReadString(); ref.ID == "" {
			return fmt.Errorf("bundle: failed to read reference %d in %s", i, path)
		}
		if ref.Type, ok = r.ReadUint32(); !ok {
			return fmt.Errorf("bundle: failed to read reference %d in %s", i, path)
		}
		if ref.Offset, ok = r.ReadUint32(); !ok {
			return fmt.Errorf("bundle: failed to read reference %d in %s", i, path)
		}
		refs = append(refs, ref)
	}

	b.reader = r
	b.references = refs
	b.state = StateLoadedBinary
	return nil
}

// jsonDocument is the parsed top level of a c3t file. Section payloads stay
// raw until a version-specific loader gives them a shape.
type jsonDocument struct {
	Version    json.RawMessage `json:"version"`
	Meshes     json.RawMessage `json:"meshes"`
	Mesh       json.RawMessage `json:"mesh"`
	Materials  json.RawMessage `json:"materials"`
	Material   json.RawMessage `json:"material"`
	Nodes      json.RawMessage `json:"nodes"`
	Skin       json.RawMessage `json:"skin"`
	Animation  json.RawMessage `json:"animation"`
	Animations json.RawMessage `json:"animations"`
}

func (b *Bundle) loadJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("bundle: read %s: %w", path, err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("bundle: parse %s: %w", path, err)
	}
	if doc.Version == nil {
		return fmt.Errorf("bundle: missing version in %s", path)
	}

	var version string
	if err := json.Unmarshal(doc.Version, &version); err != nil {
		// Old-format files store the version as an array.
		var legacy []json.RawMessage
		if err := json.Unmarshal(doc.Version, &legacy); err != nil {
			return fmt.Errorf("bundle: malformed version in %s", path)
		}
		version = "1.2"
	}

	b.doc = &doc
	b.version = version
	b.state = StateLoadedJSON
	return nil
}

// loaderSet is the version-keyed dispatch table: one parse function per
// aggregate kind, resolved once per load. Each historical layout keeps its
// own code path.
type loaderSet struct {
	meshes    func(*Bundle) ([]*MeshData, error)
	materials func(*Bundle) ([]*MaterialData, error)
	nodes     func(*Bundle) (*NodeDatas, error)
	skin      func(*Bundle) (*SkinData, error)
	animation func(*Bundle, string) (*AnimationData, error)
}

func selectLoaders(binary bool, version string) loaderSet {
	var set loaderSet
	if binary {
		switch version {
		case "0.1":
			set.meshes = loadMeshesBinary01
			set.materials = loadMaterialsBinary01
		case "0.2":
			set.meshes = loadMeshesBinary02
			set.materials = loadMaterialsBinary02
		default:
			set.meshes = loadMeshesBinary
			set.materials = loadMaterialsBinary
		}
		set.skin = loadSkinBinary
		set.animation = loadAnimationBinary
		if version == "0.1" || version == "0.2" || version == "1.2" {
			set.nodes = loadNodesFromSkin
		} else {
			set.nodes = loadNodesBinary
		}
	} else {
		switch version {
		case "1.2":
			set.meshes = loadMeshesJSON12
			set.materials = loadMaterialsJSON12
		case "0.2":
			set.meshes = loadMeshesJSON02
			set.materials = loadMaterialsJSON02
		default:
			set.meshes = loadMeshesJSON
			set.materials = loadMaterialsJSON
		}
		set.skin = loadSkinJSON
		set.animation = loadAnimationJSON
		if version == "0.1" || version == "0.2" || version == "1.2" {
			set.nodes = loadNodesFromSkin
		} else {
			set.nodes = loadNodesJSON
		}
	}
	return set
}

// LoadMeshes parses the mesh list of the loaded bundle. On failure no
// partial list is returned.
func (b *Bundle) LoadMeshes() ([]*MeshData, error) {
	if b.loaders.meshes == nil {
		return nil, ErrNotLoaded
	}
	return b.loaders.meshes(b)
}

// LoadMaterials parses the material list of the loaded bundle.
func (b *Bundle) LoadMaterials() ([]*MaterialData, error) {
	if b.loaders.materials == nil {
		return nil, ErrNotLoaded
	}
	return b.loaders.materials(b)
}

// LoadNodes parses the node hierarchy of the loaded bundle.
func (b *Bundle) LoadNodes() (*NodeDatas, error) {
	if b.loaders.nodes == nil {
		return nil, ErrNotLoaded
	}
	return b.loaders.nodes(b)
}

// LoadSkin parses the skin/bone hierarchy section.
func (b *Bundle) LoadSkin() (*SkinData, error) {
	if b.loaders.skin == nil {
		return nil, ErrNotLoaded
	}
	return b.loaders.skin(b)
}

// LoadAnimation parses one animation clip. A non-empty id restricts the
// lookup to the clip with that id; no match is a failure. An empty id
// selects the first clip.
func (b *Bundle) LoadAnimation(id string) (*AnimationData, error) {
	if b.loaders.animation == nil {
		return nil, ErrNotLoaded
	}
	return b.loaders.animation(b, id)
}

// modelRelativePath returns the directory prefix (including the trailing
// slash) used to resolve texture paths stored relative to the bundle.
func modelRelativePath(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i+1]
	}
	return ""
}

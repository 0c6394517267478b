package bundle

import (
	"fmt"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/vec3"
)

// calculateAABB folds the referenced vertex positions into a bounding box.
// strideBytes is the interleaved vertex size; the position is assumed to be
// the first three floats of each vertex. Out-of-range indices are skipped.
func calculateAABB(vertex []float32, strideBytes int, indices []uint16) vec3d.Box {
	box := vec3d.MinBox
	stride := strideBytes / 4
	if stride == 0 {
		return box
	}
	for _, idx := range indices {
		base := int(idx) * stride
		if base+3 > len(vertex) {
			continue
		}
		box.Extend(&vec3d.T{
			float64(vertex[base]),
			float64(vertex[base+1]),
			float64(vertex[base+2]),
		})
	}
	return box
}

// TrianglesList loads a bundle and flattens every sub-mesh into one list of
// triangle corner positions, three entries per triangle in index order.
func TrianglesList(path string) ([]vec3.T, error) {
	if len(path) <= 4 {
		return nil, nil
	}

	b := New()
	if err := b.Load(path); err != nil {
		return nil, err
	}
	meshes, err := b.LoadMeshes()
	if err != nil {
		return nil, fmt.Errorf("bundle: triangles from %s: %w", path, err)
	}

	var triangles []vec3.T
	for _, mesh := range meshes {
		stride := mesh.PerVertexSize() / 4
		if stride == 0 {
			continue
		}
		for _, indices := range mesh.SubMeshIndices {
			for _, idx := range indices {
				base := int(idx) * stride
				if base+3 > len(mesh.Vertex) {
					continue
				}
				triangles = append(triangles, vec3.T{
					mesh.Vertex[base],
					mesh.Vertex[base+1],
					mesh.Vertex[base+2],
				})
			}
		}
	}
	return triangles, nil
}

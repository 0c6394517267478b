package bundle

import "fmt"

// loadMaterialsBinary parses the current binary material list. The 14
// lighting coefficients and 4 UV floats are read and discarded; only the
// texture bindings are retained.
func loadMaterialsBinary(b *Bundle) ([]*MaterialData, error) {
	if b.seekToFirstType(refTypeMaterial, "") == nil {
		return nil, fmt.Errorf("%w: material", ErrSectionNotFound)
	}
	r := b.reader

	materialCount := uint32(1)
	if n, ok := r.ReadUint32(); ok {
		materialCount = n
	}

	var materials []*MaterialData
	for i := uint32(0); i < materialCount; i++ {
		material := &MaterialData{ID: r.ReadString()}

		// diffuse(3) ambient(3) emissive(3) opacity(1) specular(3) shininess(1)
		var lighting [14]float32
		r.ReadFloats(lighting[:])

		textureCount := uint32(1)
		if n, ok := r.ReadUint32(); ok {
			textureCount = n
		}
		for j := uint32(0); j < textureCount; j++ {
			var tex TextureData
			if tex.ID = r.ReadString(); tex.ID == "" {
				return nil, fmt.Errorf("bundle: material %q texture id is empty", material.ID)
			}
			filename := r.ReadString()
			if filename == "" {
				return nil, fmt.Errorf("bundle: material %q texture path is empty", material.ID)
			}
			tex.Filename = b.modelPath + filename

			var uv [4]float32
			r.ReadFloats(uv[:])

			var err error
			if tex.Usage, err = ParseTextureUsage(r.ReadString()); err != nil {
				return nil, err
			}
			if tex.WrapS, err = ParseWrapMode(r.ReadString()); err != nil {
				return nil, err
			}
			if tex.WrapT, err = ParseWrapMode(r.ReadString()); err != nil {
				return nil, err
			}
			material.Textures = append(material.Textures, tex)
		}
		materials = append(materials, material)
	}
	return materials, nil
}

// loadMaterialsBinary01 parses the oldest binary layout: one implicit
// diffuse texture, no id, role or wrap metadata.
func loadMaterialsBinary01(b *Bundle) ([]*MaterialData, error) {
	if b.seekToFirstType(refTypeMaterial, "") == nil {
		return nil, fmt.Errorf("%w: material", ErrSectionNotFound)
	}

	texturePath := b.reader.ReadString()
	if texturePath == "" {
		return nil, fmt.Errorf("bundle: material texture path is empty")
	}

	material := &MaterialData{
		Textures: []TextureData{{
			Filename: b.modelPath + texturePath,
			Usage:    TextureUsageDiffuse,
		}},
	}
	return []*MaterialData{material}, nil
}

// loadMaterialsBinary02 parses the second legacy layout: a count of
// implicit-diffuse materials. An empty texture path terminates the list
// early with success; old bundles rely on this.
func loadMaterialsBinary02(b *Bundle) ([]*MaterialData, error) {
	if b.seekToFirstType(refTypeMaterial, "") == nil {
		return nil, fmt.Errorf("%w: material", ErrSectionNotFound)
	}
	r := b.reader

	materialCount := uint32(1)
	if n, ok := r.ReadUint32(); ok {
		materialCount = n
	}

	var materials []*MaterialData
	for i := uint32(0); i < materialCount; i++ {
		texturePath := r.ReadString()
		if texturePath == "" {
			return materials, nil
		}
		materials = append(materials, &MaterialData{
			Textures: []TextureData{{
				Filename: b.modelPath + texturePath,
				Usage:    TextureUsageDiffuse,
			}},
		})
	}
	return materials, nil
}

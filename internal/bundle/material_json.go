package bundle

import (
	"encoding/json"
	"fmt"
)

type jsonMaterialTexture struct {
	Filename  string `json:"filename"`
	Type      string `json:"type"`
	WrapModeU string `json:"wrapModeU"`
	WrapModeV string `json:"wrapModeV"`
}

type jsonMaterial struct {
	ID       string                `json:"id"`
	Textures []jsonMaterialTexture `json:"textures"`
}

// loadMaterialsJSON parses the current "materials" array.
func loadMaterialsJSON(b *Bundle) ([]*MaterialData, error) {
	if b.doc.Materials == nil {
		return nil, fmt.Errorf("%w: materials", ErrSectionNotFound)
	}
	var entries []jsonMaterial
	if err := json.Unmarshal(b.doc.Materials, &entries); err != nil {
		return nil, fmt.Errorf("bundle: materials: %w", err)
	}

	var materials []*MaterialData
	for _, entry := range entries {
		material := &MaterialData{ID: entry.ID}
		for _, jt := range entry.Textures {
			var tex TextureData
			if jt.Filename != "" {
				tex.Filename = b.modelPath + jt.Filename
			}
			var err error
			if tex.Usage, err = ParseTextureUsage(jt.Type); err != nil {
				return nil, err
			}
			if tex.WrapS, err = ParseWrapMode(jt.WrapModeU); err != nil {
				return nil, err
			}
			if tex.WrapT, err = ParseWrapMode(jt.WrapModeV); err != nil {
				return nil, err
			}
			material.Textures = append(material.Textures, tex)
		}
		materials = append(materials, material)
	}
	return materials, nil
}

// loadMaterialsJSON12 parses the 1.2 "material" object, which carries only a
// base texture filename.
func loadMaterialsJSON12(b *Bundle) ([]*MaterialData, error) {
	if b.doc.Material == nil {
		return nil, fmt.Errorf("%w: material", ErrSectionNotFound)
	}
	var entries []struct {
		Base []struct {
			Filename string `json:"filename"`
		} `json:"base"`
	}
	if err := json.Unmarshal(b.doc.Material, &entries); err != nil {
		return nil, fmt.Errorf("bundle: material: %w", err)
	}

	var materials []*MaterialData
	if len(entries) > 0 && len(entries[0].Base) > 0 {
		tex := TextureData{Usage: TextureUsageDiffuse}
		if filename := entries[0].Base[0].Filename; filename != "" {
			tex.Filename = b.modelPath + filename
		}
		materials = append(materials, &MaterialData{Textures: []TextureData{tex}})
	}
	return materials, nil
}

// loadMaterialsJSON02 parses the 0.2 "material" array, where each entry's
// "textures" field is a bare filename string. All entries collapse into a
// single material.
func loadMaterialsJSON02(b *Bundle) ([]*MaterialData, error) {
	if b.doc.Material == nil {
		return nil, fmt.Errorf("%w: material", ErrSectionNotFound)
	}
	var entries []struct {
		Textures string `json:"textures"`
	}
	if err := json.Unmarshal(b.doc.Material, &entries); err != nil {
		return nil, fmt.Errorf("bundle: material: %w", err)
	}

	material := &MaterialData{}
	for _, entry := range entries {
		tex := TextureData{Usage: TextureUsageDiffuse}
		if entry.Textures != "" {
			tex.Filename = b.modelPath + entry.Textures
		}
		material.Textures = append(material.Textures, tex)
	}
	return []*MaterialData{material}, nil
}

package bundle

import "fmt"

// VertexType is the component layout of one vertex attribute.
type VertexType int

const (
	VertexTypeFloat VertexType = iota
	VertexTypeFloat2
	VertexTypeFloat3
	VertexTypeFloat4
	VertexTypeInt
	VertexTypeInt2
	VertexTypeInt3
	VertexTypeInt4
	VertexTypeUShort2
	VertexTypeUShort4
	VertexTypeUByte4
)

// ByteSize returns the per-vertex byte width of the layout.
func (t VertexType) ByteSize() int {
	switch t {
	case VertexTypeFloat, VertexTypeInt, VertexTypeUByte4, VertexTypeUShort2:
		return 4
	case VertexTypeFloat2, VertexTypeInt2, VertexTypeUShort4:
		return 8
	case VertexTypeFloat3, VertexTypeInt3:
		return 12
	case VertexTypeFloat4, VertexTypeInt4:
		return 16
	}
	return 0
}

func (t VertexType) String() string {
	switch t {
	case VertexTypeFloat:
		return "FLOAT"
	case VertexTypeFloat2:
		return "FLOAT2"
	case VertexTypeFloat3:
		return "FLOAT3"
	case VertexTypeFloat4:
		return "FLOAT4"
	case VertexTypeInt:
		return "INT"
	case VertexTypeInt2:
		return "INT2"
	case VertexTypeInt3:
		return "INT3"
	case VertexTypeInt4:
		return "INT4"
	case VertexTypeUShort2:
		return "USHORT2"
	case VertexTypeUShort4:
		return "USHORT4"
	case VertexTypeUByte4:
		return "UBYTE4"
	}
	return fmt.Sprintf("VertexType(%d)", int(t))
}

// ParseVertexType maps a GL type code plus component count to a layout.
// Codes come from untrusted file content, so unrecognized combinations are
// errors rather than asserts.
func ParseVertexType(code string, size int) (VertexType, error) {
	switch code {
	case "GL_BYTE", "GL_UNSIGNED_BYTE":
		if size == 4 {
			return VertexTypeUByte4, nil
		}
	case "GL_SHORT", "GL_UNSIGNED_SHORT":
		switch size {
		case 2:
			return VertexTypeUShort2, nil
		case 4:
			return VertexTypeUShort4, nil
		}
	case "GL_INT", "GL_UNSIGNED_INT":
		switch size {
		case 1:
			return VertexTypeInt, nil
		case 2:
			return VertexTypeInt2, nil
		case 3:
			return VertexTypeInt3, nil
		case 4:
			return VertexTypeInt4, nil
		}
	case "GL_FLOAT":
		switch size {
		case 1:
			return VertexTypeFloat, nil
		case 2:
			return VertexTypeFloat2, nil
		case 3:
			return VertexTypeFloat3, nil
		case 4:
			return VertexTypeFloat4, nil
		}
	}
	return 0, fmt.Errorf("bundle: unrecognized vertex type %q x %d", code, size)
}

// VertexAttrib is the semantic of a vertex attribute.
type VertexAttrib int

const (
	VertexAttribError VertexAttrib = iota
	VertexAttribPosition
	VertexAttribColor
	VertexAttribTexCoord
	VertexAttribTexCoord1
	VertexAttribTexCoord2
	VertexAttribTexCoord3
	VertexAttribNormal
	VertexAttribBlendWeight
	VertexAttribBlendIndex
	VertexAttribTangent
	VertexAttribBinormal
)

var vertexAttribNames = map[string]VertexAttrib{
	"VERTEX_ATTRIB_POSITION":     VertexAttribPosition,
	"VERTEX_ATTRIB_COLOR":        VertexAttribColor,
	"VERTEX_ATTRIB_TEX_COORD":    VertexAttribTexCoord,
	"VERTEX_ATTRIB_TEX_COORD1":   VertexAttribTexCoord1,
	"VERTEX_ATTRIB_TEX_COORD2":   VertexAttribTexCoord2,
	"VERTEX_ATTRIB_TEX_COORD3":   VertexAttribTexCoord3,
	"VERTEX_ATTRIB_NORMAL":       VertexAttribNormal,
	"VERTEX_ATTRIB_BLEND_WEIGHT": VertexAttribBlendWeight,
	"VERTEX_ATTRIB_BLEND_INDEX":  VertexAttribBlendIndex,
	"VERTEX_ATTRIB_TANGENT":      VertexAttribTangent,
	"VERTEX_ATTRIB_BINORMAL":     VertexAttribBinormal,
}

func (a VertexAttrib) String() string {
	for name, v := range vertexAttribNames {
		if v == a {
			return name
		}
	}
	return fmt.Sprintf("VertexAttrib(%d)", int(a))
}

func ParseVertexAttrib(code string) (VertexAttrib, error) {
	if a, ok := vertexAttribNames[code]; ok {
		return a, nil
	}
	return VertexAttribError, fmt.Errorf("bundle: unrecognized vertex attribute %q", code)
}

// Legacy binary meshes store attribute semantics as small numeric codes.
func vertexAttribFromLegacyCode(code uint32) (VertexAttrib, error) {
	switch code {
	case 0:
		return VertexAttribPosition, nil
	case 1:
		return VertexAttribColor, nil
	case 2:
		return VertexAttribTexCoord, nil
	case 3:
		return VertexAttribNormal, nil
	case 4:
		return VertexAttribBlendWeight, nil
	case 5:
		return VertexAttribBlendIndex, nil
	}
	return VertexAttribError, fmt.Errorf("bundle: unrecognized vertex attribute code %d", code)
}

// TextureUsage is the role of a texture binding.
type TextureUsage int

const (
	TextureUsageUnknown TextureUsage = iota
	TextureUsageNone
	TextureUsageDiffuse
	TextureUsageEmissive
	TextureUsageAmbient
	TextureUsageSpecular
	TextureUsageShininess
	TextureUsageNormal
	TextureUsageBump
	TextureUsageTransparency
	TextureUsageReflection
)

var textureUsageNames = map[string]TextureUsage{
	"NONE":         TextureUsageNone,
	"DIFFUSE":      TextureUsageDiffuse,
	"EMISSIVE":     TextureUsageEmissive,
	"AMBIENT":      TextureUsageAmbient,
	"SPECULAR":     TextureUsageSpecular,
	"SHININESS":    TextureUsageShininess,
	"NORMAL":       TextureUsageNormal,
	"BUMP":         TextureUsageBump,
	"TRANSPARENCY": TextureUsageTransparency,
	"REFLECTION":   TextureUsageReflection,
}

func (u TextureUsage) String() string {
	for name, v := range textureUsageNames {
		if v == u {
			return name
		}
	}
	return fmt.Sprintf("TextureUsage(%d)", int(u))
}

func ParseTextureUsage(code string) (TextureUsage, error) {
	if u, ok := textureUsageNames[code]; ok {
		return u, nil
	}
	return TextureUsageUnknown, fmt.Errorf("bundle: unrecognized texture type %q", code)
}

// WrapMode is a sampler address mode. The zero value is clamp, which is also
// the default for legacy materials that carry no wrap metadata.
type WrapMode int

const (
	WrapClamp WrapMode = iota
	WrapRepeat
)

func (w WrapMode) String() string {
	switch w {
	case WrapClamp:
		return "CLAMP"
	case WrapRepeat:
		return "REPEAT"
	}
	return fmt.Sprintf("WrapMode(%d)", int(w))
}

func ParseWrapMode(code string) (WrapMode, error) {
	switch code {
	case "CLAMP":
		return WrapClamp, nil
	case "REPEAT":
		return WrapRepeat, nil
	}
	return WrapClamp, fmt.Errorf("bundle: unrecognized wrap mode %q", code)
}

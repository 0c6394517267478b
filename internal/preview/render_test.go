package preview

import (
	"image"
	"testing"

	"github.com/flywave/go3d/vec3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opaquePixels(img *image.NRGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 255 {
			n++
		}
	}
	return n
}

func TestRenderFillsTriangle(t *testing.T) {
	triangles := []vec3.T{
		{-1, -1, 0},
		{1, -1, 0},
		{0, 1, 0},
	}
	img := Render(triangles, 64, 1)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Greater(t, opaquePixels(img), 0)
}

func TestRenderEmptyInput(t *testing.T) {
	img := Render(nil, 32, 2)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 0, opaquePixels(img))
}

func TestRenderDegenerateTriangle(t *testing.T) {
	// Collinear points have no area and must not paint anything.
	triangles := []vec3.T{{0, 0, 0}, {1, 1, 0}, {2, 2, 0}}
	img := Render(triangles, 32, 1)
	assert.Equal(t, 0, opaquePixels(img))
}

func TestRenderDepthTest(t *testing.T) {
	// Two stacked triangles; the nearer one (larger z) must win. Shading
	// differs only through depth, equal normals give equal color, so check
	// coverage stays consistent instead.
	triangles := []vec3.T{
		{-1, -1, 0}, {1, -1, 0}, {0, 1, 0},
		{-1, -1, 5}, {1, -1, 5}, {0, 1, 5},
	}
	img := Render(triangles, 64, 1)
	assert.Greater(t, opaquePixels(img), 0)
}

func TestDownsample(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 128, 128))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	dst := Downsample(src, 32)
	require.Equal(t, 32, dst.Bounds().Dx())
	assert.Equal(t, uint8(255), dst.Pix[3])
}

func TestDownsampleNoUpscale(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	dst := Downsample(src, 32)
	assert.Equal(t, 16, dst.Bounds().Dx())
}

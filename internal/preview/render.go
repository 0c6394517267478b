package preview

import (
	"image"
	"math"

	"github.com/flywave/go3d/vec3"
)

// frameBuffer holds the rendering target as flat slices for cache locality.
type frameBuffer struct {
	size  int
	color []uint8   // RGBA interleaved, len = size*size*4
	zbuf  []float64 // depth per pixel, initialized to -inf
}

func newFrameBuffer(size int) *frameBuffer {
	n := size * size
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	return &frameBuffer{
		size:  size,
		color: make([]uint8, n*4),
		zbuf:  zbuf,
	}
}

// Render projects a flat triangle list orthographically onto the XY plane
// and rasterizes it flat-shaded into an NRGBA image of renderSize*supersample
// pixels per side. The caller downsamples afterwards.
func Render(triangles []vec3.T, renderSize, supersample int) *image.NRGBA {
	size := renderSize * supersample
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	if len(triangles) < 3 {
		return img
	}

	minV := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxV := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range triangles {
		for k := 0; k < 3; k++ {
			f := float64(v[k])
			if f < minV[k] {
				minV[k] = f
			}
			if f > maxV[k] {
				maxV[k] = f
			}
		}
	}

	center := [3]float64{
		(minV[0] + maxV[0]) / 2,
		(minV[1] + maxV[1]) / 2,
		(minV[2] + maxV[2]) / 2,
	}
	span := maxV[0] - minV[0]
	if s := maxV[1] - minV[1]; s > span {
		span = s
	}
	if span < 0.001 {
		span = 0.001
	}

	margin := 16 * supersample
	scale := float64(size-2*margin) / span

	// Project to pixel space, image Y grows downward
	px := make([]float64, len(triangles))
	py := make([]float64, len(triangles))
	pz := make([]float64, len(triangles))
	half := float64(size) / 2
	for i, v := range triangles {
		px[i] = (float64(v[0])-center[0])*scale + half
		py[i] = half - (float64(v[1])-center[1])*scale
		pz[i] = (float64(v[2]) - center[2]) * scale
	}

	fb := newFrameBuffer(size)
	for i := 0; i+2 < len(triangles); i += 3 {
		rasterizeTriangle(fb, px, py, pz, i)
	}

	copy(img.Pix, fb.color)
	return img
}

// lightDir points from the scene toward the viewer's upper left.
var lightDir = [3]float64{-0.4, -0.6, 0.7}

func init() {
	l := math.Sqrt(lightDir[0]*lightDir[0] + lightDir[1]*lightDir[1] + lightDir[2]*lightDir[2])
	lightDir[0] /= l
	lightDir[1] /= l
	lightDir[2] /= l
}

// rasterizeTriangle fills one flat-shaded triangle with a z-buffer test.
// Zero allocation in the inner loop.
func rasterizeTriangle(fb *frameBuffer, px, py, pz []float64, i int) {
	x0, y0, z0 := px[i], py[i], pz[i]
	x1, y1, z1 := px[i+1], py[i+1], pz[i+1]
	x2, y2, z2 := px[i+2], py[i+2], pz[i+2]

	// Face normal for flat shading
	e1x, e1y, e1z := x1-x0, y1-y0, z1-z0
	e2x, e2y, e2z := x2-x0, y2-y0, z2-z0
	nx := e1y*e2z - e1z*e2y
	ny := e1z*e2x - e1x*e2z
	nz := e1x*e2y - e1y*e2x
	nl := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if nl < 1e-8 {
		return
	}
	ndl := math.Abs(nx*lightDir[0]+ny*lightDir[1]+nz*lightDir[2]) / nl
	shade := 0.25 + 0.75*ndl

	base := [3]float64{160, 160, 170}
	r := clamp255(base[0] * shade)
	g := clamp255(base[1] * shade)
	b := clamp255(base[2] * shade)

	size := fb.size
	minX := int(math.Min(math.Min(x0, x1), x2))
	maxX := int(math.Max(math.Max(x0, x1), x2)) + 1
	minY := int(math.Min(math.Min(y0, y1), y2))
	maxY := int(math.Max(math.Max(y0, y1), y2)) + 1
	if minX < 0 {
		minX = 0
	}
	if maxX >= size {
		maxX = size - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= size {
		maxY = size - 1
	}
	if minX >= maxX || minY >= maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for y := minY; y <= maxY; y++ {
		fy := float64(y) + 0.5
		row := y * size
		for x := minX; x <= maxX; x++ {
			fx := float64(x) + 0.5
			w0 := (dy12*(fx-x2) + dx21*(fy-y2)) * invDet
			w1 := (dy20*(fx-x2) + dx02*(fy-y2)) * invDet
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*z0 + w1*z1 + w2*z2
			p := row + x
			if z <= fb.zbuf[p] {
				continue
			}
			fb.zbuf[p] = z
			o := p * 4
			fb.color[o] = r
			fb.color[o+1] = g
			fb.color[o+2] = b
			fb.color[o+3] = 255
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

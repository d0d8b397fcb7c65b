// Package gbuffer holds the geometry-pass targets read by the post-process
// stages.
package gbuffer

import (
	"github.com/Faultbox/xenotech/internal/engine/surface"
	"github.com/Faultbox/xenotech/pkg/math"
)

// Clear values.
var (
	DefaultClearColor = math.Vec4{X: 0.5, Y: 0.6, Z: 0.9, W: 1}
	// ClearDepth is the far end of the [-1, 1] depth range.
	ClearDepth = float32(1)
)

// GBuffer is the set of images written by the geometry pass.
//
// Position holds the world position with alpha as the validity flag: 1
// where geometry was drawn, 0 otherwise. Normal holds the stored (negated)
// face normal. Color holds albedo times tint.
type GBuffer struct {
	Width, Height int
	Color         *surface.RGBA
	Position      *surface.RGBA
	Normal        *surface.RGBA
	Depth         *surface.Scalar
	ClearColor    math.Vec4
}

// New allocates a G-buffer of the given size.
func New(width, height int) *GBuffer {
	return &GBuffer{
		Width:      width,
		Height:     height,
		Color:      surface.NewRGBA(width, height),
		Position:   surface.NewRGBA(width, height),
		Normal:     surface.NewRGBA(width, height),
		Depth:      surface.NewScalar(width, height),
		ClearColor: DefaultClearColor,
	}
}

// Clear resets every target for a new frame.
func (g *GBuffer) Clear() {
	g.Color.Fill(g.ClearColor)
	g.Position.Fill(math.Vec4{})
	g.Normal.Fill(math.Vec4{})
	g.Depth.Fill(ClearDepth)
}

// Valid reports whether geometry covers pixel (x, y).
func (g *GBuffer) Valid(x, y int) bool {
	return g.Position.Load(x, y).W != 0
}

// Coverage returns the number of pixels covered by geometry.
func (g *GBuffer) Coverage() int {
	n := 0
	for _, p := range g.Position.Pix {
		if p.W != 0 {
			n++
		}
	}
	return n
}

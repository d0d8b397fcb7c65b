// Package raster is the geometry pass: it pulls packed block vertices
// through the index buffer and the indirect draw table, rasterizes the
// resulting triangles and writes the G-buffer.
package raster

import (
	"fmt"

	"github.com/Faultbox/xenotech/internal/engine/camera"
	"github.com/Faultbox/xenotech/internal/engine/indirect"
	"github.com/Faultbox/xenotech/pkg/math"
	"github.com/Faultbox/xenotech/pkg/vertex"
)

// Binding is a fixed resource slot of the geometry pass.
type Binding int

// Geometry pass bindings.
const (
	BindingVertices Binding = iota
	BindingIndices
	BindingDraws
	BindingCamera
	BindingAtlas
)

func (b Binding) String() string {
	switch b {
	case BindingVertices:
		return "binding 0 (vertices)"
	case BindingIndices:
		return "binding 1 (indices)"
	case BindingDraws:
		return "binding 2 (draws)"
	case BindingCamera:
		return "binding 3 (camera)"
	case BindingAtlas:
		return "binding 4 (atlas)"
	}
	return fmt.Sprintf("binding %d", int(b))
}

// Varyings are the vertex outputs interpolated across a triangle.
type Varyings struct {
	Clip     math.Vec4
	Position math.Vec3
	UV       math.Vec2
	Mapping  uint32
	Tint     math.Vec4
	Normal   math.Vec3
}

// VertexStage holds the read-only inputs of the vertex shader.
type VertexStage struct {
	Vertices []vertex.Packed
	Indices  []uint32
	Draws    []indirect.BlockDraw
	Camera   camera.Camera

	viewProj math.Mat4
}

// NewVertexStage binds the geometry inputs for one frame.
func NewVertexStage(vertices []vertex.Packed, indices []uint32, draws []indirect.BlockDraw, cam camera.Camera) *VertexStage {
	return &VertexStage{
		Vertices: vertices,
		Indices:  indices,
		Draws:    draws,
		Camera:   cam,
		viewProj: cam.ViewProj(),
	}
}

// Shade runs the vertex shader for one invocation: index lookup, packed
// fetch, unpack, draw offset and projection. UVs are scaled by the LOD so a
// tile repeats once per block across coarser faces; LOD 0 scales by 1.
// The caller guarantees both lookups are in range (see CheckIndex).
func (s *VertexStage) Shade(drawID int, vertexIndex uint32) Varyings {
	p := s.Vertices[s.Indices[vertexIndex]]
	u := p.Unpack()

	pos := u.Position.Add(s.Draws[drawID].Offset())
	lod := float32(max(u.LOD, 1))

	return Varyings{
		Clip:     s.viewProj.MulVec4(pos.Vec4(1)),
		Position: pos,
		UV:       u.UV.Scale(lod),
		Mapping:  u.Mapping,
		Tint:     u.Tint,
		Normal:   u.Direction.Normal(),
	}
}

// CheckIndex reports whether index-buffer slot i and the vertex it names are
// both in range.
func (s *VertexStage) CheckIndex(i uint32) error {
	if int(i) >= len(s.Indices) {
		return fmt.Errorf("%s: slot %d out of range %d", BindingIndices, i, len(s.Indices))
	}
	if v := s.Indices[i]; int(v) >= len(s.Vertices) {
		return fmt.Errorf("%s: vertex %d out of range %d", BindingVertices, v, len(s.Vertices))
	}
	return nil
}

func lerpVaryings(a, b Varyings, t float32) Varyings {
	return Varyings{
		Clip:     a.Clip.Lerp(b.Clip, t),
		Position: a.Position.Add(b.Position.Sub(a.Position).Scale(t)),
		UV:       a.UV.Add(b.UV.Sub(a.UV).Scale(t)),
		Mapping:  a.Mapping,
		Tint:     a.Tint.Lerp(b.Tint, t),
		Normal:   a.Normal.Add(b.Normal.Sub(a.Normal).Scale(t)),
	}
}

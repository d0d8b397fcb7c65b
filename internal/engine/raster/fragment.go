package raster

import (
	"github.com/Faultbox/xenotech/internal/engine/atlas"
	"github.com/Faultbox/xenotech/pkg/math"
)

// Fragment is the per-pixel G-buffer output.
type Fragment struct {
	Color    math.Vec4
	Position math.Vec4
	Normal   math.Vec4
}

// FragmentStage samples the atlas and produces G-buffer values.
type FragmentStage struct {
	Atlas *atlas.Atlas
	Mode  atlas.Mode
}

// Shade returns albedo times tint as color, and the position (alpha 1, the
// validity flag) and stored normal unmodified. duvdx and duvdy are the
// screen-space UV derivatives used by soft sampling.
func (f *FragmentStage) Shade(in Varyings, duvdx, duvdy math.Vec2) Fragment {
	albedo := f.Atlas.Sample(f.Mode, atlas.Albedo, in.Mapping, in.UV, duvdx, duvdy)
	return Fragment{
		Color:    albedo.Mul(in.Tint),
		Position: in.Position.Vec4(1),
		Normal:   in.Normal.Vec4(1),
	}
}

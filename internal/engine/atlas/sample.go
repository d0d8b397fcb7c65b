package atlas

import "github.com/Faultbox/xenotech/pkg/math"

// Epsilon is the inset, in tile units, that keeps soft samples off the tile
// border: half a texel.
const Epsilon = 0.5 / TileSize

// Mode selects how the fragment stage samples the atlas.
type Mode int

// Sampling modes.
const (
	Point Mode = iota
	Soft
)

func (m Mode) String() string {
	if m == Soft {
		return "soft"
	}
	return "point"
}

// PointCoord returns the tile-unit coordinate sampled in point mode: tile
// origin plus fract(uv). UVs repeat with period 1, so a UV component of
// exactly 1 (or any integer) samples the first texel row or column of the
// tile, not the last. Faces that must not repeat keep UVs in [0, 1).
func PointCoord(mapping uint32, uv math.Vec2) math.Vec2 {
	return TileOrigin(mapping).Add(uv.Fract())
}

// SamplePoint fetches a single texel: tile origin plus fract(uv).
func (a *Atlas) SamplePoint(l Layer, mapping uint32, uv math.Vec2) math.Vec4 {
	return a.Fetch(l, PointCoord(mapping, uv))
}

// SoftCoords returns the four diagonal sample points used by soft sampling.
// duvdx and duvdy are the screen-space derivatives of uv. Each point is
// offset by a quarter derivative and clamped to the tile interior
// [origin+Epsilon, origin+1-Epsilon].
func SoftCoords(mapping uint32, uv, duvdx, duvdy math.Vec2) [4]math.Vec2 {
	origin := TileOrigin(mapping)
	st := origin.Add(uv.Fract())
	dx := duvdx.Scale(0.25)
	dy := duvdy.Scale(0.25)

	lo := math.Vec2{X: origin.X + Epsilon, Y: origin.Y + Epsilon}
	hi := math.Vec2{X: origin.X + 1 - Epsilon, Y: origin.Y + 1 - Epsilon}

	return [4]math.Vec2{
		st.Add(dx).Add(dy).Clamp(lo, hi),
		st.Add(dx).Sub(dy).Clamp(lo, hi),
		st.Sub(dx).Add(dy).Clamp(lo, hi),
		st.Sub(dx).Sub(dy).Clamp(lo, hi),
	}
}

// SampleSoft averages four clamped fetches around uv. It filters across the
// pixel footprint without bleeding into neighbouring tiles.
func (a *Atlas) SampleSoft(l Layer, mapping uint32, uv, duvdx, duvdy math.Vec2) math.Vec4 {
	var sum math.Vec4
	for _, st := range SoftCoords(mapping, uv, duvdx, duvdy) {
		sum = sum.Add(a.Fetch(l, st))
	}
	return sum.Scale(0.25)
}

// Sample dispatches on mode.
func (a *Atlas) Sample(mode Mode, l Layer, mapping uint32, uv, duvdx, duvdy math.Vec2) math.Vec4 {
	if mode == Soft {
		return a.SampleSoft(l, mapping, uv, duvdx, duvdy)
	}
	return a.SamplePoint(l, mapping, uv)
}

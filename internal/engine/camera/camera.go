// Package camera provides the per-frame camera snapshot shared by every
// pipeline stage, and the controllers that produce it.
package camera

import (
	gomath "math"

	"github.com/Faultbox/xenotech/pkg/math"
)

// Default projection parameters.
const (
	DefaultFovY = float32(gomath.Pi / 2)
	DefaultNear = float32(0.1)
	DefaultFar  = float32(1000)
)

// Resolution is the render target extent every compute stage clips against.
type Resolution struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Contains reports whether pixel (x, y) lies inside the resolution.
func (r Resolution) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < r.Width && y < r.Height
}

// Pixels returns Width*Height.
func (r Resolution) Pixels() int {
	return r.Width * r.Height
}

// Camera is the immutable per-frame snapshot. Trans is the camera-to-world
// transform and View its inverse; Proj already contains the y-down clip
// correction.
type Camera struct {
	Proj       math.Mat4
	View       math.Mat4
	Trans      math.Mat4
	Resolution Resolution
}

// Identity returns a camera whose projection, view and transform are all
// identity, so world coordinates are clip coordinates.
func Identity(res Resolution) Camera {
	return Camera{
		Proj:       math.Identity(),
		View:       math.Identity(),
		Trans:      math.Identity(),
		Resolution: res,
	}
}

// New builds a perspective camera from a world translation and look rotation.
func New(translation math.Vec3, look math.Quat, res Resolution) Camera {
	trans := math.Translate(translation.X, translation.Y, translation.Z).Mul(look.ToMat4())
	return FromTransform(trans, res)
}

// FromTransform builds a perspective camera from a camera-to-world transform.
func FromTransform(trans math.Mat4, res Resolution) Camera {
	aspect := float32(1)
	if res.Height > 0 {
		aspect = float32(res.Width) / float32(res.Height)
	}
	return Camera{
		Proj:       math.FlipY().Mul(math.Perspective(DefaultFovY, aspect, DefaultNear, DefaultFar)),
		View:       trans.Inverse(),
		Trans:      trans,
		Resolution: res,
	}
}

// Position returns the camera position in world space.
func (c Camera) Position() math.Vec3 {
	return c.Trans.Translation()
}

// ViewProj returns Proj * View.
func (c Camera) ViewProj() math.Mat4 {
	return c.Proj.Mul(c.View)
}

// ToScreen maps a clip-space position to continuous pixel coordinates.
// ok is false when w is not positive.
func (c Camera) ToScreen(clip math.Vec4) (x, y float32, ok bool) {
	if clip.W <= 0 {
		return 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	x = (ndc.X*0.5 + 0.5) * float32(c.Resolution.Width)
	y = (ndc.Y*0.5 + 0.5) * float32(c.Resolution.Height)
	return x, y, true
}

// WithResolution returns a copy clipping against res. Proj is kept, so res
// should share the aspect ratio the projection was built for.
func (c Camera) WithResolution(res Resolution) Camera {
	c.Resolution = res
	return c
}

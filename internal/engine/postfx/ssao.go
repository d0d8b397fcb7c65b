package postfx

import (
	"context"

	"github.com/Faultbox/xenotech/internal/engine/camera"
	"github.com/Faultbox/xenotech/internal/engine/dispatch"
	"github.com/Faultbox/xenotech/internal/engine/surface"
	"github.com/Faultbox/xenotech/pkg/math"
)

// SSAO defaults.
const (
	DefaultRadius = float32(0.8)
	DefaultBias   = float32(0.005)
	// SameSurface is the normal similarity at or above which an occluder is
	// treated as the fragment's own surface.
	SameSurface = float32(0.99)
	minDepthGap = float32(1e-4)
)

// Params are the tunable SSAO constants.
type Params struct {
	Radius float32
	Bias   float32
}

// DefaultParams returns the stock radius and bias.
func DefaultParams() Params {
	return Params{Radius: DefaultRadius, Bias: DefaultBias}
}

// SSAOInputs binds the SSAO stage: camera (binding 0), position (1),
// normal (2), noise (3) and kernel (4). The output is binding 5.
type SSAOInputs struct {
	Camera   camera.Camera
	Position *surface.RGBA
	Normal   *surface.RGBA
	Noise    *surface.Uint
	Kernel   *surface.RGBA
	Params   Params
}

// SSAO estimates ambient occlusion at pixel (x, y). ok is false outside the
// camera resolution, where nothing is written. Pixels without geometry
// return 1.
func SSAO(in *SSAOInputs, x, y int) (ao float32, ok bool) {
	cam := &in.Camera
	if !cam.Resolution.Contains(x, y) {
		return 0, false
	}
	p := in.Position.Load(x, y)
	if p.W == 0 {
		return 1, true
	}

	fragPos := cam.View.TransformPoint(p.XYZ())
	// Stored normals are negated
	stored := in.Normal.Load(x, y).XYZ()
	n := cam.View.TransformDirection(stored.Neg()).Normalize()

	bits := in.Noise.LoadWrap(x, y)
	rv := math.Vec3{
		X: BitsToUnit(bits[0])*2 - 1,
		Y: BitsToUnit(bits[1])*2 - 1,
		Z: BitsToUnit(bits[2])*2 - 1,
	}
	t := tangent(rv, n)
	b := n.Cross(t)

	radius, bias := in.Params.Radius, in.Params.Bias
	occlusion := float32(0)
	for i := 0; i < KernelSize; i++ {
		k := in.Kernel.Load(i, 0)
		offset := t.Scale(k.X).Add(b.Scale(k.Y)).Add(n.Scale(k.Z))
		sample := fragPos.Add(offset.Scale(radius))

		sx, sy, visible := project(cam, sample)
		if !visible || !cam.Resolution.Contains(sx, sy) {
			continue
		}
		occ := in.Position.Load(sx, sy)
		if occ.W == 0 {
			continue
		}
		if in.Normal.Load(sx, sy).XYZ().Dot(stored) >= SameSurface {
			continue
		}

		occZ := cam.View.TransformPoint(occ.XYZ()).Z
		gap := max(math.Abs(fragPos.Z-occZ), minDepthGap)
		rangeCheck := math.Smoothstep(0, 1, radius/gap)
		if occZ >= sample.Z+bias {
			occlusion += rangeCheck
		}
	}
	return math.Clamp(1-occlusion/KernelSize, 0, 1), true
}

// tangent projects rv onto the plane orthogonal to n. A random vector
// parallel to n falls back to any perpendicular axis.
func tangent(rv, n math.Vec3) math.Vec3 {
	t := rv.Sub(n.Scale(rv.Dot(n)))
	if t.Length() > 1e-4 {
		return t.Normalize()
	}
	axis := math.Vec3{X: 1}
	if math.Abs(n.X) > 0.9 {
		axis = math.Vec3{Y: 1}
	}
	return axis.Sub(n.Scale(axis.Dot(n))).Normalize()
}

// project maps a view-space point to the pixel that contains it.
func project(cam *camera.Camera, v math.Vec3) (int, int, bool) {
	fx, fy, ok := cam.ToScreen(cam.Proj.MulVec4(v.Vec4(1)))
	if !ok {
		return 0, 0, false
	}
	return int(math.Floor(fx)), int(math.Floor(fy)), true
}

// SSAOPass writes SSAO for every pixel of the camera resolution into out.
func SSAOPass(ctx context.Context, d *dispatch.Dispatcher, in *SSAOInputs, out *surface.Scalar) error {
	res := in.Camera.Resolution
	return d.Dispatch(ctx, "ssao", res.Width, res.Height, func(x, y int) {
		if ao, ok := SSAO(in, x, y); ok {
			out.Store(x, y, ao)
		}
	})
}

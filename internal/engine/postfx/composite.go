package postfx

import (
	"context"

	"github.com/Faultbox/xenotech/internal/engine/camera"
	"github.com/Faultbox/xenotech/internal/engine/dispatch"
	"github.com/Faultbox/xenotech/internal/engine/surface"
	"github.com/Faultbox/xenotech/pkg/math"
)

// Composite modulates color by the occlusion term. Alpha is always 1.
func Composite(ao float32, color math.Vec4) math.Vec4 {
	return math.Vec4{X: ao * color.X, Y: ao * color.Y, Z: ao * color.Z, W: 1}
}

// CompositePass writes Composite(ssao, color) into out for every pixel of
// the camera resolution.
func CompositePass(ctx context.Context, d *dispatch.Dispatcher, cam camera.Camera, ssao *surface.Scalar, color, out *surface.RGBA) error {
	res := cam.Resolution
	return d.Dispatch(ctx, "composite", res.Width, res.Height, func(x, y int) {
		if !res.Contains(x, y) {
			return
		}
		out.Store(x, y, Composite(ssao.Load(x, y), color.Load(x, y)))
	})
}

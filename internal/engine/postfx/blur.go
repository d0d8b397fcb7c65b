package postfx

import (
	"context"
	"errors"
	"fmt"

	"github.com/Faultbox/xenotech/internal/engine/camera"
	"github.com/Faultbox/xenotech/internal/engine/dispatch"
	"github.com/Faultbox/xenotech/internal/engine/surface"
)

// Blur constants.
const (
	BlurRadius = 4
	// EdgeThreshold is the minimum normal similarity for a tap to count.
	EdgeThreshold = float32(0.9)
)

// Direction selects the blur axis.
type Direction int

// Blur directions, matching the direction flag of the blur stage.
const (
	Horizontal Direction = 0
	Vertical   Direction = 1
)

func (d Direction) String() string {
	if d == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ErrAliasedTarget is returned when a blur pass would read and write the
// same image.
var ErrAliasedTarget = errors.New("blur source and destination alias")

// BlurInputs binds the blur stage: camera (binding 0), normal (1) and the
// SSAO source snapshot (2). The destination is binding 3.
type BlurInputs struct {
	Camera camera.Camera
	Normal *surface.RGBA
	Src    *surface.Scalar
}

// Blur averages the 2*BlurRadius+1 taps around (x, y) along dir. Taps
// outside the resolution, or whose normal differs from the centre's by more
// than EdgeThreshold, are skipped. The centre always counts, so the divisor
// is at least 1. ok is false outside the resolution.
func Blur(in *BlurInputs, x, y int, dir Direction) (v float32, ok bool) {
	res := in.Camera.Resolution
	if !res.Contains(x, y) {
		return 0, false
	}
	centre := in.Normal.Load(x, y).XYZ()

	sum := in.Src.Load(x, y)
	count := float32(1)
	for i := -BlurRadius; i <= BlurRadius; i++ {
		if i == 0 {
			continue
		}
		tx, ty := x+i, y
		if dir == Vertical {
			tx, ty = x, y+i
		}
		if !res.Contains(tx, ty) {
			continue
		}
		if in.Normal.Load(tx, ty).XYZ().Dot(centre) < EdgeThreshold {
			continue
		}
		sum += in.Src.Load(tx, ty)
		count++
	}
	return sum / count, true
}

// BlurPass reads in.Src and writes dst along dir. dst must be a distinct
// image; the orchestrator swaps the two between directions.
func BlurPass(ctx context.Context, d *dispatch.Dispatcher, in *BlurInputs, dst *surface.Scalar, dir Direction) error {
	if in.Src == dst {
		return fmt.Errorf("blur %s: %w", dir, ErrAliasedTarget)
	}
	res := in.Camera.Resolution
	return d.Dispatch(ctx, "blur-"+dir.String(), res.Width, res.Height, func(x, y int) {
		if v, ok := Blur(in, x, y, dir); ok {
			dst.Store(x, y, v)
		}
	})
}

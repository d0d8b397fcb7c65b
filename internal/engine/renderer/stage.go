package renderer

import (
	"fmt"
	"image"
	"strings"

	"github.com/Faultbox/xenotech/internal/engine/surface"
	"github.com/Faultbox/xenotech/pkg/math"
)

// Stage names an inspectable pipeline image.
type Stage int

// Pipeline images.
const (
	StageComposite Stage = iota
	StageColor
	StagePosition
	StageNormal
	StageDepth
	StageSSAO
	StageBlurHorizontal
	StageBlur
	stageCount
)

var stageNames = [stageCount]string{
	"composite", "color", "position", "normal", "depth", "ssao", "blur_x", "blur",
}

func (s Stage) String() string {
	if s < 0 || s >= stageCount {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Stages lists every stage in pipeline output order.
func Stages() []Stage {
	out := make([]Stage, stageCount)
	for i := range out {
		out[i] = Stage(i)
	}
	return out
}

// ParseStage resolves a stage by name.
func ParseStage(name string) (Stage, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

// Image returns a displayable copy of a stage from the last Render.
// Positions and normals are mapped from [-1, 1] into [0, 1]; depth likewise.
func (r *Renderer) Image(s Stage) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	gb := r.gbuffer
	switch s {
	case StageComposite:
		return r.output.ToImage(), nil
	case StageColor:
		return gb.Color.ToImage(), nil
	case StagePosition:
		return remapRGBA(gb.Position, 1.0/32).ToImage(), nil
	case StageNormal:
		return remapRGBA(gb.Normal, 1).ToImage(), nil
	case StageDepth:
		out := surface.NewScalar(gb.Depth.Width, gb.Depth.Height)
		for i, d := range gb.Depth.Pix {
			out.Pix[i] = d*0.5 + 0.5
		}
		return out.ToImage(), nil
	case StageSSAO:
		return r.occlusion.ToImage(), nil
	case StageBlurHorizontal:
		return r.scratch.ToImage(), nil
	case StageBlur:
		return r.smoothed.ToImage(), nil
	}
	return nil, fmt.Errorf("unknown stage %v", s)
}

// remapRGBA scales xyz by k and maps [-1, 1] into [0, 1], keeping alpha.
func remapRGBA(src *surface.RGBA, k float32) *surface.RGBA {
	out := surface.NewRGBA(src.Width, src.Height)
	for i, v := range src.Pix {
		out.Pix[i] = math.Vec4{
			X: v.X*k*0.5 + 0.5,
			Y: v.Y*k*0.5 + 0.5,
			Z: v.Z*k*0.5 + 0.5,
			W: 1,
		}
		if v.W == 0 {
			out.Pix[i] = math.Vec4{W: 1}
		}
	}
	return out
}

// Package postfx holds the compute stages that run after the geometry pass:
// screen-space ambient occlusion, the edge-aware separable blur and the
// final composite. Every stage is a pure per-pixel function plus a pass that
// dispatches it over the camera resolution.
package postfx

import (
	gomath "math"
	"math/rand/v2"

	"github.com/Faultbox/xenotech/internal/engine/surface"
	"github.com/Faultbox/xenotech/pkg/math"
)

// KernelSize is the number of hemisphere samples per pixel.
const KernelSize = 8

// DefaultNoiseSize is the extent of the square rotation noise image.
const DefaultNoiseSize = 256

// GenerateKernel returns KernelSize hemisphere samples as a KernelSize x 1
// image. Samples point into +Z, have random length and are pushed towards
// the origin so nearby geometry weighs more.
func GenerateKernel(rng *rand.Rand) *surface.RGBA {
	k := surface.NewRGBA(KernelSize, 1)
	for i := 0; i < KernelSize; i++ {
		s := math.Vec3{
			X: rng.Float32()*2 - 1,
			Y: rng.Float32()*2 - 1,
			Z: rng.Float32(),
		}.Normalize()
		s = s.Scale(rng.Float32())

		scale := float32(i) / KernelSize
		s = s.Scale(math.Lerp(0.1, 1, scale*scale))
		k.Store(i, 0, s.Vec4(0))
	}
	return k
}

// GenerateNoise returns a w x h image of random 32-bit words.
func GenerateNoise(rng *rand.Rand, w, h int) *surface.Uint {
	n := surface.NewUint(w, h)
	for i := range n.Pix {
		n.Pix[i] = [4]uint32{rng.Uint32(), rng.Uint32(), rng.Uint32(), rng.Uint32()}
	}
	return n
}

// BitsToUnit maps the top 23 bits of u onto [0, 1) by building a float in
// [1, 2) from them as mantissa.
func BitsToUnit(u uint32) float32 {
	return gomath.Float32frombits(0x3F800000|u>>9) - 1
}

// NewRand returns the deterministic generator used for kernel and noise.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

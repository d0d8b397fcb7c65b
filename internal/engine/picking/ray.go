// Package picking casts screen rays into block chunks.
package picking

import (
	gomath "math"

	"github.com/Faultbox/xenotech/internal/engine/camera"
	"github.com/Faultbox/xenotech/internal/world"
	"github.com/Faultbox/xenotech/pkg/math"
	"github.com/Faultbox/xenotech/pkg/vertex"
)

// Ray is a half-line with a normalized direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// AABB is an axis-aligned box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

func axis(v math.Vec3, i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

// ScreenToRay unprojects pixel (px, py) of cam into a world ray starting
// on the near plane. ok is false when the camera cannot be inverted.
func ScreenToRay(cam camera.Camera, px, py float32) (Ray, bool) {
	res := cam.Resolution
	if res.Width <= 0 || res.Height <= 0 {
		return Ray{}, false
	}
	// Pixel rows grow with NDC y; the projection carries the flip
	ndcX := 2*px/float32(res.Width) - 1
	ndcY := 2*py/float32(res.Height) - 1

	inv := cam.ViewProj().Inverse()
	near := inv.MulVec4(math.Vec4{X: ndcX, Y: ndcY, Z: -1, W: 1})
	far := inv.MulVec4(math.Vec4{X: ndcX, Y: ndcY, Z: 1, W: 1})
	if near.W == 0 || far.W == 0 {
		return Ray{}, false
	}
	origin := near.PerspectiveDivide()
	dir := far.PerspectiveDivide().Sub(origin)
	if dir.Length() == 0 {
		return Ray{}, false
	}
	return Ray{Origin: origin, Direction: dir.Normalize()}, true
}

// slabs returns the entry and exit distances of r through box.
func (r Ray) slabs(box AABB) (tmin, tmax float32, hit bool) {
	tmin = float32(-gomath.MaxFloat32)
	tmax = float32(gomath.MaxFloat32)
	for i := 0; i < 3; i++ {
		o, d := axis(r.Origin, i), axis(r.Direction, i)
		lo, hi := axis(box.Min, i), axis(box.Max, i)
		if d == 0 {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}
		t1, t2 := (lo-o)/d, (hi-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}
	if tmax < tmin || tmax < 0 {
		return 0, 0, false
	}
	return tmin, tmax, true
}

// IntersectAABB returns the entry distance into box, or the exit distance
// when the ray starts inside it.
func (r Ray) IntersectAABB(box AABB) (float32, bool) {
	tmin, tmax, ok := r.slabs(box)
	if !ok {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// Hit is the first opaque block along a ray.
type Hit struct {
	X, Y, Z  int
	Block    world.Block
	Face     vertex.Direction
	Distance float32
}

// Faces entered when stepping along an axis in the positive and negative
// direction.
var enteredFace = [3][2]vertex.Direction{
	{vertex.Left, vertex.Right},
	{vertex.Forward, vertex.Back},
	{vertex.Up, vertex.Down},
}

// PickBlock walks the cells of c (placed at origin) along r and returns the
// first opaque block within maxDist.
func PickBlock(c *world.Chunk, origin math.Vec3, r Ray, maxDist float32) (Hit, bool) {
	scale := float32(c.Scale())
	n := c.Axis()
	size := float32(n) * scale
	box := AABB{Min: origin, Max: origin.Add(math.Vec3{X: size, Y: size, Z: size})}

	tmin, _, ok := r.slabs(box)
	if !ok {
		return Hit{}, false
	}
	t := max(tmin, 0)
	if t > maxDist {
		return Hit{}, false
	}

	var (
		cell   [3]int
		step   [3]int
		tMax   [3]float32
		tDelta [3]float32
	)
	entry := r.At(t)
	for i := 0; i < 3; i++ {
		o, d := axis(r.Origin, i), axis(r.Direction, i)
		base := axis(origin, i)
		cell[i] = min(max(int(gomath.Floor(float64((axis(entry, i)-base)/scale))), 0), n-1)
		switch {
		case d > 0:
			step[i] = 1
			tMax[i] = (base + float32(cell[i]+1)*scale - o) / d
			tDelta[i] = scale / d
		case d < 0:
			step[i] = -1
			tMax[i] = (base + float32(cell[i])*scale - o) / d
			tDelta[i] = -scale / d
		default:
			tMax[i] = float32(gomath.Inf(1))
			tDelta[i] = float32(gomath.Inf(1))
		}
	}

	last := entryAxis(r, box, tmin)
	for {
		if b := c.Get(cell[0], cell[1], cell[2]); b.Opaque() {
			return Hit{
				X: cell[0], Y: cell[1], Z: cell[2],
				Block:    b,
				Face:     faceFor(last, step),
				Distance: t,
			}, true
		}

		a := 0
		if tMax[1] < tMax[a] {
			a = 1
		}
		if tMax[2] < tMax[a] {
			a = 2
		}
		t = tMax[a]
		if t > maxDist {
			return Hit{}, false
		}
		cell[a] += step[a]
		if cell[a] < 0 || cell[a] >= n {
			return Hit{}, false
		}
		tMax[a] += tDelta[a]
		last = a
	}
}

// entryAxis returns the axis whose slab the ray crossed last when entering
// box, or the dominant ray axis when it starts inside.
func entryAxis(r Ray, box AABB, tmin float32) int {
	best := 0
	if tmin >= 0 {
		for i := 0; i < 3; i++ {
			d := axis(r.Direction, i)
			if d == 0 {
				continue
			}
			lo, hi := axis(box.Min, i), axis(box.Max, i)
			t1 := (lo - axis(r.Origin, i)) / d
			if d < 0 {
				t1 = (hi - axis(r.Origin, i)) / d
			}
			if gomath.Abs(float64(t1-tmin)) < 1e-5 {
				return i
			}
		}
	}
	for i := 1; i < 3; i++ {
		if gomath.Abs(float64(axis(r.Direction, i))) > gomath.Abs(float64(axis(r.Direction, best))) {
			best = i
		}
	}
	return best
}

func faceFor(a int, step [3]int) vertex.Direction {
	if step[a] < 0 {
		return enteredFace[a][1]
	}
	return enteredFace[a][0]
}

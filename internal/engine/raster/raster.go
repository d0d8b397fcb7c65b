package raster

import (
	"context"
	"sync/atomic"

	"github.com/Faultbox/xenotech/internal/engine/dispatch"
	"github.com/Faultbox/xenotech/internal/engine/gbuffer"
	"github.com/Faultbox/xenotech/pkg/math"
)

// minW keeps clipped vertices strictly in front of the eye.
const minW = 1e-6

// Stats summarises one geometry pass.
type Stats struct {
	Draws     int
	Triangles int
	Clipped   int // triangles discarded entirely by the near plane
	Rejected  int // triangles skipped because an index was out of range
	Fragments int64
}

// screenVertex is a clipped vertex in pixel space.
type screenVertex struct {
	X, Y, Z float32
	InvW    float32
	V       Varyings
}

type triangle struct {
	v                      [3]screenVertex
	area                   float32
	minX, maxX, minY, maxY int
}

// Rasterizer runs the geometry pass on a dispatcher's pool.
type Rasterizer struct {
	d *dispatch.Dispatcher
}

// New creates a rasterizer.
func New(d *dispatch.Dispatcher) *Rasterizer {
	return &Rasterizer{d: d}
}

// Draw executes every command of vs.Draws and writes color, position,
// normal and depth into gb. gb must already be cleared and sized to the
// camera resolution.
func (r *Rasterizer) Draw(ctx context.Context, vs *VertexStage, fs *FragmentStage, gb *gbuffer.GBuffer) (Stats, error) {
	res := vs.Camera.Resolution
	w, h := min(res.Width, gb.Width), min(res.Height, gb.Height)

	perDraw := make([][]triangle, len(vs.Draws))
	perStats := make([]Stats, len(vs.Draws))
	err := r.d.Bands(ctx, "raster-setup", len(vs.Draws), func(d0, d1 int) {
		for id := d0; id < d1; id++ {
			perDraw[id], perStats[id] = setupDraw(vs, id, w, h)
		}
	})
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	var tris []triangle
	for i := range perDraw {
		tris = append(tris, perDraw[i]...)
		stats.Triangles += perStats[i].Triangles
		stats.Clipped += perStats[i].Clipped
		stats.Rejected += perStats[i].Rejected
	}
	stats.Draws = len(vs.Draws)

	size := r.d.BandSize(h)
	bins := binTriangles(tris, size, h)

	var fragments atomic.Int64
	err = r.d.Bands(ctx, "raster", h, func(y0, y1 int) {
		n := int64(0)
		for _, i := range bins[y0/size] {
			n += rasterize(&tris[i], fs, gb, y0, y1)
		}
		fragments.Add(n)
	})
	if err != nil {
		return Stats{}, err
	}
	stats.Fragments = fragments.Load()
	return stats, nil
}

// binTriangles lists, per row band of the given size, the triangles whose
// bounds overlap it. Triangle order is kept within a band.
func binTriangles(tris []triangle, size, h int) [][]int {
	bins := make([][]int, (h+size-1)/size)
	for i := range tris {
		for b := tris[i].minY / size; b <= tris[i].maxY/size; b++ {
			bins[b] = append(bins[b], i)
		}
	}
	return bins
}

// setupDraw shades, clips and projects every triangle of one draw.
func setupDraw(vs *VertexStage, id, w, h int) ([]triangle, Stats) {
	var (
		out   []triangle
		stats Stats
	)
	cmd := vs.Draws[id].Cmd
	for inst := uint32(0); inst < cmd.InstanceCount; inst++ {
		for k := uint32(0); k+3 <= cmd.VertexCount; k += 3 {
			stats.Triangles++
			base := cmd.FirstVertex + k
			var in [3]Varyings
			ok := true
			for j := range in {
				if vs.CheckIndex(base+uint32(j)) != nil {
					ok = false
					break
				}
				in[j] = vs.Shade(id, base+uint32(j))
			}
			if !ok {
				stats.Rejected++
				continue
			}

			poly := clipNear(in[:])
			if len(poly) < 3 {
				stats.Clipped++
				continue
			}
			for f := 1; f+1 < len(poly); f++ {
				if t, ok := setupTriangle(poly[0], poly[f], poly[f+1], w, h); ok {
					out = append(out, t)
				}
			}
		}
	}
	return out, stats
}

// clipNear clips a polygon against the near plane z >= -w.
func clipNear(in []Varyings) []Varyings {
	out := make([]Varyings, 0, len(in)+1)
	for i := range in {
		a, b := in[i], in[(i+1)%len(in)]
		da, db := a.Clip.Z+a.Clip.W, b.Clip.Z+b.Clip.W
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, lerpVaryings(a, b, da/(da-db)))
		}
	}
	for _, v := range out {
		if v.Clip.W <= minW {
			return nil
		}
	}
	return out
}

func toScreen(v Varyings, w, h int) screenVertex {
	inv := 1 / v.Clip.W
	return screenVertex{
		X:    (v.Clip.X*inv*0.5 + 0.5) * float32(w),
		Y:    (v.Clip.Y*inv*0.5 + 0.5) * float32(h),
		Z:    v.Clip.Z * inv,
		InvW: inv,
		V:    v,
	}
}

func edge(a, b screenVertex, px, py float32) float32 {
	return (b.X-a.X)*(py-a.Y) - (b.Y-a.Y)*(px-a.X)
}

func setupTriangle(a, b, c Varyings, w, h int) (triangle, bool) {
	t := triangle{v: [3]screenVertex{toScreen(a, w, h), toScreen(b, w, h), toScreen(c, w, h)}}
	t.area = edge(t.v[0], t.v[1], t.v[2].X, t.v[2].Y)
	if t.area == 0 {
		return t, false
	}

	lo := math.Vec2{X: min(t.v[0].X, t.v[1].X, t.v[2].X), Y: min(t.v[0].Y, t.v[1].Y, t.v[2].Y)}
	hi := math.Vec2{X: max(t.v[0].X, t.v[1].X, t.v[2].X), Y: max(t.v[0].Y, t.v[1].Y, t.v[2].Y)}
	t.minX = max(int(math.Floor(lo.X)), 0)
	t.minY = max(int(math.Floor(lo.Y)), 0)
	t.maxX = min(int(math.Floor(hi.X)), w-1)
	t.maxY = min(int(math.Floor(hi.Y)), h-1)
	if t.minX > t.maxX || t.minY > t.maxY {
		return t, false
	}
	return t, true
}

// bary returns the screen-space barycentric weights of (px, py).
func (t *triangle) bary(px, py float32) (float32, float32, float32) {
	b0 := edge(t.v[1], t.v[2], px, py) / t.area
	b1 := edge(t.v[2], t.v[0], px, py) / t.area
	b2 := edge(t.v[0], t.v[1], px, py) / t.area
	return b0, b1, b2
}

// perspective turns screen weights into perspective-correct weights.
func (t *triangle) perspective(b0, b1, b2 float32) (float32, float32, float32) {
	w0, w1, w2 := b0*t.v[0].InvW, b1*t.v[1].InvW, b2*t.v[2].InvW
	s := w0 + w1 + w2
	if s == 0 {
		return b0, b1, b2
	}
	return w0 / s, w1 / s, w2 / s
}

func (t *triangle) uvAt(px, py float32) math.Vec2 {
	p0, p1, p2 := t.perspective(t.bary(px, py))
	return t.v[0].V.UV.Scale(p0).Add(t.v[1].V.UV.Scale(p1)).Add(t.v[2].V.UV.Scale(p2))
}

func (t *triangle) varyingsAt(p0, p1, p2 float32) Varyings {
	a, b, c := &t.v[0].V, &t.v[1].V, &t.v[2].V
	return Varyings{
		Position: a.Position.Scale(p0).Add(b.Position.Scale(p1)).Add(c.Position.Scale(p2)),
		UV:       a.UV.Scale(p0).Add(b.UV.Scale(p1)).Add(c.UV.Scale(p2)),
		Mapping:  a.Mapping,
		Tint:     a.Tint.Scale(p0).Add(b.Tint.Scale(p1)).Add(c.Tint.Scale(p2)),
		Normal:   a.Normal.Scale(p0).Add(b.Normal.Scale(p1)).Add(c.Normal.Scale(p2)),
	}
}

// rasterize covers rows [y0, y1) of t and returns the number of fragments
// that passed the depth test.
func rasterize(t *triangle, fs *FragmentStage, gb *gbuffer.GBuffer, y0, y1 int) int64 {
	ys, ye := max(t.minY, y0), min(t.maxY, y1-1)
	n := int64(0)
	for y := ys; y <= ye; y++ {
		py := float32(y) + 0.5
		for x := t.minX; x <= t.maxX; x++ {
			px := float32(x) + 0.5
			b0, b1, b2 := t.bary(px, py)
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}

			z := b0*t.v[0].Z + b1*t.v[1].Z + b2*t.v[2].Z
			if z < -1 || z > 1 || z >= gb.Depth.Load(x, y) {
				continue
			}

			in := t.varyingsAt(t.perspective(b0, b1, b2))
			// Derivatives from the neighbouring pixel centres, like a 2x2 quad
			duvdx := t.uvAt(px+1, py).Sub(in.UV)
			duvdy := t.uvAt(px, py+1).Sub(in.UV)

			frag := fs.Shade(in, duvdx, duvdy)
			gb.Depth.Store(x, y, z)
			gb.Color.Store(x, y, frag.Color)
			gb.Position.Store(x, y, frag.Position)
			gb.Normal.Store(x, y, frag.Normal)
			n++
		}
	}
	return n
}

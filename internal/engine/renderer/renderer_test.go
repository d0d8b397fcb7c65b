package renderer

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"testing"

	"github.com/Faultbox/xenotech/internal/engine/atlas"
	"github.com/Faultbox/xenotech/internal/engine/camera"
	"github.com/Faultbox/xenotech/internal/engine/gbuffer"
	"github.com/Faultbox/xenotech/internal/world"
	"github.com/Faultbox/xenotech/pkg/math"
	"github.com/Faultbox/xenotech/pkg/vertex"
)

func solidAtlas(t *testing.T, c color.Color) *atlas.Atlas {
	t.Helper()
	b := atlas.NewBuilder()
	for _, name := range world.TextureNames() {
		if _, err := b.Add(name, atlas.Checker(c, c, 1)); err != nil {
			t.Fatal(err)
		}
	}
	return b.Build()
}

func newRenderer(t *testing.T, w, h int, a *atlas.Atlas) *Renderer {
	t.Helper()
	cfg := DefaultConfig(w, h)
	cfg.Workers = 2
	cfg.NoiseSize = 4
	r, err := New(cfg, a)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func singleBlock(t *testing.T) *world.BlockMesh {
	t.Helper()
	c := world.NewChunk(0)
	c.Set(0, 0, 0, world.Stone)
	c.UpdateVisibility()
	m, err := world.GenBlockMesh(c, math.Vec3{}, func(world.Block, vertex.Direction) (uint32, bool) { return 0, true })
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNewValidates(t *testing.T) {
	a := solidAtlas(t, color.White)
	if _, err := New(DefaultConfig(0, 4), a); err == nil {
		t.Error("zero width should fail")
	}
	if _, err := New(DefaultConfig(4, 4), nil); err == nil {
		t.Error("nil atlas should fail")
	}
}

func TestRenderSingleFace(t *testing.T) {
	r := newRenderer(t, 8, 8, solidAtlas(t, color.NRGBA{R: 255, A: 255}))
	if _, err := r.AddBlockMesh(singleBlock(t)); err != nil {
		t.Fatalf("AddBlockMesh: %v", err)
	}

	stats, err := r.Render(context.Background(), camera.Identity(camera.Resolution{Width: 8, Height: 8}))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if stats.Geometry.Draws != 1 || stats.Coverage != 16 {
		t.Errorf("stats = %+v, want 1 draw covering 16 pixels", stats)
	}
	if len(stats.Timings) != 5 {
		t.Errorf("got %d stage timings, want 5", len(stats.Timings))
	}

	out := r.Output()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := gbuffer.DefaultClearColor
			if x >= 4 && y >= 4 {
				want = math.Vec4{X: 1, W: 1}
			}
			if got := out.Load(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
			if ao := r.smoothed.Load(x, y); ao != 1 {
				t.Errorf("pixel (%d,%d) occlusion = %v, want 1", x, y, ao)
			}
		}
	}
}

func TestRenderEmptyScene(t *testing.T) {
	r := newRenderer(t, 4, 4, solidAtlas(t, color.White))
	stats, err := r.Render(context.Background(), camera.Identity(camera.Resolution{Width: 4, Height: 4}))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Coverage != 0 || stats.Geometry.Draws != 0 {
		t.Errorf("stats = %+v, want nothing drawn", stats)
	}
	if got := r.Output().Load(2, 2); got != gbuffer.DefaultClearColor {
		t.Errorf("output = %v, want clear color", got)
	}
}

func TestRenderCancelled(t *testing.T) {
	r := newRenderer(t, 4, 4, solidAtlas(t, color.White))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, camera.Identity(camera.Resolution{Width: 4, Height: 4})); !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestMeshLifecycle(t *testing.T) {
	r := newRenderer(t, 4, 4, solidAtlas(t, color.White))
	terrain := world.DemoTerrain(world.DefaultTerrainParams(7))
	a, err := world.GenBlockMesh(terrain, math.Vec3{}, func(world.Block, vertex.Direction) (uint32, bool) { return 0, true })
	if err != nil {
		t.Fatal(err)
	}

	id, err := r.AddBlockMesh(a)
	if err != nil {
		t.Fatalf("AddBlockMesh: %v", err)
	}
	wantDraws := (len(a.Indices) + 5999) / 6000
	if r.Draws() != wantDraws {
		t.Errorf("Draws() = %d, want %d", r.Draws(), wantDraws)
	}

	var indices int
	for _, d := range r.draws.Draws() {
		indices += int(d.Cmd.VertexCount)
		if d.Cmd.VertexCount%3 != 0 {
			t.Errorf("draw with %d indices is not whole triangles", d.Cmd.VertexCount)
		}
	}
	if indices != len(a.Indices) {
		t.Errorf("draws cover %d indices, want %d", indices, len(a.Indices))
	}

	// Rebased indices resolve to the same packed vertices as the mesh.
	snap := r.vertices.Snapshot()
	islots := r.indices.Snapshot()
	d0 := r.draws.Draws()[0].Cmd
	for k := uint32(0); k < min(d0.VertexCount, 600); k++ {
		if snap[islots[d0.FirstVertex+k]] != a.Vertices[a.Indices[k]] {
			t.Fatalf("index %d resolves to a different vertex", k)
		}
	}

	storeLen := r.vertices.Len()
	if err := r.RemoveBlockMesh(id); err != nil {
		t.Fatalf("RemoveBlockMesh: %v", err)
	}
	if r.Draws() != 0 || r.Meshes() != 0 {
		t.Errorf("after remove: %d draws %d meshes", r.Draws(), r.Meshes())
	}
	if err := r.RemoveBlockMesh(id); !errors.Is(err, ErrUnknownMesh) {
		t.Errorf("second remove error = %v, want ErrUnknownMesh", err)
	}

	if _, err := r.AddBlockMesh(a); err != nil {
		t.Fatal(err)
	}
	if r.vertices.Len() != storeLen {
		t.Errorf("store grew from %d to %d; freed buckets should be reused", storeLen, r.vertices.Len())
	}
}

func TestAddBlockMeshRejectsBadMesh(t *testing.T) {
	r := newRenderer(t, 4, 4, solidAtlas(t, color.White))
	m := singleBlock(t)

	if _, err := r.AddBlockMesh(&world.BlockMesh{}); !errors.Is(err, world.ErrEmptyMesh) {
		t.Errorf("empty mesh error = %v", err)
	}
	bad := *m
	bad.Indices = append([]uint32{}, m.Indices...)
	bad.Indices[0] = uint32(len(m.Vertices))
	if _, err := r.AddBlockMesh(&bad); err == nil {
		t.Error("out of range index should fail")
	}
	short := *m
	short.Indices = m.Indices[:4]
	if _, err := r.AddBlockMesh(&short); err == nil {
		t.Error("partial triangle should fail")
	}
}

func TestResize(t *testing.T) {
	r := newRenderer(t, 4, 4, solidAtlas(t, color.White))
	r.Resize(6, 2)
	if w, h := r.Size(); w != 6 || h != 2 {
		t.Fatalf("Size() = %d, %d", w, h)
	}
	if r.Output().Width != 6 || r.GBuffer().Height != 2 {
		t.Error("targets were not reallocated")
	}
	if _, err := r.Render(context.Background(), camera.Identity(camera.Resolution{Width: 1, Height: 1})); err != nil {
		t.Fatal(err)
	}
}

func TestResizeDuringRender(t *testing.T) {
	r := newRenderer(t, 8, 8, solidAtlas(t, color.White))
	if _, err := r.AddBlockMesh(singleBlock(t)); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			if _, err := r.Render(context.Background(), camera.Identity(camera.Resolution{})); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			r.Resize(4+i%3, 4+i%2)
			r.SetSampling(atlas.Mode(i % 2))
		}
	}()
	wg.Wait()

	w, h := r.Size()
	if out := r.Output(); out.Width != w || out.Height != h {
		t.Errorf("output %dx%d does not match size %dx%d", out.Width, out.Height, w, h)
	}
	if img, err := r.Image(StageBlur); err != nil || img.Bounds().Dx() != w {
		t.Errorf("Image(blur) = %v, %v", img, err)
	}
}

func TestStageImages(t *testing.T) {
	r := newRenderer(t, 8, 4, solidAtlas(t, color.White))
	if _, err := r.AddBlockMesh(singleBlock(t)); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render(context.Background(), camera.Identity(r.Resolution())); err != nil {
		t.Fatal(err)
	}
	for _, s := range Stages() {
		img, err := r.Image(s)
		if err != nil {
			t.Fatalf("Image(%v): %v", s, err)
		}
		if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
			t.Errorf("Image(%v) bounds = %v", s, b)
		}
		got, err := ParseStage(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStage(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseStage("bogus"); err == nil {
		t.Error("ParseStage(bogus) should fail")
	}
	if _, err := r.Image(Stage(99)); err == nil {
		t.Error("Image(99) should fail")
	}
}

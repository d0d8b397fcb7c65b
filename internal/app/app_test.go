package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/xenotech/internal/config"
	"github.com/Faultbox/xenotech/internal/engine/atlas"
	"github.com/Faultbox/xenotech/internal/world"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Render.Width = 32
	cfg.Render.Height = 16
	cfg.Render.RenderScale = 1
	cfg.Render.Workers = 2
	cfg.SSAO.NoiseSize = 8
	cfg.Output.Dir = t.TempDir()
	return cfg
}

func TestRendererConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Render.SoftSampling = false
	cfg.SSAO.Radius = 2
	rc := RendererConfig(cfg)
	if rc.Width != 640 || rc.Height != 360 {
		t.Errorf("size = %dx%d, want 640x360", rc.Width, rc.Height)
	}
	if rc.Sampling != atlas.Point {
		t.Errorf("Sampling = %v, want point", rc.Sampling)
	}
	if rc.SSAO.Radius != 2 || rc.ClearColor.Y != 0.6 {
		t.Errorf("config not carried over: %+v", rc)
	}
}

func TestMergeNames(t *testing.T) {
	got := mergeNames([]string{"b", "a"}, []string{"a", "c"})
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("mergeNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mergeNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadAtlasMissingDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Atlas.Dir = filepath.Join(t.TempDir(), "missing")
	if _, err := LoadAtlas(context.Background(), cfg); err == nil {
		t.Error("expected error for missing texture directory")
	}
}

func TestSceneRendersTerrain(t *testing.T) {
	scene, err := NewScene(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	defer scene.Close()

	stats, err := scene.Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if stats.Coverage == 0 {
		t.Error("terrain not visible from the default camera")
	}
	if stats.Geometry.Draws != scene.Renderer.Draws() {
		t.Errorf("drew %d commands, %d resident", stats.Geometry.Draws, scene.Renderer.Draws())
	}
}

func TestRenderFrames(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Frames = 2
	cfg.Output.Stages = true

	paths, err := RenderFrames(context.Background(), cfg)
	if err != nil {
		t.Fatalf("RenderFrames: %v", err)
	}
	// Two frames plus every stage but the composite.
	if len(paths) != 2+7 {
		t.Fatalf("wrote %d files: %v", len(paths), paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing output %s: %v", p, err)
		}
	}
	if filepath.Base(paths[0]) != "frame_0000.png" {
		t.Errorf("first frame = %s", paths[0])
	}
}

func TestLoggerOptions(t *testing.T) {
	cfg := config.Default()
	opts := LoggerOptions(cfg)
	if !opts.Console || opts.File.Path != "" || opts.Level != "info" {
		t.Errorf("LoggerOptions() = %+v", opts)
	}
	cfg.Logging.LogFile = "render.log"
	if got := LoggerOptions(cfg).File; got.Path != "render.log" || got.MaxSizeMB == 0 {
		t.Errorf("file options = %+v", got)
	}
}

func TestPickAndRemove(t *testing.T) {
	scene, err := NewScene(context.Background(), testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	defer scene.Close()

	w, h := scene.Renderer.Size()
	hit, ok := scene.Pick(float32(w)/2, float32(h)/2)
	if !ok {
		t.Fatal("nothing under the screen centre")
	}
	if !hit.Block.Opaque() {
		t.Fatalf("picked %v", hit.Block)
	}

	before := scene.Mesh
	if err := scene.SetBlock(hit.X, hit.Y, hit.Z, world.Air); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	if scene.Mesh == before {
		t.Error("mesh id should change after an edit")
	}
	if scene.Chunk.Get(hit.X, hit.Y, hit.Z) != world.Air {
		t.Error("block was not removed")
	}
	if scene.Renderer.Meshes() != 1 {
		t.Errorf("resident meshes = %d, want 1", scene.Renderer.Meshes())
	}
	if err := scene.SetBlock(-1, 0, 0, world.Stone); err == nil {
		t.Error("edit outside the chunk should fail")
	}
}

func TestEditThroughEmptyChunk(t *testing.T) {
	scene, err := NewScene(context.Background(), testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	defer scene.Close()

	c := world.NewChunk(0)
	c.Set(1, 1, 1, world.Stone)
	c.UpdateVisibility()
	scene.Chunk = c

	if err := scene.SetBlock(1, 1, 1, world.Air); err != nil {
		t.Fatalf("removing the last block: %v", err)
	}
	if scene.Mesh != 0 || scene.Renderer.Meshes() != 0 || scene.Renderer.Draws() != 0 {
		t.Fatalf("empty chunk: mesh=%d meshes=%d draws=%d",
			scene.Mesh, scene.Renderer.Meshes(), scene.Renderer.Draws())
	}

	if err := scene.SetBlock(2, 2, 2, world.Stone); err != nil {
		t.Fatalf("placing into an empty chunk: %v", err)
	}
	if scene.Mesh == 0 || scene.Renderer.Meshes() != 1 || scene.Renderer.Draws() != 1 {
		t.Errorf("after placing: mesh=%d meshes=%d draws=%d",
			scene.Mesh, scene.Renderer.Meshes(), scene.Renderer.Draws())
	}

	if err := scene.SetBlock(2, 2, 2, world.Air); err != nil {
		t.Fatalf("emptying again: %v", err)
	}
	if scene.Renderer.Meshes() != 0 {
		t.Errorf("resident meshes = %d, want 0", scene.Renderer.Meshes())
	}
}

// Package app assembles a renderer, atlas and demo scene from the loaded
// configuration. Both the headless renderer and the viewer start here.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/xenotech/internal/config"
	"github.com/Faultbox/xenotech/internal/engine/atlas"
	"github.com/Faultbox/xenotech/internal/engine/camera"
	"github.com/Faultbox/xenotech/internal/engine/postfx"
	"github.com/Faultbox/xenotech/internal/engine/renderer"
	"github.com/Faultbox/xenotech/internal/logger"
	"github.com/Faultbox/xenotech/internal/world"
	"github.com/Faultbox/xenotech/pkg/math"
)

// Scene is a renderer with the demo terrain resident.
type Scene struct {
	Renderer *renderer.Renderer
	Atlas    *atlas.Atlas
	Chunk    *world.Chunk
	Mesh     renderer.MeshID
	Camera   *camera.OrbitCamera
}

// RendererConfig maps the user configuration onto the renderer.
func RendererConfig(cfg *config.Config) renderer.Config {
	w, h := cfg.RenderSize()
	rc := renderer.DefaultConfig(w, h)
	rc.Workers = cfg.Render.Workers
	rc.Sampling = atlas.Point
	if cfg.Render.SoftSampling {
		rc.Sampling = atlas.Soft
	}
	c := cfg.Render.ClearColor
	rc.ClearColor = math.Vec4{X: c[0], Y: c[1], Z: c[2], W: c[3]}
	rc.SSAO = postfx.Params{Radius: cfg.SSAO.Radius, Bias: cfg.SSAO.Bias}
	rc.NoiseSize = cfg.SSAO.NoiseSize
	rc.Seed = cfg.SSAO.Seed
	return rc
}

// LoadAtlas reads the configured texture directory, or builds procedural
// tiles when none is set. Every block texture is always present.
func LoadAtlas(ctx context.Context, cfg *config.Config) (*atlas.Atlas, error) {
	names := mergeNames(cfg.Atlas.Textures, world.TextureNames())
	if cfg.Atlas.Dir == "" {
		logger.Info("using procedural atlas", zap.Int("tiles", len(names)))
		return atlas.Procedural(names)
	}
	return atlas.LoadDir(ctx, cfg.Atlas.Dir, names)
}

func mergeNames(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, n := range list {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// NewScene loads the atlas, creates the renderer and uploads the demo
// terrain. The orbit camera is framed on the chunk.
func NewScene(ctx context.Context, cfg *config.Config) (*Scene, error) {
	a, err := LoadAtlas(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading atlas: %w", err)
	}
	r, err := renderer.New(RendererConfig(cfg), a)
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	chunk := world.DemoTerrain(world.DefaultTerrainParams(cfg.SSAO.Seed))
	mesh, err := world.GenBlockMesh(chunk, math.Vec3{}, world.BlockMapping(a))
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("meshing terrain: %w", err)
	}
	id, err := r.AddBlockMesh(mesh)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("uploading terrain: %w", err)
	}
	logger.Info("scene ready",
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("triangles", mesh.Triangles()),
		zap.Int("draws", r.Draws()),
	)

	orbit := camera.NewOrbitCamera()
	extent := float32(world.ChunkAxis)
	orbit.FitToBounds(math.Vec3{}, math.Vec3{X: extent, Y: extent, Z: extent * 0.5})

	return &Scene{Renderer: r, Atlas: a, Chunk: chunk, Mesh: id, Camera: orbit}, nil
}

// Render draws one frame from the orbit camera.
func (s *Scene) Render(ctx context.Context) (renderer.FrameStats, error) {
	return s.Renderer.Render(ctx, s.Camera.Snapshot(s.Renderer.Resolution()))
}

// Close releases the renderer.
func (s *Scene) Close() {
	s.Renderer.Close()
}

// LoggerOptions maps the logging section onto logger.Init options.
func LoggerOptions(cfg *config.Config) logger.Options {
	opts := logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: true,
	}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	return opts
}

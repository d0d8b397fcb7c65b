// Package renderer drives one frame of the block pipeline: geometry pass,
// SSAO, the two blur directions and the composite.
package renderer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/xenotech/internal/engine/atlas"
	"github.com/Faultbox/xenotech/internal/engine/camera"
	"github.com/Faultbox/xenotech/internal/engine/dispatch"
	"github.com/Faultbox/xenotech/internal/engine/gbuffer"
	"github.com/Faultbox/xenotech/internal/engine/indirect"
	"github.com/Faultbox/xenotech/internal/engine/postfx"
	"github.com/Faultbox/xenotech/internal/engine/raster"
	"github.com/Faultbox/xenotech/internal/engine/surface"
	"github.com/Faultbox/xenotech/internal/logger"
	"github.com/Faultbox/xenotech/pkg/math"
	"github.com/Faultbox/xenotech/pkg/vertex"
)

// Blur phases, in barrier order.
const (
	phaseBlurHorizontal = "blur-horizontal"
	phaseBlurVertical   = "blur-vertical"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	// Workers sizes the dispatch pool; 0 uses GOMAXPROCS.
	Workers    int
	Sampling   atlas.Mode
	ClearColor math.Vec4
	SSAO       postfx.Params
	NoiseSize  int
	Seed       uint64
}

// DefaultConfig returns a Config for the given pipeline resolution.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:      width,
		Height:     height,
		Sampling:   atlas.Soft,
		ClearColor: gbuffer.DefaultClearColor,
		SSAO:       postfx.DefaultParams(),
		NoiseSize:  postfx.DefaultNoiseSize,
		Seed:       1,
	}
}

// StageTiming is the wall time of one pipeline stage.
type StageTiming struct {
	Stage   string
	Elapsed time.Duration
}

// FrameStats summarises a rendered frame.
type FrameStats struct {
	Geometry raster.Stats
	Coverage int
	Timings  []StageTiming
	Total    time.Duration
}

// Renderer owns the buffers and images of the pipeline.
type Renderer struct {
	config Config
	log    *zap.Logger

	dispatcher *dispatch.Dispatcher
	raster     *raster.Rasterizer
	atlas      *atlas.Atlas

	mu       sync.Mutex
	vertices *indirect.Pool[vertex.Packed]
	indices  *indirect.Pool[uint32]
	draws    *indirect.Buffer[indirect.BlockDraw]
	meshes   map[MeshID]*meshEntry
	nextMesh MeshID

	gbuffer   *gbuffer.GBuffer
	occlusion *surface.Scalar
	scratch   *surface.Scalar
	smoothed  *surface.Scalar
	output    *surface.RGBA
	noise     *surface.Uint
	kernel    *surface.RGBA
	barrier   *dispatch.Barrier
}

// New creates a renderer drawing with the tiles of a.
func New(cfg Config, a *atlas.Atlas) (*Renderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid render size %dx%d", cfg.Width, cfg.Height)
	}
	if a == nil {
		return nil, fmt.Errorf("renderer needs an atlas")
	}
	if cfg.NoiseSize <= 0 {
		cfg.NoiseSize = postfx.DefaultNoiseSize
	}

	d := dispatch.New(cfg.Workers)
	rng := postfx.NewRand(cfg.Seed)
	r := &Renderer{
		config:     cfg,
		log:        logger.Named("renderer"),
		dispatcher: d,
		raster:     raster.New(d),
		atlas:      a,
		vertices:   indirect.NewPool[vertex.Packed](indirect.VertexBucketSize),
		indices:    indirect.NewPool[uint32](indirect.IndexBucketSize),
		draws:      indirect.NewBuffer[indirect.BlockDraw](),
		meshes:     make(map[MeshID]*meshEntry),
		kernel:     postfx.GenerateKernel(rng),
		noise:      postfx.GenerateNoise(rng, cfg.NoiseSize, cfg.NoiseSize),
		barrier:    dispatch.NewBarrier(phaseBlurHorizontal, phaseBlurVertical),
	}
	r.allocate(cfg.Width, cfg.Height)

	r.log.Info("renderer initialized",
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("workers", d.Workers()),
		zap.Stringer("sampling", cfg.Sampling),
		zap.Int("tiles", a.Len()),
	)
	return r, nil
}

func (r *Renderer) allocate(width, height int) {
	r.gbuffer = gbuffer.New(width, height)
	r.gbuffer.ClearColor = r.config.ClearColor
	r.occlusion = surface.NewScalar(width, height)
	r.scratch = surface.NewScalar(width, height)
	r.smoothed = surface.NewScalar(width, height)
	r.output = surface.NewRGBA(width, height)
}

// Close stops the worker pool.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.dispatcher.Close()
}

// Resize reallocates every screen-sized target. It waits for a frame in
// flight to finish.
func (r *Renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width <= 0 || height <= 0 || (width == r.config.Width && height == r.config.Height) {
		return
	}
	r.config.Width = width
	r.config.Height = height
	r.allocate(width, height)
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the pipeline resolution.
func (r *Renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config.Width, r.config.Height
}

// Resolution returns the pipeline resolution as a camera resolution.
func (r *Renderer) Resolution() camera.Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolution()
}

func (r *Renderer) resolution() camera.Resolution {
	return camera.Resolution{Width: r.config.Width, Height: r.config.Height}
}

// SetSampling switches between point and soft atlas sampling. The change
// applies from the next frame.
func (r *Renderer) SetSampling(m atlas.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.Sampling = m
}

// Sampling returns the atlas sampling mode.
func (r *Renderer) Sampling() atlas.Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config.Sampling
}

// Render draws one frame. The camera resolution is replaced by the
// pipeline resolution.
func (r *Renderer) Render(ctx context.Context, cam camera.Camera) (FrameStats, error) {
	start := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	cam = cam.WithResolution(r.resolution())

	var stats FrameStats
	stage := func(name string, fn func() error) error {
		t := time.Now()
		if err := fn(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		stats.Timings = append(stats.Timings, StageTiming{Stage: name, Elapsed: time.Since(t)})
		return nil
	}

	err := stage("geometry", func() error {
		r.gbuffer.Clear()
		vs := raster.NewVertexStage(r.vertices.Snapshot(), r.indices.Snapshot(), r.draws.Draws(), cam)
		fs := &raster.FragmentStage{Atlas: r.atlas, Mode: r.config.Sampling}
		var err error
		stats.Geometry, err = r.raster.Draw(ctx, vs, fs, r.gbuffer)
		return err
	})
	if err != nil {
		return stats, err
	}

	err = stage("ssao", func() error {
		return postfx.SSAOPass(ctx, r.dispatcher, &postfx.SSAOInputs{
			Camera:   cam,
			Position: r.gbuffer.Position,
			Normal:   r.gbuffer.Normal,
			Noise:    r.noise,
			Kernel:   r.kernel,
			Params:   r.config.SSAO,
		}, r.occlusion)
	})
	if err != nil {
		return stats, err
	}

	r.barrier.Reset()
	err = stage(phaseBlurHorizontal, func() error {
		return r.barrier.Run(phaseBlurHorizontal, func() error {
			in := &postfx.BlurInputs{Camera: cam, Normal: r.gbuffer.Normal, Src: r.occlusion}
			return postfx.BlurPass(ctx, r.dispatcher, in, r.scratch, postfx.Horizontal)
		})
	})
	if err != nil {
		return stats, err
	}
	err = stage(phaseBlurVertical, func() error {
		return r.barrier.Run(phaseBlurVertical, func() error {
			in := &postfx.BlurInputs{Camera: cam, Normal: r.gbuffer.Normal, Src: r.scratch}
			return postfx.BlurPass(ctx, r.dispatcher, in, r.smoothed, postfx.Vertical)
		})
	})
	if err != nil {
		return stats, err
	}

	err = stage("composite", func() error {
		return postfx.CompositePass(ctx, r.dispatcher, cam, r.smoothed, r.gbuffer.Color, r.output)
	})
	if err != nil {
		return stats, err
	}

	stats.Coverage = r.gbuffer.Coverage()
	stats.Total = time.Since(start)

	fields := []zap.Field{
		zap.Int("draws", stats.Geometry.Draws),
		zap.Int("triangles", stats.Geometry.Triangles),
		zap.Int64("fragments", stats.Geometry.Fragments),
		zap.Int("coverage", stats.Coverage),
		logger.Since(start),
	}
	for _, t := range stats.Timings {
		fields = append(fields, zap.Duration(t.Stage, t.Elapsed))
	}
	r.log.Debug("frame rendered", fields...)
	return stats, nil
}

// Output returns the composited frame of the last Render.
func (r *Renderer) Output() *surface.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.output
}

// GBuffer returns the geometry targets of the last Render.
func (r *Renderer) GBuffer() *gbuffer.GBuffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gbuffer
}

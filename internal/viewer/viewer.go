// Package viewer implements the interactive window: it renders the scene
// on the CPU each frame and presents the selected pipeline stage.
package viewer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"github.com/Faultbox/xenotech/internal/app"
	"github.com/Faultbox/xenotech/internal/config"
	"github.com/Faultbox/xenotech/internal/engine/atlas"
	"github.com/Faultbox/xenotech/internal/engine/capture"
	"github.com/Faultbox/xenotech/internal/engine/input"
	"github.com/Faultbox/xenotech/internal/engine/present"
	"github.com/Faultbox/xenotech/internal/engine/renderer"
	"github.com/Faultbox/xenotech/internal/engine/window"
	"github.com/Faultbox/xenotech/internal/logger"
	"github.com/Faultbox/xenotech/internal/world"
)

// Stage hotkeys, in renderer.Stages order.
var stageKeys = []sdl.Scancode{
	sdl.SCANCODE_1, sdl.SCANCODE_2, sdl.SCANCODE_3, sdl.SCANCODE_4,
	sdl.SCANCODE_5, sdl.SCANCODE_6, sdl.SCANCODE_7, sdl.SCANCODE_8,
}

// Viewer is the interactive viewer instance.
type Viewer struct {
	config    *config.Config
	running   bool
	window    *window.Window
	presenter *present.Presenter
	input     *input.Input
	scene     *app.Scene
	capture   *capture.Writer
	stage     renderer.Stage
	frame     *image.RGBA
	log       *zap.Logger
}

// New opens the window and builds the scene.
func New(ctx context.Context, cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		config:  cfg,
		input:   input.New(),
		capture: capture.NewWriter(cfg.Output.Dir, "screenshot"),
		stage:   renderer.StageComposite,
		log:     logger.Named("viewer"),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:  "xenotech",
		Width:  cfg.Render.Width,
		Height: cfg.Render.Height,
		VSync:  cfg.Render.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The presenter needs the GL context created with the window
	v.presenter, err = present.New()
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}
	v.presenter.Resize(v.window.DrawableSize())

	v.scene, err = app.NewScene(ctx, cfg)
	if err != nil {
		v.presenter.Close()
		v.window.Close()
		return nil, err
	}

	v.log.Info("viewer initialized")
	return v, nil
}

// Run drives the frame loop until the window closes or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true
	frameCount := 0
	fpsTimer := time.Now()
	var last renderer.FrameStats

	v.log.Info("starting frame loop")
	for v.running {
		if ctx.Err() != nil {
			break
		}
		if v.input.Update() {
			break
		}
		if err := v.handleEvents(); err != nil {
			return err
		}
		v.handleHeld()

		stats, err := v.scene.Render(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return fmt.Errorf("render error: %w", err)
		}
		last = stats

		if err := v.upload(); err != nil {
			return err
		}
		v.presenter.Draw()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.window.SetTitle(fmt.Sprintf("xenotech - %s - %d fps - %.1fms", v.stage, frameCount, float64(last.Total.Microseconds())/1000))
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("frame", last.Total),
				zap.Int("coverage", last.Coverage),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (v *Viewer) handleEvents() error {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.resize()
		case input.EventMouseMove:
			if v.input.IsButtonHeld(sdl.BUTTON_LEFT) {
				v.scene.Camera.HandleDrag(event.DeltaX, event.DeltaY)
			}
		case input.EventMouseWheel:
			v.scene.Camera.HandleZoom(event.DeltaY)
		case input.EventMouseDown:
			if err := v.handleClick(event); err != nil {
				return err
			}
		case input.EventKeyDown:
			if err := v.handleKey(event.Key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Viewer) handleKey(key sdl.Scancode) error {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_P:
		mode := atlas.Point
		if v.scene.Renderer.Sampling() == atlas.Point {
			mode = atlas.Soft
		}
		v.scene.Renderer.SetSampling(mode)
		v.log.Info("atlas sampling", zap.Stringer("mode", mode))
	case sdl.SCANCODE_F12:
		pixels, w, h := v.presenter.ReadPixels()
		img, err := capture.FromPixels(pixels, w, h, true)
		if err != nil {
			return err
		}
		path, err := v.capture.Screenshot(img)
		if err != nil {
			v.log.Warn("screenshot failed", zap.Error(err))
			return nil
		}
		v.log.Info("screenshot saved", zap.String("path", path))
	default:
		for i, k := range stageKeys {
			if key == k {
				v.stage = renderer.Stage(i)
				v.log.Info("showing stage", zap.Stringer("stage", v.stage))
			}
		}
	}
	return nil
}

// handleClick inspects the block under the cursor with the right button
// and removes it with the middle button.
func (v *Viewer) handleClick(event input.Event) error {
	if event.Button != sdl.BUTTON_RIGHT && event.Button != sdl.BUTTON_MIDDLE {
		return nil
	}
	ww, wh := v.window.Size()
	rw, rh := v.scene.Renderer.Size()
	px := (float32(event.MouseX) + 0.5) * float32(rw) / float32(max(ww, 1))
	py := (float32(event.MouseY) + 0.5) * float32(rh) / float32(max(wh, 1))

	hit, ok := v.scene.Pick(px, py)
	if !ok {
		return nil
	}
	v.log.Info("picked block",
		zap.Stringer("block", hit.Block),
		zap.Int("x", hit.X), zap.Int("y", hit.Y), zap.Int("z", hit.Z),
		zap.Stringer("face", hit.Face),
		zap.Float32("distance", hit.Distance),
	)
	if event.Button == sdl.BUTTON_MIDDLE {
		return v.scene.SetBlock(hit.X, hit.Y, hit.Z, world.Air)
	}
	return nil
}

// handleHeld pans the orbit center with WASD and moves it with Q/E.
func (v *Viewer) handleHeld() {
	forward := v.input.Axis(sdl.SCANCODE_W, sdl.SCANCODE_S)
	right := v.input.Axis(sdl.SCANCODE_D, sdl.SCANCODE_A)
	up := v.input.Axis(sdl.SCANCODE_E, sdl.SCANCODE_Q)
	if forward != 0 || right != 0 || up != 0 {
		v.scene.Camera.HandleMovement(forward, right, up)
	}
}

func (v *Viewer) resize() {
	w, h := v.window.Size()
	scale := max(v.config.Render.RenderScale, 1)
	v.scene.Renderer.Resize(max(w/scale, 1), max(h/scale, 1))
	v.presenter.Resize(v.window.DrawableSize())
}

// upload converts the selected stage into the frame texture.
func (v *Viewer) upload() error {
	if v.stage == renderer.StageComposite {
		v.presenter.Upload(v.scene.Renderer.Output().ToImage())
		return nil
	}
	img, err := v.scene.Renderer.Image(v.stage)
	if err != nil {
		return err
	}
	b := img.Bounds()
	if v.frame == nil || v.frame.Bounds() != b {
		v.frame = image.NewRGBA(b)
	}
	xdraw.Copy(v.frame, b.Min, img, b, xdraw.Src, nil)
	v.presenter.Upload(v.frame)
	return nil
}

// Close releases viewer resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")
	if v.scene != nil {
		v.scene.Close()
	}
	if v.presenter != nil {
		v.presenter.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

package app

import (
	"context"
	"fmt"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/xenotech/internal/config"
	"github.com/Faultbox/xenotech/internal/engine/capture"
	"github.com/Faultbox/xenotech/internal/engine/renderer"
	"github.com/Faultbox/xenotech/internal/logger"
)

// RenderFrames renders cfg.Output.Frames frames of a turntable around the
// demo terrain and writes them as PNG. With cfg.Output.Stages the
// intermediate images of the last frame are written too. Returns the paths
// written, in order.
func RenderFrames(ctx context.Context, cfg *config.Config) ([]string, error) {
	scene, err := NewScene(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer scene.Close()

	frames := max(cfg.Output.Frames, 1)
	w := capture.NewWriter(cfg.Output.Dir, cfg.Output.Prefix)
	step := float32(2 * gomath.Pi / float64(frames))

	var paths []string
	start := time.Now()
	for i := 0; i < frames; i++ {
		stats, err := scene.Render(ctx)
		if err != nil {
			return paths, fmt.Errorf("frame %d: %w", i, err)
		}
		path, err := w.SaveFrame(scene.Renderer.Output().ToImage(), i, "")
		if err != nil {
			return paths, fmt.Errorf("frame %d: %w", i, err)
		}
		paths = append(paths, path)
		logger.Info("frame written",
			zap.Int("frame", i),
			zap.String("path", path),
			zap.Int("coverage", stats.Coverage),
			zap.Duration("render", stats.Total),
		)
		scene.Camera.Yaw += step
	}

	if cfg.Output.Stages {
		last := frames - 1
		for _, s := range renderer.Stages() {
			if s == renderer.StageComposite {
				continue
			}
			img, err := scene.Renderer.Image(s)
			if err != nil {
				return paths, err
			}
			path, err := w.SaveFrame(img, last, s.String())
			if err != nil {
				return paths, fmt.Errorf("stage %s: %w", s, err)
			}
			paths = append(paths, path)
		}
	}

	logger.Info("render complete", zap.Int("frames", frames), logger.Since(start))
	return paths, nil
}

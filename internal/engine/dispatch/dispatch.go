// Package dispatch runs per-pixel kernels over an 8x8 work-group grid on a
// shared worker pool, and provides the fence used to order dependent passes.
package dispatch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/xenotech/internal/logger"
)

// GroupSize is the work-group extent along X and Y. Z is always 1.
const GroupSize = 8

// Kernel is one invocation of a compute stage. Kernels receive every
// coordinate of the grid, including those past the image edge, and must clip
// themselves.
type Kernel func(x, y int)

// Grid is a count of work groups.
type Grid struct {
	X, Y int
}

// GridFor returns the smallest grid covering a w x h image.
func GridFor(w, h int) Grid {
	return Grid{X: (w + GroupSize - 1) / GroupSize, Y: (h + GroupSize - 1) / GroupSize}
}

// Groups returns the total number of work groups.
func (g Grid) Groups() int {
	return g.X * g.Y
}

// Invocations returns the total number of kernel invocations.
func (g Grid) Invocations() int {
	return g.Groups() * GroupSize * GroupSize
}

// Dispatcher owns the worker pool shared by all stages of a renderer.
type Dispatcher struct {
	pool    pond.Pool
	workers int
	log     *zap.Logger
}

// New creates a dispatcher with the given number of workers. Zero or less
// uses GOMAXPROCS.
func New(workers int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Dispatcher{
		pool:    pond.NewPool(workers),
		workers: workers,
		log:     logger.Named("dispatch"),
	}
}

// Workers returns the pool size.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Dispatch runs kernel over GridFor(w, h) and waits for every group. A
// cancelled context stops scheduling further groups and returns ctx.Err();
// the outputs are then incomplete and the frame must be discarded.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, w, h int, kernel Kernel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	grid := GridFor(w, h)

	group := d.pool.NewGroupContext(ctx)
	for gy := 0; gy < grid.Y; gy++ {
		for gx := 0; gx < grid.X; gx++ {
			x0, y0 := gx*GroupSize, gy*GroupSize
			group.Submit(func() {
				for y := y0; y < y0+GroupSize; y++ {
					for x := x0; x < x0+GroupSize; x++ {
						kernel(x, y)
					}
				}
			})
		}
	}
	if err := group.Wait(); err != nil {
		return fmt.Errorf("dispatch %s: %w", name, err)
	}

	d.log.Debug("dispatch done",
		zap.String("stage", name),
		zap.Int("groups", grid.Groups()),
		logger.Since(start),
	)
	return nil
}

// Bands splits rows [0, h) into contiguous bands and runs fn on each band
// concurrently. Bands never overlap, so fn may write its rows without
// synchronisation.
func (d *Dispatcher) Bands(ctx context.Context, name string, h int, fn func(y0, y1 int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h <= 0 {
		return nil
	}
	size := d.BandSize(h)

	group := d.pool.NewGroupContext(ctx)
	for y0 := 0; y0 < h; y0 += size {
		y1 := min(y0+size, h)
		group.Submit(func() { fn(y0, y1) })
	}
	if err := group.Wait(); err != nil {
		return fmt.Errorf("dispatch %s: %w", name, err)
	}
	return nil
}

// BandSize returns the row count of each band Bands uses for h rows. Band
// i covers rows [i*size, min((i+1)*size, h)).
func (d *Dispatcher) BandSize(h int) int {
	if h <= 0 {
		return 1
	}
	n := min(d.workers*2, h)
	return (h + n - 1) / n
}

// Close stops the pool after running tasks finish.
func (d *Dispatcher) Close() {
	d.pool.StopAndWait()
}

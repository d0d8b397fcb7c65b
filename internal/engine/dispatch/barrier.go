package dispatch

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBarrierViolation is returned when a phase starts out of order or while
// an earlier phase over the same target is still running.
var ErrBarrierViolation = errors.New("barrier violation")

// Barrier orders the phases that read and write one shared target. Phases
// run strictly in the order given to NewBarrier: Begin(p) succeeds only when
// every earlier phase has signalled and p itself has not run this frame.
type Barrier struct {
	mu      sync.Mutex
	phases  []string
	next    int
	running string
}

// NewBarrier creates a barrier over the given ordered phases.
func NewBarrier(phases ...string) *Barrier {
	return &Barrier{phases: phases}
}

// Begin marks phase as running.
func (b *Barrier) Begin(phase string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running != "" {
		return fmt.Errorf("%w: %s started while %s is in flight", ErrBarrierViolation, phase, b.running)
	}
	if b.next >= len(b.phases) {
		return fmt.Errorf("%w: %s started after the last phase", ErrBarrierViolation, phase)
	}
	if want := b.phases[b.next]; phase != want {
		return fmt.Errorf("%w: %s started, expected %s", ErrBarrierViolation, phase, want)
	}
	b.running = phase
	return nil
}

// Signal marks phase as complete; its writes are visible to the next phase.
func (b *Barrier) Signal(phase string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running != phase {
		return fmt.Errorf("%w: %s signalled but %q is running", ErrBarrierViolation, phase, b.running)
	}
	b.running = ""
	b.next++
	return nil
}

// Run wraps fn in Begin and Signal. A failing fn leaves the barrier open so
// the frame cannot continue past it until Reset.
func (b *Barrier) Run(phase string, fn func() error) error {
	if err := b.Begin(phase); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return b.Signal(phase)
}

// Done reports whether every phase has signalled.
func (b *Barrier) Done() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.next == len(b.phases) && b.running == ""
}

// Reset rearms the barrier for the next frame.
func (b *Barrier) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next = 0
	b.running = ""
}

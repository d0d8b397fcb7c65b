package indirect

import (
	"fmt"
	"sync"
)

// Handle identifies an entry in a Buffer independently of its slot.
type Handle uint64

// Buffer is a dense table addressed by stable handles. Removal swaps the last
// entry into the freed slot, so Draws always returns a packed slice whose
// index is the draw ordinal.
type Buffer[T any] struct {
	mu      sync.RWMutex
	data    []T
	slot    map[Handle]int
	owner   []Handle // slot -> handle
	next    Handle
	version uint64
}

// NewBuffer creates an empty buffer.
func NewBuffer[T any]() *Buffer[T] {
	return &Buffer[T]{slot: make(map[Handle]int)}
}

// Add appends v and returns its handle.
func (b *Buffer[T]) Add(v T) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.next
	b.next++
	b.slot[h] = len(b.data)
	b.owner = append(b.owner, h)
	b.data = append(b.data, v)
	b.version++
	return h
}

// Remove deletes the entry for h. The last entry moves into its slot.
func (b *Buffer[T]) Remove(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx, ok := b.slot[h]
	if !ok {
		return fmt.Errorf("indirect handle %d not found", h)
	}
	last := len(b.data) - 1
	moved := b.owner[last]

	b.data[idx] = b.data[last]
	b.owner[idx] = moved
	b.slot[moved] = idx

	var zero T
	b.data[last] = zero
	b.data = b.data[:last]
	b.owner = b.owner[:last]
	delete(b.slot, h)
	b.version++
	return nil
}

// Get returns the entry for h.
func (b *Buffer[T]) Get(h Handle) (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	idx, ok := b.slot[h]
	if !ok {
		var zero T
		return zero, false
	}
	return b.data[idx], true
}

// Set replaces the entry for h.
func (b *Buffer[T]) Set(h Handle, v T) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx, ok := b.slot[h]
	if !ok {
		return fmt.Errorf("indirect handle %d not found", h)
	}
	b.data[idx] = v
	b.version++
	return nil
}

// Slot returns the current draw ordinal of h.
func (b *Buffer[T]) Slot(h Handle) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	idx, ok := b.slot[h]
	return idx, ok
}

// Count returns the number of live entries.
func (b *Buffer[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Draws returns a snapshot of the table in draw-ordinal order.
func (b *Buffer[T]) Draws() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]T(nil), b.data...)
}

// Version increases on every mutation.
func (b *Buffer[T]) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

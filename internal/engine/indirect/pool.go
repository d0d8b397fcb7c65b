package indirect

import (
	"errors"
	"sync"
)

// Default bucket capacities for block meshes.
const (
	VertexBucketSize = 600
	IndexBucketSize  = 6000
)

// ErrBucketFree is returned when addressing a bucket that is not sectioned.
var ErrBucketFree = errors.New("bucket is not in use")

// Bucket is a fixed-size region of a Pool. Bucket b starts at element
// b * MaxCountPerBucket.
type Bucket int

// Pool is a growable element store split into fixed-size buckets. Meshes
// section their data into buckets; freed buckets are reused before the
// store grows.
type Pool[T any] struct {
	mu       sync.RWMutex
	max      int
	data     []T
	free     []Bucket
	next     Bucket
	active   map[Bucket]int
	uploaded int
}

// NewPool creates a pool with maxCount elements per bucket.
func NewPool[T any](maxCount int) *Pool[T] {
	if maxCount < 1 {
		maxCount = 1
	}
	return &Pool[T]{max: maxCount, active: make(map[Bucket]int)}
}

// MaxCountPerBucket returns the bucket capacity.
func (p *Pool[T]) MaxCountPerBucket() int {
	return p.max
}

// Section copies data into as many buckets as needed and returns them in
// data order. Empty data takes no buckets.
func (p *Pool[T]) Section(data []T) []Bucket {
	if len(data) == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var buckets []Bucket
	for cursor := 0; cursor < len(data); cursor += p.max {
		b := p.take()
		n := min(len(data)-cursor, p.max)
		start := int(b) * p.max
		if need := start + p.max; need > len(p.data) {
			p.data = append(p.data, make([]T, need-len(p.data))...)
		}
		copy(p.data[start:start+n], data[cursor:cursor+n])
		p.active[b] = n
		p.uploaded += n
		buckets = append(buckets, b)
	}
	return buckets
}

func (p *Pool[T]) take() Bucket {
	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free = p.free[:n-1]
		return b
	}
	b := p.next
	p.next++
	return b
}

// Unsection returns a bucket to the free list.
func (p *Pool[T]) Unsection(b Bucket) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.active[b]; !ok {
		return ErrBucketFree
	}
	delete(p.active, b)
	p.free = append(p.free, b)
	return nil
}

// Cmd returns the draw command covering the live elements of b.
func (p *Pool[T]) Cmd(b Bucket) (Command, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n, ok := p.active[b]
	if !ok {
		return Command{}, ErrBucketFree
	}
	return Command{
		VertexCount:   uint32(n),
		InstanceCount: 1,
		FirstVertex:   uint32(int(b) * p.max),
		FirstInstance: 0,
	}, nil
}

// Active returns the number of buckets in use.
func (p *Pool[T]) Active() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.active)
}

// Len returns the element capacity of the backing store.
func (p *Pool[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.data)
}

// At returns element i of the backing store. Slots of free buckets keep
// stale data.
func (p *Pool[T]) At(i int) T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data[i]
}

// Snapshot returns the backing store for read-only use during a frame. It
// must not be retained across Section calls.
func (p *Pool[T]) Snapshot() []T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data
}

// TakeUploaded returns the number of elements copied in since the last call.
func (p *Pool[T]) TakeUploaded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := p.uploaded
	p.uploaded = 0
	return n
}

// Rebase rewrites mesh-local indices into pool-global element indices, given
// the vertex buckets the mesh vertices were sectioned into.
func Rebase(indices []uint32, vertexBuckets []Bucket, maxCount int) []uint32 {
	out := make([]uint32, len(indices))
	for i, idx := range indices {
		b := vertexBuckets[int(idx)/maxCount]
		out[i] = uint32(int(b)*maxCount) + idx%uint32(maxCount)
	}
	return out
}

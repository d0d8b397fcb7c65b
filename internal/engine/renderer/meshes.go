package renderer

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/xenotech/internal/engine/indirect"
	"github.com/Faultbox/xenotech/internal/world"
)

// ErrUnknownMesh is returned when removing a mesh that is not resident.
var ErrUnknownMesh = errors.New("unknown mesh")

// MeshID identifies a resident block mesh.
type MeshID uint64

type meshEntry struct {
	vertexBuckets []indirect.Bucket
	indexBuckets  []indirect.Bucket
	draws         []indirect.Handle
}

// AddBlockMesh uploads a chunk mesh. Vertices and indices are sectioned into
// pool buckets, indices are rebased onto the vertex buckets, and one
// indirect draw is recorded per index bucket.
func (r *Renderer) AddBlockMesh(m *world.BlockMesh) (MeshID, error) {
	if m == nil || len(m.Indices) == 0 {
		return 0, world.ErrEmptyMesh
	}
	if len(m.Indices)%3 != 0 {
		return 0, fmt.Errorf("mesh index count %d is not a multiple of 3", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return 0, fmt.Errorf("mesh index %d names vertex %d of %d", i, idx, len(m.Vertices))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e := &meshEntry{}
	e.vertexBuckets = r.vertices.Section(m.Vertices)
	rebased := indirect.Rebase(m.Indices, e.vertexBuckets, r.vertices.MaxCountPerBucket())
	e.indexBuckets = r.indices.Section(rebased)
	for _, b := range e.indexBuckets {
		cmd, err := r.indices.Cmd(b)
		if err != nil {
			r.release(e)
			return 0, err
		}
		e.draws = append(e.draws, r.draws.Add(indirect.NewBlockDraw(cmd, m.Position)))
	}

	r.nextMesh++
	id := r.nextMesh
	r.meshes[id] = e

	r.log.Debug("mesh added",
		zap.Uint64("mesh", uint64(id)),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("indices", len(m.Indices)),
		zap.Int("draws", len(e.draws)),
		zap.Int("uploaded", r.vertices.TakeUploaded()+r.indices.TakeUploaded()),
	)
	return id, nil
}

// RemoveBlockMesh frees the buckets and draws of a resident mesh.
func (r *Renderer) RemoveBlockMesh(id MeshID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.meshes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMesh, id)
	}
	delete(r.meshes, id)
	return r.release(e)
}

func (r *Renderer) release(e *meshEntry) error {
	var err error
	for _, h := range e.draws {
		err = multierr.Append(err, r.draws.Remove(h))
	}
	for _, b := range e.indexBuckets {
		err = multierr.Append(err, r.indices.Unsection(b))
	}
	for _, b := range e.vertexBuckets {
		err = multierr.Append(err, r.vertices.Unsection(b))
	}
	return err
}

// Meshes returns the number of resident meshes.
func (r *Renderer) Meshes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.meshes)
}

// Draws returns the number of indirect draws.
func (r *Renderer) Draws() int {
	return r.draws.Count()
}

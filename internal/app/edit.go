package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/xenotech/internal/engine/picking"
	"github.com/Faultbox/xenotech/internal/logger"
	"github.com/Faultbox/xenotech/internal/world"
	"github.com/Faultbox/xenotech/pkg/math"
)

// pickRange bounds block picking, in world units.
const pickRange = 256

// Pick returns the block under pipeline pixel (px, py).
func (s *Scene) Pick(px, py float32) (picking.Hit, bool) {
	cam := s.Camera.Snapshot(s.Renderer.Resolution())
	ray, ok := picking.ScreenToRay(cam, px, py)
	if !ok {
		return picking.Hit{}, false
	}
	return picking.PickBlock(s.Chunk, math.Vec3{}, ray, pickRange)
}

// SetBlock edits the chunk and replaces the resident mesh. Mesh is 0 while
// the chunk has no visible faces.
func (s *Scene) SetBlock(x, y, z int, b world.Block) error {
	if !s.Chunk.Contains(x, y, z) {
		return fmt.Errorf("block (%d, %d, %d) outside chunk", x, y, z)
	}
	prev := s.Chunk.Get(x, y, z)
	s.Chunk.Set(x, y, z, b)
	s.Chunk.UpdateVisibility()

	mesh, err := world.GenBlockMesh(s.Chunk, math.Vec3{}, world.BlockMapping(s.Atlas))
	empty := errors.Is(err, world.ErrEmptyMesh)
	if err != nil && !empty {
		s.Chunk.Set(x, y, z, prev)
		s.Chunk.UpdateVisibility()
		return fmt.Errorf("meshing chunk: %w", err)
	}

	if s.Mesh != 0 {
		if err := s.Renderer.RemoveBlockMesh(s.Mesh); err != nil {
			return fmt.Errorf("removing mesh: %w", err)
		}
		s.Mesh = 0
	}
	if empty {
		logger.Debug("chunk emptied", zap.Int("x", x), zap.Int("y", y), zap.Int("z", z))
		return nil
	}

	id, err := s.Renderer.AddBlockMesh(mesh)
	if err != nil {
		return fmt.Errorf("uploading mesh: %w", err)
	}
	s.Mesh = id
	logger.Debug("chunk remeshed",
		zap.Int("x", x), zap.Int("y", y), zap.Int("z", z),
		zap.Stringer("block", b),
		zap.Int("triangles", mesh.Triangles()),
	)
	return nil
}

// Package indirect holds the host-side draw tables of the geometry pass:
// indirect draw commands with their per-draw world offsets, a handle-stable
// command buffer and the bucket pools that back vertex and index storage.
package indirect

import "github.com/Faultbox/xenotech/pkg/math"

// Command describes one non-indexed draw. The geometry pass visits
// index-buffer slots FirstVertex .. FirstVertex+VertexCount-1 for each of
// InstanceCount instances.
type Command struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// BlockDraw is one entry of the block draw table: a command plus the world
// position added to every vertex it draws. W is always 1.
type BlockDraw struct {
	Cmd      Command
	Position math.Vec4
}

// NewBlockDraw returns a draw of cmd offset by pos.
func NewBlockDraw(cmd Command, pos math.Vec3) BlockDraw {
	return BlockDraw{Cmd: cmd, Position: pos.Vec4(1)}
}

// Offset returns the world offset as a vector.
func (d BlockDraw) Offset() math.Vec3 {
	return d.Position.XYZ()
}

// Triangles returns the number of whole triangles one instance emits.
func (c Command) Triangles() int {
	return int(c.VertexCount / 3)
}

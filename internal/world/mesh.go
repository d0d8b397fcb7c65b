package world

import (
	"errors"

	"github.com/Faultbox/xenotech/internal/engine/atlas"
	"github.com/Faultbox/xenotech/pkg/math"
	"github.com/Faultbox/xenotech/pkg/vertex"
)

// ErrEmptyMesh is returned when a chunk has no visible faces.
var ErrEmptyMesh = errors.New("world: chunk has no visible faces")

// MappingFunc resolves the atlas tile for a block face.
type MappingFunc func(b Block, dir vertex.Direction) (uint32, bool)

// BlockMesh is the packed geometry of one chunk.
type BlockMesh struct {
	Vertices []vertex.Packed
	Indices  []uint32
	// Position is the chunk origin in world units.
	Position math.Vec3
}

// Triangles returns the number of triangles in the mesh.
func (m *BlockMesh) Triangles() int {
	return len(m.Indices) / 3
}

// Cube corners in unit block space.
var cornerOffsets = [8][3]uint8{
	{0, 0, 1}, {0, 1, 1}, {1, 1, 1}, {1, 0, 1},
	{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0},
}

// Corner indices of each face, indexed by direction.
var faceCorners = [vertex.DirectionCount][4]int{
	{4, 5, 1, 0},
	{3, 2, 6, 7},
	{0, 3, 7, 4},
	{5, 6, 2, 1},
	{5, 4, 7, 6},
	{0, 1, 2, 3},
}

var faceUVs = [4]math.Vec2{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}

// Two triangles per face.
var faceIndices = [6]uint32{1, 0, 3, 1, 3, 2}

// ambientCorner maps the vertex of a face to its packed light slot, keyed by
// the opposite direction of the face.
var ambientCorner = [vertex.DirectionCount][4]int{
	vertex.Left:    {1, 0, 3, 2},
	vertex.Right:   {0, 1, 2, 3},
	vertex.Forward: {2, 1, 3, 0},
	vertex.Back:    {1, 2, 3, 0},
	vertex.Up:      {2, 1, 0, 3},
	vertex.Down:    {0, 3, 1, 2},
}

// appendCube emits the visible faces of one block.
func appendCube(m *BlockMesh, info Info, scale int, x, y, z int, mapping MappingFunc) {
	for _, dir := range vertex.Directions {
		if info.VisibleMask&(1<<dir) == 0 {
			continue
		}
		tile, _ := mapping(info.Block, dir)
		slots := ambientCorner[dir.Opposite()]
		base := uint32(len(m.Vertices))
		for i, c := range faceCorners[dir] {
			o := cornerOffsets[c]
			light := cornerLight(info.Ambient[dir], slots[i])
			m.Vertices = append(m.Vertices, vertex.New(
				uint8((int(o[0])+x)*scale),
				uint8((int(o[1])+y)*scale),
				uint8((int(o[2])+z)*scale),
				uint8(scale),
				faceUVs[i],
				dir,
				tile,
				math.Vec4{X: light, Y: light, Z: light, W: 1},
			))
		}
		for _, idx := range faceIndices {
			m.Indices = append(m.Indices, base+idx)
		}
	}
}

// GenBlockMesh meshes every opaque block of c. Faces hidden by neighbours
// are skipped. Unmapped faces fall back to tile 0.
func GenBlockMesh(c *Chunk, origin math.Vec3, mapping MappingFunc) (*BlockMesh, error) {
	m := &BlockMesh{Position: origin}
	scale := c.Scale()
	for i := range c.blocks {
		info := c.blocks[i]
		if !info.Block.Opaque() {
			continue
		}
		x, y, z := Delinearize(c.axis, i)
		appendCube(m, info, scale, x, y, z, mapping)
	}
	if len(m.Indices) == 0 {
		return nil, ErrEmptyMesh
	}
	return m, nil
}

// BlockMapping resolves block faces against the tiles of a.
func BlockMapping(a *atlas.Atlas) MappingFunc {
	return func(b Block, dir vertex.Direction) (uint32, bool) {
		name, ok := b.TextureName(dir)
		if !ok {
			return 0, false
		}
		tile, err := a.Mapping(name)
		if err != nil {
			return 0, false
		}
		return tile, true
	}
}

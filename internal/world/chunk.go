package world

import (
	"github.com/Faultbox/xenotech/pkg/vertex"
)

// ChunkAxis is the chunk extent in blocks at LOD 0.
const ChunkAxis = 32

// MaxLOD is the coarsest LOD level: one block per chunk.
const MaxLOD = 5

// allVisible marks every face visible and every corner fully lit.
const (
	allVisible = 0xFF
	fullLight  = 0xFF
)

// Info is the per-block state of a chunk.
type Info struct {
	Block Block
	// VisibleMask has bit d set when face d is exposed.
	VisibleMask uint8
	// Ambient packs four 2-bit corner light levels per face.
	Ambient [vertex.DirectionCount]uint8
}

// Chunk is a cube of blocks at one LOD. A chunk at LOD l holds
// (ChunkAxis >> l)^3 blocks, each covering 2^l world units.
type Chunk struct {
	lod    int
	axis   int
	blocks []Info
}

// NewChunk creates an empty (all air) chunk. lod is clamped to [0, MaxLOD].
func NewChunk(lod int) *Chunk {
	lod = min(max(lod, 0), MaxLOD)
	axis := ChunkAxis >> lod
	c := &Chunk{lod: lod, axis: axis, blocks: make([]Info, axis*axis*axis)}
	for i := range c.blocks {
		c.blocks[i].VisibleMask = allVisible
		c.blocks[i].Ambient = [vertex.DirectionCount]uint8{fullLight, fullLight, fullLight, fullLight, fullLight, fullLight}
	}
	return c
}

// LOD returns the chunk level of detail.
func (c *Chunk) LOD() int {
	return c.lod
}

// Scale returns the world size of one block.
func (c *Chunk) Scale() int {
	return 1 << c.lod
}

// Axis returns the chunk extent in blocks.
func (c *Chunk) Axis() int {
	return c.axis
}

// Len returns the number of blocks.
func (c *Chunk) Len() int {
	return len(c.blocks)
}

// Linearize maps (x, y, z) to a block index: (z*axis + y)*axis + x.
func Linearize(axis, x, y, z int) int {
	return (z*axis+y)*axis + x
}

// Delinearize inverts Linearize.
func Delinearize(axis, i int) (x, y, z int) {
	z = i / (axis * axis)
	i -= z * axis * axis
	return i % axis, i / axis, z
}

// Contains reports whether (x, y, z) lies inside the chunk.
func (c *Chunk) Contains(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < c.axis && y < c.axis && z < c.axis
}

// Get returns the block at (x, y, z); positions outside the chunk are air.
func (c *Chunk) Get(x, y, z int) Block {
	if !c.Contains(x, y, z) {
		return Air
	}
	return c.blocks[Linearize(c.axis, x, y, z)].Block
}

// Set stores a block. Positions outside the chunk are ignored. Call
// UpdateVisibility after a batch of edits.
func (c *Chunk) Set(x, y, z int, b Block) {
	if !c.Contains(x, y, z) {
		return
	}
	c.blocks[Linearize(c.axis, x, y, z)].Block = b
}

// At returns the state of block i.
func (c *Chunk) At(i int) Info {
	return c.blocks[i]
}

// Offset returns the outward neighbour offset of face d.
func Offset(d vertex.Direction) (dx, dy, dz int) {
	n := d.Normal()
	return -int(n.X), -int(n.Y), -int(n.Z)
}

// UpdateVisibility recomputes every face mask and corner light level. A face
// is visible unless its neighbour inside the chunk is opaque; faces on the
// chunk border stay visible.
func (c *Chunk) UpdateVisibility() {
	for i := range c.blocks {
		x, y, z := Delinearize(c.axis, i)
		info := &c.blocks[i]
		info.VisibleMask = allVisible
		for _, d := range vertex.Directions {
			info.Ambient[d] = fullLight
			dx, dy, dz := Offset(d)
			nx, ny, nz := x+dx, y+dy, z+dz
			if !c.Contains(nx, ny, nz) {
				continue
			}
			if c.Get(nx, ny, nz).Opaque() {
				info.VisibleMask &^= 1 << d
			}
			info.Ambient[d] = c.faceAmbient(nx, ny, nz, dx, dy, dz)
		}
	}
}

// faceAmbient samples the ring of eight blocks around the cell in front of a
// face and packs one light level (3 = unoccluded) per corner.
func (c *Chunk) faceAmbient(px, py, pz, nx, ny, nz int) uint8 {
	// Two axes spanning the face plane
	d1 := [3]int{nz, nx, ny}
	d2 := [3]int{ny, nz, nx}
	solid := func(a, b int) int {
		x := px + a*d1[0] + b*d2[0]
		y := py + a*d1[1] + b*d2[1]
		z := pz + a*d1[2] + b*d2[2]
		if c.Get(x, y, z).Opaque() {
			return 1
		}
		return 0
	}

	side := [4]int{solid(1, 0), solid(0, 1), solid(-1, 0), solid(0, -1)}
	corner := [4]int{solid(1, 1), solid(-1, 1), solid(-1, -1), solid(1, -1)}

	var packed uint8
	for k := 0; k < 4; k++ {
		ao := vertexAO(side[k], side[(k+1)%4], corner[k])
		packed |= uint8(3-ao) << (2 * k)
	}
	return packed
}

func vertexAO(a, b, c int) int {
	return a + b + max(c, a*b)
}

// cornerLight returns the light of corner k of face d in [0, 1].
func cornerLight(ambient uint8, k int) float32 {
	return float32((ambient>>(2*k))&3) / 3
}

// Package world holds the voxel data the renderer draws: block kinds,
// fixed-size chunks with per-face visibility and vertex ambient occlusion,
// and the mesher that turns a chunk into packed block vertices.
//
// Face directions follow the vertex wire format. The outward offset of face
// d is the negation of d.Normal(), so Left faces -X, Forward faces -Y and
// Up faces -Z.
package world

import (
	"fmt"

	"github.com/Faultbox/xenotech/pkg/vertex"
)

// Block is a block kind.
type Block uint16

// Block kinds.
const (
	Air Block = iota
	Stone
	Machine
	Wire
	Source
)

// Blocks lists every kind in declaration order.
var Blocks = []Block{Air, Stone, Machine, Wire, Source}

func (b Block) String() string {
	switch b {
	case Air:
		return "air"
	case Stone:
		return "stone"
	case Machine:
		return "machine"
	case Wire:
		return "wire"
	case Source:
		return "source"
	}
	return fmt.Sprintf("block(%d)", uint16(b))
}

// Opaque reports whether the block hides the faces of its neighbours.
func (b Block) Opaque() bool {
	return b != Air
}

// TextureName returns the atlas tile name for face dir of b. Air has no
// texture.
func (b Block) TextureName(dir vertex.Direction) (string, bool) {
	switch b {
	case Stone:
		return "stone", true
	case Machine:
		if dir == vertex.Forward {
			return "machine_front", true
		}
		return "machine_side", true
	case Wire:
		return "wire", true
	case Source:
		return "source", true
	}
	return "", false
}

// TextureNames returns every tile name referenced by any block, in a stable
// order suitable for building an atlas.
func TextureNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, b := range Blocks {
		for _, d := range vertex.Directions {
			if name, ok := b.TextureName(d); ok && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Package atlas holds the block texture atlas: a layered image split into
// Axis x Axis square tiles, addressed by a flat tile index (the mapping).
package atlas

import (
	"errors"
	"fmt"
	"image"

	"github.com/Faultbox/xenotech/internal/engine/surface"
	"github.com/Faultbox/xenotech/pkg/math"
)

// Atlas geometry.
const (
	// Axis is the number of tiles per atlas row and column.
	Axis = 16
	// TileSize is the tile extent in texels.
	TileSize = 16
	// Extent is the atlas image extent in texels.
	Extent = Axis * TileSize
	// Capacity is the number of addressable tiles.
	Capacity = Axis * Axis
)

// Layer selects one of the atlas image layers.
type Layer int

// Atlas layers.
const (
	Albedo Layer = iota
	Heightmap
	Normal
	LayerCount
)

var layerSuffix = [LayerCount]string{"", "_s", "_n"}

// Suffix returns the file name suffix used for the layer on disk.
func (l Layer) Suffix() string {
	return layerSuffix[l]
}

func (l Layer) String() string {
	switch l {
	case Albedo:
		return "albedo"
	case Heightmap:
		return "heightmap"
	case Normal:
		return "normal"
	}
	return fmt.Sprintf("layer(%d)", int(l))
}

// ErrFull is returned when every tile is assigned.
var ErrFull = errors.New("atlas is full")

// ErrUnknownTile is returned when a name has no mapping.
var ErrUnknownTile = errors.New("unknown atlas tile")

// Atlas is read-only once built; sampling is safe from any number of goroutines.
type Atlas struct {
	layers  [LayerCount]*surface.RGBA
	mapping map[string]uint32
	names   []string
}

// Mapping returns the tile index assigned to name.
func (a *Atlas) Mapping(name string) (uint32, error) {
	m, ok := a.mapping[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTile, name)
	}
	return m, nil
}

// Names returns the tile names in mapping order.
func (a *Atlas) Names() []string {
	return append([]string(nil), a.names...)
}

// Len returns the number of assigned tiles.
func (a *Atlas) Len() int {
	return len(a.names)
}

// Image returns the backing image of a layer.
func (a *Atlas) Image(l Layer) *surface.RGBA {
	return a.layers[l]
}

// TileOrigin returns the tile address of mapping in tile units:
// (mapping mod Axis, mapping div Axis).
func TileOrigin(mapping uint32) math.Vec2 {
	return math.Vec2{X: float32(mapping % Axis), Y: float32(mapping / Axis)}
}

// TileRect returns the texel bounds of a tile.
func TileRect(mapping uint32) image.Rectangle {
	x := int(mapping%Axis) * TileSize
	y := int(mapping/Axis) * TileSize
	return image.Rect(x, y, x+TileSize, y+TileSize)
}

// Fetch returns the texel nearest to st, where st is in tile units
// (tile origin plus the position inside the tile). Coordinates outside the
// image clamp to its edge.
func (a *Atlas) Fetch(l Layer, st math.Vec2) math.Vec4 {
	img := a.layers[l]
	x := int(math.Floor(st.X * TileSize))
	y := int(math.Floor(st.Y * TileSize))
	if x < 0 {
		x = 0
	} else if x >= img.Width {
		x = img.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= img.Height {
		y = img.Height - 1
	}
	return img.Pix[y*img.Width+x]
}

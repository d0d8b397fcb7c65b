package atlas

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/Faultbox/xenotech/internal/engine/surface"
	"github.com/Faultbox/xenotech/pkg/math"
)

// Builder assigns tile mappings in insertion order and copies tile images
// into the atlas layers.
type Builder struct {
	atlas *Atlas
}

// NewBuilder creates an empty atlas builder. Unfilled texels are opaque white
// in the albedo layer, flat in the heightmap layer and +Z in the normal layer.
func NewBuilder() *Builder {
	a := &Atlas{mapping: make(map[string]uint32)}
	for l := range a.layers {
		a.layers[l] = surface.NewRGBA(Extent, Extent)
	}
	a.layers[Albedo].Fill(math.Vec4{X: 1, Y: 1, Z: 1, W: 1})
	a.layers[Heightmap].Fill(math.Vec4{X: 1, Y: 1, Z: 1, W: 1})
	a.layers[Normal].Fill(math.Vec4{X: 0.5, Y: 0.5, Z: 1, W: 1})
	return &Builder{atlas: a}
}

// Add assigns the next tile to name and uploads up to LayerCount images,
// in Layer order. A nil image leaves that layer at its default. Images of
// any size are resampled to TileSize with nearest-neighbour filtering.
// Adding an existing name replaces its images and keeps its mapping.
func (b *Builder) Add(name string, layers ...image.Image) (uint32, error) {
	if len(layers) > int(LayerCount) {
		return 0, fmt.Errorf("tile %q: %d layers given, atlas has %d", name, len(layers), LayerCount)
	}

	mapping, ok := b.atlas.mapping[name]
	if !ok {
		if len(b.atlas.names) >= Capacity {
			return 0, fmt.Errorf("adding %q: %w", name, ErrFull)
		}
		mapping = uint32(len(b.atlas.names))
		b.atlas.mapping[name] = mapping
		b.atlas.names = append(b.atlas.names, name)
	}

	for l, img := range layers {
		if img == nil {
			continue
		}
		b.upload(Layer(l), mapping, img)
	}
	return mapping, nil
}

func (b *Builder) upload(l Layer, mapping uint32, src image.Image) {
	tile := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.NearestNeighbor.Scale(tile, tile.Bounds(), src, src.Bounds(), draw.Src, nil)

	dst := b.atlas.layers[l]
	r := TileRect(mapping)
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			dst.Store(r.Min.X+x, r.Min.Y+y, surface.FromColor(tile.NRGBAAt(x, y)))
		}
	}
}

// Build returns the finished atlas. The builder must not be used afterwards.
func (b *Builder) Build() *Atlas {
	a := b.atlas
	b.atlas = nil
	return a
}

// Checker returns a two-color checkerboard tile with cells of the given size.
func Checker(a, b color.Color, cell int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// Procedural builds an atlas of checker tiles, one per name, with colors
// derived from the tile index. Used when no texture directory is configured.
func Procedural(names []string) (*Atlas, error) {
	b := NewBuilder()
	for i, name := range names {
		base := color.NRGBA{
			R: uint8(96 + (i*53)%160),
			G: uint8(96 + (i*97)%160),
			B: uint8(96 + (i*31)%160),
			A: 255,
		}
		dark := color.NRGBA{R: base.R / 2, G: base.G / 2, B: base.B / 2, A: 255}
		if _, err := b.Add(name, Checker(base, dark, 4)); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

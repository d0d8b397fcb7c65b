package world

import (
	"math"
	"math/rand/v2"
)

// TerrainParams shapes the demo heightfield.
type TerrainParams struct {
	Seed      uint64
	BaseLevel int
	Amplitude float64
	// Wavelength in blocks.
	Wavelength float64
	// Machines is the number of machine/source pairs placed on the surface.
	Machines int
}

// DefaultTerrainParams returns a gentle rolling heightfield with a few
// machines wired to power sources.
func DefaultTerrainParams(seed uint64) TerrainParams {
	return TerrainParams{
		Seed:       seed,
		BaseLevel:  8,
		Amplitude:  4,
		Wavelength: 14,
		Machines:   4,
	}
}

// Height returns the surface height of column (x, y), clamped to the chunk.
func (p TerrainParams) Height(x, y, axis int) int {
	k := 2 * math.Pi / p.Wavelength
	phase := float64(p.Seed%97) * 0.37
	h := float64(p.BaseLevel) + p.Amplitude*0.5*(math.Sin(float64(x)*k+phase)+math.Cos(float64(y)*k*0.8-phase))
	return min(max(int(math.Round(h)), 1), axis-1)
}

// DemoTerrain fills a LOD 0 chunk with stone below a sine heightfield and
// places machines on the surface, each connected to a source by a run of
// wire. Z is up; the exposed top of the terrain is the Down face.
func DemoTerrain(p TerrainParams) *Chunk {
	c := NewChunk(0)
	axis := c.Axis()
	for y := 0; y < axis; y++ {
		for x := 0; x < axis; x++ {
			h := p.Height(x, y, axis)
			for z := 0; z < h; z++ {
				c.Set(x, y, z, Stone)
			}
		}
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9E3779B97F4A7C15))
	for i := 0; i < p.Machines; i++ {
		x := 2 + rng.IntN(axis-8)
		y := 2 + rng.IntN(axis-4)
		placeOnSurface(c, x, y, Machine)
		run := 2 + rng.IntN(3)
		for j := 1; j <= run; j++ {
			placeOnSurface(c, x+j, y, Wire)
		}
		placeOnSurface(c, x+run+1, y, Source)
	}

	c.UpdateVisibility()
	return c
}

// placeOnSurface puts b on top of the highest solid block of column (x, y).
func placeOnSurface(c *Chunk, x, y int, b Block) {
	axis := c.Axis()
	for z := axis - 2; z >= 0; z-- {
		if c.Get(x, y, z).Opaque() {
			c.Set(x, y, z+1, b)
			return
		}
	}
	c.Set(x, y, 0, b)
}

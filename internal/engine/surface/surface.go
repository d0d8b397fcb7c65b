// Package surface provides the typed images bound to pipeline stages.
// Images are plain row-major slices; a dispatch writes disjoint pixels, so no
// locking is involved.
package surface

import (
	"image"
	"image/color"

	"github.com/Faultbox/xenotech/pkg/math"
)

// RGBA is a 2D RGBA32F image.
type RGBA struct {
	Width, Height int
	Pix           []math.Vec4
}

// NewRGBA allocates a zeroed RGBA32F image.
func NewRGBA(width, height int) *RGBA {
	return &RGBA{Width: width, Height: height, Pix: make([]math.Vec4, width*height)}
}

// In reports whether (x, y) lies inside the image.
func (m *RGBA) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// Load returns the texel at (x, y), or zero outside the image.
func (m *RGBA) Load(x, y int) math.Vec4 {
	if !m.In(x, y) {
		return math.Vec4{}
	}
	return m.Pix[y*m.Width+x]
}

// Store writes the texel at (x, y); writes outside the image are dropped.
func (m *RGBA) Store(x, y int, v math.Vec4) {
	if !m.In(x, y) {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Fill sets every texel to v.
func (m *RGBA) Fill(v math.Vec4) {
	for i := range m.Pix {
		m.Pix[i] = v
	}
}

// ToImage converts to 8-bit RGBA, clamping each channel to [0,1].
func (m *RGBA) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			img.SetRGBA(x, y, ToColor(m.Pix[y*m.Width+x]))
		}
	}
	return img
}

// ToColor converts a float color to 8-bit RGBA.
func ToColor(v math.Vec4) color.RGBA {
	return color.RGBA{R: unorm8(v.X), G: unorm8(v.Y), B: unorm8(v.Z), A: unorm8(v.W)}
}

// FromColor converts any color to a float RGBA in [0,1], un-premultiplied.
func FromColor(c color.Color) math.Vec4 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return math.Vec4{
		X: float32(n.R) / 255,
		Y: float32(n.G) / 255,
		Z: float32(n.B) / 255,
		W: float32(n.A) / 255,
	}
}

func unorm8(f float32) uint8 {
	return uint8(math.Clamp(f, 0, 1)*255 + 0.5)
}

// Scalar is a 2D R32F image.
type Scalar struct {
	Width, Height int
	Pix           []float32
}

// NewScalar allocates a zeroed R32F image.
func NewScalar(width, height int) *Scalar {
	return &Scalar{Width: width, Height: height, Pix: make([]float32, width*height)}
}

// In reports whether (x, y) lies inside the image.
func (m *Scalar) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// Load returns the value at (x, y), or zero outside the image.
func (m *Scalar) Load(x, y int) float32 {
	if !m.In(x, y) {
		return 0
	}
	return m.Pix[y*m.Width+x]
}

// Store writes the value at (x, y); writes outside the image are dropped.
func (m *Scalar) Store(x, y int, v float32) {
	if !m.In(x, y) {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Fill sets every value to v.
func (m *Scalar) Fill(v float32) {
	for i := range m.Pix {
		m.Pix[i] = v
	}
}

// ToImage converts to 8-bit grayscale for inspection.
func (m *Scalar) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		img.Pix[i] = unorm8(v)
	}
	return img
}

// Uint is a 2D RGBA32U image, used for raw random bits.
type Uint struct {
	Width, Height int
	Pix           [][4]uint32
}

// NewUint allocates a zeroed RGBA32U image.
func NewUint(width, height int) *Uint {
	return &Uint{Width: width, Height: height, Pix: make([][4]uint32, width*height)}
}

// LoadWrap returns the texel at (x, y) with wrap-around addressing.
func (m *Uint) LoadWrap(x, y int) [4]uint32 {
	x %= m.Width
	y %= m.Height
	if x < 0 {
		x += m.Width
	}
	if y < 0 {
		y += m.Height
	}
	return m.Pix[y*m.Width+x]
}

// Store writes the texel at (x, y); writes outside the image are dropped.
func (m *Uint) Store(x, y int, v [4]uint32) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

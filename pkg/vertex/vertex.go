// Package vertex implements the packed block vertex: four 32-bit words
// carrying a local cell position, LOD, texture coordinates, face direction,
// atlas mapping and tint.
//
// Word layout (bit 0 is least significant):
//
//	word 0: [0:8) z   [8:16) y   [16:24) x   [24:32) lod
//	word 1: [0:16) v  [16:32) u
//	word 2: [0:24) mapping       [24:32) direction
//	word 3: [0:8) a   [8:16) b   [16:24) g   [24:32) r
package vertex

import "github.com/Faultbox/xenotech/pkg/math"

// Word indices.
const (
	WordPosition = 0
	WordUV       = 1
	WordMaterial = 2
	WordTint     = 3
)

// Bit ranges, as shift and mask pairs.
const (
	PosZShift = 0
	PosYShift = 8
	PosXShift = 16
	LODShift  = 24
	ByteMask  = 0xFF

	VShift  = 0
	UShift  = 16
	UVMask  = 0xFFFF
	UVScale = 65535

	MappingShift = 0
	MappingMask  = 0xFFFFFF
	DirShift     = 24

	TintAShift = 0
	TintBShift = 8
	TintGShift = 16
	TintRShift = 24
	TintScale  = 255
)

// MaxMapping is the largest atlas tile index a vertex can address.
const MaxMapping = MappingMask

// Stride is the size of a packed vertex in bytes.
const Stride = 16

// Packed is a bit-packed block vertex as uploaded to the vertex buffer.
type Packed [4]uint32

func field(w uint32, shift, mask uint32) uint32 {
	return (w >> shift) & mask
}

func setField(w uint32, shift, mask, value uint32) uint32 {
	return (w &^ (mask << shift)) | ((value & mask) << shift)
}

// New packs a vertex. UV and tint components are expected in [0,1]; they are
// clamped and quantized to the nearest step so decoded values re-encode to
// the same bits.
func New(x, y, z, lod uint8, uv math.Vec2, dir Direction, mapping uint32, tint math.Vec4) Packed {
	var p Packed
	p.SetPosition(x, y, z)
	p.SetLOD(lod)
	p.SetUV(uv)
	p.SetDirection(dir)
	p.SetMapping(mapping)
	p.SetTint(tint)
	return p
}

// Position returns the local cell coordinate.
func (p Packed) Position() (x, y, z uint8) {
	w := p[WordPosition]
	return uint8(field(w, PosXShift, ByteMask)), uint8(field(w, PosYShift, ByteMask)), uint8(field(w, PosZShift, ByteMask))
}

// PositionVec returns the local cell coordinate as floats in [0,255].
func (p Packed) PositionVec() math.Vec3 {
	x, y, z := p.Position()
	return math.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}
}

// SetPosition stores the local cell coordinate.
func (p *Packed) SetPosition(x, y, z uint8) {
	w := p[WordPosition]
	w = setField(w, PosXShift, ByteMask, uint32(x))
	w = setField(w, PosYShift, ByteMask, uint32(y))
	w = setField(w, PosZShift, ByteMask, uint32(z))
	p[WordPosition] = w
}

// LOD returns the level-of-detail byte.
func (p Packed) LOD() uint8 {
	return uint8(field(p[WordPosition], LODShift, ByteMask))
}

// SetLOD stores the level-of-detail byte.
func (p *Packed) SetLOD(lod uint8) {
	p[WordPosition] = setField(p[WordPosition], LODShift, ByteMask, uint32(lod))
}

// RawUV returns the quantized texture coordinates.
func (p Packed) RawUV() (u, v uint16) {
	w := p[WordUV]
	return uint16(field(w, UShift, UVMask)), uint16(field(w, VShift, UVMask))
}

// SetRawUV stores quantized texture coordinates.
func (p *Packed) SetRawUV(u, v uint16) {
	w := setField(p[WordUV], UShift, UVMask, uint32(u))
	p[WordUV] = setField(w, VShift, UVMask, uint32(v))
}

// UV returns the texture coordinates in [0,1].
func (p Packed) UV() math.Vec2 {
	u, v := p.RawUV()
	return math.Vec2{X: float32(u) / UVScale, Y: float32(v) / UVScale}
}

// SetUV quantizes and stores texture coordinates.
func (p *Packed) SetUV(uv math.Vec2) {
	p.SetRawUV(uint16(quantize(uv.X, UVScale)), uint16(quantize(uv.Y, UVScale)))
}

// Direction returns the face direction code.
func (p Packed) Direction() Direction {
	return Direction(field(p[WordMaterial], DirShift, ByteMask))
}

// SetDirection stores the face direction code.
func (p *Packed) SetDirection(d Direction) {
	p[WordMaterial] = setField(p[WordMaterial], DirShift, ByteMask, uint32(d))
}

// Mapping returns the 24-bit atlas tile index.
func (p Packed) Mapping() uint32 {
	return field(p[WordMaterial], MappingShift, MappingMask)
}

// SetMapping stores the atlas tile index, truncated to 24 bits.
func (p *Packed) SetMapping(m uint32) {
	p[WordMaterial] = setField(p[WordMaterial], MappingShift, MappingMask, m)
}

// RawTint returns the tint as RGBA bytes.
func (p Packed) RawTint() [4]uint8 {
	w := p[WordTint]
	return [4]uint8{
		uint8(field(w, TintRShift, ByteMask)),
		uint8(field(w, TintGShift, ByteMask)),
		uint8(field(w, TintBShift, ByteMask)),
		uint8(field(w, TintAShift, ByteMask)),
	}
}

// SetRawTint stores the tint from RGBA bytes.
func (p *Packed) SetRawTint(c [4]uint8) {
	w := setField(0, TintRShift, ByteMask, uint32(c[0]))
	w = setField(w, TintGShift, ByteMask, uint32(c[1]))
	w = setField(w, TintBShift, ByteMask, uint32(c[2]))
	p[WordTint] = setField(w, TintAShift, ByteMask, uint32(c[3]))
}

// Tint returns the RGBA tint in [0,1].
func (p Packed) Tint() math.Vec4 {
	c := p.RawTint()
	return math.Vec4{
		X: float32(c[0]) / TintScale,
		Y: float32(c[1]) / TintScale,
		Z: float32(c[2]) / TintScale,
		W: float32(c[3]) / TintScale,
	}
}

// SetTint quantizes and stores an RGBA tint.
func (p *Packed) SetTint(c math.Vec4) {
	p.SetRawTint([4]uint8{
		uint8(quantize(c.X, TintScale)),
		uint8(quantize(c.Y, TintScale)),
		uint8(quantize(c.Z, TintScale)),
		uint8(quantize(c.W, TintScale)),
	})
}

// Normal returns the stored normal for the vertex direction.
func (p Packed) Normal() math.Vec3 {
	return p.Direction().Normal()
}

func quantize(x float32, scale uint32) uint32 {
	return uint32(math.Clamp(x, 0, 1)*float32(scale) + 0.5)
}

// Unpacked is the decoded form of a packed vertex.
type Unpacked struct {
	Position  math.Vec3
	LOD       uint8
	UV        math.Vec2
	Direction Direction
	Mapping   uint32
	Tint      math.Vec4
}

// Unpack decodes every field.
func (p Packed) Unpack() Unpacked {
	return Unpacked{
		Position:  p.PositionVec(),
		LOD:       p.LOD(),
		UV:        p.UV(),
		Direction: p.Direction(),
		Mapping:   p.Mapping(),
		Tint:      p.Tint(),
	}
}

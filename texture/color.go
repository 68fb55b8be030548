package texture

import (
	"encoding/binary"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a straight-alpha color in linear space.
type Color struct {
	R, G, B, A float32
}

// Transparent is the fully transparent black color.
var Transparent = Color{}

func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A * s}
}

// Lerp interpolates between c and o, returning c for t=0 and o for t=1.
func (c Color) Lerp(o Color, t float32) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

// channels holds the raw stored values of one pixel, normalized to [0, 1]
// for unorm formats. Missing channels decode as zero, missing alpha as one.
type channels [4]float32

func (f Format) decode(px []byte) channels {
	switch f {
	case R8Unorm:
		return channels{unorm8(px[0]), 0, 0, 1}
	case Rg8Unorm:
		return channels{unorm8(px[0]), unorm8(px[1]), 0, 1}
	case Rgba8Unorm, Rgba8UnormSrgb:
		return channels{unorm8(px[0]), unorm8(px[1]), unorm8(px[2]), unorm8(px[3])}
	case Bgra8Unorm, Bgra8UnormSrgb:
		return channels{unorm8(px[2]), unorm8(px[1]), unorm8(px[0]), unorm8(px[3])}
	case R16Unorm:
		return channels{unorm16(px[0:]), 0, 0, 1}
	case Rgba16Unorm:
		return channels{unorm16(px[0:]), unorm16(px[2:]), unorm16(px[4:]), unorm16(px[6:])}
	case R32Float:
		return channels{float32LE(px[0:]), 0, 0, 1}
	case Rgba32Float:
		return channels{float32LE(px[0:]), float32LE(px[4:]), float32LE(px[8:]), float32LE(px[12:])}
	}
	panic("texture: decode of unsized format " + f.String())
}

func (f Format) encode(px []byte, c channels) {
	switch f {
	case R8Unorm:
		px[0] = toUnorm8(c[0])
	case Rg8Unorm:
		px[0], px[1] = toUnorm8(c[0]), toUnorm8(c[1])
	case Rgba8Unorm, Rgba8UnormSrgb:
		px[0], px[1], px[2], px[3] = toUnorm8(c[0]), toUnorm8(c[1]), toUnorm8(c[2]), toUnorm8(c[3])
	case Bgra8Unorm, Bgra8UnormSrgb:
		px[0], px[1], px[2], px[3] = toUnorm8(c[2]), toUnorm8(c[1]), toUnorm8(c[0]), toUnorm8(c[3])
	case R16Unorm:
		putUnorm16(px[0:], c[0])
	case Rgba16Unorm:
		for i := range 4 {
			putUnorm16(px[2*i:], c[i])
		}
	case R32Float:
		putFloat(px[0:], c[0])
	case Rgba32Float:
		for i := range 4 {
			putFloat(px[4*i:], c[i])
		}
	default:
		panic("texture: encode of unsized format " + f.String())
	}
}

// linear converts stored channels to a linear color.
func (f Format) linear(c channels) Color {
	if !f.IsSrgb() {
		return Color{c[0], c[1], c[2], c[3]}
	}
	r, g, b := colorful.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2])}.LinearRgb()
	return Color{float32(r), float32(g), float32(b), c[3]}
}

// stored converts a linear color to the channels stored by the format.
func (f Format) stored(c Color) channels {
	if !f.IsSrgb() {
		return channels{c.R, c.G, c.B, c.A}
	}
	s := colorful.LinearRgb(float64(c.R), float64(c.G), float64(c.B))
	return channels{float32(s.R), float32(s.G), float32(s.B), c.A}
}

func unorm8(b byte) float32 {
	return float32(b) / math.MaxUint8
}

func unorm16(b []byte) float32 {
	return float32(binary.LittleEndian.Uint16(b)) / math.MaxUint16
}

func float32LE(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func toUnorm8(v float32) byte {
	return byte(math.Round(float64(clamp01(v)) * math.MaxUint8))
}

func toUnorm16(v float32) uint16 {
	return uint16(math.Round(float64(clamp01(v)) * math.MaxUint16))
}

func putUnorm16(b []byte, v float32) {
	binary.LittleEndian.PutUint16(b, toUnorm16(v))
}

func putFloat(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func clamp01(v float32) float32 {
	if !(v > 0) { // negative or NaN
		return 0
	}
	return min(v, 1)
}

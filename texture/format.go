// Package texture provides pixel formats, mip level arithmetic and pixel
// buffers used to build tileset atlases.
package texture

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFormat     = errors.New("texture: unknown format")
	ErrUnsupportedFormat = errors.New("texture: unsupported format")
	ErrAccess            = errors.New("texture: pixel access out of bounds")
	ErrTooLarge          = errors.New("texture: data size overflow")
)

// Format is a texture pixel format. The numeric value is stored in tileset
// files and must not change.
type Format uint8

const (
	// Auto is a sentinel meaning "use the format of the first source".
	// It is never stored in a file.
	Auto Format = iota
	R8Unorm
	Rg8Unorm
	Rgba8Unorm
	Rgba8UnormSrgb
	Bgra8Unorm
	Bgra8UnormSrgb
	R16Unorm
	Rgba16Unorm
	R32Float
	Rgba32Float
	Bc1RgbaUnorm
	Bc7RgbaUnorm

	formatCount
)

var formatNames = [formatCount]string{
	Auto:           "auto",
	R8Unorm:        "r8unorm",
	Rg8Unorm:       "rg8unorm",
	Rgba8Unorm:     "rgba8unorm",
	Rgba8UnormSrgb: "rgba8unorm-srgb",
	Bgra8Unorm:     "bgra8unorm",
	Bgra8UnormSrgb: "bgra8unorm-srgb",
	R16Unorm:       "r16unorm",
	Rgba16Unorm:    "rgba16unorm",
	R32Float:       "r32float",
	Rgba32Float:    "rgba32float",
	Bc1RgbaUnorm:   "bc1-rgba-unorm",
	Bc7RgbaUnorm:   "bc7-rgba-unorm",
}

// pixel layout of sized formats: channel count and bytes per channel
var formatLayouts = [formatCount]struct{ channels, depth int }{
	R8Unorm:        {1, 1},
	Rg8Unorm:       {2, 1},
	Rgba8Unorm:     {4, 1},
	Rgba8UnormSrgb: {4, 1},
	Bgra8Unorm:     {4, 1},
	Bgra8UnormSrgb: {4, 1},
	R16Unorm:       {1, 2},
	Rgba16Unorm:    {4, 2},
	R32Float:       {1, 4},
	Rgba32Float:    {4, 4},
}

// FormatFromTag validates a stored format tag.
func FormatFromTag(tag uint64) (Format, error) {
	if tag == uint64(Auto) || tag >= uint64(formatCount) {
		return Auto, fmt.Errorf("%w: tag %d", ErrUnknownFormat, tag)
	}
	return Format(tag), nil
}

// ParseFormat parses a format name such as "rgba8unorm-srgb".
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if n == name {
			return Format(f), nil
		}
	}
	return Auto, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

func (f Format) String() string {
	if f < formatCount {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

func (f Format) MarshalText() ([]byte, error) {
	if f >= formatCount {
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownFormat, f)
	}
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// PixelSize returns the number of bytes per pixel.
// Block-compressed formats and Auto have no per-pixel size.
func (f Format) PixelSize() (int, error) {
	if f >= formatCount || formatLayouts[f].channels == 0 {
		return 0, fmt.Errorf("%w: %v has no pixel size", ErrUnsupportedFormat, f)
	}
	l := formatLayouts[f]
	return l.channels * l.depth, nil
}

// IsSrgb reports whether color channels are stored sRGB encoded.
func (f Format) IsSrgb() bool {
	return f == Rgba8UnormSrgb || f == Bgra8UnormSrgb
}

// Convertible reports whether pixels can be converted between the formats.
func Convertible(from, to Format) bool {
	_, errFrom := from.PixelSize()
	_, errTo := to.PixelSize()
	return errFrom == nil && errTo == nil
}

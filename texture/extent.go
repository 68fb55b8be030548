package texture

import (
	"fmt"
	"image"
	"math"
	"math/bits"
)

// Extent is the size of a single 2D texture layer in pixels.
type Extent struct {
	Width  int
	Height int
}

// ExtentOf converts an image size to an Extent.
func ExtentOf(p image.Point) Extent {
	return Extent{Width: p.X, Height: p.Y}
}

func (e Extent) Point() image.Point {
	return image.Point{X: e.Width, Y: e.Height}
}

func (e Extent) Area() int {
	return e.Width * e.Height
}

func (e Extent) Empty() bool {
	return e.Width <= 0 || e.Height <= 0
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// MipLevelSize returns the extent of mip level m. Each level halves both
// dimensions, rounding down, but never below one pixel.
func (e Extent) MipLevelSize(m int) Extent {
	return Extent{
		Width:  max(1, e.Width>>m),
		Height: max(1, e.Height>>m),
	}
}

// MaxMips returns the length of the full mip chain down to 1x1.
func (e Extent) MaxMips() int {
	return bits.Len(uint(max(e.Width, e.Height, 0)))
}

// DataSize returns the number of bytes needed to store layers of the given
// extent, each with mips levels. It fails with ErrTooLarge if the result does
// not fit in an int.
func DataSize(format Format, size Extent, layers, mips int) (int, error) {
	pixelSize, err := format.PixelSize()
	if err != nil {
		return 0, err
	}
	if size.Width < 0 || size.Height < 0 || layers < 0 || mips < 0 {
		return 0, fmt.Errorf("%w: negative dimensions", ErrTooLarge)
	}
	var total uint64
	for m := range mips {
		level := size.MipLevelSize(m)
		area, ok := mulChecked(uint64(level.Width), uint64(level.Height))
		if !ok {
			return 0, fmt.Errorf("%w: level %d is %v", ErrTooLarge, m, level)
		}
		if total, ok = addChecked(total, area); !ok {
			return 0, fmt.Errorf("%w: %d levels of %v", ErrTooLarge, mips, size)
		}
	}
	total, ok := mulChecked(total, uint64(layers))
	if ok {
		total, ok = mulChecked(total, uint64(pixelSize))
	}
	if !ok || total > math.MaxInt {
		return 0, fmt.Errorf("%w: %d layers of %v", ErrTooLarge, layers, size)
	}
	return int(total), nil
}

func mulChecked(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

func addChecked(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

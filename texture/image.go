package texture

import (
	"fmt"
	"slices"
)

// Image is a single row-major 2D pixel buffer.
type Image struct {
	Size   Extent
	Format Format
	Data   []byte
}

// NewImage allocates a zeroed image.
func NewImage(size Extent, format Format) (*Image, error) {
	n, err := DataSize(format, size, 1, 1)
	if err != nil {
		return nil, err
	}
	return &Image{Size: size, Format: format, Data: make([]byte, n)}, nil
}

// Clear zeroes all pixels.
func (img *Image) Clear() {
	clear(img.Data)
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	return &Image{Size: img.Size, Format: img.Format, Data: slices.Clone(img.Data)}
}

// RowBytes returns the stride of one pixel row.
func (img *Image) RowBytes() int {
	pixelSize, _ := img.Format.PixelSize()
	return img.Size.Width * pixelSize
}

func (img *Image) pixel(x, y int) ([]byte, error) {
	if x < 0 || y < 0 || x >= img.Size.Width || y >= img.Size.Height {
		return nil, fmt.Errorf("%w: (%d, %d) in %v image", ErrAccess, x, y, img.Size)
	}
	pixelSize, err := img.Format.PixelSize()
	if err != nil {
		return nil, err
	}
	i := (y*img.Size.Width + x) * pixelSize
	if i+pixelSize > len(img.Data) {
		return nil, fmt.Errorf("%w: (%d, %d) beyond %d data bytes", ErrAccess, x, y, len(img.Data))
	}
	return img.Data[i : i+pixelSize], nil
}

// ColorAt returns the linear color of the pixel at (x, y).
func (img *Image) ColorAt(x, y int) (Color, error) {
	px, err := img.pixel(x, y)
	if err != nil {
		return Color{}, err
	}
	return img.Format.linear(img.Format.decode(px)), nil
}

// SetColorAt stores a linear color into the pixel at (x, y).
func (img *Image) SetColorAt(x, y int, c Color) error {
	px, err := img.pixel(x, y)
	if err != nil {
		return err
	}
	img.Format.encode(px, img.Format.stored(c))
	return nil
}

// Array is a layer-major texture array: every layer holds its base level
// followed by each smaller mip level.
type Array struct {
	Size   Extent
	Layers int
	Format Format
	Mips   int
	Data   []byte
}

// LayerBytes returns the size of one layer including all mip levels.
func (a *Array) LayerBytes() (int, error) {
	return DataSize(a.Format, a.Size, 1, a.Mips)
}

// Layer returns the bytes of layer i, base level first.
func (a *Array) Layer(i int) ([]byte, error) {
	if i < 0 || i >= a.Layers {
		return nil, fmt.Errorf("%w: layer %d of %d", ErrAccess, i, a.Layers)
	}
	n, err := a.LayerBytes()
	if err != nil {
		return nil, err
	}
	if (i+1)*n > len(a.Data) {
		return nil, fmt.Errorf("%w: layer %d beyond %d data bytes", ErrAccess, i, len(a.Data))
	}
	return a.Data[i*n : (i+1)*n : (i+1)*n], nil
}

// Level returns mip level m of layer i as an image sharing the array data.
func (a *Array) Level(i, m int) (*Image, error) {
	if m < 0 || m >= a.Mips {
		return nil, fmt.Errorf("%w: mip level %d of %d", ErrAccess, m, a.Mips)
	}
	layer, err := a.Layer(i)
	if err != nil {
		return nil, err
	}
	offset, err := DataSize(a.Format, a.Size, 1, m)
	if err != nil {
		return nil, err
	}
	size := a.Size.MipLevelSize(m)
	n, err := DataSize(a.Format, size, 1, 1)
	if err != nil {
		return nil, err
	}
	return &Image{Size: size, Format: a.Format, Data: layer[offset : offset+n : offset+n]}, nil
}

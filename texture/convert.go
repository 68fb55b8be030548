package texture

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// InferFormat returns the format a decoded image is imported as by default.
// Grayscale images keep their depth, everything else becomes sRGB RGBA.
func InferFormat(src image.Image) Format {
	switch src.(type) {
	case *image.Gray:
		return R8Unorm
	case *image.Gray16:
		return R16Unorm
	case *image.RGBA64, *image.NRGBA64:
		return Rgba16Unorm
	default:
		return Rgba8UnormSrgb
	}
}

// FromImage converts a decoded image into a pixel buffer of the given format.
// Stored channel values are copied as is: an sRGB source imported into a
// linear format keeps its encoded values. Auto selects InferFormat(src).
func FromImage(src image.Image, format Format) (*Image, error) {
	if format == Auto {
		format = InferFormat(src)
	}
	bounds := src.Bounds()
	img, err := NewImage(ExtentOf(bounds.Size()), format)
	if err != nil {
		return nil, err
	}

	// Fast path: the common 8-bit RGBA case is a straight copy of NRGBA rows.
	if format == Rgba8Unorm || format == Rgba8UnormSrgb {
		nrgba := nrgbaOf(src)
		rowBytes := img.RowBytes()
		for y := range img.Size.Height {
			row := nrgba.Pix[nrgba.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			copy(img.Data[y*rowBytes:(y+1)*rowBytes], row[:rowBytes])
		}
		return img, nil
	}

	wide := nrgba64Of(src)
	pixelSize, _ := format.PixelSize()
	for y := range img.Size.Height {
		for x := range img.Size.Width {
			c := wide.NRGBA64At(bounds.Min.X+x, bounds.Min.Y+y)
			i := (y*img.Size.Width + x) * pixelSize
			format.encode(img.Data[i:i+pixelSize], channels{
				float32(c.R) / 0xffff,
				float32(c.G) / 0xffff,
				float32(c.B) / 0xffff,
				float32(c.A) / 0xffff,
			})
		}
	}
	return img, nil
}

// nrgbaOf avoids a premultiplied round trip for images that are already
// straight alpha, which would lose the color of transparent pixels.
func nrgbaOf(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	n := image.NewNRGBA(src.Bounds())
	draw.Draw(n, n.Bounds(), src, n.Bounds().Min, draw.Src)
	return n
}

func nrgba64Of(src image.Image) *image.NRGBA64 {
	switch s := src.(type) {
	case *image.NRGBA64:
		return s
	case *image.NRGBA:
		n := image.NewNRGBA64(s.Bounds())
		for y := s.Rect.Min.Y; y < s.Rect.Max.Y; y++ {
			for x := s.Rect.Min.X; x < s.Rect.Max.X; x++ {
				c := s.NRGBAAt(x, y)
				n.SetNRGBA64(x, y, color.NRGBA64{
					R: uint16(c.R) * 0x101,
					G: uint16(c.G) * 0x101,
					B: uint16(c.B) * 0x101,
					A: uint16(c.A) * 0x101,
				})
			}
		}
		return n
	}
	n := image.NewNRGBA64(src.Bounds())
	draw.Draw(n, n.Bounds(), src, n.Bounds().Min, draw.Src)
	return n
}

// ToImage converts a pixel buffer into an image suitable for encoding.
// 8-bit formats produce *image.NRGBA, wider formats *image.NRGBA64.
func ToImage(img *Image) (image.Image, error) {
	pixelSize, err := img.Format.PixelSize()
	if err != nil {
		return nil, err
	}
	if len(img.Data) < img.Size.Area()*pixelSize {
		return nil, fmt.Errorf("%w: %v image needs %d bytes, got %d",
			ErrAccess, img.Size, img.Size.Area()*pixelSize, len(img.Data))
	}
	rect := image.Rectangle{Max: img.Size.Point()}
	at := func(x, y int) channels {
		i := (y*img.Size.Width + x) * pixelSize
		return img.Format.decode(img.Data[i : i+pixelSize])
	}
	if formatLayouts[img.Format].depth == 1 {
		dst := image.NewNRGBA(rect)
		for y := range img.Size.Height {
			for x := range img.Size.Width {
				c := at(x, y)
				dst.SetNRGBA(x, y, color.NRGBA{
					R: toUnorm8(c[0]),
					G: toUnorm8(c[1]),
					B: toUnorm8(c[2]),
					A: toUnorm8(c[3]),
				})
			}
		}
		return dst, nil
	}
	dst := image.NewNRGBA64(rect)
	for y := range img.Size.Height {
		for x := range img.Size.Width {
			c := at(x, y)
			dst.SetNRGBA64(x, y, color.NRGBA64{
				R: toUnorm16(c[0]),
				G: toUnorm16(c[1]),
				B: toUnorm16(c[2]),
				A: toUnorm16(c[3]),
			})
		}
	}
	return dst, nil
}

// Convert re-encodes an image into another sized format, copying stored
// channel values. Missing channels are filled with zero, missing alpha with one.
func Convert(img *Image, format Format) (*Image, error) {
	if img.Format == format {
		return img, nil
	}
	if !Convertible(img.Format, format) {
		return nil, fmt.Errorf("%w: cannot convert %v to %v", ErrUnsupportedFormat, img.Format, format)
	}
	dst, err := NewImage(img.Size, format)
	if err != nil {
		return nil, err
	}
	srcSize, _ := img.Format.PixelSize()
	dstSize, _ := format.PixelSize()
	if len(img.Data) < img.Size.Area()*srcSize {
		return nil, fmt.Errorf("%w: %d data bytes for a %v image", ErrAccess, len(img.Data), img.Size)
	}
	for i := range img.Size.Area() {
		c := img.Format.decode(img.Data[i*srcSize : (i+1)*srcSize])
		format.encode(dst.Data[i*dstSize:(i+1)*dstSize], c)
	}
	return dst, nil
}

package atlas

import (
	"fmt"
	"image"

	"github.com/eak1mov/go-tileset/layout"
	"github.com/eak1mov/go-tileset/texture"
)

// copyTile copies the frame pixels of src into dst at the frame anchor, one
// row at a time. Pixels of dst outside the copied rectangle are untouched.
func copyTile(dst, src *texture.Image, frame layout.Frame) error {
	if dst.Format != src.Format {
		return fmt.Errorf("%w: %v into %v", ErrSourceFormat, src.Format, dst.Format)
	}
	pixelSize, err := src.Format.PixelSize()
	if err != nil {
		return err
	}

	size := frame.Rect.Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil
	}
	srcBounds := image.Rectangle{Max: src.Size.Point()}
	dstBounds := image.Rectangle{Max: dst.Size.Point()}
	placed := image.Rectangle{Min: frame.Anchor, Max: frame.Anchor.Add(size)}
	if !frame.Rect.In(srcBounds) || len(src.Data) < src.Size.Area()*pixelSize {
		return fmt.Errorf("%w: frame %v in %v source", texture.ErrAccess, frame.Rect, src.Size)
	}
	if !placed.In(dstBounds) || len(dst.Data) < dst.Size.Area()*pixelSize {
		return fmt.Errorf("%w: frame %v at %v in %v tile", texture.ErrAccess, frame.Rect, frame.Anchor, dst.Size)
	}

	rowBytes := size.X * pixelSize
	srcStride := src.Size.Width * pixelSize
	dstStride := dst.Size.Width * pixelSize
	si := frame.Rect.Min.Y*srcStride + frame.Rect.Min.X*pixelSize
	di := frame.Anchor.Y*dstStride + frame.Anchor.X*pixelSize
	for range size.Y {
		copy(dst.Data[di:di+rowBytes], src.Data[si:si+rowBytes])
		si += srcStride
		di += dstStride
	}
	return nil
}

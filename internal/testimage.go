// Package internal holds helpers shared by the package tests.
package internal

import (
	"testing"

	"github.com/eak1mov/go-tileset/texture"
)

// RGBA builds a w x h Rgba8Unorm image whose pixels come from fill.
func RGBA(t testing.TB, w, h int, fill func(x, y int) [4]byte) *texture.Image {
	t.Helper()

	img, err := texture.NewImage(texture.Extent{Width: w, Height: h}, texture.Rgba8Unorm)
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}
	for y := range h {
		for x := range w {
			i := (y*w + x) * 4
			px := fill(x, y)
			copy(img.Data[i:i+4], px[:])
		}
	}
	return img
}

// Coords builds an opaque image whose red and green channels hold the pixel
// coordinates, so that every pixel of a copy can be traced to its origin.
func Coords(t testing.TB, w, h int) *texture.Image {
	t.Helper()
	return RGBA(t, w, h, func(x, y int) [4]byte {
		return [4]byte{byte(x), byte(y), 0, 255}
	})
}

// Solid builds an image filled with a single stored pixel value.
func Solid(t testing.TB, w, h int, px [4]byte) *texture.Image {
	t.Helper()
	return RGBA(t, w, h, func(int, int) [4]byte { return px })
}

// Pixel returns the stored bytes of pixel (x, y) of an Rgba8 image.
func Pixel(img *texture.Image, x, y int) [4]byte {
	i := (y*img.Size.Width + x) * 4
	return [4]byte(img.Data[i : i+4])
}

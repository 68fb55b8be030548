package atlas

import (
	"math"

	"github.com/eak1mov/go-tileset/texture"
)

const alphaCutoff = 1e-4

func shouldDiscard(alpha float32) bool {
	return alpha <= alphaCutoff
}

// alphaDiscardMix averages colors. Any transparent sample, or a transparent
// average, yields fully transparent black.
func alphaDiscardMix(colors ...texture.Color) texture.Color {
	var sum texture.Color
	for _, c := range colors {
		if shouldDiscard(c.A) {
			// TODO: average the remaining samples instead, once the tile
			// border flicker this avoids at low mip levels is fixed.
			return texture.Transparent
		}
		sum = sum.Add(c)
	}
	if len(colors) > 1 {
		sum = sum.Scale(1 / float32(len(colors)))
	}
	if shouldDiscard(sum.A) {
		return texture.Transparent
	}
	return sum
}

// alphaDiscardLerp interpolates between a and b, yielding transparent black
// if either of them is transparent.
func alphaDiscardLerp(a, b texture.Color, t float32) texture.Color {
	if shouldDiscard(a.A) || shouldDiscard(b.A) {
		return texture.Transparent
	}
	return a.Lerp(b, t)
}

// generateMip fills dst from the next larger level src. Exact halving uses a
// 2x2 box filter, any other ratio bilinear sampling.
func generateMip(src, dst *texture.Image) error {
	if src.Size.Width == 2*dst.Size.Width && src.Size.Height == 2*dst.Size.Height {
		return downscaleHalf(src, dst)
	}
	return downscaleBilinear(src, dst)
}

func downscaleHalf(src, dst *texture.Image) error {
	for ty := range dst.Size.Height {
		for tx := range dst.Size.Width {
			sx, sy := 2*tx, 2*ty
			var block [4]texture.Color
			for i, p := range [4][2]int{{sx, sy}, {sx + 1, sy}, {sx, sy + 1}, {sx + 1, sy + 1}} {
				c, err := src.ColorAt(p[0], p[1])
				if err != nil {
					return err
				}
				block[i] = c
			}
			if err := dst.SetColorAt(tx, ty, alphaDiscardMix(block[:]...)); err != nil {
				return err
			}
		}
	}
	return nil
}

func downscaleBilinear(src, dst *texture.Image) error {
	scaleX := float32(src.Size.Width) / float32(dst.Size.Width)
	scaleY := float32(src.Size.Height) / float32(dst.Size.Height)
	lastX, lastY := src.Size.Width-1, src.Size.Height-1

	for ty := range dst.Size.Height {
		fy := scaleY * float32(ty)
		y0 := int(math.Floor(float64(fy)))
		y1 := min(y0+1, lastY)
		t := fy - float32(y0)

		for tx := range dst.Size.Width {
			fx := scaleX * float32(tx)
			x0 := int(math.Floor(float64(fx)))
			x1 := min(x0+1, lastX)
			s := fx - float32(x0)

			var samples [4]texture.Color
			for i, p := range [4][2]int{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
				c, err := src.ColorAt(p[0], p[1])
				if err != nil {
					return err
				}
				samples[i] = c
			}
			c0 := alphaDiscardLerp(samples[0], samples[1], s)
			c1 := alphaDiscardLerp(samples[2], samples[3], s)
			if err := dst.SetColorAt(tx, ty, alphaDiscardLerp(c0, c1, t)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Package stats summarizes the content of a tileset: per-tile coverage,
// dominant colors of tile groups and a k-means palette of the whole atlas.
package stats

import (
	"cmp"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/tile"
	"github.com/eak1mov/go-tileset/ts"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"
)

// Alpha at or below this value counts as transparent. It matches the cutoff
// of the mip generator.
const alphaCutoff = 1e-4

var ErrEmptyGroup = errors.New("stats: group has no tiles")

// TileStats describes the base level of a single tile.
type TileStats struct {
	Index tile.Index
	// Coverage is the fraction of pixels that are not transparent.
	Coverage float64
	// Luminance statistics of the covered pixels, in linear space.
	MeanLuminance   float64
	StdDevLuminance float64
}

// Empty reports whether every pixel of the tile is transparent.
func (s TileStats) Empty() bool {
	return s.Coverage == 0
}

// Summary aggregates the stats of all tiles.
type Summary struct {
	Tiles          int
	EmptyTiles     int
	MeanCoverage   float64
	StdDevCoverage float64
}

// Tiles computes the stats of every tile.
func Tiles(t *ts.Tileset) ([]TileStats, error) {
	var result []TileStats
	for i := range t.Count() {
		level, err := t.Level(tile.Index(i), 0)
		if err != nil {
			return nil, err
		}
		s, err := tileStats(level)
		if err != nil {
			return nil, err
		}
		s.Index = tile.Index(i)
		result = append(result, s)
	}
	return result, nil
}

func tileStats(level *texture.Image) (TileStats, error) {
	var luminance []float64
	for y := range level.Size.Height {
		for x := range level.Size.Width {
			c, err := level.ColorAt(x, y)
			if err != nil {
				return TileStats{}, err
			}
			if c.A <= alphaCutoff {
				continue
			}
			luminance = append(luminance, 0.2126*float64(c.R)+0.7152*float64(c.G)+0.0722*float64(c.B))
		}
	}

	var s TileStats
	if area := level.Size.Area(); area > 0 {
		s.Coverage = float64(len(luminance)) / float64(area)
	}
	switch len(luminance) {
	case 0:
	case 1:
		s.MeanLuminance = luminance[0]
	default:
		s.MeanLuminance, s.StdDevLuminance = stat.MeanStdDev(luminance, nil)
	}
	return s, nil
}

// Summarize aggregates tile stats.
func Summarize(tiles []TileStats) Summary {
	s := Summary{Tiles: len(tiles)}
	coverage := make([]float64, len(tiles))
	for i, t := range tiles {
		coverage[i] = t.Coverage
		if t.Empty() {
			s.EmptyTiles++
		}
	}
	switch len(coverage) {
	case 0:
	case 1:
		s.MeanCoverage = coverage[0]
	default:
		s.MeanCoverage, s.StdDevCoverage = stat.MeanStdDev(coverage, nil)
	}
	return s
}

// GroupColor returns the dominant color of the base levels of the tiles in
// the named group.
func GroupColor(t *ts.Tileset, name string) (color.RGBA, error) {
	tiles := t.Group(name)
	if len(tiles) == 0 {
		return color.RGBA{}, ErrEmptyGroup
	}
	size := t.TileSize()
	strip := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height*len(tiles)))
	for n, i := range tiles {
		level, err := t.Level(i, 0)
		if err != nil {
			return color.RGBA{}, err
		}
		img, err := texture.ToImage(level)
		if err != nil {
			return color.RGBA{}, err
		}
		offset := image.Pt(0, n*size.Height)
		draw.Draw(strip, img.Bounds().Add(offset), img, image.Point{}, draw.Src)
	}
	return dominantcolor.Find(strip), nil
}

// PaletteColor is a palette entry and the number of sampled pixels it
// represents.
type PaletteColor struct {
	Color  colorful.Color
	Pixels int
}

// maxSamples bounds the number of pixels clustered by Palette.
const maxSamples = 12000

// Palette clusters the sRGB encoded colors of the covered base level pixels
// of every tile into at most k colors, most common first.
func Palette(t *ts.Tileset, k int) ([]PaletteColor, error) {
	if k <= 0 {
		return nil, nil
	}
	size := t.TileSize()
	total := size.Area() * t.Count()
	step := 1
	if total > maxSamples {
		step = int(math.Ceil(float64(total) / maxSamples))
	}

	dataset := make(clusters.Observations, 0, min(total, maxSamples))
	n := 0
	for i := range t.Count() {
		level, err := t.Level(tile.Index(i), 0)
		if err != nil {
			return nil, err
		}
		for y := range size.Height {
			for x := range size.Width {
				n++
				if n%step != 0 {
					continue
				}
				c, err := level.ColorAt(x, y)
				if err != nil {
					return nil, err
				}
				if c.A <= alphaCutoff {
					continue
				}
				lc := colorful.LinearRgb(float64(c.R), float64(c.G), float64(c.B))
				dataset = append(dataset, clusters.Coordinates{lc.R, lc.G, lc.B})
			}
		}
	}
	if len(dataset) == 0 {
		return nil, nil
	}

	km := kmeans.New()
	cc, err := km.Partition(dataset, min(k, len(dataset)))
	if err != nil {
		return nil, err
	}

	palette := make([]PaletteColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 {
			continue
		}
		// Partition stops without recentering once no point moves.
		c.Recenter()
		palette = append(palette, PaletteColor{
			Color:  colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped(),
			Pixels: len(c.Observations),
		})
	}
	slices.SortStableFunc(palette, func(a, b PaletteColor) int {
		return cmp.Compare(b.Pixels, a.Pixels)
	})
	return palette, nil
}

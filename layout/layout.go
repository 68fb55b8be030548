// Package layout resolves how a source image is cut into tiles.
package layout

import (
	"fmt"
	"image"
	"slices"

	"github.com/eak1mov/go-tileset/tile"
)

// Frame is the pixel rectangle of one tile in a source image, and the
// position of its top-left corner inside the tile canvas.
type Frame struct {
	Rect   image.Rectangle
	Anchor image.Point
}

// Margins are the unused borders of a grid image.
type Margins struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Layout is one of Single, Grid or Frames.
type Layout interface {
	resolve(imageSize image.Point) (*Source, error)
}

// Single uses the whole image as one tile.
type Single struct{}

// Grid cuts the image into a regular lattice of equally sized tiles.
type Grid struct {
	TileSize image.Point
	Padding  image.Point
	Margins  Margins
}

// Frames lists the tiles explicitly. Frames smaller than the tile size are
// placed at their anchor and the rest of the canvas stays transparent.
type Frames struct {
	TileSize image.Point
	Frames   []Frame
}

// Info describes the tiles of a resolved source.
type Info struct {
	TileSize image.Point
	Count    int
}

// Source is a layout resolved against a particular image size.
type Source struct {
	info  Info
	frame func(i int) Frame
}

// Resolve validates the layout against the image size.
func Resolve(l Layout, imageSize image.Point) (*Source, error) {
	return l.resolve(imageSize)
}

// Info returns the tile size and count of the source.
func (s *Source) Info() Info {
	return s.info
}

// Count returns the number of tiles in the source.
func (s *Source) Count() int {
	return s.info.Count
}

// TileSize returns the size of the tile canvas every frame is copied into.
func (s *Source) TileSize() image.Point {
	return s.info.TileSize
}

// Frame returns the frame of tile i.
func (s *Source) Frame(i tile.Index) (Frame, error) {
	if int(i) >= s.info.Count {
		return Frame{}, &OutOfRangeError{Index: i, Count: s.info.Count}
	}
	return s.frame(int(i)), nil
}

func (Single) resolve(imageSize image.Point) (*Source, error) {
	if imageSize.X <= 0 || imageSize.Y <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrEmptyImage, imageSize)
	}
	frame := Frame{Rect: image.Rectangle{Max: imageSize}}
	return &Source{
		info:  Info{TileSize: imageSize, Count: 1},
		frame: func(int) Frame { return frame },
	}, nil
}

func (g Grid) resolve(imageSize image.Point) (*Source, error) {
	invalid := func(reason string) error {
		return &GridError{
			ImageSize: imageSize,
			TileSize:  g.TileSize,
			Padding:   g.Padding,
			Margins:   g.Margins,
			Reason:    reason,
		}
	}

	m := g.Margins
	switch {
	case g.TileSize.X <= 0 || g.TileSize.Y <= 0:
		return nil, invalid("tile size must be positive")
	case g.Padding.X < 0 || g.Padding.Y < 0:
		return nil, invalid("padding must not be negative")
	case m.Left < 0 || m.Top < 0 || m.Right < 0 || m.Bottom < 0:
		return nil, invalid("margins must not be negative")
	}

	// The last row and column have no trailing padding.
	adjusted := imageSize.Sub(image.Pt(m.Left+m.Right, m.Top+m.Bottom)).Add(g.Padding)
	step := g.TileSize.Add(g.Padding)
	if adjusted.X <= 0 || adjusted.Y <= 0 {
		return nil, invalid("margins leave no room for tiles")
	}
	if adjusted.X%step.X != 0 || adjusted.Y%step.Y != 0 {
		return nil, invalid("image size is not a multiple of tile size plus padding")
	}

	gridW := adjusted.X / step.X
	gridH := adjusted.Y / step.Y
	count := gridW * gridH
	if count > tile.MaxCount {
		return nil, &TooManyTilesError{Count: count}
	}

	origin := image.Pt(m.Left, m.Top)
	tileSize := g.TileSize
	return &Source{
		info: Info{TileSize: tileSize, Count: count},
		frame: func(i int) Frame {
			topLeft := origin.Add(image.Pt(i%gridW*step.X, i/gridW*step.Y))
			return Frame{Rect: image.Rectangle{Min: topLeft, Max: topLeft.Add(tileSize)}}
		},
	}, nil
}

func (f Frames) resolve(imageSize image.Point) (*Source, error) {
	if len(f.Frames) > tile.MaxCount {
		return nil, &TooManyTilesError{Count: len(f.Frames)}
	}
	if f.TileSize.X <= 0 || f.TileSize.Y <= 0 {
		return nil, fmt.Errorf("%w: tile size %v must be positive", ErrInvalidFrame, f.TileSize)
	}

	for i, frame := range f.Frames {
		var err error
		r := frame.Rect
		size := r.Size()
		switch {
		case r.Min.X > r.Max.X || r.Min.Y > r.Max.Y:
			err = ErrInvalidFrame
		case r.Min.X < 0 || r.Min.Y < 0 || r.Max.X > imageSize.X || r.Max.Y > imageSize.Y:
			err = ErrInvalidFrame
		case frame.Anchor.X < 0 || frame.Anchor.Y < 0:
			err = ErrInvalidAnchor
		case frame.Anchor.X+size.X > f.TileSize.X || frame.Anchor.Y+size.Y > f.TileSize.Y:
			err = ErrInvalidAnchor
		}
		if err != nil {
			return nil, &FrameError{
				Index:     i,
				Frame:     frame,
				ImageSize: imageSize,
				TileSize:  f.TileSize,
				Err:       err,
			}
		}
	}

	frames := slices.Clone(f.Frames)
	return &Source{
		info:  Info{TileSize: f.TileSize, Count: len(frames)},
		frame: func(i int) Frame { return frames[i] },
	}, nil
}

package layout

import (
	"errors"
	"fmt"
	"image"

	"github.com/eak1mov/go-tileset/tile"
)

var (
	ErrEmptyImage    = errors.New("layout: empty image")
	ErrInvalidGrid   = errors.New("layout: invalid grid")
	ErrInvalidFrame  = errors.New("layout: invalid frame")
	ErrInvalidAnchor = errors.New("layout: invalid anchor")
	ErrTooManyTiles  = errors.New("layout: too many tiles")
	ErrOutOfRange    = errors.New("layout: tile index out of range")
)

// GridError reports grid parameters that do not divide the image evenly.
type GridError struct {
	ImageSize image.Point
	TileSize  image.Point
	Padding   image.Point
	Margins   Margins
	Reason    string
}

func (e *GridError) Error() string {
	return fmt.Sprintf("layout: invalid grid (image %v, tile %v, padding %v, margins %+v): %s",
		e.ImageSize, e.TileSize, e.Padding, e.Margins, e.Reason)
}

func (e *GridError) Unwrap() error {
	return ErrInvalidGrid
}

// FrameError reports a frame that does not fit the image or the tile canvas.
// Err is ErrInvalidFrame or ErrInvalidAnchor.
type FrameError struct {
	Index     int
	Frame     Frame
	ImageSize image.Point
	TileSize  image.Point
	Err       error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%v: frame %d %v anchored at %v is not compatible with image size %v and tile size %v",
		e.Err, e.Index, e.Frame.Rect, e.Frame.Anchor, e.ImageSize, e.TileSize)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// TooManyTilesError reports a layout with more than tile.MaxCount tiles.
type TooManyTilesError struct {
	Count int
}

func (e *TooManyTilesError) Error() string {
	return fmt.Sprintf("layout: the layout defines %d tiles, but the maximum is %d", e.Count, tile.MaxCount)
}

func (e *TooManyTilesError) Unwrap() error {
	return ErrTooManyTiles
}

// OutOfRangeError reports a tile index beyond the resolved tile count.
type OutOfRangeError struct {
	Index tile.Index
	Count int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("layout: tile index was %d, but the source contains %d tiles", e.Index, e.Count)
}

func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}

package atlas

import (
	"errors"
	"fmt"

	"github.com/eak1mov/go-tileset/tile"
)

var (
	ErrEmptyTileSize    = errors.New("atlas: empty tile size")
	ErrMissingImage     = errors.New("atlas: source has no image")
	ErrSourceOutOfRange = errors.New("atlas: source id out of range")
	ErrSourceFormat     = errors.New("atlas: source format cannot be converted")
	ErrTileSize         = errors.New("atlas: tile size mismatch")
	ErrTooManyTiles     = errors.New("atlas: too many tiles")
	ErrGenerateMips     = errors.New("atlas: failed to generate mipmaps")
)

// SourceRangeError reports a tile reference to a source that doesn't exist.
type SourceRangeError struct {
	SourceID int
	Count    int
}

func (e *SourceRangeError) Error() string {
	return fmt.Sprintf("atlas: source id was %d, but the tileset has %d sources", e.SourceID, e.Count)
}

func (e *SourceRangeError) Unwrap() error {
	return ErrSourceOutOfRange
}

// SourceError tags a validation or layout error with the source it came from.
type SourceError struct {
	SourceID int
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("atlas: source %d: %v", e.SourceID, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// TileError reports the tile reference that failed an import. Group is empty
// for the tile filter; Position is the index of the reference in the filter
// or group list.
type TileError struct {
	Ref      tile.SourceRef
	Group    string
	Position int
	Err      error
}

func (e *TileError) Error() string {
	if e.Group != "" {
		return fmt.Sprintf("atlas: in group %q: error importing tile %d from source %d (position %d): %v",
			e.Group, e.Ref.Index, e.Ref.Source, e.Position, e.Err)
	}
	return fmt.Sprintf("atlas: error importing tile %d from source %d (position %d): %v",
		e.Ref.Index, e.Ref.Source, e.Position, e.Err)
}

func (e *TileError) Unwrap() error {
	return e.Err
}

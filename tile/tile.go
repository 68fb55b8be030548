// Package tile provides common tile types and interfaces.
package tile

import "math"

// Index identifies a tile in an output atlas.
type Index = uint16

// MaxCount is the maximum number of tiles a single source or atlas may hold.
const MaxCount = math.MaxUint16

// SourceRef identifies a tile before deduplication: a tile index within one
// source of an import job.
type SourceRef struct {
	Source int
	Index  Index
}

// Writer defines an interface for adding tiles to an atlas.
type Writer interface {
	// WriteTile imports a single tile and returns its assigned index.
	WriteTile(ref SourceRef) (Index, error)
}

// Visitor defines an interface for visiting the tiles of an atlas.
type Visitor interface {
	// VisitTiles calls the visitor for every tile in index order.
	// The tile data holds the base level followed by every mip level.
	VisitTiles(visitor func(Index, []byte) error) error
}

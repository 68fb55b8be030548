package tile

import (
	"errors"
	"iter"
)

var errVisitCancelled = errors.New("visit cancelled")

// IterTiles returns an iterator over all tiles of the atlas.
// It yields tile indices and their data. Iteration may panic on unrecoverable errors.
func IterTiles(r Visitor) iter.Seq2[Index, []byte] {
	return func(yield func(Index, []byte) bool) {
		err := r.VisitTiles(func(tileIndex Index, tileData []byte) error {
			if !yield(tileIndex, tileData) {
				return errVisitCancelled
			}
			return nil
		})
		if err != nil && err != errVisitCancelled {
			panic(err)
		}
	}
}

// IterGroups returns an iterator over the groups in insertion order.
func IterGroups(g *Groups) iter.Seq2[string, []Index] {
	return func(yield func(string, []Index) bool) {
		for _, name := range g.names {
			if !yield(name, g.Group(name)) {
				return
			}
		}
	}
}

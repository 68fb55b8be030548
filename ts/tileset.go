// Package ts provides the runtime tileset: a texture array of tiles with
// named tile groups, loaded from and saved to the binary tileset format.
package ts

import (
	"fmt"

	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/tile"
	"github.com/eak1mov/go-tileset/ts/spec"
)

// Tileset is an immutable, loaded tileset.
type Tileset struct {
	Texture texture.Array
	Groups  *tile.Groups
}

// FromFile validates a decoded file and wraps it. The texture data is shared
// with f.
func FromFile(f *spec.File) (*Tileset, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	groups := f.TileGroups()
	for _, name := range groups.Names() {
		for _, i := range groups.Group(name) {
			if int(i) >= f.TileCount {
				return nil, fmt.Errorf("%w: group %q references tile %d of %d", spec.ErrInvalidData, name, i, f.TileCount)
			}
		}
	}
	return &Tileset{Texture: f.Array(), Groups: groups}, nil
}

// Count returns the number of tiles.
func (t *Tileset) Count() int { return t.Texture.Layers }

// TileSize returns the base level size of every tile.
func (t *Tileset) TileSize() texture.Extent { return t.Texture.Size }

// Format returns the pixel format of the texture data.
func (t *Tileset) Format() texture.Format { return t.Texture.Format }

// Mips returns the number of mip levels per tile, base level included.
func (t *Tileset) Mips() int { return t.Texture.Mips }

// Group returns the tiles of the named group, or an empty slice.
func (t *Tileset) Group(name string) []tile.Index {
	return t.Groups.Group(name)
}

// Tile returns the data of tile i: its base level followed by every mip level.
func (t *Tileset) Tile(i tile.Index) ([]byte, error) {
	return t.Texture.Layer(int(i))
}

// Level returns mip level m of tile i.
func (t *Tileset) Level(i tile.Index, m int) (*texture.Image, error) {
	return t.Texture.Level(int(i), m)
}

func (t *Tileset) VisitTiles(visitor func(tile.Index, []byte) error) error {
	for i := range t.Count() {
		data, err := t.Tile(tile.Index(i))
		if err != nil {
			return err
		}
		if err := visitor(tile.Index(i), data); err != nil {
			return err
		}
	}
	return nil
}

// File returns the tileset in its on-disk form.
func (t *Tileset) File() (*spec.File, error) {
	return spec.NewFile(t.Groups, t.Texture)
}

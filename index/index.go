// Package index provides a flat binary provenance index of an atlas: for
// every output tile, the source tile it was copied from.
package index

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/eak1mov/go-tileset/layout"
	"github.com/eak1mov/go-tileset/tile"
)

var ErrInvalidIndex = errors.New("index: invalid index data")

// Item is a single fixed-size little-endian record of the index. It is
// designed to be easily read by other languages and utilities.
type Item struct {
	Tile        uint32
	Source      uint32
	SourceIndex uint32
	MinX        uint32
	MinY        uint32
	MaxX        uint32
	MaxY        uint32
	AnchorX     uint32
	AnchorY     uint32
}

// ItemSize is the encoded size of a single Item.
var ItemSize = binary.Size(Item{})

func (i Item) Ref() tile.SourceRef {
	return tile.SourceRef{Source: int(i.Source), Index: tile.Index(i.SourceIndex)}
}

func (i Item) Frame() layout.Frame {
	return layout.Frame{
		Rect:   image.Rect(int(i.MinX), int(i.MinY), int(i.MaxX), int(i.MaxY)),
		Anchor: image.Pt(int(i.AnchorX), int(i.AnchorY)),
	}
}

// Build creates one item per output tile from the provenance recorded by
// the atlas builder. refs and frames are indexed by output tile.
func Build(refs []tile.SourceRef, frames []layout.Frame) ([]Item, error) {
	if len(refs) != len(frames) {
		return nil, fmt.Errorf("%w: %d refs for %d frames", ErrInvalidIndex, len(refs), len(frames))
	}
	items := make([]Item, len(refs))
	for i, ref := range refs {
		f := frames[i]
		items[i] = Item{
			Tile:        uint32(i),
			Source:      uint32(ref.Source),
			SourceIndex: uint32(ref.Index),
			MinX:        uint32(f.Rect.Min.X),
			MinY:        uint32(f.Rect.Min.Y),
			MaxX:        uint32(f.Rect.Max.X),
			MaxY:        uint32(f.Rect.Max.Y),
			AnchorX:     uint32(f.Anchor.X),
			AnchorY:     uint32(f.Anchor.Y),
		}
	}
	return items, nil
}

func WriteAll(items []Item, writer io.Writer) error {
	return binary.Write(writer, binary.LittleEndian, items)
}

func ReadAll(indexData []byte) ([]Item, error) {
	if len(indexData)%ItemSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidIndex, len(indexData), ItemSize)
	}
	items := make([]Item, len(indexData)/ItemSize)

	err := binary.Read(bytes.NewReader(indexData), binary.LittleEndian, items)
	if err != nil {
		return nil, err
	}

	return items, nil
}

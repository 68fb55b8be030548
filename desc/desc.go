// Package desc reads tileset descriptions: JSONC documents naming the source
// images, their layouts, the tile filter and the tile groups of a tileset.
//
// A description either lists sources, with tiles referenced as
// [source, index] pairs:
//
//	{
//	  "tile_size": [16, 16],      // optional, defaults to the first source
//	  "format": "rgba8unorm-srgb", // optional, defaults to the first source
//	  "generate_mips": true,
//	  "sources": [
//	    {"path": "terrain.png", "layout": {"grid": {"tile_size": [16, 16], "padding": [1, 1]}}},
//	    {"path": "hero.png", "layout": "single", "srgb": false},
//	  ],
//	  "filter": "all", // "none", or a list of tiles
//	  "groups": {"grass": [[0, 0], [0, 1]], "hero": [[1, 0]]},
//	}
//
// or names a single image, with tiles referenced by bare indices:
//
//	{"image": "terrain.png", "layout": {"grid": {"tile_size": [16, 16]}}, "groups": {"grass": [0, 1]}}
//
// Groups are imported in the order they appear in the document.
package desc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/eak1mov/go-tileset/atlas"
	"github.com/eak1mov/go-tileset/layout"
	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/tile"
	"github.com/tidwall/jsonc"
)

var (
	ErrInvalidDescription = errors.New("desc: invalid tileset description")
	ErrNoSources          = errors.New("desc: a tileset must have at least one source image")
)

// Description is a parsed tileset description.
type Description struct {
	TileSize     image.Point
	Format       texture.Format
	GenerateMips bool
	Sources      []SourceDesc
	Filter       atlas.Filter
	Groups       []atlas.Group
}

// SourceDesc names a source image file and its layout.
type SourceDesc struct {
	Path   string
	Layout layout.Layout
	// Srgb selects whether 8-bit color images are stored sRGB encoded.
	Srgb bool
}

type document struct {
	TileSize     *point          `json:"tile_size"`
	Format       texture.Format  `json:"format"`
	GenerateMips bool            `json:"generate_mips"`
	Sources      []sourceDoc     `json:"sources"`
	Filter       json.RawMessage `json:"filter"`
	Groups       orderedGroups   `json:"groups"`

	// Single image shortcut.
	Image  string    `json:"image"`
	Layout layoutDoc `json:"layout"`
	Srgb   *bool     `json:"srgb"`
}

type sourceDoc struct {
	Path   string    `json:"path"`
	Layout layoutDoc `json:"layout"`
	Srgb   *bool     `json:"srgb"`
}

// Parse strips JSONC comments and trailing commas from data, then decodes
// the description.
func Parse(data []byte) (*Description, error) {
	stripped := jsonc.ToJSON(data)

	var doc document
	decoder := json.NewDecoder(bytes.NewReader(stripped))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDescription, err)
	}

	d := &Description{
		Format:       doc.Format,
		GenerateMips: doc.GenerateMips,
	}
	if doc.TileSize != nil {
		d.TileSize = doc.TileSize.Point()
	}

	singleImage := doc.Image != ""
	switch {
	case singleImage && doc.Sources != nil:
		return nil, fmt.Errorf("%w: both image and sources are set", ErrInvalidDescription)
	case singleImage:
		d.Sources = []SourceDesc{{Path: doc.Image, Layout: doc.Layout.layout(), Srgb: srgb(doc.Srgb)}}
	case len(doc.Sources) == 0:
		return nil, ErrNoSources
	case doc.Layout.set || doc.Srgb != nil:
		return nil, fmt.Errorf("%w: layout and srgb belong to a source", ErrInvalidDescription)
	default:
		for i, s := range doc.Sources {
			if s.Path == "" {
				return nil, fmt.Errorf("%w: source %d has no path", ErrInvalidDescription, i)
			}
			d.Sources = append(d.Sources, SourceDesc{Path: s.Path, Layout: s.Layout.layout(), Srgb: srgb(s.Srgb)})
		}
	}

	filter, err := parseFilter(doc.Filter, singleImage)
	if err != nil {
		return nil, err
	}
	d.Filter = filter

	for _, g := range doc.Groups {
		refs, err := parseRefs(g.tiles, singleImage)
		if err != nil {
			return nil, fmt.Errorf("%w: group %q: %w", ErrInvalidDescription, g.name, err)
		}
		d.Groups = append(d.Groups, atlas.Group{Name: g.name, Tiles: refs})
	}
	return d, nil
}

func srgb(v *bool) bool {
	return v == nil || *v
}

func parseFilter(raw json.RawMessage, singleImage bool) (atlas.Filter, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return atlas.AllTiles(), nil
	}
	var mode string
	if err := json.Unmarshal(raw, &mode); err == nil {
		switch mode {
		case "all":
			return atlas.AllTiles(), nil
		case "none":
			return atlas.NoTiles(), nil
		default:
			return atlas.Filter{}, fmt.Errorf("%w: unknown filter %q", ErrInvalidDescription, mode)
		}
	}
	refs, err := parseRefs(raw, singleImage)
	if err != nil {
		return atlas.Filter{}, fmt.Errorf("%w: filter: %w", ErrInvalidDescription, err)
	}
	return atlas.TileList(refs...), nil
}

// parseRefs decodes a list of [source, index] pairs, or of bare indices for
// a single image.
func parseRefs(raw json.RawMessage, singleImage bool) ([]tile.SourceRef, error) {
	if singleImage {
		var indices []tile.Index
		if err := json.Unmarshal(raw, &indices); err != nil {
			return nil, err
		}
		refs := make([]tile.SourceRef, len(indices))
		for i, index := range indices {
			refs[i] = tile.SourceRef{Index: index}
		}
		return refs, nil
	}

	var arrays [][2]json.Number
	if err := json.Unmarshal(raw, &arrays); err != nil {
		return nil, err
	}
	refs := make([]tile.SourceRef, 0, len(arrays))
	for _, pair := range arrays {
		source, err := pair[0].Int64()
		if err != nil || source < 0 {
			return nil, fmt.Errorf("invalid source id %v", pair[0])
		}
		index, err := pair[1].Int64()
		if err != nil || index < 0 || index > tile.MaxCount {
			return nil, fmt.Errorf("invalid tile index %v", pair[1])
		}
		refs = append(refs, tile.SourceRef{Source: int(source), Index: tile.Index(index)})
	}
	return refs, nil
}

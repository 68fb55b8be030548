package atlas

import (
	"fmt"
	"image"

	"github.com/eak1mov/go-tileset/layout"
	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/tile"
	"github.com/eak1mov/go-tileset/ts/spec"
)

// Source is a decoded source image and the layout that splits it into tiles.
type Source struct {
	Image  *texture.Image
	Layout layout.Layout
}

type FilterMode int

const (
	// FilterAll imports every tile of every source, in source order.
	FilterAll FilterMode = iota
	FilterNone
	FilterList
)

func (m FilterMode) String() string {
	switch m {
	case FilterAll:
		return "all"
	case FilterNone:
		return "none"
	case FilterList:
		return "list"
	default:
		return fmt.Sprintf("FilterMode(%d)", int(m))
	}
}

// Filter selects the tiles imported before any group.
type Filter struct {
	Mode FilterMode
	List []tile.SourceRef
}

func AllTiles() Filter { return Filter{Mode: FilterAll} }
func NoTiles() Filter  { return Filter{Mode: FilterNone} }

func TileList(refs ...tile.SourceRef) Filter {
	return Filter{Mode: FilterList, List: refs}
}

// Group is a named list of tile references. Groups are imported in
// declaration order after the filter.
type Group struct {
	Name  string
	Tiles []tile.SourceRef
}

// Request describes an atlas to build.
type Request struct {
	// TileSize defaults to the tile size of the first source.
	TileSize image.Point
	// Format defaults to the format of the first source, or Rgba8Unorm if
	// there are no sources.
	Format       texture.Format
	GenerateMips bool
	Filter       Filter
	Groups       []Group
	Sources      []Source
}

// Atlas is a built atlas together with its tile groups.
type Atlas struct {
	Result
	Groups *tile.Groups
}

// File returns the atlas in its on-disk form.
func (a *Atlas) File() (*spec.File, error) {
	return spec.NewFile(a.Groups, a.Array())
}

// Import validates the sources and builds the atlas described by req.
// Every distinct tile reference is copied at most once; repeated references,
// whether in the filter or in groups, resolve to the same tile index.
func Import(req *Request, opts ...Option) (*Atlas, error) {
	logger := newConfig(opts).logger

	format, err := atlasFormat(req)
	if err != nil {
		return nil, err
	}
	resolved, tileSize, err := resolveSources(req.Sources, req.TileSize, format)
	if err != nil {
		return nil, err
	}
	logger.Debug("tileset: sources resolved", "sources", len(resolved), "tileSize", tileSize, "format", format)

	b, err := NewBuilder(tileSize, format, req.GenerateMips, opts...)
	if err != nil {
		return nil, err
	}
	w := newDedupWriter(b.Writer(resolved))

	refs, err := filterRefs(req.Filter, resolved)
	if err != nil {
		return nil, err
	}
	for i, ref := range refs {
		if _, err := w.WriteTile(ref); err != nil {
			return nil, &TileError{Ref: ref, Position: i, Err: err}
		}
	}
	logger.Debug("tileset: filter imported", "mode", req.Filter.Mode, "refs", len(refs), "tiles", b.Count())

	groups := &tile.Groups{}
	for _, g := range req.Groups {
		indices := make([]tile.Index, 0, len(g.Tiles))
		for i, ref := range g.Tiles {
			index, err := w.WriteTile(ref)
			if err != nil {
				return nil, &TileError{Ref: ref, Group: g.Name, Position: i, Err: err}
			}
			indices = append(indices, index)
		}
		groups.Insert(g.Name, indices)
		logger.Debug("tileset: group imported", "name", g.Name, "refs", len(g.Tiles), "tiles", b.Count())
	}

	result := b.Finalize()
	return &Atlas{Result: result, Groups: groups}, nil
}

func atlasFormat(req *Request) (texture.Format, error) {
	if req.Format != texture.Auto {
		if _, err := req.Format.PixelSize(); err != nil {
			return 0, err
		}
		return req.Format, nil
	}
	if len(req.Sources) == 0 {
		return texture.Rgba8Unorm, nil
	}
	if req.Sources[0].Image == nil {
		return 0, &SourceError{SourceID: 0, Err: ErrMissingImage}
	}
	return req.Sources[0].Image.Format, nil
}

func resolveSources(sources []Source, tileSize image.Point, format texture.Format) ([]ResolvedSource, image.Point, error) {
	resolved := make([]ResolvedSource, 0, len(sources))
	for id, source := range sources {
		if source.Image == nil {
			return nil, tileSize, &SourceError{SourceID: id, Err: ErrMissingImage}
		}
		img := source.Image
		if img.Format != format {
			converted, err := texture.Convert(img, format)
			if err != nil {
				return nil, tileSize, &SourceError{
					SourceID: id,
					Err:      fmt.Errorf("%w: %v to %v: %w", ErrSourceFormat, img.Format, format, err),
				}
			}
			img = converted
		}

		frames, err := layout.Resolve(source.Layout, img.Size.Point())
		if err != nil {
			return nil, tileSize, &SourceError{SourceID: id, Err: err}
		}
		if tileSize == (image.Point{}) {
			tileSize = frames.TileSize()
		}
		if frames.TileSize() != tileSize {
			return nil, tileSize, &SourceError{
				SourceID: id,
				Err:      fmt.Errorf("%w: source tiles are %v, atlas tiles are %v", ErrTileSize, frames.TileSize(), tileSize),
			}
		}
		resolved = append(resolved, ResolvedSource{Image: img, Frames: frames})
	}
	return resolved, tileSize, nil
}

func filterRefs(filter Filter, sources []ResolvedSource) ([]tile.SourceRef, error) {
	switch filter.Mode {
	case FilterNone:
		return nil, nil
	case FilterList:
		return filter.List, nil
	case FilterAll:
		var refs []tile.SourceRef
		for id, source := range sources {
			for i := range source.Frames.Count() {
				refs = append(refs, tile.SourceRef{Source: id, Index: tile.Index(i)})
			}
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("atlas: unknown filter mode %d", filter.Mode)
	}
}

// dedupWriter imports every distinct reference once.
type dedupWriter struct {
	w       tile.Writer
	indices map[tile.SourceRef]tile.Index
}

func newDedupWriter(w tile.Writer) *dedupWriter {
	return &dedupWriter{w: w, indices: make(map[tile.SourceRef]tile.Index)}
}

func (d *dedupWriter) WriteTile(ref tile.SourceRef) (tile.Index, error) {
	if index, ok := d.indices[ref]; ok {
		return index, nil
	}
	index, err := d.w.WriteTile(ref)
	if err != nil {
		return 0, err
	}
	d.indices[ref] = index
	return index, nil
}

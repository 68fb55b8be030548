// Package atlas builds deduplicated, mipmapped tile atlases from source images.
package atlas

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/eak1mov/go-tileset/layout"
	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/tile"
)

type config struct {
	logger   *slog.Logger
	progress func(tile.Index)
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithProgress sets a callback invoked after every imported tile.
func WithProgress(progress func(tile.Index)) Option {
	return func(c *config) { c.progress = progress }
}

func newConfig(opts []Option) config {
	cfg := config{
		logger:   slog.New(slog.DiscardHandler),
		progress: func(tile.Index) {},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// ResolvedSource is a source image together with its resolved layout.
type ResolvedSource struct {
	Image  *texture.Image
	Frames *layout.Source
}

// Result is the output of a finalized Builder.
type Result struct {
	TileSize image.Point
	Count    int
	Format   texture.Format
	Mips     int
	Data     []byte

	// Refs and Frames record where every output tile was copied from.
	Refs   []tile.SourceRef
	Frames []layout.Frame
}

// Array returns the atlas as a texture array sharing the result data.
func (r *Result) Array() texture.Array {
	return texture.Array{
		Size:   texture.ExtentOf(r.TileSize),
		Layers: r.Count,
		Format: r.Format,
		Mips:   r.Mips,
		Data:   r.Data,
	}
}

// Builder copies tiles into a flat atlas buffer, one tile at a time.
// Each tile is stored as its base level followed by every mip level.
type Builder struct {
	logger   *slog.Logger
	progress func(tile.Index)

	tileSize image.Point
	format   texture.Format
	levels   []*texture.Image
	data     []byte
	refs     []tile.SourceRef
	frames   []layout.Frame
}

// NewBuilder creates a Builder for tiles of the given size and format.
// The format must have a per-pixel size.
func NewBuilder(tileSize image.Point, format texture.Format, generateMips bool, opts ...Option) (*Builder, error) {
	cfg := newConfig(opts)
	if _, err := format.PixelSize(); err != nil {
		return nil, err
	}
	if tileSize.X <= 0 || tileSize.Y <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrEmptyTileSize, tileSize)
	}

	base := texture.ExtentOf(tileSize)
	mips := 1
	if generateMips {
		mips = base.MaxMips()
	}
	levels := make([]*texture.Image, mips)
	for m := range levels {
		level, err := texture.NewImage(base.MipLevelSize(m), format)
		if err != nil {
			return nil, err
		}
		levels[m] = level
	}

	cfg.logger.Debug("tileset: builder created", "tileSize", tileSize, "format", format, "mips", mips)
	return &Builder{
		logger:   cfg.logger,
		progress: cfg.progress,
		tileSize: tileSize,
		format:   format,
		levels:   levels,
	}, nil
}

// Format returns the pixel format of the atlas.
func (b *Builder) Format() texture.Format { return b.format }

// Mips returns the number of levels stored per tile, base level included.
func (b *Builder) Mips() int { return len(b.levels) }

// Count returns the number of tiles imported so far.
func (b *Builder) Count() int { return len(b.refs) }

// ImportTile copies the referenced tile into the atlas, generates its mip
// levels and returns the assigned index. The caller is responsible for not
// importing the same reference twice.
func (b *Builder) ImportTile(sources []ResolvedSource, ref tile.SourceRef) (tile.Index, error) {
	if b.levels == nil {
		panic("tileset: import after finalize")
	}
	if len(b.refs) >= tile.MaxCount {
		return 0, fmt.Errorf("%w: the atlas already holds %d tiles", ErrTooManyTiles, len(b.refs))
	}
	if ref.Source < 0 || ref.Source >= len(sources) {
		return 0, &SourceRangeError{SourceID: ref.Source, Count: len(sources)}
	}

	source := sources[ref.Source]
	frame, err := source.Frames.Frame(ref.Index)
	if err != nil {
		return 0, &SourceError{SourceID: ref.Source, Err: err}
	}

	base := b.levels[0]
	base.Clear()
	if err := copyTile(base, source.Image, frame); err != nil {
		return 0, &SourceError{SourceID: ref.Source, Err: err}
	}
	for m := 1; m < len(b.levels); m++ {
		if err := generateMip(b.levels[m-1], b.levels[m]); err != nil {
			return 0, fmt.Errorf("%w: level %d: %w", ErrGenerateMips, m, err)
		}
	}
	for _, level := range b.levels {
		b.data = append(b.data, level.Data...)
	}

	index := tile.Index(len(b.refs))
	b.refs = append(b.refs, ref)
	b.frames = append(b.frames, frame)
	b.progress(index)
	return index, nil
}

// Writer binds the builder to a list of sources.
func (b *Builder) Writer(sources []ResolvedSource) tile.Writer {
	return &sourceWriter{builder: b, sources: sources}
}

type sourceWriter struct {
	builder *Builder
	sources []ResolvedSource
}

func (w *sourceWriter) WriteTile(ref tile.SourceRef) (tile.Index, error) {
	return w.builder.ImportTile(w.sources, ref)
}

// Finalize returns the atlas. The builder must not be used afterwards.
func (b *Builder) Finalize() Result {
	if b.levels == nil {
		panic("tileset: finalize called twice")
	}
	mips := len(b.levels)
	b.levels = nil

	b.logger.Debug("tileset: builder finalized", "count", len(b.refs), "bytes", len(b.data))
	data := b.data
	if data == nil {
		data = []byte{}
	}
	return Result{
		TileSize: b.tileSize,
		Count:    len(b.refs),
		Format:   b.format,
		Mips:     mips,
		Data:     data,
		Refs:     b.refs,
		Frames:   b.frames,
	}
}

package desc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"path"
	"runtime"

	"github.com/eak1mov/go-tileset/atlas"
	"github.com/eak1mov/go-tileset/cache"
	"github.com/eak1mov/go-tileset/texture"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// SourceError tags a failure to load a source image.
type SourceError struct {
	SourceID int
	Path     string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("desc: failed to load source %d from %q: %v", e.SourceID, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Job is a loaded description, ready to be imported.
type Job struct {
	Description *Description
	Request     *atlas.Request
	// Key fingerprints the description and every source file.
	Key cache.Key
}

type config struct {
	logger *slog.Logger
	limit  int
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithConcurrency limits the number of source images decoded at once.
func WithConcurrency(limit int) Option {
	return func(c *config) { c.limit = limit }
}

// Load reads the description name from fsys and decodes its source images
// concurrently. Source paths are relative to the description.
func Load(ctx context.Context, fsys fs.FS, name string, opts ...Option) (*Job, error) {
	cfg := config{
		logger: slog.New(slog.DiscardHandler),
		limit:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	dir := path.Dir(name)
	images := make([]*texture.Image, len(d.Sources))
	contents := make([][]byte, len(d.Sources))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.limit)
	for id, source := range d.Sources {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sourcePath := path.Join(dir, source.Path)
			content, img, err := decodeSource(fsys, sourcePath, source.Srgb)
			if err != nil {
				return &SourceError{SourceID: id, Path: sourcePath, Err: err}
			}
			contents[id], images[id] = content, img
			cfg.logger.Debug("tileset: source decoded", "id", id, "path", sourcePath, "size", img.Size, "format", img.Format)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	req := &atlas.Request{
		TileSize:     d.TileSize,
		Format:       d.Format,
		GenerateMips: d.GenerateMips,
		Filter:       d.Filter,
		Groups:       d.Groups,
	}
	for id, source := range d.Sources {
		req.Sources = append(req.Sources, atlas.Source{Image: images[id], Layout: source.Layout})
	}

	return &Job{
		Description: d,
		Request:     req,
		Key:         cache.Fingerprint(append([][]byte{data}, contents...)...),
	}, nil
}

func decodeSource(fsys fs.FS, name string, srgb bool) ([]byte, *texture.Image, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, nil, err
	}
	format := texture.InferFormat(img)
	if format == texture.Rgba8UnormSrgb && !srgb {
		format = texture.Rgba8Unorm
	}
	converted, err := texture.FromImage(img, format)
	if err != nil {
		return nil, nil, err
	}
	return content, converted, nil
}

package tiledir

import (
	"bufio"
	"errors"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/tile"
	"github.com/eak1mov/go-tileset/ts"
)

type config struct {
	logger *slog.Logger
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Writer writes tile levels as PNG files.
type Writer struct {
	logger      *slog.Logger
	filePattern string
}

// NewWriter creates a new Writer for the given file pattern (e.g. "/home/user/tiles/{i}/{m}.png").
// Without a {m} placeholder only base levels are written.
func NewWriter(filePattern string, opts ...Option) (*Writer, error) {
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Writer{logger: cfg.logger, filePattern: filePattern}, nil
}

// WriteLevel encodes mip level m of tile i.
func (w *Writer) WriteLevel(i tile.Index, m int, level *texture.Image) (err error) {
	img, err := texture.ToImage(level)
	if err != nil {
		return err
	}

	filePath := formatPattern(w.filePattern, i, m)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	bw := bufio.NewWriter(file)
	if err := png.Encode(bw, img); err != nil {
		return err
	}
	return bw.Flush()
}

// Export writes every tile of the tileset, with all mip levels if the
// pattern has a {m} placeholder.
func (w *Writer) Export(t *ts.Tileset) error {
	levels := 1
	if hasLevels(w.filePattern) {
		levels = t.Mips()
	}
	for i := range t.Count() {
		for m := range levels {
			level, err := t.Level(tile.Index(i), m)
			if err != nil {
				return err
			}
			if err := w.WriteLevel(tile.Index(i), m, level); err != nil {
				return err
			}
		}
	}
	w.logger.Debug("tileset: tiles exported", "pattern", w.filePattern, "tiles", t.Count(), "levels", levels)
	return nil
}

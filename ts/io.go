package ts

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/eak1mov/go-tileset/ts/spec"
)

type config struct {
	logger      *slog.Logger
	compression spec.Compression
	level       int
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithCompression sets the deflate level used by Save. Level 0 stores the
// payload uncompressed.
func WithCompression(level int) Option {
	return func(c *config) {
		c.compression = spec.CompressionDeflate
		if level == 0 {
			c.compression = spec.CompressionNone
		}
		c.level = level
	}
}

// WithCompressionMethod selects any supported compression method and level.
func WithCompressionMethod(compression spec.Compression, level int) Option {
	return func(c *config) {
		c.compression = compression
		c.level = level
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		logger:      slog.New(slog.DiscardHandler),
		compression: spec.CompressionDeflate,
		level:       1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Load reads a tileset.
func Load(r io.Reader, opts ...Option) (*Tileset, error) {
	cfg := newConfig(opts)

	f, err := spec.ReadFile(r)
	if err != nil {
		return nil, err
	}
	t, err := FromFile(f)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("tileset: loaded", "tiles", t.Count(), "tileSize", t.TileSize(), "format", t.Format(), "mips", t.Mips())
	return t, nil
}

func LoadFile(filePath string, opts ...Option) (*Tileset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Load(bufio.NewReader(file), opts...)
}

// Save writes f, deflated at level 1 unless configured otherwise.
func Save(w io.Writer, f *spec.File, opts ...Option) error {
	cfg := newConfig(opts)
	if err := spec.WriteFileCompression(w, f, cfg.compression, cfg.level); err != nil {
		return err
	}
	cfg.logger.Debug("tileset: saved", "tiles", f.TileCount, "compression", cfg.compression, "level", cfg.level)
	return nil
}

// SaveFile writes f to filePath. A partially written file is removed.
func SaveFile(filePath string, f *spec.File, opts ...Option) (err error) {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(filePath)
		}
	}()

	bw := bufio.NewWriter(file)
	if err := Save(bw, f, opts...); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return errors.Join(file.Sync(), file.Close())
}

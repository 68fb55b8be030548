package spec

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the value of the first byte of a tileset file.
type Compression uint8

const (
	CompressionNone    Compression = 0
	CompressionDeflate Compression = 1
	CompressionZstd    Compression = 2
	CompressionLz4     Compression = 3
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionDeflate:
		return "deflate"
	case CompressionZstd:
		return "zstd"
	case CompressionLz4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "deflate":
		return CompressionDeflate, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLz4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCompression, name)
	}
}

func (c Compression) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Compression) UnmarshalText(text []byte) error {
	parsed, err := ParseCompression(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// checkLevel validates a compression level: 0–9 for deflate and lz4,
// 0 (default) or 1–22 for zstd. Level is ignored for uncompressed files.
func checkLevel(c Compression, level int) error {
	var maxLevel int
	switch c {
	case CompressionNone:
		return nil
	case CompressionDeflate, CompressionLz4:
		maxLevel = 9
	case CompressionZstd:
		maxLevel = 22
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedCompression, c)
	}
	if level < 0 || level > maxLevel {
		return fmt.Errorf("%w: %d for %v", ErrInvalidLevel, level, c)
	}
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func newCompressor(w io.Writer, c Compression, level int) (io.WriteCloser, error) {
	if err := checkLevel(c, level); err != nil {
		return nil, err
	}
	switch c {
	case CompressionDeflate:
		return flate.NewWriter(w, level)
	case CompressionZstd:
		if level == 0 {
			return zstd.NewWriter(w)
		}
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	case CompressionLz4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
			return nil, err
		}
		return zw, nil
	default:
		return nopWriteCloser{w}, nil
	}
}

func newDecompressor(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionDeflate:
		return flate.NewReader(r), nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
		}
		return zr.IOReadCloser(), nil
	case CompressionLz4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w: flag %d", ErrUnsupportedCompression, uint8(c))
	}
}

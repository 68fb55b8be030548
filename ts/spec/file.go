// Package spec implements the binary tileset file format.
//
// A file starts with a compression flag byte followed by the (possibly
// compressed) payload. The payload is a sequence of unsigned varints:
//
//	tile_width, tile_height, tile_count,
//	group_count, { name_length, name, tile_count, tiles... },
//	format_tag, mip_count, data_length, data
//
// The texture data is layer major: every tile stores its base level
// followed by each smaller mip level.
package spec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/tile"
)

const (
	maxNameLength = 1 << 16
	maxMips       = 32
)

// File is the decoded content of a tileset file.
type File struct {
	TileSize  texture.Extent
	TileCount int
	Groups    []tile.Entry
	Format    texture.Format
	Mips      int
	Data      []byte
}

// NewFile creates a file from an atlas texture array and its tile groups.
func NewFile(groups *tile.Groups, array texture.Array) (*File, error) {
	if array.Layers > tile.MaxCount {
		return nil, fmt.Errorf("%w: %d tiles, the maximum is %d", ErrTooManyTiles, array.Layers, tile.MaxCount)
	}
	if groups == nil {
		groups = &tile.Groups{}
	}
	data := array.Data
	if data == nil {
		data = []byte{}
	}
	f := &File{
		TileSize:  array.Size,
		TileCount: array.Layers,
		Groups:    groups.Entries(),
		Format:    array.Format,
		Mips:      array.Mips,
		Data:      data,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks that the file can be encoded and that the texture data
// length agrees with its description.
func (f *File) Validate() error {
	if f.TileCount < 0 || f.TileCount > tile.MaxCount {
		return fmt.Errorf("%w: %d tiles, the maximum is %d", ErrTooManyTiles, f.TileCount, tile.MaxCount)
	}
	if f.TileSize.Width < 0 || f.TileSize.Height < 0 ||
		f.TileSize.Width > math.MaxUint32 || f.TileSize.Height > math.MaxUint32 {
		return fmt.Errorf("%w: tile size %v", ErrInvalidData, f.TileSize)
	}
	if f.Mips < 0 || f.Mips > maxMips {
		return fmt.Errorf("%w: %d mip levels", ErrInvalidData, f.Mips)
	}
	if _, err := texture.FormatFromTag(uint64(f.Format)); err != nil {
		return err
	}
	for _, g := range f.Groups {
		if len(g.Name) > maxNameLength {
			return fmt.Errorf("%w: group name of %d bytes", ErrInvalidData, len(g.Name))
		}
	}
	return ValidateVolume(f.Format, f.TileSize, f.TileCount, f.Mips, len(f.Data))
}

// ValidateVolume checks that dataLen equals the size of layers tiles with
// mips levels each.
func ValidateVolume(format texture.Format, size texture.Extent, layers, mips, dataLen int) error {
	expected, err := texture.DataSize(format, size, layers, mips)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	if expected != dataLen {
		return &VolumeError{Expected: expected, Actual: dataLen}
	}
	return nil
}

// Array returns the texture array described by the file. The data is shared.
func (f *File) Array() texture.Array {
	return texture.Array{
		Size:   f.TileSize,
		Layers: f.TileCount,
		Format: f.Format,
		Mips:   f.Mips,
		Data:   f.Data,
	}
}

// TileGroups builds the group table of the file.
func (f *File) TileGroups() *tile.Groups {
	return tile.FromEntries(f.Groups)
}

// WriteFile encodes the file. Level 0 writes it uncompressed, levels 1–9
// deflate it at that level.
func WriteFile(w io.Writer, f *File, level int) error {
	if level < 0 || level > 9 {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	if level == 0 {
		return WriteFileCompression(w, f, CompressionNone, 0)
	}
	return WriteFileCompression(w, f, CompressionDeflate, level)
}

// WriteFileCompression encodes the file with the given compression method.
func WriteFileCompression(w io.Writer, f *File, compression Compression, level int) error {
	if err := f.Validate(); err != nil {
		return err
	}

	if _, err := w.Write([]byte{byte(compression)}); err != nil {
		return err
	}
	cw, err := newCompressor(w, compression, level)
	if err != nil {
		return err
	}
	if _, err := cw.Write(appendHeader(nil, f)); err != nil {
		cw.Close()
		return err
	}
	if _, err := cw.Write(f.Data); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

// appendHeader serializes every payload field up to and including the data
// length.
func appendHeader(buffer []byte, f *File) []byte {
	buffer = binary.AppendUvarint(buffer, uint64(f.TileSize.Width))
	buffer = binary.AppendUvarint(buffer, uint64(f.TileSize.Height))
	buffer = binary.AppendUvarint(buffer, uint64(f.TileCount))

	buffer = binary.AppendUvarint(buffer, uint64(len(f.Groups)))
	for _, g := range f.Groups {
		buffer = binary.AppendUvarint(buffer, uint64(len(g.Name)))
		buffer = append(buffer, g.Name...)
		buffer = binary.AppendUvarint(buffer, uint64(len(g.Tiles)))
		for _, t := range g.Tiles {
			buffer = binary.AppendUvarint(buffer, uint64(t))
		}
	}

	buffer = binary.AppendUvarint(buffer, uint64(f.Format))
	buffer = binary.AppendUvarint(buffer, uint64(f.Mips))
	buffer = binary.AppendUvarint(buffer, uint64(len(f.Data)))
	return buffer
}

// ReadFile decodes a file and validates its texture data volume.
func ReadFile(r io.Reader) (*File, error) {
	source := &sourceReader{r: r}

	var flag [1]byte
	if _, err := io.ReadFull(source, flag[:]); err != nil {
		return nil, classifyReadError(err)
	}

	dr, err := newDecompressor(source, Compression(flag[0]))
	if err != nil {
		return nil, err
	}
	defer dr.Close()

	f, err := decodePayload(&payloadReader{r: bufio.NewReader(dr)})
	if err != nil {
		return nil, classifyReadError(err)
	}
	return f, nil
}

// sourceReader tags errors of the underlying reader.
type sourceReader struct {
	r io.Reader
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		err = &readError{err}
	}
	return n, err
}

// classifyReadError maps a decoding failure to an I/O error, a truncation
// (ErrDecode wrapping io.ErrUnexpectedEOF) or a decompression error.
func classifyReadError(err error) error {
	var re *readError
	switch {
	case errors.As(err, &re):
		return fmt.Errorf("tileset: read: %w", re.err)
	case errors.Is(err, ErrDecode), errors.Is(err, ErrInvalidData), errors.Is(err, ErrTooManyTiles),
		errors.Is(err, texture.ErrUnknownFormat), errors.Is(err, texture.ErrUnsupportedFormat):
		return err
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %w", ErrDecode, io.ErrUnexpectedEOF)
	default:
		return fmt.Errorf("%w: %w", ErrDecompress, err)
	}
}

// payloadReader remembers the last error of the stream it reads, so that a
// malformed varint can be told apart from a failing stream.
type payloadReader struct {
	r   *bufio.Reader
	err error
}

func (p *payloadReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if err != nil {
		p.err = err
	}
	return n, err
}

func (p *payloadReader) ReadByte() (byte, error) {
	c, err := p.r.ReadByte()
	if err != nil {
		p.err = err
	}
	return c, err
}

func decodePayload(r *payloadReader) (*File, error) {
	var err error
	readUvarint := func(limit uint64, field string) uint64 {
		if err != nil {
			return 0
		}
		var value uint64
		value, err = binary.ReadUvarint(r)
		switch {
		case err != nil && r.err == nil:
			err = fmt.Errorf("%w: %s: %w", ErrDecode, field, err)
		case err == nil && value > limit:
			err = fmt.Errorf("%w: %s %d exceeds %d", ErrDecode, field, value, limit)
		}
		return value
	}

	f := &File{}
	f.TileSize.Width = int(readUvarint(math.MaxUint32, "tile width"))
	f.TileSize.Height = int(readUvarint(math.MaxUint32, "tile height"))
	tileCount := readUvarint(math.MaxUint64, "tile count")
	if err != nil {
		return nil, err
	}
	if tileCount > tile.MaxCount {
		return nil, fmt.Errorf("%w: %d tiles, the maximum is %d", ErrTooManyTiles, tileCount, tile.MaxCount)
	}
	f.TileCount = int(tileCount)

	groupCount := readUvarint(math.MaxUint64, "group count")
	f.Groups = make([]tile.Entry, 0, min(groupCount, 1024))
	for range groupCount {
		nameLength := readUvarint(maxNameLength, "group name length")
		if err != nil {
			return nil, err
		}
		name := make([]byte, nameLength)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, err
		}
		tileCount := readUvarint(math.MaxUint64, "group tile count")
		if err != nil {
			return nil, err
		}
		tiles := make([]tile.Index, 0, min(tileCount, 4096))
		for range tileCount {
			tiles = append(tiles, tile.Index(readUvarint(math.MaxUint16, "tile index")))
			if err != nil {
				return nil, err
			}
		}
		f.Groups = append(f.Groups, tile.Entry{Name: string(name), Tiles: tiles})
	}

	formatTag := readUvarint(math.MaxUint64, "format")
	f.Mips = int(readUvarint(maxMips, "mip count"))
	dataLength := readUvarint(math.MaxUint64, "data length")
	if err != nil {
		return nil, err
	}
	if f.Format, err = texture.FormatFromTag(formatTag); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	// Check the declared length before allocating anything for it.
	expected, err := texture.DataSize(f.Format, f.TileSize, f.TileCount, f.Mips)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	if dataLength != uint64(expected) {
		actual := int(min(dataLength, math.MaxInt))
		return nil, &VolumeError{Expected: expected, Actual: actual}
	}

	// The declared length is only trusted as an upper bound: the data grows
	// as it arrives, so a truncated file never allocates its claimed volume.
	f.Data, err = io.ReadAll(io.LimitReader(r, int64(expected)))
	if err != nil {
		return nil, err
	}
	if len(f.Data) != expected {
		return nil, io.ErrUnexpectedEOF
	}
	return f, nil
}

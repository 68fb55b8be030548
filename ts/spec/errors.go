package spec

import (
	"errors"
	"fmt"
)

var (
	ErrDecode                 = errors.New("tileset: failed to decode file")
	ErrDecompress             = errors.New("tileset: failed to decompress file")
	ErrUnsupportedCompression = errors.New("tileset: unsupported compression")
	ErrInvalidLevel           = errors.New("tileset: invalid compression level")
	ErrInvalidData            = errors.New("tileset: texture data, format and size are not in agreement")
	ErrTooManyTiles           = errors.New("tileset: too many tiles")
)

// VolumeError reports texture data whose length doesn't match the length
// implied by the tile size, tile count, format and mip count.
type VolumeError struct {
	Expected int
	Actual   int
}

func (e *VolumeError) Error() string {
	return fmt.Sprintf("%v: expected %d bytes, got %d", ErrInvalidData, e.Expected, e.Actual)
}

func (e *VolumeError) Unwrap() error {
	return ErrInvalidData
}

// readError marks failures of the underlying reader, so they can be told
// apart from decompression and decoding failures.
type readError struct {
	err error
}

func (e *readError) Error() string { return e.err.Error() }
func (e *readError) Unwrap() error { return e.err }

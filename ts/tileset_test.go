package ts_test

import (
	"bytes"
	"image"
	"maps"
	"path/filepath"
	"testing"

	"github.com/eak1mov/go-tileset/atlas"
	"github.com/eak1mov/go-tileset/internal"
	"github.com/eak1mov/go-tileset/layout"
	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/tile"
	"github.com/eak1mov/go-tileset/ts"
	"github.com/eak1mov/go-tileset/ts/spec"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func buildFile(t *testing.T) *spec.File {
	t.Helper()
	src := internal.Coords(t, 16, 8)
	a, err := atlas.Import(&atlas.Request{
		GenerateMips: true,
		Sources:      []atlas.Source{{Image: src, Layout: layout.Grid{TileSize: image.Pt(8, 8)}}},
		Groups: []atlas.Group{
			{Name: "walk", Tiles: []tile.SourceRef{{Source: 0, Index: 1}, {Source: 0, Index: 0}}},
		},
	})
	require.NoError(t, err)
	f, err := a.File()
	require.NoError(t, err)
	return f
}

func TestSaveLoad(t *testing.T) {
	f := buildFile(t)
	testCases := []struct {
		Name    string
		Options []ts.Option
		Flag    spec.Compression
	}{
		{Name: "Default", Flag: spec.CompressionDeflate},
		{Name: "Raw", Options: []ts.Option{ts.WithCompression(0)}, Flag: spec.CompressionNone},
		{Name: "Deflate9", Options: []ts.Option{ts.WithCompression(9)}, Flag: spec.CompressionDeflate},
		{Name: "Zstd", Options: []ts.Option{ts.WithCompressionMethod(spec.CompressionZstd, 3)}, Flag: spec.CompressionZstd},
		{Name: "Lz4", Options: []ts.Option{ts.WithCompressionMethod(spec.CompressionLz4, 0)}, Flag: spec.CompressionLz4},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			var buffer bytes.Buffer
			require.NoError(t, ts.Save(&buffer, f, tc.Options...))
			require.Equal(t, byte(tc.Flag), buffer.Bytes()[0])

			tileset, err := ts.Load(&buffer)
			require.NoError(t, err)
			require.Equal(t, 2, tileset.Count())
			require.Equal(t, texture.Extent{Width: 8, Height: 8}, tileset.TileSize())
			require.Equal(t, 4, tileset.Mips())
			require.Equal(t, []tile.Index{1, 0}, tileset.Group("walk"))
			require.Equal(t, []tile.Index{}, tileset.Group("run"))

			got, err := tileset.File()
			require.NoError(t, err)
			if diff := cmp.Diff(f, got); diff != "" {
				t.Errorf("File mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaveLoadFile(t *testing.T) {
	f := buildFile(t)
	filePath := filepath.Join(t.TempDir(), "tiles.ts")
	require.NoError(t, ts.SaveFile(filePath, f))

	tileset, err := ts.LoadFile(filePath)
	require.NoError(t, err)

	tiles := maps.Collect(tile.IterTiles(tileset))
	require.Len(t, tiles, 2)
	layerBytes, err := tileset.Texture.LayerBytes()
	require.NoError(t, err)
	for i, data := range tiles {
		want, err := tileset.Tile(i)
		require.NoError(t, err)
		require.Equal(t, want, data)
		require.Len(t, data, layerBytes)
	}

	level, err := tileset.Level(1, 0)
	require.NoError(t, err)
	if got, want := internal.Pixel(level, 0, 0), [4]byte{8, 0, 0, 255}; got != want {
		t.Errorf("tile 1 pixel (0, 0) = %v, want %v", got, want)
	}

	_, err = tileset.Tile(2)
	require.ErrorIs(t, err, texture.ErrAccess)
}

func TestSaveFileInvalid(t *testing.T) {
	f := buildFile(t)
	f.Data = f.Data[:len(f.Data)-1]
	filePath := filepath.Join(t.TempDir(), "tiles.ts")
	err := ts.SaveFile(filePath, f)
	require.ErrorIs(t, err, spec.ErrInvalidData)
	require.NoFileExists(t, filePath)
}

func TestFromFileRejectsDanglingGroup(t *testing.T) {
	f := buildFile(t)
	f.Groups = append(f.Groups, tile.Entry{Name: "broken", Tiles: []tile.Index{7}})
	_, err := ts.FromFile(f)
	require.ErrorIs(t, err, spec.ErrInvalidData)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := ts.LoadFile(filepath.Join(t.TempDir(), "missing.ts"))
	require.Error(t, err)
}

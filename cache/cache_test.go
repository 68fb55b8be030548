package cache_test

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/eak1mov/go-tileset/atlas"
	"github.com/eak1mov/go-tileset/cache"
	"github.com/eak1mov/go-tileset/internal"
	"github.com/eak1mov/go-tileset/layout"
	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/ts"
	"github.com/eak1mov/go-tileset/ts/spec"
	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	a := cache.Fingerprint([]byte("ab"), []byte("c"))
	b := cache.Fingerprint([]byte("a"), []byte("bc"))
	require.NotEqual(t, a, b)
	require.Equal(t, a, cache.Fingerprint([]byte("ab"), []byte("c")))
	require.Len(t, a.String(), 64)
}

func TestPutGet(t *testing.T) {
	a, err := atlas.Import(&atlas.Request{
		GenerateMips: true,
		Sources: []atlas.Source{
			{Image: internal.Coords(t, 16, 8), Layout: layout.Grid{TileSize: image.Pt(8, 8)}},
		},
	})
	require.NoError(t, err)
	f, err := a.File()
	require.NoError(t, err)

	filePath := filepath.Join(t.TempDir(), "cache.sqlite")
	c, err := cache.Open(filePath, cache.WithSaveOptions(ts.WithCompressionMethod(spec.CompressionZstd, 0)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	key := cache.Fingerprint([]byte("desc"), []byte("source"))
	_, _, ok, err := c.Get(key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Put(key, f))
	require.NoError(t, c.Put(key, f))
	n, err := c.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	tileset, meta, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, tileset.Count())
	require.Equal(t, cache.Meta{
		TileWidth:   8,
		TileHeight:  8,
		Count:       2,
		Format:      texture.Rgba8Unorm,
		Mips:        4,
		Compression: spec.CompressionZstd,
		Size:        meta.Size,
	}, meta)
	require.Positive(t, meta.Size)

	got, err := tileset.File()
	require.NoError(t, err)
	if diff := cmp.Diff(f, got); diff != "" {
		t.Errorf("cached file mismatch (-want +got):\n%s", diff)
	}
}

func TestReopen(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "cache.sqlite")
	f, err := spec.NewFile(nil, texture.Array{
		Size:   texture.Extent{Width: 4, Height: 4},
		Format: texture.R8Unorm,
		Mips:   1,
	})
	require.NoError(t, err)
	key := cache.Fingerprint([]byte("empty"))

	c, err := cache.Open(filePath)
	require.NoError(t, err)
	require.NoError(t, c.Put(key, f))
	require.NoError(t, c.Close())

	c, err = cache.Open(filePath)
	require.NoError(t, err)
	defer c.Close()
	tileset, _, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, tileset.Count())
}

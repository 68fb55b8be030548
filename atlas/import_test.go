package atlas_test

import (
	"bytes"
	"image"
	"testing"

	"github.com/eak1mov/go-tileset/atlas"
	"github.com/eak1mov/go-tileset/internal"
	"github.com/eak1mov/go-tileset/layout"
	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/tile"
	"github.com/eak1mov/go-tileset/ts/spec"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func ref(source int, index tile.Index) tile.SourceRef {
	return tile.SourceRef{Source: source, Index: index}
}

// tileLevel extracts mip level m of tile i from a finalized atlas.
func tileLevel(t *testing.T, a *atlas.Atlas, i, m int) *texture.Image {
	t.Helper()
	array := a.Array()
	level, err := array.Level(i, m)
	require.NoError(t, err)
	return level
}

func TestImportSingle(t *testing.T) {
	src := internal.Coords(t, 64, 64)
	a, err := atlas.Import(&atlas.Request{
		Sources: []atlas.Source{{Image: src, Layout: layout.Single{}}},
	})
	require.NoError(t, err)

	require.Equal(t, 1, a.Count)
	require.Equal(t, 1, a.Mips)
	require.Equal(t, image.Pt(64, 64), a.TileSize)
	require.Equal(t, texture.Rgba8Unorm, a.Format)
	require.Len(t, a.Data, 64*64*4)
	require.Equal(t, src.Data, a.Data)
	require.Equal(t, 0, a.Groups.Len())
	require.Equal(t, []tile.SourceRef{ref(0, 0)}, a.Refs)
}

func TestImportGridHalves(t *testing.T) {
	src := internal.Coords(t, 128, 64)
	a, err := atlas.Import(&atlas.Request{
		Sources: []atlas.Source{{Image: src, Layout: layout.Grid{TileSize: image.Pt(64, 64)}}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, a.Count)

	left, right := tileLevel(t, a, 0, 0), tileLevel(t, a, 1, 0)
	for _, p := range []image.Point{{0, 0}, {63, 0}, {17, 42}, {63, 63}} {
		if got, want := internal.Pixel(left, p.X, p.Y), internal.Pixel(src, p.X, p.Y); got != want {
			t.Errorf("left tile pixel %v = %v, want %v", p, got, want)
		}
		if got, want := internal.Pixel(right, p.X, p.Y), internal.Pixel(src, p.X+64, p.Y); got != want {
			t.Errorf("right tile pixel %v = %v, want %v", p, got, want)
		}
	}
	want := []layout.Frame{
		{Rect: image.Rect(0, 0, 64, 64)},
		{Rect: image.Rect(64, 0, 128, 64)},
	}
	if diff := cmp.Diff(want, a.Frames); diff != "" {
		t.Errorf("Frames mismatch (-want +got):\n%s", diff)
	}
}

func TestImportDedup(t *testing.T) {
	src := internal.Coords(t, 8, 4)
	grid := layout.Grid{TileSize: image.Pt(4, 4)}

	a, err := atlas.Import(&atlas.Request{
		Sources: []atlas.Source{{Image: src, Layout: grid}},
		Groups: []atlas.Group{
			{Name: "g", Tiles: []tile.SourceRef{ref(0, 1), ref(0, 0), ref(0, 1)}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, a.Count)
	require.Equal(t, []tile.Index{1, 0, 1}, a.Groups.Group("g"))

	a, err = atlas.Import(&atlas.Request{
		Filter:  atlas.TileList(ref(0, 1), ref(0, 1)),
		Sources: []atlas.Source{{Image: src, Layout: grid}},
		Groups: []atlas.Group{
			{Name: "g", Tiles: []tile.SourceRef{ref(0, 1)}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, a.Count)
	require.Equal(t, []tile.Index{0}, a.Groups.Group("g"))
	require.Equal(t, []tile.SourceRef{ref(0, 1)}, a.Refs)
}

func TestImportFilterNone(t *testing.T) {
	src := internal.Coords(t, 12, 4)
	a, err := atlas.Import(&atlas.Request{
		Filter:  atlas.NoTiles(),
		Sources: []atlas.Source{{Image: src, Layout: layout.Grid{TileSize: image.Pt(4, 4)}}},
		Groups: []atlas.Group{
			{Name: "b", Tiles: []tile.SourceRef{ref(0, 2)}},
			{Name: "a", Tiles: []tile.SourceRef{ref(0, 0), ref(0, 2)}},
		},
	})
	require.NoError(t, err)

	require.Equal(t, 2, a.Count)
	require.Equal(t, []tile.SourceRef{ref(0, 2), ref(0, 0)}, a.Refs)
	require.Equal(t, []string{"b", "a"}, a.Groups.Names())
	require.Equal(t, []tile.Index{1, 0}, a.Groups.Group("a"))
}

func TestImportRepeatedGroup(t *testing.T) {
	src := internal.Coords(t, 16, 4)
	a, err := atlas.Import(&atlas.Request{
		Sources: []atlas.Source{{Image: src, Layout: layout.Grid{TileSize: image.Pt(4, 4)}}},
		Groups: []atlas.Group{
			{Name: "a", Tiles: []tile.SourceRef{ref(0, 0), ref(0, 1)}},
			{Name: "b", Tiles: []tile.SourceRef{ref(0, 2)}},
			{Name: "a", Tiles: []tile.SourceRef{ref(0, 3)}},
		},
	})
	require.NoError(t, err)

	want := []tile.Entry{
		{Name: "a", Tiles: []tile.Index{0, 1, 3}},
		{Name: "b", Tiles: []tile.Index{2}},
	}
	if diff := cmp.Diff(want, a.Groups.Entries()); diff != "" {
		t.Errorf("Groups mismatch (-want +got):\n%s", diff)
	}
}

func TestImportFrames(t *testing.T) {
	src := internal.Coords(t, 4, 4)
	a, err := atlas.Import(&atlas.Request{
		Sources: []atlas.Source{{Image: src, Layout: layout.Frames{
			TileSize: image.Pt(4, 4),
			Frames: []layout.Frame{
				{Rect: image.Rect(0, 0, 4, 4)},
				{Rect: image.Rect(1, 1, 3, 3), Anchor: image.Pt(2, 2)},
			},
		}}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, a.Count)

	small := tileLevel(t, a, 1, 0)
	for y := range 4 {
		for x := range 4 {
			want := [4]byte{}
			if x >= 2 && y >= 2 {
				want = internal.Pixel(src, x-1, y-1)
			}
			if got := internal.Pixel(small, x, y); got != want {
				t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestImportMipsBox(t *testing.T) {
	src := internal.RGBA(t, 2, 2, func(x, y int) [4]byte {
		return [4]byte{byte(40 + 40*(y*2+x)), 0, 200, 255}
	})
	a, err := atlas.Import(&atlas.Request{
		GenerateMips: true,
		Sources:      []atlas.Source{{Image: src, Layout: layout.Single{}}},
	})
	require.NoError(t, err)

	require.Equal(t, 2, a.Mips)
	require.Len(t, a.Data, 2*2*4+1*1*4)
	require.Equal(t, src.Data, tileLevel(t, a, 0, 0).Data)
	require.Equal(t, []byte{100, 0, 200, 255}, tileLevel(t, a, 0, 1).Data)
}

func TestImportMipsAlphaDiscard(t *testing.T) {
	testCases := []struct {
		Name string
		Size image.Point
	}{
		{Name: "Box", Size: image.Pt(2, 2)},
		{Name: "Bilinear", Size: image.Pt(3, 3)},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			src := internal.RGBA(t, tc.Size.X, tc.Size.Y, func(x, y int) [4]byte {
				if x == 1 && y == 1 {
					return [4]byte{255, 255, 255, 0}
				}
				return [4]byte{255, 0, 0, 255}
			})
			a, err := atlas.Import(&atlas.Request{
				GenerateMips: true,
				Sources:      []atlas.Source{{Image: src, Layout: layout.Single{}}},
			})
			require.NoError(t, err)
			require.Equal(t, 2, a.Mips)
			require.Equal(t, []byte{0, 0, 0, 0}, tileLevel(t, a, 0, 1).Data)
		})
	}
}

func TestImportMipsBilinear(t *testing.T) {
	src := internal.RGBA(t, 3, 3, func(x, y int) [4]byte {
		return [4]byte{byte(10 * (x + 1)), byte(10 * (y + 1)), 0, 255}
	})
	a, err := atlas.Import(&atlas.Request{
		GenerateMips: true,
		Sources:      []atlas.Source{{Image: src, Layout: layout.Single{}}},
	})
	require.NoError(t, err)
	// The only destination pixel samples at (0, 0) with zero weight on its
	// neighbours.
	require.Equal(t, []byte{10, 10, 0, 255}, tileLevel(t, a, 0, 1).Data)
}

func TestImportNonSquareMips(t *testing.T) {
	src := internal.Coords(t, 8, 2)
	a, err := atlas.Import(&atlas.Request{
		GenerateMips: true,
		Sources:      []atlas.Source{{Image: src, Layout: layout.Single{}}},
	})
	require.NoError(t, err)
	require.Equal(t, 4, a.Mips)
	require.Len(t, a.Data, (8*2+4*1+2*1+1*1)*4)
}

func TestImportFormats(t *testing.T) {
	rgba := internal.Solid(t, 2, 2, [4]byte{1, 2, 3, 4})
	gray := &texture.Image{
		Size:   texture.Extent{Width: 2, Height: 2},
		Format: texture.R8Unorm,
		Data:   []byte{9, 9, 9, 9},
	}

	a, err := atlas.Import(&atlas.Request{
		Sources: []atlas.Source{
			{Image: rgba, Layout: layout.Single{}},
			{Image: gray, Layout: layout.Single{}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, texture.Rgba8Unorm, a.Format)
	require.Equal(t, []byte{9, 0, 0, 255}, tileLevel(t, a, 1, 0).Data[:4])

	a, err = atlas.Import(&atlas.Request{
		Format:  texture.R8Unorm,
		Sources: []atlas.Source{{Image: rgba, Layout: layout.Single{}}},
	})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 1, 1, 1}, a.Data)

	a, err = atlas.Import(&atlas.Request{TileSize: image.Pt(4, 4)})
	require.NoError(t, err)
	require.Equal(t, texture.Rgba8Unorm, a.Format)
	require.Equal(t, 0, a.Count)
	require.Equal(t, []byte{}, a.Data)
}

func TestImportErrors(t *testing.T) {
	src := internal.Coords(t, 8, 4)
	grid := layout.Grid{TileSize: image.Pt(4, 4)}
	bc1 := &texture.Image{Size: texture.Extent{Width: 4, Height: 4}, Format: texture.Bc1RgbaUnorm}

	t.Run("SourceOutOfRange", func(t *testing.T) {
		_, err := atlas.Import(&atlas.Request{
			Sources: []atlas.Source{{Image: src, Layout: grid}},
			Groups:  []atlas.Group{{Name: "g", Tiles: []tile.SourceRef{ref(0, 0), ref(3, 0)}}},
		})
		require.ErrorIs(t, err, atlas.ErrSourceOutOfRange)
		var tileErr *atlas.TileError
		require.ErrorAs(t, err, &tileErr)
		require.Equal(t, "g", tileErr.Group)
		require.Equal(t, 1, tileErr.Position)
		require.Equal(t, ref(3, 0), tileErr.Ref)
	})
	t.Run("TileOutOfRange", func(t *testing.T) {
		_, err := atlas.Import(&atlas.Request{
			Filter:  atlas.TileList(ref(0, 2)),
			Sources: []atlas.Source{{Image: src, Layout: grid}},
		})
		require.ErrorIs(t, err, layout.ErrOutOfRange)
		var tileErr *atlas.TileError
		require.ErrorAs(t, err, &tileErr)
		require.Equal(t, "", tileErr.Group)
		var sourceErr *atlas.SourceError
		require.ErrorAs(t, err, &sourceErr)
		require.Equal(t, 0, sourceErr.SourceID)
	})
	t.Run("MissingImage", func(t *testing.T) {
		_, err := atlas.Import(&atlas.Request{
			Format:  texture.Rgba8Unorm,
			Sources: []atlas.Source{{Image: src, Layout: grid}, {Layout: grid}},
		})
		require.ErrorIs(t, err, atlas.ErrMissingImage)
		var sourceErr *atlas.SourceError
		require.ErrorAs(t, err, &sourceErr)
		require.Equal(t, 1, sourceErr.SourceID)
	})
	t.Run("InvalidLayout", func(t *testing.T) {
		_, err := atlas.Import(&atlas.Request{
			Sources: []atlas.Source{{Image: src, Layout: layout.Grid{TileSize: image.Pt(3, 3)}}},
		})
		require.ErrorIs(t, err, layout.ErrInvalidGrid)
	})
	t.Run("TileSizeMismatch", func(t *testing.T) {
		_, err := atlas.Import(&atlas.Request{
			Sources: []atlas.Source{
				{Image: src, Layout: grid},
				{Image: src, Layout: layout.Single{}},
			},
		})
		require.ErrorIs(t, err, atlas.ErrTileSize)
		var sourceErr *atlas.SourceError
		require.ErrorAs(t, err, &sourceErr)
		require.Equal(t, 1, sourceErr.SourceID)
	})
	t.Run("UnsizedAtlasFormat", func(t *testing.T) {
		_, err := atlas.Import(&atlas.Request{
			Format:  texture.Bc7RgbaUnorm,
			Sources: []atlas.Source{{Image: src, Layout: grid}},
		})
		require.ErrorIs(t, err, texture.ErrUnsupportedFormat)
	})
	t.Run("UnconvertibleSource", func(t *testing.T) {
		_, err := atlas.Import(&atlas.Request{
			Format:  texture.Rgba8Unorm,
			Sources: []atlas.Source{{Image: src, Layout: grid}, {Image: bc1, Layout: layout.Single{}}},
		})
		require.ErrorIs(t, err, atlas.ErrSourceFormat)
	})
	t.Run("EmptyTileSize", func(t *testing.T) {
		_, err := atlas.Import(&atlas.Request{})
		require.ErrorIs(t, err, atlas.ErrEmptyTileSize)
	})
}

func TestImportCapacity(t *testing.T) {
	strip := internal.Solid(t, tile.MaxCount, 1, [4]byte{1, 2, 3, 255})
	full := atlas.Source{Image: strip, Layout: layout.Grid{TileSize: image.Pt(1, 1)}}

	a, err := atlas.Import(&atlas.Request{Sources: []atlas.Source{full}})
	require.NoError(t, err)
	require.Equal(t, tile.MaxCount, a.Count)

	extra := atlas.Source{Image: internal.Solid(t, 1, 1, [4]byte{}), Layout: layout.Single{}}
	_, err = atlas.Import(&atlas.Request{Sources: []atlas.Source{full, extra}})
	require.ErrorIs(t, err, atlas.ErrTooManyTiles)
	var tileErr *atlas.TileError
	require.ErrorAs(t, err, &tileErr)
	require.Equal(t, ref(1, 0), tileErr.Ref)
	require.Equal(t, tile.MaxCount, tileErr.Position)
}

func TestImportProgress(t *testing.T) {
	src := internal.Coords(t, 8, 4)
	var imported []tile.Index
	_, err := atlas.Import(&atlas.Request{
		Sources: []atlas.Source{{Image: src, Layout: layout.Grid{TileSize: image.Pt(4, 4)}}},
	}, atlas.WithProgress(func(i tile.Index) { imported = append(imported, i) }))
	require.NoError(t, err)
	require.Equal(t, []tile.Index{0, 1}, imported)
}

func TestAtlasFile(t *testing.T) {
	src := internal.Coords(t, 8, 4)
	a, err := atlas.Import(&atlas.Request{
		GenerateMips: true,
		Sources:      []atlas.Source{{Image: src, Layout: layout.Grid{TileSize: image.Pt(4, 4)}}},
		Groups:       []atlas.Group{{Name: "pair", Tiles: []tile.SourceRef{ref(0, 1), ref(0, 0)}}},
	})
	require.NoError(t, err)

	f, err := a.File()
	require.NoError(t, err)

	var buffer bytes.Buffer
	require.NoError(t, spec.WriteFile(&buffer, f, 1))
	got, err := spec.ReadFile(&buffer)
	require.NoError(t, err)
	if diff := cmp.Diff(f, got); diff != "" {
		t.Errorf("ReadFile mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []tile.Index{1, 0}, got.TileGroups().Group("pair"))
}

package desc_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/eak1mov/go-tileset/atlas"
	"github.com/eak1mov/go-tileset/desc"
	"github.com/eak1mov/go-tileset/layout"
	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/tile"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestParse(t *testing.T) {
	data := []byte(`{
		// tiles are detected from the first source
		"format": "rgba8unorm",
		"generate_mips": true,
		"sources": [
			{"path": "terrain.png", "layout": {"grid": {"tile_size": [16, 16], "padding": [1, 2], "margins": [1, 2, 3, 4]}}},
			{"path": "hero.png", "layout": "single", "srgb": false},
			{"path": "parts.png", "layout": {"frames": {"tile_size": [16, 16], "frames": [{"rect": [0, 0, 8, 8], "anchor": [4, 4]}]}}},
		],
		"filter": [[0, 1], [2, 0]],
		"groups": {"water": [[0, 3]], "hero": [[1, 0]], "grass": [[0, 0], [0, 1]]},
	}`)
	got, err := desc.Parse(data)
	require.NoError(t, err)

	want := &desc.Description{
		Format:       texture.Rgba8Unorm,
		GenerateMips: true,
		Sources: []desc.SourceDesc{
			{Path: "terrain.png", Srgb: true, Layout: layout.Grid{
				TileSize: image.Pt(16, 16),
				Padding:  image.Pt(1, 2),
				Margins:  layout.Margins{Left: 1, Top: 2, Right: 3, Bottom: 4},
			}},
			{Path: "hero.png", Srgb: false, Layout: layout.Single{}},
			{Path: "parts.png", Srgb: true, Layout: layout.Frames{
				TileSize: image.Pt(16, 16),
				Frames:   []layout.Frame{{Rect: image.Rect(0, 0, 8, 8), Anchor: image.Pt(4, 4)}},
			}},
		},
		Filter: atlas.TileList(tile.SourceRef{Source: 0, Index: 1}, tile.SourceRef{Source: 2, Index: 0}),
		Groups: []atlas.Group{
			{Name: "water", Tiles: []tile.SourceRef{{Source: 0, Index: 3}}},
			{Name: "hero", Tiles: []tile.SourceRef{{Source: 1, Index: 0}}},
			{Name: "grass", Tiles: []tile.SourceRef{{Source: 0, Index: 0}, {Source: 0, Index: 1}}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSingleImage(t *testing.T) {
	got, err := desc.Parse([]byte(`{
		"image": "sheet.png",
		"layout": {"grid": {"tile_size": [8, 8]}},
		"tile_size": [8, 8],
		"filter": "none",
		"groups": {"b": [2, 2], "a": [0]},
	}`))
	require.NoError(t, err)

	want := &desc.Description{
		TileSize: image.Pt(8, 8),
		Sources:  []desc.SourceDesc{{Path: "sheet.png", Srgb: true, Layout: layout.Grid{TileSize: image.Pt(8, 8)}}},
		Filter:   atlas.NoTiles(),
		Groups: []atlas.Group{
			{Name: "b", Tiles: []tile.SourceRef{{Index: 2}, {Index: 2}}},
			{Name: "a", Tiles: []tile.SourceRef{{Index: 0}}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDefaults(t *testing.T) {
	got, err := desc.Parse([]byte(`{"sources": [{"path": "a.png"}]}`))
	require.NoError(t, err)
	require.Equal(t, atlas.AllTiles(), got.Filter)
	require.Equal(t, texture.Auto, got.Format)
	require.Equal(t, layout.Layout(layout.Single{}), got.Sources[0].Layout)
	require.Empty(t, got.Groups)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		Name string
		Data string
		Err  error
	}{
		{Name: "NoSources", Data: `{"sources": []}`, Err: desc.ErrNoSources},
		{Name: "Empty", Data: `{}`, Err: desc.ErrNoSources},
		{Name: "Syntax", Data: `{"sources": [}`, Err: desc.ErrInvalidDescription},
		{Name: "UnknownField", Data: `{"sources": [{"path": "a.png"}], "colour": 1}`, Err: desc.ErrInvalidDescription},
		{Name: "UnknownFormat", Data: `{"sources": [{"path": "a.png"}], "format": "rgb565"}`, Err: desc.ErrInvalidDescription},
		{Name: "UnknownLayout", Data: `{"sources": [{"path": "a.png", "layout": "spiral"}]}`, Err: desc.ErrInvalidDescription},
		{Name: "TwoLayouts", Data: `{"sources": [{"path": "a.png", "layout": {"grid": {}, "frames": {}}}]}`, Err: desc.ErrInvalidDescription},
		{Name: "MissingPath", Data: `{"sources": [{}]}`, Err: desc.ErrInvalidDescription},
		{Name: "ImageAndSources", Data: `{"image": "a.png", "sources": [{"path": "b.png"}]}`, Err: desc.ErrInvalidDescription},
		{Name: "TopLevelLayout", Data: `{"sources": [{"path": "a.png"}], "layout": "single"}`, Err: desc.ErrInvalidDescription},
		{Name: "UnknownFilter", Data: `{"sources": [{"path": "a.png"}], "filter": "some"}`, Err: desc.ErrInvalidDescription},
		{Name: "BadRef", Data: `{"sources": [{"path": "a.png"}], "groups": {"g": [[0, 70000]]}}`, Err: desc.ErrInvalidDescription},
		{Name: "BareRefWithSources", Data: `{"sources": [{"path": "a.png"}], "groups": {"g": [0]}}`, Err: desc.ErrInvalidDescription},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := desc.Parse([]byte(tc.Data))
			require.ErrorIs(t, err, tc.Err)
		})
	}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, img))
	return buffer.Bytes()
}

func encodeBMP(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buffer bytes.Buffer
	require.NoError(t, bmp.Encode(&buffer, img))
	return buffer.Bytes()
}

func TestLoad(t *testing.T) {
	sheet := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for x := range 8 {
		for y := range 4 {
			sheet.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 60), B: 9, A: 255})
		}
	}
	single := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range single.Pix {
		single.Pix[i] = 200
	}

	fsys := fstest.MapFS{
		"assets/tiles.jsonc": {Data: []byte(`{
			"sources": [
				{"path": "sheet.png", "layout": {"grid": {"tile_size": [4, 4]}}},
				{"path": "img/single.bmp"},
			],
			"groups": {"all": [[1, 0], [0, 1], [0, 0]]},
		}`)},
		"assets/sheet.png":      {Data: encodePNG(t, sheet)},
		"assets/img/single.bmp": {Data: encodeBMP(t, single)},
	}

	job, err := desc.Load(context.Background(), fsys, "assets/tiles.jsonc", desc.WithConcurrency(1))
	require.NoError(t, err)
	require.Len(t, job.Request.Sources, 2)
	require.Equal(t, texture.Rgba8UnormSrgb, job.Request.Sources[0].Image.Format)
	require.Equal(t, texture.Extent{Width: 4, Height: 4}, job.Request.Sources[1].Image.Size)

	a, err := atlas.Import(job.Request)
	require.NoError(t, err)
	require.Equal(t, 3, a.Count)
	require.Equal(t, []tile.Index{2, 1, 0}, a.Groups.Group("all"))

	again, err := desc.Load(context.Background(), fsys, "assets/tiles.jsonc")
	require.NoError(t, err)
	require.Equal(t, job.Key, again.Key)

	fsys["assets/sheet.png"] = &fstest.MapFile{Data: encodePNG(t, single)}
	changed, err := desc.Load(context.Background(), fsys, "assets/tiles.jsonc")
	require.NoError(t, err)
	require.NotEqual(t, job.Key, changed.Key)
}

func TestLoadLinear(t *testing.T) {
	fsys := fstest.MapFS{
		"tiles.jsonc": {Data: []byte(`{"image": "a.png", "srgb": false}`)},
		"a.png":       {Data: encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 2, 2)))},
	}
	job, err := desc.Load(context.Background(), fsys, "tiles.jsonc")
	require.NoError(t, err)
	require.Equal(t, texture.Rgba8Unorm, job.Request.Sources[0].Image.Format)
}

func TestLoadMissingSource(t *testing.T) {
	fsys := fstest.MapFS{
		"tiles.jsonc": {Data: []byte(`{"sources": [{"path": "a.png"}, {"path": "missing.png"}]}`)},
		"a.png":       {Data: encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 2, 2)))},
	}
	_, err := desc.Load(context.Background(), fsys, "tiles.jsonc")
	var sourceErr *desc.SourceError
	require.ErrorAs(t, err, &sourceErr)
	require.Equal(t, 1, sourceErr.SourceID)
	require.Equal(t, "missing.png", sourceErr.Path)
}

func TestLoadUndecodable(t *testing.T) {
	fsys := fstest.MapFS{
		"tiles.jsonc": {Data: []byte(`{"image": "a.png"}`)},
		"a.png":       {Data: []byte("not an image")},
	}
	_, err := desc.Load(context.Background(), fsys, "tiles.jsonc")
	require.ErrorIs(t, err, image.ErrFormat)
}

package desc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"

	"github.com/eak1mov/go-tileset/layout"
)

// point is an [x, y] array.
type point [2]int

func (p point) Point() image.Point { return image.Pt(p[0], p[1]) }

// rect is a [min_x, min_y, max_x, max_y] array.
type rect [4]int

func (r rect) Rect() image.Rectangle {
	return image.Rectangle{Min: image.Pt(r[0], r[1]), Max: image.Pt(r[2], r[3])}
}

type gridDoc struct {
	TileSize point `json:"tile_size"`
	Padding  point `json:"padding"`
	// Margins are [left, top, right, bottom].
	Margins [4]int `json:"margins"`
}

type frameDoc struct {
	Rect   rect  `json:"rect"`
	Anchor point `json:"anchor"`
}

type framesDoc struct {
	TileSize point      `json:"tile_size"`
	Frames   []frameDoc `json:"frames"`
}

// layoutDoc is either the string "single" or an object with exactly one of
// the keys "grid" and "frames". A missing layout means "single".
type layoutDoc struct {
	set    bool
	grid   *gridDoc
	frames *framesDoc
}

func (l *layoutDoc) UnmarshalJSON(data []byte) error {
	l.set = true
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name != "single" {
			return fmt.Errorf("unknown layout %q", name)
		}
		return nil
	}

	var doc struct {
		Grid   *gridDoc   `json:"grid"`
		Frames *framesDoc `json:"frames"`
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return err
	}
	if (doc.Grid == nil) == (doc.Frames == nil) {
		return fmt.Errorf("layout must have exactly one of grid and frames")
	}
	l.grid, l.frames = doc.Grid, doc.Frames
	return nil
}

func (l layoutDoc) layout() layout.Layout {
	switch {
	case l.grid != nil:
		m := l.grid.Margins
		return layout.Grid{
			TileSize: l.grid.TileSize.Point(),
			Padding:  l.grid.Padding.Point(),
			Margins:  layout.Margins{Left: m[0], Top: m[1], Right: m[2], Bottom: m[3]},
		}
	case l.frames != nil:
		frames := make([]layout.Frame, len(l.frames.Frames))
		for i, f := range l.frames.Frames {
			frames[i] = layout.Frame{Rect: f.Rect.Rect(), Anchor: f.Anchor.Point()}
		}
		return layout.Frames{TileSize: l.frames.TileSize.Point(), Frames: frames}
	default:
		return layout.Single{}
	}
}

type groupDoc struct {
	name  string
	tiles json.RawMessage
}

// orderedGroups decodes a JSON object keeping the order of its keys.
type orderedGroups []groupDoc

func (g *orderedGroups) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if token == nil {
		return nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("groups must be an object")
	}
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		name := token.(string)
		var tiles json.RawMessage
		if err := decoder.Decode(&tiles); err != nil {
			return fmt.Errorf("group %q: %w", name, err)
		}
		*g = append(*g, groupDoc{name: name, tiles: tiles})
	}
	_, err = decoder.Token()
	return err
}

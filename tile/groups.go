package tile

import (
	"fmt"
	"strings"
)

// Range is a half-open range [Start, End) over the flat tile sequence of Groups.
type Range struct {
	Start int
	End   int
}

// Len returns the number of tiles in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Groups maps group names to contiguous ranges over a single flat sequence of
// tile indices. A tile may belong to any number of groups.
//
// The zero value is an empty table ready to use.
type Groups struct {
	ranges map[string]Range
	names  []string // insertion order
	tiles  []Index
}

// Entry is a single group with its tiles, as stored in a tileset file.
type Entry struct {
	Name  string
	Tiles []Index
}

// FromEntries builds a group table from file entries.
// Entries with a repeated name are appended to the existing group.
func FromEntries(entries []Entry) *Groups {
	g := &Groups{}
	for _, e := range entries {
		g.Insert(e.Name, e.Tiles)
	}
	return g
}

// Entries returns the groups in insertion order. The tile slices are copies.
func (g *Groups) Entries() []Entry {
	entries := make([]Entry, 0, len(g.names))
	for _, name := range g.names {
		r := g.ranges[name]
		tiles := make([]Index, r.Len())
		copy(tiles, g.tiles[r.Start:r.End])
		entries = append(entries, Entry{Name: name, Tiles: tiles})
	}
	return entries
}

// InsertIfNew creates the group name with the given tiles.
// It returns false and leaves the table unchanged if the group already exists.
func (g *Groups) InsertIfNew(name string, tiles []Index) bool {
	if _, exists := g.ranges[name]; exists {
		return false
	}
	g.insertNew(name, tiles)
	return true
}

// Insert appends tiles to the group name, creating it if it doesn't exist.
func (g *Groups) Insert(name string, tiles []Index) {
	r, exists := g.ranges[name]
	if !exists {
		g.insertNew(name, tiles)
		return
	}

	oldLen := len(g.tiles)
	addLen := len(tiles)

	// Make room after the group by moving everything behind it further down.
	// Empty groups sitting at the old tail move too, even when the group is
	// the last one in the flat sequence.
	oldTail := r.End
	newTail := oldTail + addLen

	g.tiles = append(g.tiles, make([]Index, addLen)...)
	copy(g.tiles[newTail:], g.tiles[oldTail:oldLen])
	copy(g.tiles[oldTail:newTail], tiles)

	for other, or := range g.ranges {
		if other != name && or.Start >= oldTail {
			g.ranges[other] = Range{Start: or.Start + addLen, End: or.End + addLen}
		}
	}
	g.ranges[name] = Range{Start: r.Start, End: newTail}
}

func (g *Groups) insertNew(name string, tiles []Index) {
	if g.ranges == nil {
		g.ranges = make(map[string]Range)
	}
	start := len(g.tiles)
	g.tiles = append(g.tiles, tiles...)
	g.ranges[name] = Range{Start: start, End: len(g.tiles)}
	g.names = append(g.names, name)
}

// Group returns the tiles of the group name, or an empty slice if it doesn't exist.
func (g *Groups) Group(name string) []Index {
	tiles, _ := g.Lookup(name)
	return tiles
}

// Lookup returns the tiles of the group name and whether the group exists.
// The returned slice aliases the table and must not be modified.
func (g *Groups) Lookup(name string) ([]Index, bool) {
	r, ok := g.ranges[name]
	if !ok {
		return []Index{}, false
	}
	return g.tiles[r.Start:r.End:r.End], true
}

// Range returns the position of the group name in the flat tile sequence.
func (g *Groups) Range(name string) (Range, bool) {
	r, ok := g.ranges[name]
	return r, ok
}

// Names returns the group names in insertion order.
func (g *Groups) Names() []string {
	return append([]string(nil), g.names...)
}

// Len returns the number of groups.
func (g *Groups) Len() int {
	return len(g.names)
}

func (g *Groups) String() string {
	var b strings.Builder
	b.WriteString("Groups{")
	for i, name := range g.names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: %v", name, g.Group(name))
	}
	b.WriteString("}")
	return b.String()
}

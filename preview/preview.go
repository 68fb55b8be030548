// Package preview renders contact sheets of tilesets.
package preview

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"math"
	"math/bits"

	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/tile"
	"github.com/eak1mov/go-tileset/ts"
	"github.com/google/hilbert"
	"golang.org/x/image/draw"
)

var (
	ErrEmptyTileset = errors.New("preview: tileset has no tiles")
	ErrInvalidScale = errors.New("preview: scale must be positive")
)

// Order decides where each tile is placed on the sheet.
type Order int

const (
	// RowMajor fills the sheet row by row.
	RowMajor Order = iota
	// Hilbert places consecutive tiles along a Hilbert curve, so that tiles
	// imported together stay close on the sheet.
	Hilbert
)

func (o Order) String() string {
	switch o {
	case RowMajor:
		return "rows"
	case Hilbert:
		return "hilbert"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

type config struct {
	logger  *slog.Logger
	order   Order
	columns int
	scale   int
	mip     int
	smooth  bool
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func WithOrder(order Order) Option {
	return func(c *config) { c.order = order }
}

// WithColumns sets the number of columns of a RowMajor sheet. By default the
// sheet is as close to square as possible.
func WithColumns(columns int) Option {
	return func(c *config) { c.columns = columns }
}

// WithScale magnifies every tile by an integer factor.
func WithScale(scale int) Option {
	return func(c *config) { c.scale = scale }
}

// WithMip renders mip level m of each tile instead of the base level.
func WithMip(m int) Option {
	return func(c *config) { c.mip = m }
}

// WithSmooth scales with bilinear filtering instead of nearest neighbor.
func WithSmooth(smooth bool) Option {
	return func(c *config) { c.smooth = smooth }
}

// Cells returns the sheet cell of each of count tiles.
func Cells(count int, order Order, columns int) ([]image.Point, error) {
	cells := make([]image.Point, count)
	switch order {
	case RowMajor:
		if columns <= 0 {
			columns = max(1, int(math.Ceil(math.Sqrt(float64(count)))))
		}
		for i := range cells {
			cells[i] = image.Pt(i%columns, i/columns)
		}
	case Hilbert:
		side := 1
		if count > 1 {
			side = 1 << ((bits.Len(uint(count-1)) + 1) / 2)
		}
		h, err := hilbert.NewHilbert(side)
		if err != nil {
			return nil, err
		}
		for i := range cells {
			x, y, err := h.Map(i)
			if err != nil {
				return nil, err
			}
			cells[i] = image.Pt(x, y)
		}
	default:
		return nil, fmt.Errorf("preview: unknown order %v", order)
	}
	return cells, nil
}

// Sheet draws every tile of t onto a single image.
func Sheet(t *ts.Tileset, opts ...Option) (*image.NRGBA, error) {
	cfg := config{
		logger: slog.New(slog.DiscardHandler),
		scale:  1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.scale <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScale, cfg.scale)
	}
	if t.Count() == 0 {
		return nil, ErrEmptyTileset
	}
	if cfg.mip < 0 || cfg.mip >= t.Mips() {
		return nil, fmt.Errorf("%w: mip %d of %d", texture.ErrAccess, cfg.mip, t.Mips())
	}

	cells, err := Cells(t.Count(), cfg.order, cfg.columns)
	if err != nil {
		return nil, err
	}
	var grid image.Point
	for _, c := range cells {
		grid.X = max(grid.X, c.X+1)
		grid.Y = max(grid.Y, c.Y+1)
	}

	cell := t.TileSize().MipLevelSize(cfg.mip).Point().Mul(cfg.scale)
	sheet := image.NewNRGBA(image.Rectangle{Max: image.Pt(grid.X*cell.X, grid.Y*cell.Y)})
	cfg.logger.Debug("tileset: rendering preview", "tiles", t.Count(), "order", cfg.order, "grid", grid, "cell", cell)

	var scaler draw.Scaler = draw.NearestNeighbor
	if cfg.smooth {
		scaler = draw.BiLinear
	}
	for i, c := range cells {
		level, err := t.Level(tile.Index(i), cfg.mip)
		if err != nil {
			return nil, err
		}
		img, err := texture.ToImage(level)
		if err != nil {
			return nil, err
		}
		origin := image.Pt(c.X*cell.X, c.Y*cell.Y)
		scaler.Scale(sheet, image.Rectangle{Min: origin, Max: origin.Add(cell)}, img, img.Bounds(), draw.Src, nil)
	}
	return sheet, nil
}

// WritePNG renders the sheet of t and encodes it as PNG.
func WritePNG(w io.Writer, t *ts.Tileset, opts ...Option) error {
	sheet, err := Sheet(t, opts...)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := png.Encode(bw, sheet); err != nil {
		return err
	}
	return bw.Flush()
}

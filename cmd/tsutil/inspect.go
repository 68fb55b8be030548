package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/eak1mov/go-tileset/stats"
	"github.com/eak1mov/go-tileset/tile"
	"github.com/eak1mov/go-tileset/ts"
	"github.com/eak1mov/go-tileset/ts/spec"
	"github.com/google/subcommands"
	"github.com/zeebo/blake3"
)

type inspectCmd struct {
	inputPath string
	palette   int
	tiles     bool
}

func (c *inspectCmd) Name() string     { return "inspect" }
func (c *inspectCmd) Synopsis() string { return "print the header, groups and statistics of a tileset" }
func (c *inspectCmd) Usage() string {
	return "tsutil inspect -i <path> [-palette <k> -tiles]\n"
}
func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input tileset path")
	f.IntVar(&c.palette, "palette", 0, "Print a palette of this many colors")
	f.BoolVar(&c.tiles, "tiles", false, "Print the statistics of every tile")
}

func (c *inspectCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	a := appOf(args)
	if c.inputPath == "" {
		a.logger.Error("input path is required")
		return subcommands.ExitUsageError
	}
	if err := c.inspect(os.Stdout, a); err != nil {
		a.logger.Error("inspect failed", "path", c.inputPath, "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *inspectCmd) inspect(out io.Writer, a *app) error {
	data, err := os.ReadFile(c.inputPath)
	if err != nil {
		return err
	}
	tileset, err := ts.Load(bytes.NewReader(data), ts.WithLogger(a.logger))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "file\t%s\n", c.inputPath)
	fmt.Fprintf(w, "blake3\t%x\n", blake3.Sum256(data))
	if len(data) > 0 {
		fmt.Fprintf(w, "compression\t%v\n", spec.Compression(data[0]))
	}
	fmt.Fprintf(w, "tile size\t%v\n", tileset.TileSize())
	fmt.Fprintf(w, "tiles\t%d\n", tileset.Count())
	fmt.Fprintf(w, "format\t%v\n", tileset.Format())
	fmt.Fprintf(w, "mips\t%d\n", tileset.Mips())

	tileStats, err := stats.Tiles(tileset)
	if err != nil {
		return err
	}
	summary := stats.Summarize(tileStats)
	fmt.Fprintf(w, "empty tiles\t%d\n", summary.EmptyTiles)
	fmt.Fprintf(w, "coverage\t%.3f ± %.3f\n", summary.MeanCoverage, summary.StdDevCoverage)
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "group\ttiles\tcolor")
	for name, tiles := range tile.IterGroups(tileset.Groups) {
		dominant := "-"
		if rgba, err := stats.GroupColor(tileset, name); err == nil {
			dominant = fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
		}
		fmt.Fprintf(w, "%q\t%d\t%s\n", name, len(tiles), dominant)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if c.tiles {
		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "tile\tcoverage\tluminance")
		for _, s := range tileStats {
			fmt.Fprintf(w, "%d\t%.3f\t%.3f ± %.3f\n", s.Index, s.Coverage, s.MeanLuminance, s.StdDevLuminance)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if c.palette > 0 {
		palette, err := stats.Palette(tileset, c.palette)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "color\tpixels")
		for _, p := range palette {
			fmt.Fprintf(w, "%s\t%d\n", p.Color.Hex(), p.Pixels)
		}
		return w.Flush()
	}
	return nil
}

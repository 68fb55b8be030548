package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/eak1mov/go-tileset/preview"
	"github.com/eak1mov/go-tileset/ts"
	"github.com/google/subcommands"
)

type previewCmd struct {
	inputPath  string
	outputPath string
	scale      int
	columns    int
	mip        int
	hilbert    bool
	smooth     bool
}

func (c *previewCmd) Name() string     { return "preview" }
func (c *previewCmd) Synopsis() string { return "render a contact sheet of a tileset" }
func (c *previewCmd) Usage() string {
	return "tsutil preview -i <path> -o <path> [-scale <n> -columns <n> -mip <m> -hilbert -smooth]\n"
}
func (c *previewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input tileset path")
	f.StringVar(&c.outputPath, "o", "", "Output PNG path")
	f.IntVar(&c.scale, "scale", 1, "Magnification factor")
	f.IntVar(&c.columns, "columns", 0, "Number of columns (default: square sheet)")
	f.IntVar(&c.mip, "mip", 0, "Mip level to render")
	f.BoolVar(&c.hilbert, "hilbert", false, "Place tiles along a Hilbert curve")
	f.BoolVar(&c.smooth, "smooth", false, "Scale with bilinear filtering")
}

func (c *previewCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	a := appOf(args)
	if c.inputPath == "" || c.outputPath == "" {
		a.logger.Error("input and output paths are required")
		return subcommands.ExitUsageError
	}
	if err := c.render(a); err != nil {
		a.logger.Error("preview failed", "path", c.inputPath, "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *previewCmd) render(a *app) (err error) {
	tileset, err := ts.LoadFile(c.inputPath, ts.WithLogger(a.logger))
	if err != nil {
		return err
	}
	order := preview.RowMajor
	if c.hilbert {
		order = preview.Hilbert
	}

	file, err := os.Create(c.outputPath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()
	return preview.WritePNG(file, tileset,
		preview.WithLogger(a.logger),
		preview.WithOrder(order),
		preview.WithColumns(c.columns),
		preview.WithScale(c.scale),
		preview.WithMip(c.mip),
		preview.WithSmooth(c.smooth),
	)
}

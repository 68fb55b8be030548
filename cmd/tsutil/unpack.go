package main

import (
	"context"
	"flag"

	"github.com/eak1mov/go-tileset/tiledir"
	"github.com/eak1mov/go-tileset/ts"
	"github.com/google/subcommands"
)

type unpackCmd struct {
	inputPath     string
	outputPattern string
}

func (c *unpackCmd) Name() string     { return "unpack" }
func (c *unpackCmd) Synopsis() string { return "write every tile of a tileset as a PNG file" }
func (c *unpackCmd) Usage() string {
	return "tsutil unpack -i <path> -o <pattern>\n"
}
func (c *unpackCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input tileset path")
	f.StringVar(&c.outputPattern, "o", "", "Output file pattern with {i} and optional {m} placeholders (e.g. tiles/{i}_{m}.png)")
}

func (c *unpackCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	a := appOf(args)
	if c.inputPath == "" || c.outputPattern == "" {
		a.logger.Error("input path and output pattern are required")
		return subcommands.ExitUsageError
	}

	tileset, err := ts.LoadFile(c.inputPath, ts.WithLogger(a.logger))
	if err != nil {
		a.logger.Error("loading tileset failed", "path", c.inputPath, "error", err)
		return subcommands.ExitFailure
	}
	writer, err := tiledir.NewWriter(c.outputPattern, tiledir.WithLogger(a.logger))
	if err != nil {
		a.logger.Error("invalid output pattern", "error", err)
		return subcommands.ExitUsageError
	}
	if err := writer.Export(tileset); err != nil {
		a.logger.Error("unpack failed", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

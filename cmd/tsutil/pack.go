package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/eak1mov/go-tileset/atlas"
	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/tiledir"
	"github.com/eak1mov/go-tileset/ts"
	"github.com/google/subcommands"
)

type packCmd struct {
	inputPattern string
	outputPath   string
	format       string
	generateMips bool
}

func (c *packCmd) Name() string     { return "pack" }
func (c *packCmd) Synopsis() string { return "build a tileset from a directory of tile images" }
func (c *packCmd) Usage() string {
	return "tsutil pack -i <pattern> -o <path> [-f <format> -mips]\n"
}
func (c *packCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPattern, "i", "", "Input file pattern with an {i} placeholder (e.g. tiles/{i}.png)")
	f.StringVar(&c.outputPath, "o", "", "Output tileset path")
	f.StringVar(&c.format, "f", texture.Rgba8UnormSrgb.String(), "Tileset texture format")
	f.BoolVar(&c.generateMips, "mips", false, "Generate mip levels")
}

func (c *packCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	a := appOf(args)
	if c.inputPattern == "" || c.outputPath == "" {
		a.logger.Error("input pattern and output path are required")
		return subcommands.ExitUsageError
	}
	if err := c.pack(a); err != nil {
		a.logger.Error("pack failed", "pattern", c.inputPattern, "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *packCmd) pack(a *app) error {
	format, err := texture.ParseFormat(c.format)
	if err != nil {
		return err
	}
	saveOptions, err := a.settings.saveOptions()
	if err != nil {
		return err
	}

	reader, err := tiledir.NewReader(c.inputPattern)
	if err != nil {
		return err
	}
	sources, err := reader.Sources(format)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no tiles match %q", c.inputPattern)
	}

	result, err := importAtlas(&atlas.Request{
		Format:       format,
		GenerateMips: c.generateMips,
		Sources:      sources,
	}, a.logger)
	if err != nil {
		return err
	}
	f, err := result.File()
	if err != nil {
		return err
	}
	return ts.SaveFile(c.outputPath, f, append(saveOptions, ts.WithLogger(a.logger))...)
}

package main

import (
	"context"
	"flag"

	"github.com/eak1mov/go-tileset/cache"
	"github.com/eak1mov/go-tileset/ts"
	"github.com/google/subcommands"
)

type buildCmd struct {
	descPath    string
	outputPath  string
	indexPath   string
	cachePath   string
	noCache     bool
	compression string
	level       int
}

func (c *buildCmd) Name() string     { return "build" }
func (c *buildCmd) Synopsis() string { return "build a tileset from a description" }
func (c *buildCmd) Usage() string {
	return "tsutil build -d <path> -o <path> [-index <path> -cache <path> -c <method> -l <level>]\n"
}
func (c *buildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.descPath, "d", "", "Description file path")
	f.StringVar(&c.outputPath, "o", "", "Output tileset path")
	f.StringVar(&c.indexPath, "index", "", "Also write the tile index to this path")
	f.StringVar(&c.cachePath, "cache", "", "Tileset cache database path")
	f.BoolVar(&c.noCache, "no-cache", false, "Do not use the tileset cache")
	f.StringVar(&c.compression, "c", "", "Compression method (none, deflate, zstd, lz4)")
	f.IntVar(&c.level, "l", -1, "Compression level")
}

func (c *buildCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	a := appOf(args)
	if c.descPath == "" || c.outputPath == "" {
		a.logger.Error("description and output paths are required")
		return subcommands.ExitUsageError
	}
	if err := c.build(ctx, a); err != nil {
		a.logger.Error("build failed", "description", c.descPath, "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *buildCmd) build(ctx context.Context, a *app) error {
	s := *a.settings
	if c.compression != "" {
		s.Compression = c.compression
	}
	if c.level >= 0 {
		s.Level = c.level
	}
	saveOptions, err := s.saveOptions()
	if err != nil {
		return err
	}
	saveOptions = append(saveOptions, ts.WithLogger(a.logger))

	job, err := loadDescription(ctx, a, c.descPath)
	if err != nil {
		return err
	}

	// The index needs the provenance of every tile, which is not cached.
	cachePath := c.cachePath
	if cachePath == "" {
		cachePath = s.Cache
	}
	var tilesetCache *cache.Cache
	if cachePath != "" && !c.noCache {
		tilesetCache, err = cache.Open(cachePath, cache.WithLogger(a.logger), cache.WithSaveOptions(saveOptions...))
		if err != nil {
			return err
		}
		defer tilesetCache.Close()

		if c.indexPath == "" {
			cached, _, found, err := tilesetCache.Get(job.Key)
			if err != nil {
				return err
			}
			if found {
				a.logger.Info("tileset is up to date", "key", job.Key, "tiles", cached.Count())
				f, err := cached.File()
				if err != nil {
					return err
				}
				return ts.SaveFile(c.outputPath, f, saveOptions...)
			}
		}
	}

	result, err := importAtlas(job.Request, a.logger)
	if err != nil {
		return err
	}
	f, err := result.File()
	if err != nil {
		return err
	}
	if err := ts.SaveFile(c.outputPath, f, saveOptions...); err != nil {
		return err
	}
	a.logger.Info("tileset built", "output", c.outputPath, "tiles", f.TileCount, "groups", len(f.Groups), "mips", f.Mips)

	if c.indexPath != "" {
		if err := writeIndex(c.indexPath, &result.Result); err != nil {
			return err
		}
	}
	if tilesetCache != nil {
		return tilesetCache.Put(job.Key, f)
	}
	return nil
}


package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/eak1mov/go-tileset/atlas"
	"github.com/eak1mov/go-tileset/desc"
	"github.com/eak1mov/go-tileset/index"
	"github.com/eak1mov/go-tileset/tile"
	"github.com/schollz/progressbar/v3"
)

func loadDescription(ctx context.Context, a *app, descPath string) (*desc.Job, error) {
	opts := []desc.Option{desc.WithLogger(a.logger)}
	if a.settings.Concurrency > 0 {
		opts = append(opts, desc.WithConcurrency(a.settings.Concurrency))
	}
	return desc.Load(ctx, os.DirFS(filepath.Dir(descPath)), filepath.Base(descPath), opts...)
}

func importAtlas(req *atlas.Request, logger *slog.Logger) (*atlas.Atlas, error) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("importing tiles"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
	)
	result, err := atlas.Import(req,
		atlas.WithLogger(logger),
		atlas.WithProgress(func(tile.Index) { bar.Add(1) }),
	)
	bar.Finish()
	fmt.Fprintln(os.Stderr)
	return result, err
}

func writeIndex(filePath string, result *atlas.Result) (err error) {
	items, err := index.Build(result.Refs, result.Frames)
	if err != nil {
		return err
	}
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	bw := bufio.NewWriter(file)
	if err := index.WriteAll(items, bw); err != nil {
		return err
	}
	return bw.Flush()
}

package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"
)

type exportIndexCmd struct {
	descPath   string
	outputPath string
}

func (c *exportIndexCmd) Name() string     { return "export_index" }
func (c *exportIndexCmd) Synopsis() string { return "export the source of every tile of a description" }
func (c *exportIndexCmd) Usage() string {
	return "tsutil export_index -d <path> -o <path>\n"
}
func (c *exportIndexCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.descPath, "d", "", "Description file path")
	f.StringVar(&c.outputPath, "o", "", "Output index file path")
}

func (c *exportIndexCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	a := appOf(args)
	if c.descPath == "" || c.outputPath == "" {
		a.logger.Error("description and output paths are required")
		return subcommands.ExitUsageError
	}

	job, err := loadDescription(ctx, a, c.descPath)
	if err != nil {
		a.logger.Error("loading description failed", "error", err)
		return subcommands.ExitFailure
	}
	result, err := importAtlas(job.Request, a.logger)
	if err != nil {
		a.logger.Error("import failed", "error", err)
		return subcommands.ExitFailure
	}
	if err := writeIndex(c.outputPath, &result.Result); err != nil {
		a.logger.Error("writing index failed", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

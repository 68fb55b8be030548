package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/subcommands"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&buildCmd{}, "")
	subcommands.Register(&packCmd{}, "")
	subcommands.Register(&unpackCmd{}, "")
	subcommands.Register(&inspectCmd{}, "")
	subcommands.Register(&previewCmd{}, "")
	subcommands.Register(&exportIndexCmd{}, "")

	configPath := flag.String("config", "", "YAML settings file")
	verbose := flag.Bool("v", false, "Log debug messages to stderr")
	logPath := flag.String("log", "", "Append JSON debug logs to this file")
	flag.Parse()

	s, err := loadSettings(*configPath)
	if err != nil {
		slog.Error("loading settings failed", "path", *configPath, "error", err)
		os.Exit(int(subcommands.ExitFailure))
	}
	if *logPath != "" {
		s.Log.Path = *logPath
	}
	logger, closeLog := newLogger(s.Log, *verbose)

	status := subcommands.Execute(context.Background(), &app{settings: s, logger: logger})
	closeLog()
	os.Exit(int(status))
}

// app is passed to every subcommand.
type app struct {
	settings *settings
	logger   *slog.Logger
}

func appOf(args []any) *app {
	return args[0].(*app)
}

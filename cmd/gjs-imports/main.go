package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/kxue43/gjs-imports/command"
	"github.com/kxue43/gjs-imports/version"
)

func main() {
	var cli struct {
		command.Globals `embed:""`

		Version kong.VersionFlag   `name:"version" help:"Show version information and quit."`
		Rewrite command.RewriteCmd `cmd:"" default:"withargs" help:"Rewrite namespace imports in DIR once."`
		Watch   command.WatchCmd   `cmd:"" help:"Rewrite DIR, then keep rewriting files as they are written."`
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	kctx := kong.Parse(
		&cli,
		kong.Name("gjs-imports"),
		kong.Description("Rewrite ES module namespace imports in compiled GNOME Shell extension sources into Self.imports lookups."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version.String()},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "gjs-imports"})
	if cli.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	err := kctx.Run(&cli.Globals, logger)
	kctx.FatalIfErrorf(err)
}

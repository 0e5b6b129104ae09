// Package command holds the kong commands of the gjs-imports binary.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/browser"

	"github.com/kxue43/gjs-imports/config"
	"github.com/kxue43/gjs-imports/process"
	"github.com/kxue43/gjs-imports/report"
	"github.com/kxue43/gjs-imports/watch"
)

type (
	Globals struct {
		workDir   string
		Ext       string `name:"ext" placeholder:".js" help:"Only rewrite files with this extension. Default: .js."`
		Namespace string `name:"namespace" placeholder:"Self.imports" help:"Object the rewritten statements look modules up in. Default: Self.imports."`
		Config    string `name:"config" type:"path" help:"TOML config file. Default: ./gjs-imports.toml if present."`
		TSConfig  string `name:"tsconfig" type:"path" help:"tsconfig.json whose compilerOptions.outDir is the default directory. Default: ./tsconfig.json if present."`
		Strict    bool   `name:"strict" help:"Warn about lines that start like a namespace import but were left unchanged."`
		KeepGoing bool   `name:"keep-going" help:"Continue with the remaining files when one cannot be processed."`
		Debug     bool   `name:"debug" help:"Log debug messages, including how every candidate line was tokenized."`
	}

	RewriteCmd struct {
		reportOut    io.Writer
		diffOut      io.Writer
		Dir          string        `arg:"" optional:"" name:"DIR" help:"Build output directory. Default: tsconfig outDir, else ./build."`
		DryRun       bool          `name:"dry-run" help:"Print a diff of every change instead of writing files."`
		ReportFormat report.Format `name:"report-format" default:"text" help:"One of text, yaml, html."`
		ReportFile   string        `name:"report-file" type:"path" help:"Write the report to this file instead of stderr."`
		Open         bool          `name:"open" help:"Open the HTML report in the default browser."`
	}

	WatchCmd struct {
		Dir      string `arg:"" optional:"" name:"DIR" help:"Build output directory. Default: tsconfig outDir, else ./build."`
		Debounce int    `name:"debounce-ms" default:"200" help:"Wait this many milliseconds after the last write to a file before rewriting it."`
	}
)

var (
	ErrInvalidInput = errors.New("invalid CLI input")

	openInBrowser = browser.OpenFile
	openReader    = browser.OpenReader
)

// Resolve merges the config sources with the flags and validates the result.
// Default files are looked up in the working directory.
func (g *Globals) Resolve(dir string) (cfg config.Config, err error) {
	if g.workDir == "" {
		if g.workDir, err = os.Getwd(); err != nil {
			return cfg, fmt.Errorf("failed to get current working directory: %w", err)
		}
	}

	cfg, err = config.Load(config.Sources{WorkDir: g.workDir, File: g.Config, TSConfig: g.TSConfig})
	if err != nil {
		return cfg, err
	}

	cfg = cfg.Override(config.Config{
		Dir:       dir,
		Ext:       g.Ext,
		Namespace: g.Namespace,
		Strict:    g.Strict,
		KeepGoing: g.KeepGoing,
	})

	return cfg, cfg.Validate()
}

func (g *Globals) processor(cfg config.Config, dryRun bool, diffOut io.Writer, logger *log.Logger) *process.Processor {
	return process.New(process.Options{
		DiffOut:   diffOut,
		Namespace: cfg.Namespace,
		Strict:    cfg.Strict,
		DryRun:    dryRun,
		KeepGoing: cfg.KeepGoing,
		Debug:     g.Debug,
	}, logger)
}

// Non-nil returned error wraps [ErrInvalidInput].
func (c *RewriteCmd) Validate() error {
	if c.Open && c.ReportFormat != report.HTML {
		return fmt.Errorf("%w: --open requires --report-format=html", ErrInvalidInput)
	}

	return nil
}

func (c *RewriteCmd) Run(ctx context.Context, g *Globals, logger *log.Logger) (err error) {
	cfg, err := g.Resolve(c.Dir)
	if err != nil {
		return err
	}

	if c.diffOut == nil {
		c.diffOut = os.Stdout
	}

	summary, err := g.processor(cfg, c.DryRun, c.diffOut, logger).Dir(ctx, cfg.Dir, cfg.Ext)
	if len(summary.Files) == 0 && err != nil {
		return err
	}

	return errors.Join(err, c.writeReport(summary))
}

func (c *RewriteCmd) writeReport(summary *report.Summary) (err error) {
	if c.ReportFile != "" {
		err = writeToFile(c.ReportFile, func(w io.Writer) error {
			return report.Write(w, summary, c.ReportFormat)
		})
		if err != nil {
			return err
		}

		if c.Open {
			return openInBrowser(c.ReportFile)
		}

		return nil
	}

	if c.Open {
		var buf bytes.Buffer

		if err = report.Write(&buf, summary, c.ReportFormat); err != nil {
			return err
		}

		if err = openReader(&buf); err != nil {
			return fmt.Errorf("failed to open report in default browser: %w", err)
		}

		return nil
	}

	if c.reportOut == nil {
		c.reportOut = os.Stderr
	}

	return report.Write(c.reportOut, summary, c.ReportFormat)
}

// Run rewrites the directory once, then every matching file the build
// writes afterwards, until ctx is done.
func (c *WatchCmd) Run(ctx context.Context, g *Globals, logger *log.Logger) (err error) {
	cfg, err := g.Resolve(c.Dir)
	if err != nil {
		return err
	}

	p := g.processor(cfg, false, nil, logger)

	summary, err := p.Dir(ctx, cfg.Dir, cfg.Ext)

	switch {
	case errors.Is(err, process.ErrFailures):
		logger.Warn("initial pass incomplete", "err", err)
	case err != nil:
		return err
	}

	t := summary.Totals()
	logger.Info("initial pass done", "files", t.Files, "rewritten", t.Rewritten)

	w, err := watch.New(cfg.Dir, cfg.Ext, logger, func(path string) {
		if res := p.File(path); res.Failed() {
			logger.Error("failed to rewrite", "file", path, "err", res.Err)
		}
	})
	if err != nil {
		return err
	}

	w.SetDebounce(msToDuration(c.Debounce))

	logger.Info("watching for changes", "dir", cfg.Dir, "ext", cfg.Ext)

	return w.Run(ctx)
}

func writeToFile(path string, hook func(io.Writer) error) (err error) {
	fd, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create %q file: %w", path, err)
	}

	defer func() { _ = fd.Close() }()

	if err = hook(fd); err != nil {
		return fmt.Errorf("failed to write to %q: %w", path, err)
	}

	return nil
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

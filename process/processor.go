// Package process applies the import rewrite to files on disk.
//
// Files are handled one at a time: read fully, rewritten in memory, and
// written back in one piece. The write is not atomic.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/kxue43/gjs-imports/report"
	"github.com/kxue43/gjs-imports/rewrite"
	"github.com/kxue43/gjs-imports/selector"
)

type (
	Logger interface {
		Debug(msg any, keyvals ...any)
		Info(msg any, keyvals ...any)
		Warn(msg any, keyvals ...any)
		Error(msg any, keyvals ...any)
	}

	Options struct {
		// DiffOut receives the diff of every changed file in dry-run mode.
		DiffOut   io.Writer
		Namespace string
		// Strict reports near misses as warnings instead of debug messages.
		Strict bool
		DryRun bool
		// KeepGoing records per-file failures and moves on to the next file.
		KeepGoing bool
		// Debug dumps the token split of every line starting like an import.
		Debug bool
	}

	Processor struct {
		logger   Logger
		rewriter rewrite.Rewriter
		opts     Options
	}
)

var (
	ErrFailures = errors.New("some files could not be processed")

	readFile  = os.ReadFile
	writeFile = os.WriteFile
)

func New(opts Options, logger Logger) *Processor {
	if opts.DiffOut == nil {
		opts.DiffOut = io.Discard
	}

	return &Processor{
		logger:   logger,
		rewriter: rewrite.New(opts.Namespace),
		opts:     opts,
	}
}

func (p *Processor) Namespace() string {
	return p.rewriter.Namespace
}

// File rewrites a single file in place. Content is only written back when at
// least one line changed. Failures are reported through FileResult.Err.
func (p *Processor) File(path string) (res report.FileResult) {
	res.Path = path

	info, err := os.Stat(path)
	if err != nil {
		res.Err = fmt.Errorf("failed to access %q: %w", path, err)

		return res
	}

	contents, err := readFile(filepath.Clean(path))
	if err != nil {
		res.Err = fmt.Errorf("failed to read %q: %w", path, err)

		return res
	}

	before := string(contents)
	lines := rewrite.SplitLines(before)

	if p.opts.Debug {
		p.dumpTokens(path, lines)
	}

	out := p.rewriter.Apply(lines)

	res.Changes = out.Changes
	res.NearMisses = out.NearMisses
	res.SizeBefore = int64(len(contents))

	for _, m := range out.NearMisses {
		if p.opts.Strict {
			p.logger.Warn("import left unchanged", "file", path, "line", m.Line, "text", m.Text)
		} else {
			p.logger.Debug("import left unchanged", "file", path, "line", m.Line, "text", m.Text)
		}
	}

	after := rewrite.JoinLines(out.Lines)
	res.SizeAfter = int64(len(after))

	if len(out.Changes) == 0 {
		p.logger.Debug("nothing to rewrite", "file", path)

		return res
	}

	if p.opts.DryRun {
		if err = writeDiff(p.opts.DiffOut, path, before, after); err != nil {
			res.Err = fmt.Errorf("failed to print diff of %q: %w", path, err)
		}

		return res
	}

	if err = writeFile(filepath.Clean(path), []byte(after), info.Mode().Perm()); err != nil {
		res.Err = fmt.Errorf("failed to write %q: %w", path, err)

		return res
	}

	res.Written = true

	p.logger.Info("rewrote imports", "file", path, "count", len(out.Changes))

	return res
}

// Dir processes every file [selector.Select] yields for dir and ext, in
// order. A listing failure is returned before any file is touched. Without
// KeepGoing the first per-file failure stops the run; with it, the run
// finishes and the returned error wraps [ErrFailures]. The summary is
// returned in all cases.
func (p *Processor) Dir(ctx context.Context, dir, ext string) (summary *report.Summary, err error) {
	summary = &report.Summary{Dir: dir, Namespace: p.Namespace(), DryRun: p.opts.DryRun}

	paths, err := selector.Select(dir, ext)
	if err != nil {
		return summary, err
	}

	p.logger.Debug("selected files", "dir", dir, "ext", ext, "count", len(paths))

	for _, path := range paths {
		if err = ctx.Err(); err != nil {
			return summary, fmt.Errorf("stopped before %q: %w", path, err)
		}

		res := p.File(path)

		summary.Add(res)

		if !res.Failed() {
			continue
		}

		if !p.opts.KeepGoing {
			return summary, res.Err
		}

		p.logger.Error("skipping file", "file", path, "err", res.Err)
	}

	if n := summary.Totals().Failed; n > 0 {
		return summary, fmt.Errorf("%w: %d of %d failed", ErrFailures, n, len(paths))
	}

	return summary, nil
}

func (p *Processor) dumpTokens(path string, lines []string) {
	for i, line := range lines {
		tokens, ok := rewrite.Tokens(line)
		if !ok {
			continue
		}

		p.logger.Debug("candidate import", "file", path, "line", i+1, "tokens", strings.TrimSpace(spew.Sdump(tokens)))
	}
}

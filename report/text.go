package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

type styles struct {
	title   lipgloss.Style
	ok      lipgloss.Style
	skipped lipgloss.Style
	warn    lipgloss.Style
	failed  lipgloss.Style
	faint   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)

	return styles{
		title:   r.NewStyle().Bold(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("42")),
		skipped: r.NewStyle().Foreground(lipgloss.Color("245")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")),
		failed:  r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		faint:   r.NewStyle().Faint(true),
	}
}

func writeText(w io.Writer, s *Summary) (err error) {
	st := newStyles(w)

	var b strings.Builder

	title := fmt.Sprintf("%s -> %s", s.Dir, s.Namespace)
	if s.DryRun {
		title += " (dry run)"
	}

	b.WriteString(st.title.Render(title))
	b.WriteString("\n")

	for _, f := range s.Files {
		name := filepath.Base(f.Path)

		switch {
		case f.Failed():
			fmt.Fprintf(&b, "  %s %s  %s\n", st.failed.Render("x"), name, st.failed.Render(f.Err.Error()))

			continue
		case f.Changed():
			fmt.Fprintf(&b, "  %s %s  %s  %s\n",
				st.ok.Render("+"),
				name,
				plural(len(f.Changes), "import rewritten", "imports rewritten"),
				st.faint.Render(humanize.Bytes(uint64(f.SizeBefore))+" -> "+humanize.Bytes(uint64(f.SizeAfter))),
			)
		default:
			fmt.Fprintf(&b, "  %s %s\n", st.skipped.Render("="), st.skipped.Render(name))
		}

		for _, m := range f.NearMisses {
			fmt.Fprintf(&b, "    %s %s:%d  %s\n", st.warn.Render("!"), name, m.Line, st.faint.Render(m.Text))
		}
	}

	t := s.Totals()

	fmt.Fprintf(&b, "%s, %s, %s, %s, %s\n",
		plural(t.Files, "file", "files"),
		fmt.Sprintf("%d changed", t.Changed),
		plural(t.Rewritten, "import rewritten", "imports rewritten"),
		plural(t.NearMisses, "near miss", "near misses"),
		fmt.Sprintf("%d failed", t.Failed),
	)

	_, err = io.WriteString(w, b.String())

	return err
}

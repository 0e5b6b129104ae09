package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	//go:embed page.html.tmplt
	pageTemplate string

	page = template.Must(template.New("page").Parse(pageTemplate))
)

func writeHTML(w io.Writer, s *Summary) error {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer

	if err := md.Convert([]byte(markdown(s)), &body); err != nil {
		return fmt.Errorf("failed to convert report Markdown to HTML: %w", err)
	}

	if err := page.Execute(w, struct {
		Title string
		Body  template.HTML
	}{Title: "gjs-imports: " + s.Dir, Body: template.HTML(body.String())}); err != nil {
		return fmt.Errorf("failed to insert converted HTML into template: %w", err)
	}

	return nil
}

func markdown(s *Summary) string {
	var b strings.Builder

	t := s.Totals()

	fmt.Fprintf(&b, "# %s\n\n", cell(s.Dir))
	fmt.Fprintf(&b, "Namespace `%s`", s.Namespace)

	if s.DryRun {
		b.WriteString(", dry run")
	}

	fmt.Fprintf(&b, ". %s, %d changed, %s, %s, %d failed.\n\n",
		plural(t.Files, "file", "files"),
		t.Changed,
		plural(t.Rewritten, "import rewritten", "imports rewritten"),
		plural(t.NearMisses, "near miss", "near misses"),
		t.Failed,
	)

	b.WriteString("| File | Rewritten | Near misses | Size | Status |\n")
	b.WriteString("| --- | ---: | ---: | --- | --- |\n")

	for _, f := range s.Files {
		status := "unchanged"

		switch {
		case f.Failed():
			status = "**failed**: " + cell(f.Err.Error())
		case f.Written:
			status = "written"
		case f.Changed():
			status = "pending"
		}

		fmt.Fprintf(&b, "| %s | %d | %d | %s | %s |\n",
			cell(filepath.Base(f.Path)),
			len(f.Changes),
			len(f.NearMisses),
			humanize.Bytes(uint64(f.SizeBefore))+" &rarr; "+humanize.Bytes(uint64(f.SizeAfter)),
			status,
		)
	}

	for _, f := range s.Files {
		if len(f.NearMisses) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n## Near misses in %s\n\n", cell(filepath.Base(f.Path)))

		for _, m := range f.NearMisses {
			fmt.Fprintf(&b, "- line %d: ``%s``\n", m.Line, m.Text)
		}
	}

	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

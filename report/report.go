// Package report summarizes a rewrite run.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/kxue43/gjs-imports/rewrite"
)

type (
	Format string

	FileResult struct {
		Err        error              `yaml:"-"`
		Path       string             `yaml:"path"`
		Error      string             `yaml:"error,omitempty"`
		Changes    []rewrite.Change   `yaml:"changes,omitempty"`
		NearMisses []rewrite.NearMiss `yaml:"near_misses,omitempty"`
		SizeBefore int64              `yaml:"size_before"`
		SizeAfter  int64              `yaml:"size_after"`
		Written    bool               `yaml:"written"`
	}

	Summary struct {
		Dir       string       `yaml:"dir"`
		Namespace string       `yaml:"namespace"`
		Files     []FileResult `yaml:"files"`
		DryRun    bool         `yaml:"dry_run"`
	}

	Totals struct {
		Files       int   `yaml:"files"`
		Changed     int   `yaml:"changed"`
		Rewritten   int   `yaml:"rewritten"`
		NearMisses  int   `yaml:"near_misses"`
		Failed      int   `yaml:"failed"`
		BytesBefore int64 `yaml:"bytes_before"`
		BytesAfter  int64 `yaml:"bytes_after"`
	}
)

const (
	Text Format = "text"
	YAML Format = "yaml"
	HTML Format = "html"
)

func (f *Format) UnmarshalText(text []byte) error {
	switch v := Format(strings.ToLower(string(text))); v {
	case Text, YAML, HTML:
		*f = v

		return nil
	default:
		return fmt.Errorf("%q is not one of %q, %q, %q", string(text), Text, YAML, HTML)
	}
}

func (f Format) String() string {
	return string(f)
}

func (r FileResult) Failed() bool {
	return r.Err != nil
}

func (r FileResult) Changed() bool {
	return len(r.Changes) > 0
}

func (s *Summary) Add(r FileResult) {
	if r.Err != nil {
		r.Error = r.Err.Error()
	}

	s.Files = append(s.Files, r)
}

func (s *Summary) Totals() (t Totals) {
	for _, f := range s.Files {
		t.Files += 1

		if f.Failed() {
			t.Failed += 1

			continue
		}

		if f.Changed() {
			t.Changed += 1
		}

		t.Rewritten += len(f.Changes)
		t.NearMisses += len(f.NearMisses)
		t.BytesBefore += f.SizeBefore
		t.BytesAfter += f.SizeAfter
	}

	return t
}

func Write(w io.Writer, s *Summary, format Format) error {
	switch format {
	case YAML:
		return writeYAML(w, s)
	case HTML:
		return writeHTML(w, s)
	case Text, "":
		return writeText(w, s)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}

	return fmt.Sprintf("%d %s", n, many)
}

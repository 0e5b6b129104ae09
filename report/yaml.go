package report

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

type document struct {
	Dir       string       `yaml:"dir"`
	Namespace string       `yaml:"namespace"`
	Files     []FileResult `yaml:"files"`
	Totals    Totals       `yaml:"totals"`
	DryRun    bool         `yaml:"dry_run"`
}

func writeYAML(w io.Writer, s *Summary) error {
	doc := document{
		Dir:       s.Dir,
		Namespace: s.Namespace,
		Files:     s.Files,
		Totals:    s.Totals(),
		DryRun:    s.DryRun,
	}

	contents, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal report to YAML: %w", err)
	}

	_, err = w.Write(contents)

	return err
}

package process

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// writeDiff prints a line oriented diff of before and after to w, prefixing
// removed lines with "-" and added ones with "+". Unchanged lines are
// omitted.
func writeDiff(w io.Writer, path, before, after string) (err error) {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder

	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", path, path)

	for _, d := range diffs {
		var mark string

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			mark = "-"
		case diffmatchpatch.DiffInsert:
			mark = "+"
		case diffmatchpatch.DiffEqual:
			continue
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}

			sb.WriteString(mark + line)

			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
		}
	}

	_, err = io.WriteString(w, sb.String())

	return err
}

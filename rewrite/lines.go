package rewrite

import "strings"

// SplitLines splits text after every newline. Each line keeps its "\n"; the
// last one has none if text does not end with a newline.
// strings.Join(SplitLines(text), "") == text.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.SplitAfter(text, "\n")

	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

func JoinLines(lines []string) string {
	return strings.Join(lines, "")
}

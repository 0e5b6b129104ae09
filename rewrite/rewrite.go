// Package rewrite turns ES-module namespace imports into GJS runtime lookups.
//
// The match is line based and deliberately narrow. Exactly one formatting is
// recognized:
//
//	import * as Name from "path";
//
// which becomes
//
//	const Name = Self.imports.path;
//
// Every other line, including lines that start like an import but deviate in
// any way, is passed through untouched.
package rewrite

import (
	"fmt"
	"strings"
)

type (
	Outcome byte

	Rewriter struct {
		Namespace string
	}

	Change struct {
		Before string `yaml:"before"`
		After  string `yaml:"after"`
		Line   int    `yaml:"line"`
	}

	NearMiss struct {
		Text string `yaml:"text"`
		Line int    `yaml:"line"`
	}

	Result struct {
		Lines      []string
		Changes    []Change
		NearMisses []NearMiss
	}
)

const (
	Unchanged Outcome = iota
	Rewritten
	Mismatched
)

const (
	DefaultNamespace = "Self.imports"

	Prefix = "import * as "

	keyword    = "from"
	quote      = `"`
	terminator = "\";\n"
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Rewritten:
		return "rewritten"
	case Mismatched:
		return "near-miss"
	default:
		return fmt.Sprintf("Outcome(%d)", byte(o))
	}
}

func New(namespace string) Rewriter {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return Rewriter{Namespace: namespace}
}

// Tokens returns the single-space split of what follows [Prefix].
// The second return value is false when line does not start with [Prefix].
func Tokens(line string) ([]string, bool) {
	rest, ok := strings.CutPrefix(line, Prefix)
	if !ok {
		return nil, false
	}

	return strings.Split(rest, " "), true
}

func (r Rewriter) Line(line string) (string, Outcome) {
	tokens, ok := Tokens(line)
	if !ok {
		return line, Unchanged
	}

	if len(tokens) != 3 || tokens[1] != keyword {
		return line, Mismatched
	}

	source := tokens[2]

	// The opening quote and the terminator must not overlap.
	if len(source) < len(quote)+len(terminator) || !strings.HasPrefix(source, quote) || !strings.HasSuffix(source, terminator) {
		return line, Mismatched
	}

	path := source[len(quote) : len(source)-len(terminator)]

	return fmt.Sprintf("const %s = %s.%s;\n", tokens[0], r.namespace(), path), Rewritten
}

// Lines rewrites every matching line. len(result) == len(lines) always holds.
func (r Rewriter) Lines(lines []string) []string {
	out := make([]string, len(lines))

	for i, line := range lines {
		out[i], _ = r.Line(line)
	}

	return out
}

// Apply is [Rewriter.Lines] that also records what changed and which lines
// looked like imports but were left alone.
func (r Rewriter) Apply(lines []string) Result {
	res := Result{Lines: make([]string, len(lines))}

	for i, line := range lines {
		after, outcome := r.Line(line)

		res.Lines[i] = after

		switch outcome {
		case Rewritten:
			res.Changes = append(res.Changes, Change{Line: i + 1, Before: line, After: after})
		case Mismatched:
			res.NearMisses = append(res.NearMisses, NearMiss{Line: i + 1, Text: strings.TrimRight(line, "\r\n")})
		default:
			continue
		}
	}

	return res
}

func (r Rewriter) namespace() string {
	if r.Namespace == "" {
		return DefaultNamespace
	}

	return r.Namespace
}

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// angler walks a JSON stream to the value at a dotted key path without
// decoding the rest of the document.
type angler struct {
	dec  *json.Decoder
	keys []string
	seen strings.Builder
}

func newAngler(stream io.Reader, path string) (*angler, error) {
	if !strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") {
		return nil, fmt.Errorf("malformed key path %q", path)
	}

	return &angler{dec: json.NewDecoder(stream), keys: strings.Split(path, ".")[1:]}, nil
}

func isDelim(t json.Token, delims ...json.Delim) bool {
	d, ok := t.(json.Delim)
	if !ok {
		return false
	}

	for _, v := range delims {
		if d == v {
			return true
		}
	}

	return false
}

var errKeyNotFound = errors.New("key not found")

// land returns the scalar at the angler's path, or an error wrapping
// errKeyNotFound when some key along the path is absent.
func (a *angler) land(ctx context.Context) (value any, err error) {
	a.seen.WriteString(".")

	for _, key := range a.keys {
		if err = a.seek(ctx, key); err != nil {
			return nil, err
		}
	}

	t, err := a.dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read value at %q: %w", a.seen.String(), err)
	}

	if isDelim(t, '{', '[') {
		return nil, fmt.Errorf("the value at %q is not a scalar", a.seen.String())
	}

	return t, nil
}

func (a *angler) seek(ctx context.Context, key string) (err error) {
	t, err := a.dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read object at %q: %w", a.seen.String(), err)
	}

	if !isDelim(t, '{') {
		return fmt.Errorf("the value at %q is not a JSON object", a.seen.String())
	}

	a.seen.WriteString(key)

	// depth of nesting below the object being searched
	depth := 0
	// members seen at depth zero; keys sit at even positions
	count := 0

	for depth > 0 || a.dec.More() {
		if err = ctx.Err(); err != nil {
			return fmt.Errorf("gave up looking for %q: %w", a.seen.String(), err)
		}

		if t, err = a.dec.Token(); err != nil {
			return fmt.Errorf("failed to read object at %q: %w", a.seen.String(), err)
		}

		switch {
		case isDelim(t, '{', '['):
			if depth == 0 {
				count += 1
			}

			depth += 1

			continue
		case isDelim(t, '}', ']'):
			depth -= 1

			continue
		case depth > 0:
			continue
		}

		count += 1

		if s, ok := t.(string); ok && count%2 == 1 && s == key {
			return nil
		}
	}

	return fmt.Errorf("%q: %w", a.seen.String(), errKeyNotFound)
}

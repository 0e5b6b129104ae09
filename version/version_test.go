package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	var tests = []struct {
		info     Info
		expected string
	}{
		{info: Info{}, expected: "unavailable"},
		{info: Info{Module: "(devel)"}, expected: "unavailable"},
		{info: Info{Module: "v0.3.0"}, expected: "v0.3.0"},
		{
			info:     Info{Module: "(devel)", Revision: "1f0c2a9d3b4e5f60718293a4b5c6d7e8f9a0b1c2", Time: "2026-10-01T12:00:00Z"},
			expected: "revision 1f0c2a9d3b4e at 2026-10-01T12:00:00Z",
		},
		{
			info:     Info{Module: "v0.3.1", Revision: "abc123", Modified: true},
			expected: "v0.3.1 revision abc123-dirty",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.info.String())
	}
}

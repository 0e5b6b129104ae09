package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	paths []string
	mux   sync.Mutex
}

func (r *recorder) handle(path string) {
	r.mux.Lock()
	defer r.mux.Unlock()

	r.paths = append(r.paths, path)
}

func (r *recorder) seen() []string {
	r.mux.Lock()
	defer r.mux.Unlock()

	return append([]string(nil), r.paths...)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()

	var rec recorder

	w, err := New(dir, ".js", log.New(&bytes.Buffer{}), rec.handle)
	require.NoError(t, err)

	w.SetDebounce(20 * time.Millisecond)

	ctx, cancelFunc := context.WithCancel(context.Background())

	done := make(chan error)

	go func() {
		done <- w.Run(ctx)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "extension.js"), []byte("import * as A from \"x\";\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored\n"), 0600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.js"), 0750))

	assert.Eventually(t, func() bool {
		return len(rec.seen()) > 0
	}, 5*time.Second, 10*time.Millisecond)

	// let any trailing events settle before checking nothing else was handled
	time.Sleep(100 * time.Millisecond)

	cancelFunc()

	require.NoError(t, <-done)

	assert.Equal(t, []string{filepath.Join(dir, "extension.js")}, rec.seen())
}

func TestNewMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "build"), ".js", log.New(&bytes.Buffer{}), func(string) {})
	assert.Error(t, err)
}

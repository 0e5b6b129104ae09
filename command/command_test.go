package command

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-yaml"
	"github.com/pkg/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kxue43/gjs-imports/config"
	"github.com/kxue43/gjs-imports/report"
)

func setUpProject(t *testing.T) (workDir string) {
	t.Helper()

	workDir = t.TempDir()

	build := filepath.Join(workDir, "build")
	require.NoError(t, os.Mkdir(build, 0750))

	files := map[string]string{
		"extension.js":  "import * as MediaPanel from \"mediapanel\";\nlet Panel;\n",
		"mediapanel.js": "import * as St from 'gi://St';\nexport class Extension {}\n",
	}

	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(build, name), []byte(contents), 0600))
	}

	return workDir
}

func readFileT(t *testing.T, path string) string {
	t.Helper()

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(contents)
}

func TestResolve(t *testing.T) {
	workDir := setUpProject(t)

	require.NoError(t, os.WriteFile(filepath.Join(workDir, config.DefaultFile), []byte("namespace = \"Me.imports\"\n"), 0600))

	g := Globals{workDir: workDir, Ext: ".mjs"}

	cfg, err := g.Resolve("")
	require.NoError(t, err)

	assert.Equal(t, config.Config{
		Dir:       filepath.Join(workDir, "build"),
		Ext:       ".mjs",
		Namespace: "Me.imports",
	}, cfg)

	g.Namespace = "not valid"

	_, err = g.Resolve("")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRewriteCmdRun(t *testing.T) {
	workDir := setUpProject(t)

	var out bytes.Buffer

	g := Globals{workDir: workDir}
	cmd := RewriteCmd{reportOut: &out, ReportFormat: report.YAML}

	err := cmd.Run(context.Background(), &g, log.New(io.Discard))
	require.NoError(t, err)

	assert.Equal(t, "const MediaPanel = Self.imports.mediapanel;\nlet Panel;\n", readFileT(t, filepath.Join(workDir, "build", "extension.js")))
	assert.Equal(t, "import * as St from 'gi://St';\nexport class Extension {}\n", readFileT(t, filepath.Join(workDir, "build", "mediapanel.js")))

	var doc struct {
		Totals report.Totals `yaml:"totals"`
	}

	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, 2, doc.Totals.Files)
	assert.Equal(t, 1, doc.Totals.Rewritten)
	assert.Equal(t, 1, doc.Totals.NearMisses)
}

func TestRewriteCmdDryRun(t *testing.T) {
	workDir := setUpProject(t)
	path := filepath.Join(workDir, "build", "extension.js")
	before := readFileT(t, path)

	var diff bytes.Buffer

	g := Globals{workDir: workDir}
	cmd := RewriteCmd{reportOut: io.Discard, diffOut: &diff, DryRun: true, Dir: filepath.Join(workDir, "build")}

	err := cmd.Run(context.Background(), &g, log.New(io.Discard))
	require.NoError(t, err)

	assert.Equal(t, before, readFileT(t, path))
	assert.Contains(t, diff.String(), "+const MediaPanel = Self.imports.mediapanel;\n")
}

func TestRewriteCmdReportFile(t *testing.T) {
	workDir := setUpProject(t)
	reportPath := filepath.Join(workDir, "report.html")

	var opened string

	openInBrowser = func(path string) error {
		opened = path

		return nil
	}

	defer func() { openInBrowser = browser.OpenFile }()

	g := Globals{workDir: workDir}
	cmd := RewriteCmd{ReportFormat: report.HTML, ReportFile: reportPath, Open: true}

	require.NoError(t, cmd.Validate())

	err := cmd.Run(context.Background(), &g, log.New(io.Discard))
	require.NoError(t, err)

	assert.Equal(t, reportPath, opened)
	assert.Contains(t, readFileT(t, reportPath), "<table>")
}

func TestRewriteCmdValidate(t *testing.T) {
	cmd := RewriteCmd{ReportFormat: report.Text, Open: true}

	assert.ErrorIs(t, cmd.Validate(), ErrInvalidInput)
}

func TestRewriteCmdMissingDir(t *testing.T) {
	var out bytes.Buffer

	g := Globals{workDir: t.TempDir()}
	cmd := RewriteCmd{reportOut: &out}

	err := cmd.Run(context.Background(), &g, log.New(io.Discard))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, out.String())
}

func TestWatchCmdRun(t *testing.T) {
	workDir := setUpProject(t)
	build := filepath.Join(workDir, "build")

	g := Globals{workDir: workDir}
	cmd := WatchCmd{Debounce: 20}

	ctx, cancelFunc := context.WithCancel(context.Background())

	done := make(chan error)

	go func() {
		done <- cmd.Run(ctx, &g, log.New(io.Discard))
	}()

	require.Eventually(t, func() bool {
		contents, err := os.ReadFile(filepath.Join(build, "extension.js"))

		return err == nil && string(contents) == "const MediaPanel = Self.imports.mediapanel;\nlet Panel;\n"
	}, 5*time.Second, 10*time.Millisecond)

	// give the watcher time to register before the "compiler" writes
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(build, "prefs.js"), []byte("import * as Prefs from \"prefs_impl\";\n"), 0600))

	assert.Eventually(t, func() bool {
		contents, err := os.ReadFile(filepath.Join(build, "prefs.js"))

		return err == nil && string(contents) == "const Prefs = Self.imports.prefs_impl;\n"
	}, 5*time.Second, 10*time.Millisecond)

	cancelFunc()

	assert.NoError(t, <-done)
}

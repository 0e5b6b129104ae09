// Package config resolves where and how imports get rewritten.
//
// Values come, from lowest to highest precedence, from built-in defaults,
// compilerOptions.outDir of a tsconfig.json, a TOML file, and command line
// flags.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kxue43/gjs-imports/rewrite"
)

type (
	Config struct {
		Dir       string `toml:"dir"`
		Ext       string `toml:"ext"`
		Namespace string `toml:"namespace"`
		Strict    bool   `toml:"strict"`
		KeepGoing bool   `toml:"keep_going"`
	}

	// Sources names the optional files to read. Empty paths fall back to
	// [DefaultFile] and [DefaultTSConfig] in WorkDir, which are skipped when
	// absent. Explicitly named files must exist.
	Sources struct {
		WorkDir  string
		File     string
		TSConfig string
	}
)

const (
	DefaultDir      = "build"
	DefaultExt      = ".js"
	DefaultFile     = "gjs-imports.toml"
	DefaultTSConfig = "tsconfig.json"

	outDirPath = ".compilerOptions.outDir"
)

var (
	ErrInvalid = errors.New("invalid configuration")

	namespaceRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

	lookupTimeout = time.Second
)

func Default() Config {
	return Config{
		Dir:       DefaultDir,
		Ext:       DefaultExt,
		Namespace: rewrite.DefaultNamespace,
	}
}

// Load merges defaults, the tsconfig output directory and the TOML file.
// Flags are layered on top by the caller with [Config.Override]. An implicit
// tsconfig.json that cannot be read or parsed, for instance one with
// comments, is ignored.
func Load(src Sources) (cfg Config, err error) {
	cfg = Default()
	cfg.Dir = filepath.Join(src.WorkDir, DefaultDir)

	tsconfig, explicit := src.resolve(src.TSConfig, DefaultTSConfig)

	outDir, err := OutDir(tsconfig)

	switch {
	case err == nil && outDir != "":
		cfg.Dir = outDir
	case err == nil, errors.Is(err, errKeyNotFound):
	case explicit:
		return cfg, err
	}

	file, explicit := src.resolve(src.File, DefaultFile)

	var fromFile Config

	_, err = toml.DecodeFile(file, &fromFile)

	switch {
	case err == nil:
		if fromFile.Dir != "" && !filepath.IsAbs(fromFile.Dir) {
			fromFile.Dir = filepath.Join(filepath.Dir(file), fromFile.Dir)
		}

		cfg = cfg.Override(fromFile)
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("failed to load config file %q: %w", file, err)
	}

	return cfg, nil
}

func (s Sources) resolve(path, fallback string) (resolved string, explicit bool) {
	if path != "" {
		return filepath.Clean(path), true
	}

	return filepath.Join(s.WorkDir, fallback), false
}

// Override replaces fields of c with the non-zero fields of o. Booleans can
// only be switched on.
func (c Config) Override(o Config) Config {
	if o.Dir != "" {
		c.Dir = o.Dir
	}

	if o.Ext != "" {
		c.Ext = o.Ext
	}

	if o.Namespace != "" {
		c.Namespace = o.Namespace
	}

	c.Strict = c.Strict || o.Strict
	c.KeepGoing = c.KeepGoing || o.KeepGoing

	return c
}

// Non-nil returned error wraps [ErrInvalid].
func (c Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("%w: directory must not be empty", ErrInvalid)
	}

	if !strings.HasPrefix(c.Ext, ".") || len(c.Ext) < 2 {
		return fmt.Errorf("%w: extension %q must start with a dot", ErrInvalid, c.Ext)
	}

	if !namespaceRegex.MatchString(c.Namespace) {
		return fmt.Errorf("%w: namespace %q is not of the %s format", ErrInvalid, c.Namespace, namespaceRegex)
	}

	return nil
}

// OutDir returns compilerOptions.outDir of the tsconfig.json at path,
// resolved against the directory holding it. The returned error wraps
// [os.ErrNotExist] when the file is absent.
func OutDir(path string) (dir string, err error) {
	fd, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to open %q: %w", path, err)
	}

	defer func() { _ = fd.Close() }()

	a, err := newAngler(fd, outDirPath)
	if err != nil {
		return "", err
	}

	ctx, cancelFunc := context.WithTimeout(context.Background(), lookupTimeout)

	defer cancelFunc()

	v, err := a.land(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find %s in %q: %w", outDirPath, path, err)
	}

	dir, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s in %q is not a string", outDirPath, path)
	}

	if dir == "" || filepath.IsAbs(dir) {
		return dir, nil
	}

	return filepath.Join(filepath.Dir(path), dir), nil
}

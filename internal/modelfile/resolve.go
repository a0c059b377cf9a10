package modelfile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"inferd/internal/common/fsutil"
)

// DefaultCacheDir is where resolved artifacts land unless configured otherwise.
const DefaultCacheDir = "~/.cache/inferd"

// Resolve maps a model identifier to a local GGUF artifact.
//
// Three forms are accepted:
//   - a builtin id (e.g. "smollm2-135m-instruct"): served from cacheDir,
//     downloaded from the checkpoint host on first use
//   - a path to an existing .gguf file: used as-is
//   - anything else: an error
//
// Resolution happens once, synchronously, before the server starts.
func Resolve(ctx context.Context, id, cacheDir string) (Model, error) {
	if id == "" {
		id = DefaultModelID
	}

	// Direct path to a local artifact.
	if strings.HasSuffix(strings.ToLower(id), ".gguf") {
		p, err := fsutil.ExpandHome(id)
		if err != nil {
			return Model{}, err
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return Model{}, fmt.Errorf("abs path: %w", err)
		}
		if !fsutil.PathExists(abs) {
			return Model{}, fmt.Errorf("model file not found: %s", abs)
		}
		name := filepath.Base(abs)
		return Model{ID: name, Name: name, Path: abs}, nil
	}

	m, err := Lookup(id)
	if err != nil {
		return Model{}, err
	}

	if cacheDir == "" {
		cacheDir = DefaultCacheDir
	}
	dir, err := fsutil.ExpandHome(cacheDir)
	if err != nil {
		return Model{}, err
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return Model{}, fmt.Errorf("create cache dir: %w", err)
	}

	m.Path = filepath.Join(dir, m.File)
	if fsutil.PathExists(m.Path) {
		if m.SizeBytes == 0 || fsutil.FileSize(m.Path) == m.SizeBytes {
			return m, nil
		}
		// Size mismatch: treat the cached copy as truncated and re-fetch.
	}

	if err := download(ctx, m, dir); err != nil {
		return Model{}, fmt.Errorf("fetch %s: %w", m.ID, err)
	}
	return m, nil
}

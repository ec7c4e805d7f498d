package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
)

// lockRetryDelay is how often a held metadata lock is polled.
const lockRetryDelay = 50 * time.Millisecond

// Load builds a model from api.json files. Each path is either a file or a
// directory whose *.json files are read in name order.
func Load(ctx context.Context, framework, version string, paths ...string) (*model.Model, error) {
	files, err := expand(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("loading %s %s: no metadata files", framework, version)
	}

	b := model.NewBuilder(framework, version)
	for _, file := range files {
		lib, err := readLibrary(ctx, file)
		if err != nil {
			return nil, err
		}
		lib.addTo(b)
	}
	m, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("building %s %s model: %w", framework, version, err)
	}
	return m, nil
}

// LoadFile reads a single api.json file into a model.
func LoadFile(ctx context.Context, framework, version, path string) (*model.Model, error) {
	return Load(ctx, framework, version, path)
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("metadata path: %w", err)
		}
		if !info.IsDir() {
			if !isAPIJSON(p) {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, p)
			}
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", p, err)
		}
		slices.Sort(matches)
		files = append(files, matches...)
	}
	return files, nil
}

func isAPIJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// readLibrary decodes one file under a shared lock so that a concurrent
// download holding the exclusive lock is never read half-written.
func readLibrary(ctx context.Context, path string) (*apiLibrary, error) {
	fileLock := flock.New(path)
	locked, err := fileLock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire lock on %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire lock on %s: %w", path, ctx.Err())
	}
	defer func() { _ = fileLock.Unlock() }()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	defer f.Close()

	lib, err := decodeLibrary(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

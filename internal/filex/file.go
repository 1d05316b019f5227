// Package filex turns command-line paths into an upload batch.
package filex

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/dmitrijs2005/permalink/internal/client/batch"
	"github.com/dmitrijs2005/permalink/internal/client/models"
)

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ReadBatch loads every path in order. A directory contributes its regular
// files sorted by path, named relative to the directory. Sizes are taken
// from the file system and checked against the batch ceiling before any
// content is read.
func ReadBatch(paths []string) ([]models.File, error) {
	var entries []entry

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}

		if !info.IsDir() {
			entries = append(entries, entry{path: p, name: filepath.Base(p), size: info.Size()})
			continue
		}

		files, err := statDir(p)
		if err != nil {
			return nil, err
		}
		entries = append(entries, files...)
	}

	if len(entries) == 0 {
		return nil, nil
	}

	declared := make([]models.File, len(entries))
	for i, e := range entries {
		declared[i] = models.File{Name: e.name, Size: e.size}
	}
	if err := batch.Check(declared); err != nil {
		return nil, err
	}

	out := make([]models.File, 0, len(entries))
	for _, e := range entries {
		f, err := readFile(e.path, e.name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

type entry struct {
	path string
	name string
	size int64
}

func statDir(root string) ([]entry, error) {
	var out []entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, entry{path: path, name: filepath.ToSlash(rel), size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}

func readFile(path, name string) (models.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return models.NewFile(name, data), nil
}

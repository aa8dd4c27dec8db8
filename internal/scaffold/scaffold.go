// Package scaffold carries the starter site written by `devfolio init`.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed all:starter
var starter embed.FS

// ErrExists is returned when a starter file would overwrite an existing file.
var ErrExists = errors.New("file already exists")

// Files returns the starter site rooted at its top directory.
func Files() fs.FS {
	sub, err := fs.Sub(starter, "starter")
	if err != nil {
		panic(err)
	}
	return sub
}

// Write copies the starter site into dir and returns the paths written,
// relative to dir. Unless force is set nothing is written when any target
// already exists.
func Write(dir string, force bool) ([]string, error) {
	files := Files()
	var paths []string
	err := fs.WalkDir(files, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !force {
		for _, p := range paths {
			target := filepath.Join(dir, filepath.FromSlash(p))
			if _, err := os.Stat(target); err == nil {
				return nil, fmt.Errorf("%w: %s", ErrExists, target)
			}
		}
	}

	for _, p := range paths {
		data, err := fs.ReadFile(files, p)
		if err != nil {
			return nil, err
		}
		target := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", target, err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", target, err)
		}
	}
	return paths, nil
}

package build

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// copyDirContents recursively copies the contents of src into dst and
// returns the number of files copied.
func copyDirContents(src, dst string, log zerolog.Logger) (int, error) {
	copied := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		dstPath := filepath.Join(dst, relPath)

		if d.IsDir() {
			// Use os.ModePerm rather than the source mode; umask trims it.
			if err := os.MkdirAll(dstPath, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dstPath, err)
			}
			return nil
		}
		if err := copyFile(path, dstPath, log); err != nil {
			return fmt.Errorf("failed to copy file from %s to %s: %w", path, dstPath, err)
		}
		copied++
		return nil
	})
	return copied, err
}

// copyFile copies a single file from srcFile to dstFile, keeping its mode.
func copyFile(srcFile, dstFile string, log zerolog.Logger) error {
	srcF, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer srcF.Close()

	dstDir := filepath.Dir(dstFile)
	if err := os.MkdirAll(dstDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", dstDir, err)
	}

	dstF, err := os.Create(dstFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}
	if _, err := io.Copy(dstF, srcF); err != nil {
		_ = dstF.Close()
		return fmt.Errorf("failed to copy data from %s to %s: %w", srcFile, dstFile, err)
	}
	if err := dstF.Close(); err != nil {
		return fmt.Errorf("failed to close destination file %s: %w", dstFile, err)
	}

	srcInfo, err := srcF.Stat()
	if err != nil {
		log.Warn().Err(err).Str("file", srcFile).Msg("could not stat source file to preserve permissions")
		return nil
	}
	if err := os.Chmod(dstFile, srcInfo.Mode()); err != nil {
		log.Warn().Err(err).Str("file", dstFile).Msg("could not set permissions")
	}
	return nil
}

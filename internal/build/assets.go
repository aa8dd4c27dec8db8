package build

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
)

// assetPublisher writes files referenced from markdown under
// <outputDir>/<dir>/<hash>/<name>. Identical content is written once.
type assetPublisher struct {
	outputDir string
	dir       string

	mu      sync.Mutex
	written map[string]string // content hash + name -> url
}

func newAssetPublisher(outputDir, dir string) *assetPublisher {
	return &assetPublisher{outputDir: outputDir, dir: dir, written: make(map[string]string)}
}

// PublishFile copies src and returns its site URL.
func (a *assetPublisher) PublishFile(src string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read linked file %s: %w", src, err)
	}
	return a.Publish(filepath.Base(src), data)
}

// Publish writes data under a content-addressed directory and returns its URL.
func (a *assetPublisher) Publish(name string, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:4])
	key := hash + "/" + name

	a.mu.Lock()
	defer a.mu.Unlock()
	if u, ok := a.written[key]; ok {
		return u, nil
	}

	dst := filepath.Join(a.outputDir, filepath.FromSlash(a.dir), hash, name)
	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create asset directory for %s: %w", dst, err)
	}
	if err := renameio.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write asset %s: %w", dst, err)
	}
	u := "/" + path.Join(a.dir, hash, url.PathEscape(name))
	a.written[key] = u
	return u, nil
}

// Count is the number of distinct assets written.
func (a *assetPublisher) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.written)
}

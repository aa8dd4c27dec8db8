package scaffold

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maddran/portfolio/internal/site"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(dir, false)
	require.NoError(t, err)

	for _, want := range []string{
		"site.yaml",
		"layouts/base.html",
		"layouts/home.html",
		"layouts/single.html",
		"layouts/list-posts.html",
		"layouts/partials/nav.html",
		"content/blog/hello-world/index.md",
		"src/images/icon.png",
		"static/css/style.css",
	} {
		assert.Contains(t, paths, want)
		assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(want)))
	}
}

func TestWriteRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yaml"), []byte("mine"), 0o644))

	_, err := Write(dir, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExists))

	data, err := os.ReadFile(filepath.Join(dir, "site.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
	assert.NoFileExists(t, filepath.Join(dir, "layouts", "base.html"), "nothing is written on conflict")

	_, err = Write(dir, true)
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(dir, "site.yaml"))
	require.NoError(t, err)
	assert.NotEqual(t, "mine", string(data))
}

func TestStarterSiteFileIsValid(t *testing.T) {
	dir := t.TempDir()
	_, err := Write(dir, false)
	require.NoError(t, err)

	cfg, err := site.Load(filepath.Join(dir, "site.yaml"))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "NHL Scores App", cfg.SiteMetadata.Projects[0].Name)
}

package build

import (
	"errors"
	"html/template"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLayouts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func TestLoadLayouts(t *testing.T) {
	dir := writeLayouts(t, map[string]string{
		"base.html":          `{{ define "header" }}<h>{{ end }}`,
		"partials/nav.html":  `{{ define "nav" }}<nav>{{ end }}`,
		"single.html":        `{{ template "header" . }}single`,
		"single-post.html":   `post`,
		"home.html":          `{{ template "header" . }}{{ template "nav" . }}home`,
		"notes/custom.HTML":  `custom`,
		"partials/readme.md": `ignored`,
	})

	tmpl, err := loadLayouts(dir, template.FuncMap{})
	require.NoError(t, err)
	for _, name := range []string{"base.html", "nav.html", "single.html", "single-post.html", "home.html", "custom.HTML", "header", "nav"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
	assert.Nil(t, tmpl.Lookup("readme.md"))
}

func TestLoadLayoutsMissing(t *testing.T) {
	_, err := loadLayouts(writeLayouts(t, map[string]string{"home.html": "home"}), nil)
	assert.True(t, errors.Is(err, ErrMissingLayout), "got %v", err)
	assert.ErrorContains(t, err, "base.html")

	_, err = loadLayouts(writeLayouts(t, map[string]string{"base.html": "base", "pages/home.html": "nested"}), nil)
	assert.True(t, errors.Is(err, ErrMissingLayout), "got %v", err)
	assert.ErrorContains(t, err, "home.html")

	_, err = loadLayouts(filepath.Join(t.TempDir(), "none"), nil)
	assert.ErrorContains(t, err, "failed to find layout files")
}

func TestLayoutFor(t *testing.T) {
	tmpl := template.Must(template.New("single.html").Parse("s"))
	template.Must(tmpl.New("single-project.html").Parse("p"))
	template.Must(tmpl.New("wide.html").Parse("w"))

	tests := []struct {
		layout, itemType, want string
	}{
		{"", "project", "single-project.html"},
		{"", "blog", "single.html"},
		{"wide", "project", "wide.html"},
		{"wide.html", "blog", "wide.html"},
	}
	for _, tt := range tests {
		got, err := layoutFor(tmpl, tt.layout, tt.itemType)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := layoutFor(tmpl, "missing", "blog")
	assert.True(t, errors.Is(err, ErrMissingLayout))

	bare := template.Must(template.New("home.html").Parse("h"))
	_, err = layoutFor(bare, "", "blog")
	assert.True(t, errors.Is(err, ErrMissingLayout))
}

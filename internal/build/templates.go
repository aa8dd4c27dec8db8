package build

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path/filepath"
	"strings"
)

// ErrMissingLayout is returned when a required layout file does not exist.
var ErrMissingLayout = errors.New("missing layout")

const (
	baseLayout     = "base.html"
	homeLayout     = "home.html"
	singleLayout   = "single.html"
	postListLayout = "list-posts.html"
	partialsDir    = "partials"
)

// loadLayouts parses every .html file under dir. base.html and partials are
// parsed first, page layouts next and home.html last, so home.html wins when
// two files define the same template name.
func loadLayouts(dir string, funcs template.FuncMap) (*template.Template, error) {
	var layoutFiles []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			layoutFiles = append(layoutFiles, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find layout files in '%s': %w", dir, err)
	}

	var basePath, homePath string
	var partials, others []string
	for _, f := range layoutFiles {
		parent := filepath.Dir(f)
		switch {
		case parent == filepath.Clean(dir) && filepath.Base(f) == baseLayout:
			basePath = f
		case parent == filepath.Clean(dir) && filepath.Base(f) == homeLayout:
			homePath = f
		case strings.HasPrefix(parent, filepath.Join(dir, partialsDir)):
			partials = append(partials, f)
		default:
			others = append(others, f)
		}
	}
	if basePath == "" {
		return nil, fmt.Errorf("%w: %s not found directly in layouts directory '%s'", ErrMissingLayout, baseLayout, dir)
	}
	if homePath == "" {
		return nil, fmt.Errorf("%w: homepage layout '%s' not found in '%s'", ErrMissingLayout, homeLayout, dir)
	}

	tmpl, err := template.New(baseLayout).Funcs(funcs).ParseFiles(append([]string{basePath}, partials...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s and partials: %w", baseLayout, err)
	}
	if len(others) > 0 {
		if tmpl, err = tmpl.ParseFiles(others...); err != nil {
			return nil, fmt.Errorf("failed to parse page layout files: %w", err)
		}
	}
	if tmpl, err = tmpl.ParseFiles(homePath); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", homeLayout, err)
	}
	return tmpl, nil
}

// layoutFor picks the frontmatter layout, then single-<type>.html, then single.html.
func layoutFor(tmpl *template.Template, layout, itemType string) (string, error) {
	if layout != "" {
		if !strings.HasSuffix(layout, ".html") {
			layout += ".html"
		}
		if tmpl.Lookup(layout) == nil {
			return "", fmt.Errorf("%w: frontmatter layout '%s'", ErrMissingLayout, layout)
		}
		return layout, nil
	}
	if typed := "single-" + itemType + ".html"; tmpl.Lookup(typed) != nil {
		return typed, nil
	}
	if tmpl.Lookup(singleLayout) == nil {
		return "", fmt.Errorf("%w: no '%s' for item type '%s'", ErrMissingLayout, singleLayout, itemType)
	}
	return singleLayout, nil
}

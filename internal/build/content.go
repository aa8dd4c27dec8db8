package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/maddran/portfolio/internal/model"
)

// dateFormats are tried in order for the frontmatter date.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// postTypes are the content types listed as posts and fed into the RSS feed.
var postTypes = map[string]bool{"post": true, "posts": true, "blog": true}

const projectType = "project"

// ErrDuplicatePermalink is returned when two pages would be written to the
// same output path.
var ErrDuplicatePermalink = errors.New("duplicate permalink")

type contentFile struct {
	source Source
	path   string
	rel    string // slash separated, relative to the source dir
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// findContent lists markdown files of every source in a stable order.
func findContent(sources []Source) ([]contentFile, error) {
	var files []contentFile
	for _, src := range sources {
		err := filepath.WalkDir(src.Dir, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return fmt.Errorf("error accessing path '%s' during walk: %w", p, walkErr)
			}
			if d.IsDir() || !isMarkdown(d.Name()) {
				return nil
			}
			rel, err := filepath.Rel(src.Dir, p)
			if err != nil {
				return err
			}
			files = append(files, contentFile{source: src, path: p, rel: filepath.ToSlash(rel)})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error during content collection walk of source %q: %w", src.Name, err)
		}
	}
	return files, nil
}

// collectContent renders every markdown file concurrently. The result keeps
// the order of files; drafts are dropped.
func (b *Builder) collectContent(ctx context.Context, files []contentFile, md *remark) ([]*model.ContentItem, error) {
	items := make([]*model.ContentItem, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := b.loadItem(f, md)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := items[:0]
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (b *Builder) loadItem(f contentFile, md *remark) (*model.ContentItem, error) {
	fileBytes, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", f.path, err)
	}

	var fm map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(fileBytes), &fm)
	if err != nil {
		b.log.Warn().Err(err).Str("file", f.path).Msg("could not parse frontmatter, treating as pure markdown")
		body = fileBytes
		fm = nil
	}
	if fm == nil {
		fm = make(map[string]any)
	}

	item := &model.ContentItem{
		Title:       pageTitle(fm, f.rel),
		Type:        contentType(fm, f),
		Source:      f.source.Name,
		SourcePath:  f.path,
		Permalink:   permalink(f),
		Frontmatter: fm,
		Summary:     stringField(fm, "summary"),
		Layout:      stringField(fm, "layout"),
	}
	if draft, ok := fm["draft"].(bool); ok && draft {
		b.log.Debug().Str("file", f.path).Msg("skipping draft")
		return nil, nil
	}
	if item.Permalink == "/" {
		b.log.Warn().Str("file", f.path).Msg("content would replace the home page, skipping")
		return nil, nil
	}
	item.Date, err = parseDate(fm["date"])
	if err != nil {
		b.log.Warn().Err(err).Str("file", f.path).Msg("could not parse date, use YYYY-MM-DD or RFC3339")
	}

	html, err := md.Render(body, &docContext{srcDir: filepath.Dir(f.path), log: b.log})
	if err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML for file '%s': %w", f.path, err)
	}
	item.ContentHTML = template.HTML(html)
	return item, nil
}

func stringField(fm map[string]any, key string) string {
	s, _ := fm[key].(string)
	return s
}

// pageTitle prefers the frontmatter title, then a title-cased file name.
func pageTitle(fm map[string]any, rel string) string {
	if t := stringField(fm, "title"); t != "" {
		return t
	}
	base := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	if base == "index" && path.Dir(rel) != "." {
		base = path.Base(path.Dir(rel))
	}
	name := strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return cases.Title(language.English).String(name)
}

// contentType is the frontmatter type, else the first sub-directory of the
// conventional source ("page" at its root), else the source name.
func contentType(fm map[string]any, f contentFile) string {
	if t := stringField(fm, "type"); t != "" {
		return t
	}
	if !f.source.Conventional {
		return f.source.Name
	}
	if dir := path.Dir(f.rel); dir != "." {
		return strings.SplitN(dir, "/", 2)[0]
	}
	return "page"
}

// permalink is the directory-style URL of a file: /<source>/<rel without ext>/.
// index files take their directory's URL; the conventional source adds no prefix.
func permalink(f contentFile) string {
	rel := strings.TrimSuffix(f.rel, path.Ext(f.rel))
	if path.Base(rel) == "index" {
		rel = path.Dir(rel)
	}
	p := "/" + rel
	if !f.source.Conventional {
		p = "/" + f.source.Name + p
	}
	p = path.Clean(p)
	if p == "/" {
		return p
	}
	return p + "/"
}

func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return d, nil
	case string:
		for _, format := range dateFormats {
			if t, err := time.Parse(format, d); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", d)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %v", v)
	}
}

// checkPermalinks fails when two items share a permalink or an item takes a
// path owned by a generated page. reserved maps those paths to the page name.
func checkPermalinks(items []*model.ContentItem, reserved map[string]string) error {
	seen := make(map[string]string, len(items)+len(reserved))
	for p, page := range reserved {
		seen[p] = page
	}
	for _, item := range items {
		if prev, ok := seen[item.Permalink]; ok {
			return fmt.Errorf("%w %s: '%s' and '%s'", ErrDuplicatePermalink, item.Permalink, prev, item.SourcePath)
		}
		seen[item.Permalink] = item.SourcePath
	}
	return nil
}

// sortItems orders by date, newest first; undated items go last and ties
// break on permalink so output is deterministic.
func sortItems(items []*model.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.HasDate() && !b.HasDate():
			return true
		case !a.HasDate() && b.HasDate():
			return false
		case !a.Date.Equal(b.Date):
			return a.Date.After(b.Date)
		default:
			return a.Permalink < b.Permalink
		}
	})
}

// groupItems fills the derived collections of s from s.ContentItems.
func groupItems(s *model.SiteData) {
	s.Posts = []*model.ContentItem{}
	s.Projects = []*model.ContentItem{}
	s.ContentByType = make(map[string][]*model.ContentItem)
	for _, item := range s.ContentItems {
		s.ContentByType[item.Type] = append(s.ContentByType[item.Type], item)
		if postTypes[item.Type] {
			s.Posts = append(s.Posts, item)
		}
		if item.Type == projectType {
			s.Projects = append(s.Projects, item)
		}
	}
}

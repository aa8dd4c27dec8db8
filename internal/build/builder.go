// Package build turns a site file, markdown content and HTML layouts into a
// static site.
package build

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/maddran/portfolio/internal/config"
	applog "github.com/maddran/portfolio/internal/log"
	"github.com/maddran/portfolio/internal/model"
	"github.com/maddran/portfolio/internal/site"
)

// Result summarises a finished build.
type Result struct {
	Pages       int
	Assets      int
	StaticFiles int
	Duration    time.Duration
	// Skipped lists plugins that selected no build stage.
	Skipped []string
}

// Builder runs builds for one configuration. It holds per-build state and
// must not run two builds at once.
type Builder struct {
	cfg config.Config
	log zerolog.Logger
	now func() time.Time

	pipeline *Pipeline
	md       *remark
}

// New returns a Builder for cfg.
func New(cfg config.Config) *Builder {
	return &Builder{
		cfg: cfg,
		log: applog.WithComponent("build"),
		now: time.Now,
	}
}

// Build loads the site file and writes the complete site to the output
// directory, replacing whatever was there.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := b.now()

	siteCfg, err := site.Load(b.cfg.SiteFile)
	if err != nil {
		return nil, err
	}
	if err := siteCfg.Validate(); err != nil {
		return nil, err
	}

	b.pipeline, err = NewPipeline(siteCfg.Plugins, b.cfg.SiteDir(), b.cfg.Strict, b.log)
	if err != nil {
		return nil, fmt.Errorf("invalid plugin list: %w", err)
	}
	if len(b.pipeline.Sources) == 0 {
		b.pipeline.Sources = []Source{{Name: "content", Dir: b.cfg.ContentDir, Conventional: true}}
	}
	for _, src := range b.pipeline.Sources {
		if _, err := os.Stat(src.Dir); err != nil {
			return nil, fmt.Errorf("content source %q: directory '%s' not found: %w", src.Name, src.Dir, err)
		}
	}

	outputDir := b.cfg.OutputDir
	b.log.Info().Str("outputDir", outputDir).Str("site", siteCfg.SiteMetadata.Title).Msg("starting build")
	if err := os.RemoveAll(outputDir); err != nil {
		return nil, fmt.Errorf("failed to remove output directory '%s': %w", outputDir, err)
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	res := &Result{Skipped: append(append([]string(nil), b.pipeline.Passive...), b.pipeline.Unknown...)}
	if _, err := os.Stat(b.cfg.StaticDir); err == nil {
		if res.StaticFiles, err = copyDirContents(b.cfg.StaticDir, outputDir, b.log); err != nil {
			return nil, fmt.Errorf("failed to copy static assets: %w", err)
		}
	} else {
		b.log.Debug().Str("dir", b.cfg.StaticDir).Msg("static assets directory not found, skipping copy")
	}

	assetDir := b.pipeline.Remark.DestinationDir
	if assetDir == "" {
		assetDir = defaultDestinationDir
	}
	assets := newAssetPublisher(outputDir, assetDir)
	b.md = newRemark(b.pipeline, assets)

	tmpl, err := loadLayouts(b.cfg.LayoutsDir, b.funcs())
	if err != nil {
		return nil, err
	}

	files, err := findContent(b.pipeline.Sources)
	if err != nil {
		return nil, err
	}
	items, err := b.collectContent(ctx, files, b.md)
	if err != nil {
		return nil, err
	}
	reserved := map[string]string{}
	if tmpl.Lookup(postListLayout) != nil {
		reserved["/posts/"] = "post list page"
	}
	if err := checkPermalinks(items, reserved); err != nil {
		return nil, err
	}
	sortItems(items)

	data := &model.SiteData{
		Metadata:     siteCfg.SiteMetadata,
		BaseURL:      b.baseURL(siteCfg.SiteMetadata),
		BuildTime:    start,
		ContentItems: items,
	}
	groupItems(data)
	b.log.Info().Int("items", len(items)).Int("posts", len(data.Posts)).Int("projects", len(data.Projects)).Msg("content collected")

	if res.Pages, err = b.renderPages(ctx, tmpl, data); err != nil {
		return nil, err
	}
	res.Assets = assets.Count()

	if err := b.emitExtras(data, res); err != nil {
		return nil, err
	}

	res.Duration = b.now().Sub(start)
	b.log.Info().Int("pages", res.Pages).Int("assets", res.Assets).Dur("took", res.Duration).Msg("build completed")
	return res, nil
}

func (b *Builder) baseURL(m site.Metadata) string {
	if b.cfg.BaseURL != "" {
		return strings.TrimSuffix(b.cfg.BaseURL, "/")
	}
	return strings.TrimSuffix(m.SiteURL, "/")
}

// emitExtras writes the feed, manifest and highlight stylesheet when their
// plugins are enabled.
func (b *Builder) emitExtras(data *model.SiteData, res *Result) error {
	outputDir := b.cfg.OutputDir
	if b.pipeline.Feed != nil {
		if err := writeFeed(outputDir, b.pipeline.Feed, data); err != nil {
			return err
		}
		res.Assets++
	}
	if b.pipeline.Manifest != nil {
		n, err := writeManifest(outputDir, b.pipeline.Manifest)
		if err != nil {
			return err
		}
		res.Assets += n
	}
	if b.pipeline.Remark.Highlight {
		var buf bytes.Buffer
		if err := writeHighlightCSS(&buf); err != nil {
			return fmt.Errorf("failed to render highlight stylesheet: %w", err)
		}
		out := filepath.Join(outputDir, strings.TrimPrefix(highlightCSSPath, "/"))
		if err := renameio.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write highlight stylesheet: %w", err)
		}
		res.Assets++
	}
	if b.pipeline.Analytics != nil && !analyticsEnabled(b.pipeline.Analytics) {
		b.log.Warn().Msg("google analytics plugin has no tracking id, snippet disabled")
	}
	return nil
}

func (b *Builder) funcs() template.FuncMap {
	return template.FuncMap{
		"head": b.head,
		"analytics": func() (template.HTML, error) {
			return analyticsSnippet(b.pipeline.Analytics)
		},
		"manifestLink": func() (template.HTML, error) {
			return manifestLink(b.pipeline.Manifest)
		},
		"markdown": func(s string) (template.HTML, error) {
			out, err := b.md.RenderInline(s)
			return template.HTML(out), err
		},
		"absURL": func(base, p string) string {
			return absURL(base, p)
		},
	}
}

// renderPages writes every content item, the home page and the post list.
func (b *Builder) renderPages(ctx context.Context, tmpl *template.Template, data *model.SiteData) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)
	for _, item := range data.ContentItems {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			layout, err := layoutFor(tmpl, item.Layout, item.Type)
			if err != nil {
				return fmt.Errorf("item '%s': %w", item.SourcePath, err)
			}
			out := filepath.Join(b.cfg.OutputDir, filepath.FromSlash(item.Permalink), "index.html")
			if err := b.renderTo(tmpl, layout, out, model.PageData{Site: data, Item: item}); err != nil {
				return fmt.Errorf("failed to render item '%s': %w", item.Title, err)
			}
			b.log.Debug().Str("page", item.Permalink).Str("layout", layout).Msg("generated")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	pages := len(data.ContentItems)

	if err := b.renderTo(tmpl, homeLayout, filepath.Join(b.cfg.OutputDir, "index.html"), model.PageData{Site: data}); err != nil {
		return 0, fmt.Errorf("failed to render homepage: %w", err)
	}
	pages++

	if tmpl.Lookup(postListLayout) == nil {
		b.log.Debug().Str("layout", postListLayout).Msg("post list layout not found, skipping post list page")
		return pages, nil
	}
	out := filepath.Join(b.cfg.OutputDir, "posts", "index.html")
	if err := b.renderTo(tmpl, postListLayout, out, model.PageData{Site: data}); err != nil {
		return 0, fmt.Errorf("failed to render post list page: %w", err)
	}
	return pages + 1, nil
}

func (b *Builder) renderTo(tmpl *template.Template, layout, out string, page model.PageData) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layout, page); err != nil {
		return fmt.Errorf("failed to execute template '%s': %w", layout, err)
	}
	if err := os.MkdirAll(filepath.Dir(out), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", out, err)
	}
	if err := renameio.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", out, err)
	}
	return nil
}

// Inputs lists the files and directories the last build read from. Before
// the first build only the configured locations are known.
func (b *Builder) Inputs() []string {
	inputs := []string{b.cfg.SiteFile, b.cfg.LayoutsDir, b.cfg.StaticDir}
	if b.pipeline == nil {
		return append(inputs, b.cfg.ContentDir)
	}
	for _, src := range b.pipeline.Sources {
		inputs = append(inputs, src.Dir)
	}
	if b.pipeline.Manifest != nil && b.pipeline.Manifest.Icon != "" {
		inputs = append(inputs, b.pipeline.Manifest.Icon)
	}
	return inputs
}

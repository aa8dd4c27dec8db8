package build

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maddran/portfolio/internal/site"
)

// ErrUnknownPlugin is returned in strict mode for identifiers with no build stage.
var ErrUnknownPlugin = errors.New("unknown plugin")

// Source is a directory of content registered by source-filesystem.
type Source struct {
	Name string
	Dir  string
	// Conventional marks the fallback content directory, which keeps the
	// directory-derived type and unprefixed permalinks.
	Conventional bool
}

// ImageOptions configures the remark-images stage.
type ImageOptions struct {
	MaxWidth             int
	WrapperStyle         string
	LinkImagesToOriginal bool
}

// RemarkOptions collects the sub-plugins of transformer-remark.
type RemarkOptions struct {
	Images          *ImageOptions
	Iframes         bool
	IframeStyle     string
	Highlight       bool
	ClassPrefix     string
	CopyLinkedFiles bool
	DestinationDir  string
	Smartypants     bool
}

type FeedOptions struct {
	Output string
	Title  string
}

type AnalyticsOptions struct {
	TrackingID string
	Anonymize  bool
	RespectDNT bool
}

type ManifestOptions struct {
	Name            string
	ShortName       string
	StartURL        string
	BackgroundColor string
	ThemeColor      string
	Display         string
	Icon            string
}

// Pipeline is the set of build stages selected by the plugin list.
type Pipeline struct {
	Sources   []Source
	Remark    RemarkOptions
	Sharp     bool
	Quality   int
	Head      bool
	Feed      *FeedOptions
	Analytics *AnalyticsOptions
	Manifest  *ManifestOptions
	// Passive lists recognised plugins that need no stage of their own.
	Passive []string
	// Unknown lists identifiers with no stage; only populated outside strict mode.
	Unknown []string
}

const (
	defaultMaxWidth       = 650
	defaultQuality        = 75
	defaultClassPrefix    = "language-"
	defaultDestinationDir = "static"
	defaultFeedOutput     = "/rss.xml"
)

var manifestDisplays = map[string]bool{
	"fullscreen": true,
	"standalone": true,
	"minimal-ui": true,
	"browser":    true,
}

// canonicalName strips the optional "gatsby-" prefix so both spellings of an
// identifier select the same stage.
func canonicalName(resolve string) string {
	return strings.TrimPrefix(strings.TrimSpace(resolve), "gatsby-")
}

// NewPipeline maps the plugin list onto build stages. Relative paths in plugin
// options are resolved against siteDir.
func NewPipeline(plugins []site.Plugin, siteDir string, strict bool, log zerolog.Logger) (*Pipeline, error) {
	p := &Pipeline{Quality: defaultQuality}

	unknown := func(resolve string) error {
		if strict {
			return fmt.Errorf("%w: %q", ErrUnknownPlugin, resolve)
		}
		log.Warn().Str("plugin", resolve).Msg("no build stage for plugin, skipping")
		p.Unknown = append(p.Unknown, resolve)
		return nil
	}

	for _, pl := range plugins {
		switch canonicalName(pl.Resolve) {
		case "source-filesystem":
			name := pl.String("name", "")
			dir := pl.String("path", "")
			if name == "" || dir == "" {
				return nil, fmt.Errorf("plugin %q needs both name and path options", pl.Resolve)
			}
			p.Sources = append(p.Sources, Source{Name: name, Dir: resolvePath(siteDir, dir)})
		case "transformer-remark":
			subs, err := pl.SubPlugins()
			if err != nil {
				return nil, err
			}
			for _, sub := range subs {
				if err := p.addRemark(sub, unknown); err != nil {
					return nil, err
				}
			}
		case "plugin-sharp":
			p.Sharp = true
			p.Quality = pl.Int("defaultQuality", defaultQuality)
			if p.Quality < 1 || p.Quality > 100 {
				return nil, fmt.Errorf("plugin %q: defaultQuality must be within 1..100, got %d", pl.Resolve, p.Quality)
			}
		case "plugin-react-helmet":
			p.Head = true
		case "plugin-feed":
			p.Feed = &FeedOptions{
				Output: pl.String("output", defaultFeedOutput),
				Title:  pl.String("title", ""),
			}
			if path.Clean("/"+p.Feed.Output) == "/" {
				return nil, fmt.Errorf("plugin %q: output must name a file, got %q", pl.Resolve, p.Feed.Output)
			}
		case "plugin-google-analytics":
			p.Analytics = &AnalyticsOptions{
				TrackingID: strings.TrimSpace(pl.String("trackingId", "")),
				Anonymize:  pl.Bool("anonymize", false),
				RespectDNT: pl.Bool("respectDNT", false),
			}
		case "plugin-manifest":
			m, err := manifestOptions(pl, siteDir)
			if err != nil {
				return nil, err
			}
			p.Manifest = m
		case "transformer-sharp", "plugin-postcss":
			p.Passive = append(p.Passive, pl.Resolve)
		default:
			if err := unknown(pl.Resolve); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func (p *Pipeline) addRemark(sub site.Plugin, unknown func(string) error) error {
	switch canonicalName(sub.Resolve) {
	case "remark-images":
		maxWidth := sub.Int("maxWidth", defaultMaxWidth)
		if maxWidth < 1 {
			return fmt.Errorf("plugin %q: maxWidth must be positive, got %d", sub.Resolve, maxWidth)
		}
		p.Remark.Images = &ImageOptions{
			MaxWidth:             maxWidth,
			WrapperStyle:         sub.String("wrapperStyle", ""),
			LinkImagesToOriginal: sub.Bool("linkImagesToOriginal", true),
		}
	case "remark-responsive-iframe":
		p.Remark.Iframes = true
		p.Remark.IframeStyle = sub.String("wrapperStyle", "")
	case "remark-prismjs":
		p.Remark.Highlight = true
		p.Remark.ClassPrefix = sub.String("classPrefix", defaultClassPrefix)
	case "remark-copy-linked-files":
		p.Remark.CopyLinkedFiles = true
		p.Remark.DestinationDir = strings.Trim(sub.String("destinationDir", defaultDestinationDir), "/")
		if p.Remark.DestinationDir == "" {
			p.Remark.DestinationDir = defaultDestinationDir
		}
	case "remark-smartypants":
		p.Remark.Smartypants = true
	default:
		return unknown(sub.Resolve)
	}
	return nil
}

func manifestOptions(pl site.Plugin, siteDir string) (*ManifestOptions, error) {
	m := &ManifestOptions{
		Name:            pl.String("name", ""),
		ShortName:       pl.String("short_name", ""),
		StartURL:        pl.String("start_url", "/"),
		BackgroundColor: pl.String("background_color", ""),
		ThemeColor:      pl.String("theme_color", ""),
		Display:         pl.String("display", "standalone"),
		Icon:            pl.String("icon", ""),
	}
	if m.Name == "" {
		return nil, fmt.Errorf("plugin %q: name is required", pl.Resolve)
	}
	if !manifestDisplays[m.Display] {
		return nil, fmt.Errorf("plugin %q: unsupported display %q", pl.Resolve, m.Display)
	}
	if m.Icon != "" {
		m.Icon = resolvePath(siteDir, m.Icon)
	}
	return m, nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, filepath.FromSlash(p))
}

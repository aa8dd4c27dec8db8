package model

import (
	"html/template"
	"time"

	"github.com/maddran/portfolio/internal/site"
)

// ContentItem represents a single rendered markdown document (blog post, project page, ...).
type ContentItem struct {
	Title       string
	Date        time.Time
	Type        string
	Source      string // name of the content source it came from
	SourcePath  string
	Permalink   string
	ContentHTML template.HTML
	Frontmatter map[string]any
	Summary     string
	Layout      string
}

// HasDate reports whether the item carried a parseable date.
func (c *ContentItem) HasDate() bool {
	return !c.Date.IsZero()
}

// SiteData holds all site-wide data, including metadata and content.
type SiteData struct {
	Metadata      site.Metadata
	BaseURL       string
	BuildTime     time.Time
	ContentItems  []*ContentItem
	Posts         []*ContentItem
	Projects      []*ContentItem
	ContentByType map[string][]*ContentItem
}

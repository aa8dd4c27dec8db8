package build

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/gorilla/feeds"

	"github.com/maddran/portfolio/internal/model"
)

// writeFeed renders the RSS feed of site.Posts to opts.Output under outputDir.
func writeFeed(outputDir string, opts *FeedOptions, s *model.SiteData) error {
	title := opts.Title
	if title == "" {
		title = s.Metadata.Title
	}
	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: absURL(s.BaseURL, "/")},
		Description: s.Metadata.Description,
		Author:      &feeds.Author{Name: s.Metadata.Name},
		Created:     s.BuildTime,
	}
	// Posts are sorted newest first, so the first dated post is the latest.
	for _, p := range s.Posts {
		if p.HasDate() {
			feed.Updated = p.Date
			break
		}
	}

	for _, p := range s.Posts {
		link := absURL(s.BaseURL, p.Permalink)
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Description: p.Summary,
			Content:     string(p.ContentHTML),
			Created:     p.Date,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return fmt.Errorf("failed to render feed: %w", err)
	}

	out := filepath.Join(outputDir, filepath.FromSlash(path.Clean("/"+opts.Output)))
	if err := os.MkdirAll(filepath.Dir(out), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create feed directory: %w", err)
	}
	if err := renameio.WriteFile(out, []byte(rss), 0o644); err != nil {
		return fmt.Errorf("failed to write feed %s: %w", out, err)
	}
	return nil
}

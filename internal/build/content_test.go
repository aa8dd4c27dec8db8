package build

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maddran/portfolio/internal/model"
)

func TestPermalink(t *testing.T) {
	blog := Source{Name: "blog", Dir: "content/blog"}
	conventional := Source{Name: "content", Dir: "content", Conventional: true}

	tests := []struct {
		src  Source
		rel  string
		want string
	}{
		{blog, "hello-world/index.md", "/blog/hello-world/"},
		{blog, "notes.md", "/blog/notes/"},
		{blog, "index.md", "/blog/"},
		{conventional, "about.md", "/about/"},
		{conventional, "posts/first.markdown", "/posts/first/"},
		{conventional, "index.md", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, permalink(contentFile{source: tt.src, rel: tt.rel}))
		})
	}
}

func TestContentType(t *testing.T) {
	blog := contentFile{source: Source{Name: "blog"}, rel: "a/b.md"}
	assert.Equal(t, "blog", contentType(nil, blog))
	assert.Equal(t, "project", contentType(map[string]any{"type": "project"}, blog))

	conventional := Source{Name: "content", Conventional: true}
	assert.Equal(t, "posts", contentType(nil, contentFile{source: conventional, rel: "posts/2021/x.md"}))
	assert.Equal(t, "page", contentType(nil, contentFile{source: conventional, rel: "about.md"}))
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Given", pageTitle(map[string]any{"title": "Given"}, "x.md"))
	assert.Equal(t, "My First Post", pageTitle(nil, "my-first_post.md"))
	assert.Equal(t, "Hello World", pageTitle(nil, "hello-world/index.md"))
	assert.Equal(t, "Index", pageTitle(nil, "index.md"))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, v := range []any{"2021-01-15", "2021-01-15T00:00:00Z", "2021-01-15 00:00:00", want} {
		got, err := parseDate(v)
		require.NoError(t, err, "%v", v)
		assert.True(t, want.Equal(got), "%v parsed as %v", v, got)
	}

	got, err := parseDate(nil)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = parseDate("15/01/2021")
	assert.ErrorContains(t, err, "unrecognised date")
	_, err = parseDate(20210115)
	assert.Error(t, err)
}

func TestSortAndGroupItems(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2021, 1, d, 0, 0, 0, 0, time.UTC) }
	items := []*model.ContentItem{
		{Permalink: "/about/", Type: "page"},
		{Permalink: "/blog/old/", Type: "blog", Date: day(1)},
		{Permalink: "/work/b/", Type: "project"},
		{Permalink: "/blog/new/", Type: "blog", Date: day(9)},
		{Permalink: "/posts/same-b/", Type: "post", Date: day(5)},
		{Permalink: "/posts/same-a/", Type: "post", Date: day(5)},
	}
	sortItems(items)

	var order []string
	for _, it := range items {
		order = append(order, it.Permalink)
	}
	assert.Equal(t, []string{"/blog/new/", "/posts/same-a/", "/posts/same-b/", "/blog/old/", "/about/", "/work/b/"}, order)

	s := &model.SiteData{ContentItems: items}
	groupItems(s)
	assert.Len(t, s.Posts, 4)
	assert.Equal(t, "/blog/new/", s.Posts[0].Permalink)
	require.Len(t, s.Projects, 1)
	assert.Equal(t, "/work/b/", s.Projects[0].Permalink)
	assert.Len(t, s.ContentByType["blog"], 2)
	assert.Len(t, s.ContentByType["page"], 1)
}

func TestFindContent(t *testing.T) {
	files, err := findContent([]Source{{Name: "blog", Dir: "../scaffold/starter/content/blog"}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "hello-world/index.md", files[0].rel)
	assert.Equal(t, "blog", files[0].source.Name)

	_, err = findContent([]Source{{Name: "gone", Dir: "testdata/does-not-exist"}})
	assert.ErrorContains(t, err, `source "gone"`)
}

func TestCheckPermalinks(t *testing.T) {
	items := []*model.ContentItem{
		{Permalink: "/blog/a/", SourcePath: "content/blog/a.md"},
		{Permalink: "/blog/b/", SourcePath: "content/blog/b/index.md"},
	}
	reserved := map[string]string{"/": "home page", "/posts/": "post list page"}
	require.NoError(t, checkPermalinks(items, reserved))

	dup := append(items, &model.ContentItem{Permalink: "/blog/a/", SourcePath: "content/blog/a/index.md"})
	err := checkPermalinks(dup, reserved)
	assert.ErrorIs(t, err, ErrDuplicatePermalink)
	assert.ErrorContains(t, err, "content/blog/a.md")
	assert.ErrorContains(t, err, "content/blog/a/index.md")

	err = checkPermalinks([]*model.ContentItem{{Permalink: "/posts/", SourcePath: "content/posts/index.md"}}, reserved)
	assert.ErrorIs(t, err, ErrDuplicatePermalink)
	assert.ErrorContains(t, err, "post list page")

	assert.NoError(t, checkPermalinks([]*model.ContentItem{{Permalink: "/posts/", SourcePath: "content/posts/index.md"}},
		map[string]string{"/": "home page"}))
}

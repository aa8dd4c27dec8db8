package site

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPortfolio(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "portfolio.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	m := cfg.SiteMetadata
	assert.Equal(t, "https://www.madhav.me", m.SiteURL)
	assert.Equal(t, "madhav.me", m.Title)
	require.Len(t, m.Projects, 1)
	assert.Equal(t, "NHL Scores App", m.Projects[0].Name)
	assert.Equal(t, "https://nhl-scores-app.herokuapp.com/", m.Projects[0].Link)
	assert.Len(t, m.Education, 3)
	assert.Len(t, m.Experience, 3)
	assert.Len(t, m.Skills, 3)

	require.Len(t, cfg.Plugins, 10)
	assert.Equal(t, Plugin{Resolve: "gatsby-plugin-react-helmet"}, cfg.Plugins[0])
	assert.Equal(t, "gatsby-source-filesystem", cfg.Plugins[1].Resolve)
	assert.Equal(t, "images", cfg.Plugins[1].String("name", ""))

	remark := cfg.Plugins[3]
	subs, err := remark.SubPlugins()
	require.NoError(t, err)
	require.Len(t, subs, 5)
	assert.Equal(t, "gatsby-remark-images", subs[0].Resolve)
	assert.Equal(t, 590, subs[0].Int("maxWidth", 0))
	assert.Equal(t, "margin: 0 0 30px;", subs[0].String("wrapperStyle", ""))
	assert.Equal(t, Plugin{Resolve: "gatsby-remark-smartypants"}, subs[4])
}

func TestPluginShapes(t *testing.T) {
	yamlDoc := `
siteMetadata: {siteUrl: "https://example.com", name: n, title: t}
plugins:
  - bare-plugin
  - resolve: with-options
    options:
      maxWidth: 590
      ratio: 1.5
      nested: {enabled: true, list: [a, 2]}
  - resolve: empty-options
    options: {}
`
	jsonDoc := `{
  "siteMetadata": {"siteUrl": "https://example.com", "name": "n", "title": "t"},
  "plugins": [
    "bare-plugin",
    {"resolve": "with-options", "options": {"maxWidth": 590, "ratio": 1.5, "nested": {"enabled": true, "list": ["a", 2]}}},
    {"resolve": "empty-options", "options": {}}
  ]
}`
	fromYAML, err := Parse([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)
	fromJSON, err := Parse([]byte(jsonDoc), FormatJSON)
	require.NoError(t, err)

	if diff := cmp.Diff(fromYAML, fromJSON); diff != "" {
		t.Fatalf("YAML and JSON decode differently (-yaml +json):\n%s", diff)
	}

	want := Plugin{
		Resolve: "with-options",
		Options: map[string]any{
			"maxWidth": int64(590),
			"ratio":    1.5,
			"nested":   map[string]any{"enabled": true, "list": []any{"a", int64(2)}},
		},
	}
	assert.Equal(t, want, fromYAML.Plugins[1])
	assert.Nil(t, fromYAML.Plugins[2].Options)
}

func TestRoundTrip(t *testing.T) {
	orig, err := Load(filepath.Join("testdata", "portfolio.yaml"))
	require.NoError(t, err)

	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			out, err := Marshal(orig, format)
			require.NoError(t, err)
			again, err := Parse(out, format)
			require.NoError(t, err)
			if diff := cmp.Diff(orig, again); diff != "" {
				t.Fatalf("round trip changed the config (-orig +again):\n%s", diff)
			}

			// Emitting twice must be byte-stable.
			out2, err := Marshal(again, format)
			require.NoError(t, err)
			assert.Equal(t, string(out), string(out2))
		})
	}

	t.Run("yaml-json-yaml", func(t *testing.T) {
		js, err := Marshal(orig, FormatJSON)
		require.NoError(t, err)
		mid, err := Parse(js, FormatJSON)
		require.NoError(t, err)
		ym, err := Marshal(mid, FormatYAML)
		require.NoError(t, err)
		back, err := Parse(ym, FormatYAML)
		require.NoError(t, err)
		if diff := cmp.Diff(orig, back); diff != "" {
			t.Fatalf("cross-format round trip changed the config:\n%s", diff)
		}
	})

	const meta = "siteMetadata:\n  siteUrl: https://example.com\n  name: n\n  title: t\n"

	t.Run("json integral float past 2^53", func(t *testing.T) {
		doc := `{"siteMetadata":{"siteUrl":"https://example.com","name":"n","title":"t"},` +
			`"plugins":[{"resolve":"gatsby-plugin-manifest","options":{"big":1e16}}]}`
		first, err := Parse([]byte(doc), FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, int64(10000000000000000), first.Plugins[0].Options["big"])

		out, err := Marshal(first, FormatJSON)
		require.NoError(t, err)
		again, err := Parse(out, FormatJSON)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("round trip changed the config (-first +again):\n%s", diff)
		}
	})

	t.Run("yaml-json-yaml integral float past 2^53", func(t *testing.T) {
		doc := meta + "plugins:\n  - resolve: gatsby-plugin-manifest\n    options:\n      big: 9.007199254740994e15\n"
		first, err := Parse([]byte(doc), FormatYAML)
		require.NoError(t, err)
		assert.Equal(t, int64(9007199254740994), first.Plugins[0].Options["big"])

		js, err := Marshal(first, FormatJSON)
		require.NoError(t, err)
		mid, err := Parse(js, FormatJSON)
		require.NoError(t, err)
		ym, err := Marshal(mid, FormatYAML)
		require.NoError(t, err)
		back, err := Parse(ym, FormatYAML)
		require.NoError(t, err)
		if diff := cmp.Diff(first, back); diff != "" {
			t.Fatalf("cross-format round trip changed the config (-first +back):\n%s", diff)
		}
	})
}

func TestMarshalBarePlugin(t *testing.T) {
	cfg := &Config{Plugins: []Plugin{{Resolve: "gatsby-plugin-feed"}}}
	out, err := Marshal(cfg, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"gatsby-plugin-feed"`)
	assert.NotContains(t, string(out), `"resolve"`)
}

func TestParseRejectsBadPluginEntries(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"list entry", "plugins:\n  - [a, b]\n"},
		{"resolve not a string", "plugins:\n  - resolve: {x: 1}\n"},
		{"options not a mapping", "plugins:\n  - resolve: p\n    options: [1]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatYAML)
			assert.Error(t, err)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"site.yaml": FormatYAML,
		"site.YML":  FormatYAML,
		"site.json": FormatJSON,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("gatsby-config.js")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	_, err = FormatFromPath("Makefile")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

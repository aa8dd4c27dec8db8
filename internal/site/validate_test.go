package site

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		SiteMetadata: Metadata{
			SiteURL: "https://www.madhav.me",
			Name:    "Madhav (Maddie) Narendran",
			Title:   "madhav.me",
			Projects: []Project{{
				Name:        "NHL Scores App",
				Description: "Interactive visualization with Dash.",
				Link:        "https://nhl-scores-app.herokuapp.com/",
			}},
			Education: []Education{{Name: "MSc Data Science", Description: "Helsinki, Finland", Link: ""}},
			Skills:    []Skill{{Name: "Languages", Description: "Go • Python"}},
		},
		Plugins: []Plugin{
			{Resolve: "gatsby-plugin-feed"},
			{Resolve: "gatsby-transformer-remark", Options: map[string]any{
				"plugins": []any{"gatsby-remark-prismjs"},
			}},
		},
	}
}

func fields(t *testing.T, err error) []string {
	t.Helper()
	var verr ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	var out []string
	for _, fe := range verr.Errors() {
		out = append(out, fe.Field)
	}
	return out
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   []string
	}{
		{
			name:   "missing required metadata",
			mutate: func(c *Config) { c.SiteMetadata.SiteURL, c.SiteMetadata.Name, c.SiteMetadata.Title = "", " ", "" },
			want:   []string{"siteMetadata.siteUrl", "siteMetadata.name", "siteMetadata.title"},
		},
		{
			name:   "relative site url",
			mutate: func(c *Config) { c.SiteMetadata.SiteURL = "www.madhav.me" },
			want:   []string{"siteMetadata.siteUrl"},
		},
		{
			name:   "bad project link",
			mutate: func(c *Config) { c.SiteMetadata.Projects[0].Link = "not a url" },
			want:   []string{"siteMetadata.projects[0].link"},
		},
		{
			name:   "empty entry fields",
			mutate: func(c *Config) { c.SiteMetadata.Education[0] = Education{} },
			want:   []string{"siteMetadata.education[0].name", "siteMetadata.education[0].description"},
		},
		{
			name: "experience and skills",
			mutate: func(c *Config) {
				c.SiteMetadata.Experience = []Experience{{Name: "BP", Description: "Analyst", Link: "/relative"}}
				c.SiteMetadata.Skills[0].Description = ""
			},
			want: []string{"siteMetadata.experience[0].link", "siteMetadata.skills[0].description"},
		},
		{
			name:   "bad profile urls",
			mutate: func(c *Config) { c.SiteMetadata.GitHub, c.SiteMetadata.LinkedIn = "github.com/maddran", "linkedin" },
			want:   []string{"siteMetadata.github", "siteMetadata.linkedin"},
		},
		{
			name:   "empty bare plugin",
			mutate: func(c *Config) { c.Plugins[0].Resolve = "" },
			want:   []string{"plugins[0]"},
		},
		{
			name: "record plugin without resolve",
			mutate: func(c *Config) {
				c.Plugins = append(c.Plugins, Plugin{Options: map[string]any{"trackingId": "UA-1"}})
			},
			want: []string{"plugins[2].resolve"},
		},
		{
			name: "nested plugin without resolve",
			mutate: func(c *Config) {
				c.Plugins[1].Options["plugins"] = []any{"ok", map[string]any{"options": map[string]any{"maxWidth": int64(1)}}}
			},
			want: []string{"plugins[1].options.plugins[1].resolve"},
		},
		{
			name:   "nested plugins not a list",
			mutate: func(c *Config) { c.Plugins[1].Options["plugins"] = "gatsby-remark-prismjs" },
			want:   []string{"plugins[1].options.plugins"},
		},
		{
			name: "record without resolve and bad nested plugins",
			mutate: func(c *Config) {
				c.Plugins[0] = Plugin{Options: map[string]any{"plugins": []any{""}}}
			},
			want: []string{"plugins[0].resolve", "plugins[0].options.plugins[0]"},
		},
		{
			name: "non-finite option numbers",
			mutate: func(c *Config) {
				c.Plugins[1].Options["ratio"] = math.Inf(1)
				c.Plugins[1].Options["sizes"] = []any{int64(1), math.NaN()}
				c.Plugins[1].Options["plugins"] = []any{map[string]any{
					"resolve": "gatsby-remark-images",
					"options": map[string]any{"maxWidth": math.Inf(-1)},
				}}
			},
			want: []string{
				"plugins[1].options.ratio",
				"plugins[1].options.sizes[1]",
				"plugins[1].options.plugins[0].options.maxWidth",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.want, fields(t, err))
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	c := validConfig()
	c.SiteMetadata.Projects[0].Link = "not a url"
	err := c.Validate()
	require.Error(t, err)
	assert.Equal(t, "invalid site file: siteMetadata.projects[0].link: must be an absolute URL", err.Error())

	c.SiteMetadata.Title = ""
	assert.Contains(t, c.Validate().Error(), "(2 problems)")
}

func TestValidateEmptyListsAreFine(t *testing.T) {
	c := &Config{SiteMetadata: Metadata{SiteURL: "https://example.com", Name: "n", Title: "t"}}
	assert.NoError(t, c.Validate())
}

func TestValidateRejectsYAMLInfinity(t *testing.T) {
	doc := []byte(`siteMetadata:
  siteUrl: https://example.com
  name: n
  title: t
plugins:
  - resolve: gatsby-plugin-manifest
    options:
      scale: .inf
      ok: 1.5
`)
	c, err := Parse(doc, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, []string{"plugins[0].options.scale"}, fields(t, c.Validate()))
}

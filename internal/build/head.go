package build

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/maddran/portfolio/internal/model"
)

var headTemplate = template.Must(template.New("head").Parse(`<title>{{ .Title }}</title>
{{- if .Full }}
<meta name="description" content="{{ .Description }}">
<meta property="og:title" content="{{ .Title }}">
<meta property="og:description" content="{{ .Description }}">
<meta property="og:type" content="{{ .Type }}">
{{- if .URL }}
<meta property="og:url" content="{{ .URL }}">
<link rel="canonical" href="{{ .URL }}">
{{- end }}
<meta name="twitter:card" content="summary">
{{- if .Author }}
<meta name="twitter:creator" content="{{ .Author }}">
{{- end }}
{{- end }}
{{- range .Stylesheets }}
<link rel="stylesheet" href="{{ . }}">
{{- end }}`))

type headData struct {
	Full        bool
	Title       string
	Description string
	Type        string
	URL         string
	Author      string
	Stylesheets []string
}

// head renders the document head for page. Without react-helmet only the
// title and generated stylesheets are emitted.
func (b *Builder) head(page model.PageData) (template.HTML, error) {
	d := headData{
		Full:        b.pipeline.Head,
		Title:       page.Title(),
		Description: page.Description(),
		Type:        "website",
		URL:         absURL(page.Site.BaseURL, "/"),
	}
	if page.Item != nil {
		d.Type = "article"
		d.URL = absURL(page.Site.BaseURL, page.Item.Permalink)
	}
	if author := strings.TrimSpace(page.Site.Metadata.Author); author != "" {
		if !strings.HasPrefix(author, "@") {
			author = "@" + author
		}
		d.Author = author
	}
	if b.pipeline.Remark.Highlight {
		d.Stylesheets = append(d.Stylesheets, highlightCSSPath)
	}

	var buf bytes.Buffer
	if err := headTemplate.Execute(&buf, d); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// absURL joins a site-relative path onto baseURL. Without a base URL the path
// is returned unchanged.
func absURL(baseURL, p string) string {
	if baseURL == "" || strings.Contains(p, "://") {
		return p
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(p, "/")
}

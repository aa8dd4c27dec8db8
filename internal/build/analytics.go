package build

import (
	"bytes"
	"html/template"
	"strings"
)

var analyticsTemplate = template.Must(template.New("analytics").Parse(`<script async src="https://www.googletagmanager.com/gtag/js?id={{ .ID }}"></script>
<script>
{{- if .RespectDNT }}
if (!(navigator.doNotTrack == "1" || window.doNotTrack == "1")) {
{{- end }}
window.dataLayer = window.dataLayer || [];
function gtag(){dataLayer.push(arguments);}
gtag('js', new Date());
gtag('config', {{ .ID }}{{ if .Anonymize }}, {"anonymize_ip": true}{{ end }});
{{- if .RespectDNT }}
}
{{- end }}
</script>`))

// trackingPlaceholder is the value starter sites ship with.
const trackingPlaceholder = "ADD YOUR TRACKING ID HERE"

// analyticsEnabled reports whether a real tracking id was configured.
func analyticsEnabled(a *AnalyticsOptions) bool {
	return a != nil && a.TrackingID != "" && !strings.EqualFold(a.TrackingID, trackingPlaceholder)
}

// analyticsSnippet renders the tracking script, or nothing when analytics is
// disabled.
func analyticsSnippet(a *AnalyticsOptions) (template.HTML, error) {
	if !analyticsEnabled(a) {
		return "", nil
	}
	data := struct {
		ID         string
		Anonymize  bool
		RespectDNT bool
	}{a.TrackingID, a.Anonymize, a.RespectDNT}

	var buf bytes.Buffer
	if err := analyticsTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

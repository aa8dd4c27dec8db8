package build

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

const manifestFile = "manifest.webmanifest"

// manifestIconSizes are the square icon sizes generated from the source icon.
var manifestIconSizes = []int{48, 72, 96, 144, 192, 256, 384, 512}

type webManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name,omitempty"`
	StartURL        string         `json:"start_url"`
	BackgroundColor string         `json:"background_color,omitempty"`
	ThemeColor      string         `json:"theme_color,omitempty"`
	Display         string         `json:"display"`
	Icons           []manifestIcon `json:"icons,omitempty"`
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// writeManifest emits the web app manifest and its icons into outputDir and
// returns the number of files written.
func writeManifest(outputDir string, m *ManifestOptions) (int, error) {
	wm := webManifest{
		Name:            m.Name,
		ShortName:       m.ShortName,
		StartURL:        m.StartURL,
		BackgroundColor: m.BackgroundColor,
		ThemeColor:      m.ThemeColor,
		Display:         m.Display,
	}
	written := 0

	if m.Icon != "" {
		icons, err := writeIcons(outputDir, m.Icon)
		if err != nil {
			return 0, err
		}
		wm.Icons = icons
		written += len(icons)
	}

	data, err := json.MarshalIndent(wm, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := renameio.WriteFile(filepath.Join(outputDir, manifestFile), data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", manifestFile, err)
	}
	return written + 1, nil
}

func writeIcons(outputDir, iconPath string) ([]manifestIcon, error) {
	f, err := os.Open(iconPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest icon: %w", err)
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode manifest icon %s: %w", iconPath, err)
	}

	dir := filepath.Join(outputDir, "icons")
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create icon directory: %w", err)
	}

	icons := make([]manifestIcon, 0, len(manifestIconSizes))
	for _, size := range manifestIconSizes {
		var buf bytes.Buffer
		if err := png.Encode(&buf, scaleToSquare(src, size)); err != nil {
			return nil, fmt.Errorf("failed to encode %dpx icon: %w", size, err)
		}
		name := fmt.Sprintf("icon-%dx%d.png", size, size)
		if err := renameio.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write icon %s: %w", name, err)
		}
		icons = append(icons, manifestIcon{
			Src:   "/icons/" + name,
			Sizes: fmt.Sprintf("%dx%d", size, size),
			Type:  "image/png",
		})
	}
	return icons, nil
}

var manifestLinkTemplate = template.Must(template.New("manifest").Parse(
	`<link rel="manifest" href="/` + manifestFile + `">
{{- if .ThemeColor }}
<meta name="theme-color" content="{{ .ThemeColor }}">
{{- end }}
{{- if .Icon }}
<link rel="icon" href="/icons/icon-48x48.png">
{{- end }}`))

// manifestLink renders the head tags pointing at the manifest, or nothing
// when the manifest plugin is not configured.
func manifestLink(m *ManifestOptions) (template.HTML, error) {
	if m == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := manifestLinkTemplate.Execute(&buf, m); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

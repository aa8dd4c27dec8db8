package build

import (
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// linkedAttrs lists the reference attribute per element that may point at a
// local file.
var linkedAttrs = map[atom.Atom]string{
	atom.A:      "href",
	atom.Img:    "src",
	atom.Video:  "src",
	atom.Audio:  "src",
	atom.Source: "src",
}

// linkedFilesTransform copies files referenced by relative links into the
// output and points the links at the copies. Links to other markdown or HTML
// documents are left alone.
func linkedFilesTransform(assets *assetPublisher) htmlTransform {
	return func(doc *docContext, root *html.Node) error {
		return walk(root, func(n *html.Node) error {
			attr, ok := linkedAttrs[n.DataAtom]
			if !ok {
				return nil
			}
			ref, _ := getAttr(n, attr)
			path, ok := localFile(doc.srcDir, ref)
			if !ok {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".md", ".markdown", ".html", ".htm":
				return nil
			}
			u, err := assets.PublishFile(path)
			if err != nil {
				return err
			}
			if i := strings.IndexByte(ref, '#'); i >= 0 {
				u += ref[i:]
			}
			setAttr(n, attr, u)
			return nil
		})
	}
}

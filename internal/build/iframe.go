package build

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const iframeWrapperClass = "responsive-iframe-container"

// iframeTransform turns fixed-size iframes into fluid ones that keep their
// aspect ratio.
func iframeTransform(wrapperStyle string) htmlTransform {
	return func(_ *docContext, root *html.Node) error {
		return walk(root, func(n *html.Node) error {
			if n.DataAtom != atom.Iframe {
				return nil
			}
			if p := n.Parent; p != nil && p.DataAtom == atom.Div {
				if class, _ := getAttr(p, "class"); class == iframeWrapperClass {
					return nil
				}
			}
			w, werr := dimension(n, "width")
			h, herr := dimension(n, "height")
			if werr != nil || herr != nil {
				return nil
			}

			style := fmt.Sprintf("position: relative; height: 0; overflow: hidden; padding-bottom: %s%%;",
				strconv.FormatFloat(h/w*100, 'f', 4, 64))
			if wrapperStyle != "" {
				style += " " + wrapperStyle
			}
			removeAttr(n, "width")
			removeAttr(n, "height")
			setAttr(n, "style", "position: absolute; top: 0; left: 0; width: 100%; height: 100%;")
			wrap(n, element(atom.Div, "class", iframeWrapperClass, "style", style))
			return nil
		})
	}
}

func dimension(n *html.Node, key string) (float64, error) {
	v, ok := getAttr(n, key)
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return f, nil
}

package build

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// docContext is what an HTML transform knows about the document being rendered.
type docContext struct {
	srcDir string // directory of the markdown file; relative links resolve here
	log    zerolog.Logger
}

// htmlTransform rewrites the rendered document in place. root is a synthetic
// container whose children are the document's top-level nodes.
type htmlTransform func(doc *docContext, root *html.Node) error

// remark renders markdown to HTML and runs the transforms enabled by
// transformer-remark's sub-plugins.
type remark struct {
	md         goldmark.Markdown
	transforms []htmlTransform
}

func newRemark(p *Pipeline, assets *assetPublisher) *remark {
	exts := []goldmark.Extender{extension.GFM}
	if p.Remark.Smartypants {
		exts = append(exts, extension.Typographer)
	}
	r := &remark{
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
				// raw HTML such as embedded iframes must survive rendering
				gmhtml.WithUnsafe(),
			),
		),
	}

	// Images run first so copy-linked-files only sees what is left.
	if p.Remark.Images != nil {
		r.transforms = append(r.transforms, imagesTransform(*p.Remark.Images, p.Sharp, p.Quality, assets))
	}
	if p.Remark.Iframes {
		r.transforms = append(r.transforms, iframeTransform(p.Remark.IframeStyle))
	}
	if p.Remark.Highlight {
		r.transforms = append(r.transforms, highlightTransform(p.Remark.ClassPrefix))
	}
	if p.Remark.CopyLinkedFiles {
		r.transforms = append(r.transforms, linkedFilesTransform(assets))
	}
	return r
}

// Render converts markdown to HTML for the document in srcDir.
func (r *remark) Render(source []byte, doc *docContext) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, err
	}
	if len(r.transforms) == 0 {
		return buf.Bytes(), nil
	}

	root, err := parseFragment(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered HTML: %w", err)
	}
	for _, t := range r.transforms {
		if err := t(doc, root); err != nil {
			return nil, err
		}
	}
	return renderChildren(root)
}

// RenderInline renders metadata text such as the about section. No transforms
// run because there is no source directory to resolve links against.
func (r *remark) RenderInline(source string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseFragment(b []byte) (*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(b), context)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

func renderChildren(root *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// walk visits every element in document order. Nodes inserted by visit
// around n are not revisited.
func walk(n *html.Node, visit func(*html.Node) error) error {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			if err := visit(c); err != nil {
				return err
			}
		}
		if err := walk(c, visit); err != nil {
			return err
		}
		c = next
	}
	return nil
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

// wrap replaces n with wrapper and makes n its only child.
func wrap(n, wrapper *html.Node) {
	n.Parent.InsertBefore(wrapper, n)
	n.Parent.RemoveChild(n)
	wrapper.AppendChild(n)
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

// localFile resolves a relative reference against srcDir. ok is false for
// absolute URLs, root paths, fragments and files that do not exist.
func localFile(srcDir, ref string) (string, bool) {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "/") {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	p := filepath.Join(srcDir, filepath.FromSlash(u.Path))
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", false
	}
	return p, true
}

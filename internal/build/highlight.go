package build

import (
	"bytes"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const highlightStyle = "github"

// highlightCSSPath is where the class-based highlight stylesheet is written.
const highlightCSSPath = "/highlight.css"

// fenceClassPrefix is the class goldmark puts on code blocks with an info string.
const fenceClassPrefix = "language-"

var highlightFormatter = chromahtml.New(chromahtml.WithClasses(true))

// highlightTransform replaces fenced code blocks tagged with a known language
// by chroma's class-based markup. The new <pre> carries classPrefix+language.
func highlightTransform(classPrefix string) htmlTransform {
	return func(doc *docContext, root *html.Node) error {
		return walk(root, func(n *html.Node) error {
			if n.DataAtom != atom.Pre {
				return nil
			}
			code := n.FirstChild
			if code == nil || code.DataAtom != atom.Code || code.NextSibling != nil {
				return nil
			}
			lang := codeLanguage(code)
			if lang == "" {
				return nil
			}
			lexer := lexers.Get(lang)
			if lexer == nil {
				doc.log.Debug().Str("language", lang).Msg("no lexer for code block")
				return nil
			}

			var buf bytes.Buffer
			if err := formatCode(&buf, lexer, textContent(code)); err != nil {
				return err
			}
			nodes, err := html.ParseFragment(&buf, n.Parent)
			if err != nil {
				return err
			}
			for _, hn := range nodes {
				if hn.DataAtom == atom.Pre {
					class, _ := getAttr(hn, "class")
					setAttr(hn, "class", strings.TrimSpace(class+" "+classPrefix+lang))
				}
				n.Parent.InsertBefore(hn, n)
			}
			n.Parent.RemoveChild(n)
			return nil
		})
	}
}

func codeLanguage(code *html.Node) string {
	class, _ := getAttr(code, "class")
	for _, c := range strings.Fields(class) {
		if strings.HasPrefix(c, fenceClassPrefix) {
			return strings.TrimPrefix(c, fenceClassPrefix)
		}
	}
	return ""
}

func formatCode(w io.Writer, lexer chroma.Lexer, source string) error {
	it, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return err
	}
	return highlightFormatter.Format(w, styles.Get(highlightStyle), it)
}

// writeHighlightCSS emits the stylesheet matching the class names used above.
func writeHighlightCSS(w io.Writer) error {
	return highlightFormatter.WriteCSS(w, styles.Get(highlightStyle))
}

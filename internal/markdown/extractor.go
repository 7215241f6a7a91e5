// Package markdown extracts link targets and anchor identifiers from Markdown
// content using goldmark, with inline HTML scanned by golang.org/x/net/html.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"

	"github.com/JakeFAU/md-check-link/internal/document"
)

// Extractor implements document.Extractor for GitHub-flavored Markdown.
type Extractor struct {
	md goldmark.Markdown
}

// NewExtractor builds an Extractor with the GFM extensions enabled so bare
// URLs are picked up as links.
func NewExtractor() *Extractor {
	return &Extractor{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Extract returns links in document order and the anchors headings and HTML
// elements define.
func (x *Extractor) Extract(content []byte) (document.Extraction, error) {
	root := x.md.Parser().Parse(text.NewReader(content))
	w := &walker{src: content, slugs: newSlugger()}
	if err := ast.Walk(root, w.visit); err != nil {
		return document.Extraction{}, fmt.Errorf("walk markdown: %w", err)
	}
	return w.out, nil
}

type walker struct {
	src   []byte
	slugs *slugger
	out   document.Extraction
}

func (w *walker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	switch node := n.(type) {
	case *ast.Heading:
		w.addAnchor(w.slugs.slug(nodeText(node, w.src)))
	case *ast.Link:
		w.addLink(string(node.Destination))
	case *ast.Image:
		w.addLink(string(node.Destination))
	case *ast.AutoLink:
		target := string(node.URL(w.src))
		if node.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(target), "mailto:") {
			target = "mailto:" + target
		}
		w.addLink(target)
	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			buf.Write(seg.Value(w.src))
		}
		w.scanHTML(buf.Bytes())
	case *ast.HTMLBlock:
		var buf bytes.Buffer
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(w.src))
		}
		if node.HasClosure() {
			buf.Write(node.ClosureLine.Value(w.src))
		}
		w.scanHTML(buf.Bytes())
	}
	return ast.WalkContinue, nil
}

// scanHTML records a[href], img[src], a[name] and any id attribute.
func (w *walker) scanHTML(fragment []byte) {
	z := html.NewTokenizer(bytes.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		tag := string(name)
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			switch {
			case string(key) == "id":
				w.addAnchor(string(val))
			case tag == "a" && string(key) == "name":
				w.addAnchor(string(val))
			case tag == "a" && string(key) == "href":
				w.addLink(string(val))
			case tag == "img" && string(key) == "src":
				w.addLink(string(val))
			}
		}
	}
}

func (w *walker) addLink(l string) {
	if l = strings.TrimSpace(l); l != "" {
		w.out.Links = append(w.out.Links, l)
	}
}

func (w *walker) addAnchor(id string) {
	if id != "" {
		w.out.Anchors = append(w.out.Anchors, id)
	}
}

// nodeText concatenates the literal text under n, skipping raw HTML.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	var collect func(ast.Node)
	collect = func(node ast.Node) {
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				b.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(t.Value)
			case *ast.RawHTML:
			default:
				collect(c)
			}
		}
	}
	collect(n)
	return b.String()
}

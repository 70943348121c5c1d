package extractor

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles Markdown files using goldmark. ATX headings
// become heading segments; all other top-level blocks become body
// segments. Markdown has no pages, so every segment reports page 0.
type MarkdownExtractor struct{}

func (p *MarkdownExtractor) Extract(r io.Reader, filename string) (*Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	b := &builder{}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if title != "" {
				b.addHeading(title, 0, title, node.Level)
			}
		default:
			if t := blockText(n, src); t != "" {
				b.add(t, 0)
			}
		}
	}

	return &Result{Segments: b.segs, TotalPages: pageCount(b.segs)}, nil
}

// blockText gets the text content of a goldmark AST node. Leaf blocks
// with no inline children (code fences) are read from their raw lines;
// everything else comes from the inline tree, so text is never collected
// twice.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		// Recurse for nested inlines and list items.
		if s := blockText(c, src); s != "" {
			if c.Type() == ast.TypeBlock && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(s)
		}
	}
	return strings.TrimSpace(buf.String())
}

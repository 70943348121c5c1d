package extractor

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLExtractor handles HTML files. h1..h6 elements become heading
// segments; runs of content elements between headings become body
// segments. HTML has no pages, so every segment reports page 0.
type HTMLExtractor struct{}

func (p *HTMLExtractor) Extract(r io.Reader, filename string) (*Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	b := &builder{}
	var body strings.Builder

	flushBody := func() {
		t := strings.TrimSpace(body.String())
		if t != "" {
			b.add(t, 0)
		}
		body.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				flushBody()
				if title := textContent(n); title != "" {
					b.addHeading(title, 0, title, level)
				}
				return // Heading text already extracted.
			}

			// Skip non-content elements.
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "blockquote", "pre":
				if t := textContent(n); t != "" {
					if body.Len() > 0 {
						body.WriteString("\n\n")
					}
					body.WriteString(t)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Walk <body> if present, otherwise the whole document.
	if bodyNode := findBody(doc); bodyNode != nil {
		walk(bodyNode)
	} else {
		walk(doc)
	}
	flushBody()

	return &Result{Segments: b.segs, TotalPages: pageCount(b.segs)}, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

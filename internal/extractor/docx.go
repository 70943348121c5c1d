package extractor

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXExtractor handles .docx files. DOCX has no fixed pagination, so
// every segment reports page 0.
type DOCXExtractor struct{}

func (p *DOCXExtractor) Extract(r io.Reader, filename string) (*Result, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "summarizer-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
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

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}

		level := docxHeadingLevel(para)
		text := docxParagraphText(para)

		if level > 0 && text != "" {
			flushBody()
			b.addHeading(text, 0, text, level)
		} else if text != "" {
			if body.Len() > 0 {
				body.WriteString("\n")
			}
			body.WriteString(text)
		} else {
			// Blank paragraph ends the running body segment.
			flushBody()
		}
	}
	flushBody()

	return &Result{Segments: b.segs, TotalPages: pageCount(b.segs)}, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	switch {
	case strings.EqualFold(style, "Title"):
		return 1
	case strings.EqualFold(style, "Subtitle"):
		return 2
	}
	for lvl := 1; lvl <= 6; lvl++ {
		if strings.EqualFold(style, fmt.Sprintf("Heading%d", lvl)) ||
			strings.EqualFold(style, fmt.Sprintf("heading %d", lvl)) {
			return lvl
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

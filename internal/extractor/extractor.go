package extractor

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jdrodriguez/document-summarizer/internal/document"
)

// Result is the output of one extraction pass over a single file.
type Result struct {
	Segments   []document.Segment
	TotalPages int // page count; 1 for non-paginated formats that yielded text
	Warnings   []string
}

// Extractor converts raw document bytes into an ordered segment sequence.
type Extractor interface {
	Extract(r io.Reader, filename string) (*Result, error)
}

// SupportedExtensions lists file extensions this engine can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".csv":
		return &CSVExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// FileType returns the manifest file_type value for a filename ("pdf",
// "docx", "md", ...).
func FileType(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// builder accumulates segments, assigning byte offsets into the full
// extracted text as it goes.
type builder struct {
	segs   []document.Segment
	offset int
}

func (b *builder) add(text string, page int) {
	b.addHeading(text, page, "", 0)
}

func (b *builder) addHeading(text string, page int, heading string, level int) {
	if text == "" {
		return
	}
	if len(b.segs) > 0 {
		b.offset += len(document.SegmentSeparator)
	}
	b.segs = append(b.segs, document.Segment{
		Text:        text,
		StartOffset: b.offset,
		EndOffset:   b.offset + len(text),
		Page:        page,
		Heading:     heading,
		Level:       level,
	})
	b.offset += len(text)
}

// pageCount reports the page total for non-paginated formats: 1 when any
// text was extracted, 0 otherwise. Segment pages stay 0 for these formats.
func pageCount(segs []document.Segment) int {
	if len(segs) > 0 {
		return 1
	}
	return 0
}

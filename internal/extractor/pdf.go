package extractor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFExtractor handles PDF files. It tries the Go library first,
// then falls back to pdftotext if available.
type PDFExtractor struct {
	FallbackPdftotext bool
}

func (p *PDFExtractor) Extract(r io.Reader, filename string) (*Result, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "summarizer-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	var warnings []string
	pages, err := extractPDFPages(tmpPath)
	if (err != nil || countPageText(pages) == 0) && p.FallbackPdftotext {
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("pdf_library: %s", err))
		}
		pages, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	b := &builder{}
	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		b.add(page, i+1)
	}

	return &Result{
		Segments:   b.segs,
		TotalPages: len(pages),
		Warnings:   warnings,
	}, nil
}

func extractPDFPages(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages[i-1] = text
	}
	return pages, nil
}

func extractPdftotext(path string) ([]string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// pdftotext separates pages with form feeds; output usually ends with
	// one, which would otherwise count as an extra empty page.
	pages := strings.Split(string(out), "\f")
	for len(pages) > 0 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages, nil
}

func countPageText(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}

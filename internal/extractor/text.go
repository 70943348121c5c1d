package extractor

import (
	"bufio"
	"io"
	"strings"
)

// TextExtractor handles plain text files. Each blank-line-delimited
// paragraph becomes one segment; page is always 0.
type TextExtractor struct{}

func (p *TextExtractor) Extract(r io.Reader, filename string) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := &builder{}
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			b.add(current.String(), 0)
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Result{Segments: b.segs, TotalPages: pageCount(b.segs)}, nil
}

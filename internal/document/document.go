package document

import "strings"

// SegmentSeparator joins segment texts when reconstructing a file's full
// extracted text. Offsets on Segment are relative to that joined text.
const SegmentSeparator = "\n\n"

// Segment is an atomic unit of extracted text with a known source position.
type Segment struct {
	Text        string // Extracted text content
	StartOffset int    // Byte offset into the full extracted text
	EndOffset   int    // StartOffset + len(Text)
	Page        int    // 1-based source page (0 if the format has no pages)
	Heading     string // Non-empty if this segment begins a structural section
	Level       int    // Heading level 1..6 (0 for body segments)
}

// IsHeading reports whether the segment was tagged as a section heading
// by its extractor.
func (s Segment) IsHeading() bool {
	return s.Heading != "" && s.Level > 0
}

// FullText reconstructs the file's full extracted text from its segments.
func FullText(segments []Segment) string {
	var sb strings.Builder
	for i, seg := range segments {
		if i > 0 {
			sb.WriteString(SegmentSeparator)
		}
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// OutlineEntry is one heading in a document's derived outline.
type OutlineEntry struct {
	Heading   string `json:"heading"`
	Level     int    `json:"level"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
}

// Chunk is a token-bounded slice of a document's extracted text, the unit
// handed to one summarization pass.
type Chunk struct {
	Index                     int    `json:"index"`
	Text                      string `json:"-"`
	TokenCount                int    `json:"token_count"`
	StartPage                 int    `json:"start_page"`
	EndPage                   int    `json:"end_page"`
	Heading                   string `json:"heading"`
	OverlapTokensWithPrevious int    `json:"overlap_tokens_with_previous"`
}

// Extraction warnings recorded on a FileResult. These are informational:
// a warned file still appears in the manifest, possibly with zero chunks.
const (
	WarnExtractionFailed = "extraction_failed"
	WarnEmptyExtraction  = "empty_extraction"
)

// FileResult aggregates everything the engine produced for one input file.
type FileResult struct {
	SourceFile         string         `json:"source_file"`
	Filename           string         `json:"filename"`
	FileType           string         `json:"file_type"`
	TotalPages         int            `json:"total_pages"`
	TotalTokens        int            `json:"total_tokens"`
	Outline            []OutlineEntry `json:"outline"`
	Chunks             []Chunk        `json:"chunks"`
	ExtractionWarnings []string       `json:"extraction_warnings"`
}

// NumChunks returns the number of chunks produced for the file.
func (r *FileResult) NumChunks() int {
	return len(r.Chunks)
}

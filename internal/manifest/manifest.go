// Package manifest materializes engine results: one text file per chunk
// plus the metadata.json that downstream summarization agents consume.
package manifest

import (
	"strings"

	"github.com/jdrodriguez/document-summarizer/internal/document"
)

// MetadataFile is the manifest filename inside the work directory.
const MetadataFile = "metadata.json"

// ChunksDir holds the materialized chunk text files.
const ChunksDir = "chunks"

// SummariesDir is created empty for the downstream summarization step.
const SummariesDir = "summaries"

// ModeSingleFile and ModeMultiFile are the manifest mode values.
const (
	ModeSingleFile = "single_file"
	ModeMultiFile  = "multi_file"
)

// ChunkEntry describes one materialized chunk in the manifest.
type ChunkEntry struct {
	Index                     int    `json:"index"`
	File                      string `json:"file"`
	TokenCount                int    `json:"token_count"`
	StartPage                 int    `json:"start_page"`
	EndPage                   int    `json:"end_page"`
	Heading                   string `json:"heading"`
	OverlapTokensWithPrevious int    `json:"overlap_tokens_with_previous"`
	FirstLine                 string `json:"first_line"`
}

// FileEntry describes one source file in a multi-file manifest.
type FileEntry struct {
	FileIndex          int                     `json:"file_index"`
	SourceFile         string                  `json:"source_file"`
	Filename           string                  `json:"filename"`
	FileType           string                  `json:"file_type"`
	TotalPages         int                     `json:"total_pages"`
	TotalTokens        int                     `json:"total_tokens"`
	NumChunks          int                     `json:"num_chunks"`
	Outline            []document.OutlineEntry `json:"outline"`
	ExtractionWarnings []string                `json:"extraction_warnings"`
	Chunks             []ChunkEntry            `json:"chunks"`
}

// SingleManifest is the metadata.json root for a single-file run.
type SingleManifest struct {
	Mode               string                  `json:"mode"`
	SourceFile         string                  `json:"source_file"`
	Filename           string                  `json:"filename"`
	FileType           string                  `json:"file_type"`
	TotalPages         int                     `json:"total_pages"`
	TotalTokens        int                     `json:"total_tokens"`
	MaxTokensPerChunk  int                     `json:"max_tokens_per_chunk"`
	OverlapTokens      int                     `json:"overlap_tokens"`
	NumChunks          int                     `json:"num_chunks"`
	Outline            []document.OutlineEntry `json:"outline"`
	ExtractionWarnings []string                `json:"extraction_warnings"`
	Chunks             []ChunkEntry            `json:"chunks"`
}

// MultiManifest is the metadata.json root for a directory run.
type MultiManifest struct {
	Mode              string      `json:"mode"`
	SourceDir         string      `json:"source_dir"`
	NumFiles          int         `json:"num_files"`
	TotalChunks       int         `json:"total_chunks"`
	TotalTokens       int         `json:"total_tokens"`
	MaxTokensPerChunk int         `json:"max_tokens_per_chunk"`
	OverlapTokens     int         `json:"overlap_tokens"`
	Files             []FileEntry `json:"files"`
}

// firstLine returns a single-line preview of a chunk's text.
func firstLine(text string) string {
	if len(text) > 120 {
		text = text[:120]
	}
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}

package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/jdrodriguez/document-summarizer/internal/document"
)

// json is configured for encoding/json-compatible output so manifests are
// byte-identical across runs and platforms.
var json = sonic.ConfigStd

// Assembler writes chunk files and the manifest into one work directory.
type Assembler struct {
	workDir   string
	maxTokens int
	overlap   int
}

// NewAssembler creates an assembler for the given work directory and run
// parameters. The parameters are recorded in the manifest so downstream
// consumers can tell how the chunks were produced.
func NewAssembler(workDir string, maxTokens, overlap int) *Assembler {
	return &Assembler{
		workDir:   workDir,
		maxTokens: maxTokens,
		overlap:   overlap,
	}
}

// WriteSingle materializes a single-file run: chunk files named
// chunk_<index>.txt plus metadata.json embedding the file's result.
func (a *Assembler) WriteSingle(result *document.FileResult) (*SingleManifest, error) {
	if err := a.prepareDirs(); err != nil {
		return nil, err
	}

	entries, err := a.writeChunks(result, "")
	if err != nil {
		return nil, err
	}

	m := &SingleManifest{
		Mode:               ModeSingleFile,
		SourceFile:         result.SourceFile,
		Filename:           result.Filename,
		FileType:           result.FileType,
		TotalPages:         result.TotalPages,
		TotalTokens:        result.TotalTokens,
		MaxTokensPerChunk:  a.maxTokens,
		OverlapTokens:      a.overlap,
		NumChunks:          result.NumChunks(),
		Outline:            outlineOrEmpty(result),
		ExtractionWarnings: warnings(result),
		Chunks:             entries,
	}
	if err := a.writeMetadata(m); err != nil {
		return nil, err
	}
	return m, nil
}

// WriteMulti materializes a directory run. Results must already be in
// deterministic enumeration order; each file gets a distinct chunk-file
// prefix (f01, f02, ...) so parallel producers never collide.
func (a *Assembler) WriteMulti(sourceDir string, results []*document.FileResult) (*MultiManifest, error) {
	if err := a.prepareDirs(); err != nil {
		return nil, err
	}

	m := &MultiManifest{
		Mode:              ModeMultiFile,
		SourceDir:         sourceDir,
		NumFiles:          len(results),
		MaxTokensPerChunk: a.maxTokens,
		OverlapTokens:     a.overlap,
		Files:             make([]FileEntry, 0, len(results)),
	}

	for i, result := range results {
		prefix := fmt.Sprintf("f%02d_", i+1)
		entries, err := a.writeChunks(result, prefix)
		if err != nil {
			return nil, err
		}
		m.Files = append(m.Files, FileEntry{
			FileIndex:          i + 1,
			SourceFile:         result.SourceFile,
			Filename:           result.Filename,
			FileType:           result.FileType,
			TotalPages:         result.TotalPages,
			TotalTokens:        result.TotalTokens,
			NumChunks:          result.NumChunks(),
			Outline:            outlineOrEmpty(result),
			ExtractionWarnings: warnings(result),
			Chunks:             entries,
		})
		m.TotalChunks += result.NumChunks()
		m.TotalTokens += result.TotalTokens
	}

	if err := a.writeMetadata(m); err != nil {
		return nil, err
	}
	return m, nil
}

// ChunkFilename returns the chunk file name for a file-scoped prefix and
// a 0-based chunk index.
func ChunkFilename(prefix string, index int) string {
	return fmt.Sprintf("%schunk_%03d.txt", prefix, index)
}

func (a *Assembler) writeChunks(result *document.FileResult, prefix string) ([]ChunkEntry, error) {
	entries := make([]ChunkEntry, 0, len(result.Chunks))
	for _, chunk := range result.Chunks {
		name := ChunkFilename(prefix, chunk.Index)
		path := filepath.Join(a.workDir, ChunksDir, name)
		if err := os.WriteFile(path, []byte(chunk.Text), 0o644); err != nil {
			return nil, fmt.Errorf("write chunk %s: %w", name, err)
		}
		entries = append(entries, ChunkEntry{
			Index:                     chunk.Index,
			File:                      filepath.ToSlash(filepath.Join(ChunksDir, name)),
			TokenCount:                chunk.TokenCount,
			StartPage:                 chunk.StartPage,
			EndPage:                   chunk.EndPage,
			Heading:                   chunk.Heading,
			OverlapTokensWithPrevious: chunk.OverlapTokensWithPrevious,
			FirstLine:                 firstLine(chunk.Text),
		})
	}
	return entries, nil
}

func (a *Assembler) prepareDirs() error {
	for _, dir := range []string{ChunksDir, SummariesDir} {
		if err := os.MkdirAll(filepath.Join(a.workDir, dir), 0o755); err != nil {
			return fmt.Errorf("create %s dir: %w", dir, err)
		}
	}
	return nil
}

func (a *Assembler) writeMetadata(m any) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')
	path := filepath.Join(a.workDir, MetadataFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", MetadataFile, err)
	}
	return nil
}

// warnings never returns nil so the manifest always carries an array,
// not null.
func warnings(result *document.FileResult) []string {
	if result.ExtractionWarnings == nil {
		return []string{}
	}
	return result.ExtractionWarnings
}

func outlineOrEmpty(result *document.FileResult) []document.OutlineEntry {
	if result.Outline == nil {
		return []document.OutlineEntry{}
	}
	return result.Outline
}

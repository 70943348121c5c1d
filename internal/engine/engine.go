// Package engine runs the extract -> outline -> chunk pipeline over a
// file or a directory and materializes the results through the manifest
// assembler.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jdrodriguez/document-summarizer/internal/chunker"
	"github.com/jdrodriguez/document-summarizer/internal/document"
	"github.com/jdrodriguez/document-summarizer/internal/extractor"
	"github.com/jdrodriguez/document-summarizer/internal/manifest"
	"github.com/jdrodriguez/document-summarizer/internal/outline"
)

// Fatal run conditions. Per-file failures in directory mode are NOT
// errors; they surface as extraction_warnings inside the manifest.
var (
	ErrPathNotFound      = errors.New("input path does not exist")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoSupportedFiles  = errors.New("no supported files found")
	ErrAllFilesFailed    = errors.New("every file failed extraction")
)

// Options control one run of the engine.
type Options struct {
	MaxTokens            int
	OverlapTokens        int
	WorkerCount          int
	PDFFallbackPdftotext bool
}

// Engine turns input documents into token-bounded chunks plus a manifest.
type Engine struct {
	opts Options
	log  *slog.Logger
}

// New creates an engine. A non-positive MaxTokens falls back to 4000, a
// negative overlap becomes 0, and WorkerCount defaults to one worker.
func New(opts Options, log *slog.Logger) *Engine {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4000
	}
	if opts.OverlapTokens < 0 {
		opts.OverlapTokens = 0
	}
	if opts.OverlapTokens >= opts.MaxTokens {
		opts.OverlapTokens = opts.MaxTokens - 1
	}
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{opts: opts, log: log}
}

// FileReport summarizes one processed file for the run report.
type FileReport struct {
	Filename  string   `json:"filename"`
	NumChunks int      `json:"num_chunks"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Report summarizes a finished run.
type Report struct {
	RunID       string       `json:"run_id"`
	Status      string       `json:"status"`
	Mode        string       `json:"mode"`
	OutputDir   string       `json:"output_dir"`
	NumFiles    int          `json:"num_files"`
	TotalChunks int          `json:"total_chunks"`
	TotalTokens int          `json:"total_tokens"`
	Files       []FileReport `json:"files"`
}

// Run processes inputPath (file or directory) and writes all output into
// workDir. Fatal conditions abort before any output is written.
func (e *Engine) Run(ctx context.Context, inputPath, workDir string) (*Report, error) {
	runID := uuid.NewString()
	log := e.log.With("run_id", runID)

	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return nil, fmt.Errorf("resolve input path: %w", err)
	}
	info, err := os.Stat(absInput)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", inputPath, ErrPathNotFound)
		}
		return nil, fmt.Errorf("stat input path: %w", err)
	}

	if info.IsDir() {
		return e.runDirectory(ctx, runID, absInput, workDir, log)
	}
	return e.runSingle(runID, absInput, workDir, log)
}

func (e *Engine) runSingle(runID, path, workDir string, log *slog.Logger) (*Report, error) {
	if !extractor.IsSupportedExtension(path) {
		return nil, fmt.Errorf("%s: %w", filepath.Ext(path), ErrUnsupportedFormat)
	}

	result := e.processFile(path, log)
	if result.NumChunks() == 0 {
		return nil, fmt.Errorf("%s: %w", result.Filename, ErrAllFilesFailed)
	}

	asm := manifest.NewAssembler(workDir, e.opts.MaxTokens, e.opts.OverlapTokens)
	if _, err := asm.WriteSingle(result); err != nil {
		return nil, err
	}

	log.Info("single-file run complete",
		"file", result.Filename,
		"chunks", result.NumChunks(),
		"tokens", result.TotalTokens,
	)
	return &Report{
		RunID:       runID,
		Status:      "success",
		Mode:        manifest.ModeSingleFile,
		OutputDir:   workDir,
		NumFiles:    1,
		TotalChunks: result.NumChunks(),
		TotalTokens: result.TotalTokens,
		Files:       []FileReport{fileReport(result)},
	}, nil
}

func (e *Engine) runDirectory(ctx context.Context, runID, dir, workDir string, log *slog.Logger) (*Report, error) {
	files, err := findSupportedFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoSupportedFiles)
	}
	log.Info("directory run", "dir", dir, "files", len(files))

	// Files are independent: process on a bounded worker pool, collect
	// into an indexed slice so manifest order stays deterministic.
	results := make([]*document.FileResult, len(files))
	sem := make(chan struct{}, e.opts.WorkerCount)
	var wg sync.WaitGroup

	for i, path := range files {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = e.processFile(path, log)
		}(i, path)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.NumChunks() == 0 {
			failed++
		}
	}
	if failed == len(results) {
		return nil, fmt.Errorf("%s: %w", dir, ErrAllFilesFailed)
	}

	asm := manifest.NewAssembler(workDir, e.opts.MaxTokens, e.opts.OverlapTokens)
	m, err := asm.WriteMulti(dir, results)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:       runID,
		Status:      "success",
		Mode:        manifest.ModeMultiFile,
		OutputDir:   workDir,
		NumFiles:    len(results),
		TotalChunks: m.TotalChunks,
		TotalTokens: m.TotalTokens,
		Files:       make([]FileReport, 0, len(results)),
	}
	for _, r := range results {
		report.Files = append(report.Files, fileReport(r))
	}
	log.Info("directory run complete",
		"files", len(results),
		"failed", failed,
		"chunks", m.TotalChunks,
		"tokens", m.TotalTokens,
	)
	return report, nil
}

// processFile runs the full per-file pipeline. It never returns an error:
// extraction problems become warnings on the result and the file simply
// contributes zero chunks.
func (e *Engine) processFile(path string, log *slog.Logger) *document.FileResult {
	filename := filepath.Base(path)
	result := &document.FileResult{
		SourceFile:         path,
		Filename:           filename,
		FileType:           extractor.FileType(filename),
		ExtractionWarnings: []string{},
		Outline:            []document.OutlineEntry{},
		Chunks:             []document.Chunk{},
	}

	ex, err := extractor.ForFile(filename)
	if err != nil {
		result.ExtractionWarnings = append(result.ExtractionWarnings, document.WarnExtractionFailed)
		return result
	}
	if pdf, ok := ex.(*extractor.PDFExtractor); ok {
		pdf.FallbackPdftotext = e.opts.PDFFallbackPdftotext
	}

	f, err := os.Open(path)
	if err != nil {
		log.Warn("open failed", "file", filename, "error", err)
		result.ExtractionWarnings = append(result.ExtractionWarnings, document.WarnExtractionFailed)
		return result
	}
	defer f.Close()

	extracted, err := ex.Extract(f, filename)
	if err != nil {
		log.Warn("extraction failed", "file", filename, "error", err)
		result.ExtractionWarnings = append(result.ExtractionWarnings, document.WarnExtractionFailed)
		return result
	}

	result.TotalPages = extracted.TotalPages
	result.ExtractionWarnings = append(result.ExtractionWarnings, extracted.Warnings...)

	if len(extracted.Segments) == 0 {
		// Extraction ran but found no usable text, e.g. an image-only
		// scan that would need OCR.
		log.Warn("empty extraction", "file", filename)
		result.ExtractionWarnings = append(result.ExtractionWarnings, document.WarnEmptyExtraction)
		return result
	}

	result.TotalTokens = chunker.CountTokens(document.FullText(extracted.Segments))
	result.Outline = outline.Analyze(extracted.Segments, extracted.TotalPages, filename)
	result.Chunks = chunker.Split(extracted.Segments, chunker.Config{
		MaxTokens:     e.opts.MaxTokens,
		OverlapTokens: e.opts.OverlapTokens,
	})
	fillHeadings(result.Chunks, result.Outline)

	log.Info("processed file",
		"file", filename,
		"pages", result.TotalPages,
		"tokens", result.TotalTokens,
		"chunks", result.NumChunks(),
	)
	return result
}

// fillHeadings assigns an outline heading to chunks whose extractor gave
// no heading signal: the nearest entry starting at or before the chunk's
// first page, or the first entry when pages are unknown.
func fillHeadings(chunks []document.Chunk, entries []document.OutlineEntry) {
	if len(entries) == 0 {
		return
	}
	for i := range chunks {
		if chunks[i].Heading != "" {
			continue
		}
		heading := entries[0].Heading
		for _, en := range entries {
			if en.StartPage > chunks[i].StartPage {
				break
			}
			heading = en.Heading
		}
		chunks[i].Heading = heading
	}
}

// findSupportedFiles enumerates supported documents in dir,
// non-recursive, in lexicographic order.
func findSupportedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if extractor.IsSupportedExtension(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func fileReport(r *document.FileResult) FileReport {
	return FileReport{
		Filename:  r.Filename,
		NumChunks: r.NumChunks(),
		Warnings:  r.ExtractionWarnings,
	}
}

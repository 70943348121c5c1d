package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/jdrodriguez/document-summarizer/internal/document"
	"github.com/jdrodriguez/document-summarizer/internal/manifest"
)

func testEngine(opts Options) *Engine {
	return New(opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func readManifest(t *testing.T, workDir string, v any) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(workDir, manifest.MetadataFile))
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if err := sonic.ConfigStd.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal metadata: %v", err)
	}
}

func TestRun_SingleFile(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := writeFile(t, in, "notes.txt", "First paragraph of the notes.\n\nSecond paragraph of the notes.\n")

	eng := testEngine(Options{})
	report, err := eng.Run(context.Background(), path, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Status != "success" || report.Mode != manifest.ModeSingleFile {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.NumFiles != 1 || report.TotalChunks != 1 {
		t.Errorf("expected one file and one chunk, got %+v", report)
	}
	if report.RunID == "" {
		t.Errorf("expected a run id")
	}

	var m manifest.SingleManifest
	readManifest(t, out, &m)
	if m.Mode != manifest.ModeSingleFile || m.Filename != "notes.txt" || m.FileType != "txt" {
		t.Errorf("unexpected manifest: %+v", m)
	}
	if m.NumChunks != 1 || len(m.Chunks) != 1 {
		t.Fatalf("expected 1 chunk entry, got %+v", m)
	}

	data, err := os.ReadFile(filepath.Join(out, manifest.ChunksDir, "chunk_000.txt"))
	if err != nil {
		t.Fatalf("read chunk: %v", err)
	}
	want := "First paragraph of the notes.\n\nSecond paragraph of the notes."
	if string(data) != want {
		t.Errorf("expected %q, got %q", want, string(data))
	}
}

func TestRun_Directory(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "b.md", "# Second Doc\n\nBody of the second document.\n")
	writeFile(t, in, "a.txt", "Body of the first document.\n")
	writeFile(t, in, "skip.xyz", "not a document format we know")

	eng := testEngine(Options{WorkerCount: 4})
	report, err := eng.Run(context.Background(), in, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Mode != manifest.ModeMultiFile || report.NumFiles != 2 {
		t.Errorf("unexpected report: %+v", report)
	}

	var m manifest.MultiManifest
	readManifest(t, out, &m)
	if m.NumFiles != 2 || len(m.Files) != 2 {
		t.Fatalf("expected 2 file entries, got %+v", m)
	}
	// Lexicographic enumeration order, regardless of worker scheduling.
	if m.Files[0].Filename != "a.txt" || m.Files[1].Filename != "b.md" {
		t.Errorf("unexpected file order: %q, %q", m.Files[0].Filename, m.Files[1].Filename)
	}
	if m.Files[0].Chunks[0].File != "chunks/f01_chunk_000.txt" {
		t.Errorf("unexpected chunk path: %v", m.Files[0].Chunks[0].File)
	}
	if m.TotalChunks != m.Files[0].NumChunks+m.Files[1].NumChunks {
		t.Errorf("total_chunks %d does not match per-file sum", m.TotalChunks)
	}
	if m.TotalTokens != m.Files[0].TotalTokens+m.Files[1].TotalTokens {
		t.Errorf("total_tokens %d does not match per-file sum", m.TotalTokens)
	}
}

func TestRun_DirectoryWithFailedFile(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "good.txt", "Perfectly fine text content.\n")
	writeFile(t, in, "notes.md", "# Notes\n\nAlso perfectly fine.\n")
	writeFile(t, in, "broken.docx", "this is not a zip archive")

	eng := testEngine(Options{})
	report, err := eng.Run(context.Background(), in, out)
	if err != nil {
		t.Fatalf("good files should keep the run alive: %v", err)
	}
	if report.NumFiles != 3 {
		t.Errorf("failed file should still appear in the report: %+v", report)
	}

	var m manifest.MultiManifest
	readManifest(t, out, &m)
	broken := m.Files[0]
	if broken.Filename != "broken.docx" {
		t.Fatalf("unexpected order: %+v", m.Files)
	}
	if len(broken.ExtractionWarnings) != 1 || broken.ExtractionWarnings[0] != document.WarnExtractionFailed {
		t.Errorf("expected extraction_failed warning, got %v", broken.ExtractionWarnings)
	}
	if broken.NumChunks != 0 || len(broken.Chunks) != 0 {
		t.Errorf("failed file should have no chunks: %+v", broken)
	}
	if m.Files[1].NumChunks == 0 {
		t.Errorf("good file should have chunks: %+v", m.Files[1])
	}
}

func TestRun_PathNotFound(t *testing.T) {
	eng := testEngine(Options{})
	_, err := eng.Run(context.Background(), "/nonexistent/input/path", t.TempDir())
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}
}

func TestRun_UnsupportedSingleFile(t *testing.T) {
	in := t.TempDir()
	path := writeFile(t, in, "data.xlsx", "binary-ish")

	eng := testEngine(Options{})
	_, err := eng.Run(context.Background(), path, t.TempDir())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestRun_NoSupportedFiles(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "a.xyz", "nope")

	eng := testEngine(Options{})
	_, err := eng.Run(context.Background(), in, t.TempDir())
	if !errors.Is(err, ErrNoSupportedFiles) {
		t.Errorf("expected ErrNoSupportedFiles, got %v", err)
	}
}

func TestRun_AllFilesFailed(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "one.docx", "garbage")
	writeFile(t, in, "two.docx", "more garbage")

	eng := testEngine(Options{})
	out := t.TempDir()
	_, err := eng.Run(context.Background(), in, out)
	if !errors.Is(err, ErrAllFilesFailed) {
		t.Errorf("expected ErrAllFilesFailed, got %v", err)
	}
	// Fatal runs write no manifest.
	if _, err := os.Stat(filepath.Join(out, manifest.MetadataFile)); !os.IsNotExist(err) {
		t.Errorf("expected no metadata.json after a failed run")
	}
}

func TestRun_EmptySingleFile(t *testing.T) {
	in := t.TempDir()
	path := writeFile(t, in, "empty.txt", "")

	eng := testEngine(Options{})
	_, err := eng.Run(context.Background(), path, t.TempDir())
	if !errors.Is(err, ErrAllFilesFailed) {
		t.Errorf("expected ErrAllFilesFailed for an empty file, got %v", err)
	}
}

func TestRun_Deterministic(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "a.txt", "Stable first document body.\n")
	writeFile(t, in, "b.txt", "Stable second document body.\n")

	run := func() []byte {
		out := t.TempDir()
		eng := testEngine(Options{WorkerCount: 4})
		if _, err := eng.Run(context.Background(), in, out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(out, manifest.MetadataFile))
		if err != nil {
			t.Fatalf("read metadata: %v", err)
		}
		return data
	}

	if string(run()) != string(run()) {
		t.Errorf("identical runs produced different metadata.json")
	}
}

func TestFillHeadings(t *testing.T) {
	entries := []document.OutlineEntry{
		{Heading: "Intro", StartPage: 1},
		{Heading: "Methods", StartPage: 5},
	}
	chunks := []document.Chunk{
		{StartPage: 1},
		{StartPage: 4},
		{StartPage: 6},
		{StartPage: 2, Heading: "Explicit"},
	}
	fillHeadings(chunks, entries)

	want := []string{"Intro", "Intro", "Methods", "Explicit"}
	for i, w := range want {
		if chunks[i].Heading != w {
			t.Errorf("chunk %d: expected heading %q, got %q", i, w, chunks[i].Heading)
		}
	}
}

func TestFindSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "z.txt", "z")
	writeFile(t, dir, "a.md", "a")
	writeFile(t, dir, "ignore.bin", "x")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "sub"), "nested.txt", "hidden")

	files, err := findSupportedFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{filepath.Join(dir, "a.md"), filepath.Join(dir, "z.txt")}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Errorf("expected %v, got %v", want, files)
	}
}

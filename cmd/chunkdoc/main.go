// Command chunkdoc extracts text from documents (PDF, DOCX, TXT,
// Markdown, HTML, CSV) and splits it into token-bounded, overlapping
// chunks for parallel summarization. It accepts a single file or a
// directory of files and writes metadata.json plus one text file per
// chunk into the output directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/bytedance/sonic"

	"github.com/jdrodriguez/document-summarizer/internal/config"
	"github.com/jdrodriguez/document-summarizer/internal/engine"
)

const (
	exitFatal = 1
	// exitNoUsableInput signals that no supported files were found or
	// every file failed extraction. Per-file failures inside an
	// otherwise successful directory run do NOT use this: they are
	// reported via extraction_warnings in metadata.json.
	exitNoUsableInput = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	maxTokens := flag.Int("max-tokens", 0, "target max tokens per chunk (default 4000)")
	overlap := flag.Int("overlap", -1, "token overlap between chunks (default 200)")
	workers := flag.Int("workers", 0, "parallel files in directory mode (default: number of CPUs)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [flags] <input_path> <output_dir>\n\n"+
				"  input_path: a single document or a directory of documents\n"+
				"  output_dir: where metadata.json and chunks/ are written\n\nFlags:\n",
			os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return exitFatal
	}

	cfg := config.Load()
	if *maxTokens > 0 {
		cfg.MaxTokens = *maxTokens
	}
	if *overlap >= 0 {
		cfg.OverlapTokens = *overlap
	}
	if *workers > 0 {
		cfg.WorkerCount = *workers
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid parameters", "error", err)
		return exitFatal
	}

	eng := engine.New(engine.Options{
		MaxTokens:            cfg.MaxTokens,
		OverlapTokens:        cfg.OverlapTokens,
		WorkerCount:          cfg.WorkerCount,
		PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
	}, log)

	report, err := eng.Run(context.Background(), flag.Arg(0), flag.Arg(1))
	if err != nil {
		log.Error("run failed", "error", err)
		if errors.Is(err, engine.ErrNoSupportedFiles) || errors.Is(err, engine.ErrAllFilesFailed) {
			return exitNoUsableInput
		}
		return exitFatal
	}

	// Final status JSON on stdout; the orchestrator parses this.
	out, err := sonic.ConfigStd.Marshal(report)
	if err != nil {
		log.Error("marshal report", "error", err)
		return exitFatal
	}
	fmt.Println(string(out))
	return 0
}

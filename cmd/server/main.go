// Command server exposes the chunking engine over HTTP for callers that
// prefer a service to the chunkdoc CLI.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jdrodriguez/document-summarizer/internal/api"
	"github.com/jdrodriguez/document-summarizer/internal/config"
	"github.com/jdrodriguez/document-summarizer/internal/engine"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	eng := engine.New(engine.Options{
		MaxTokens:            cfg.MaxTokens,
		OverlapTokens:        cfg.OverlapTokens,
		WorkerCount:          cfg.WorkerCount,
		PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
	}, log)

	srv := api.NewServer(eng, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting chunkdoc server", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

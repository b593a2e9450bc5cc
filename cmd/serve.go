package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Yates-Labs/lectern/internal/config"
	"github.com/Yates-Labs/lectern/internal/orchestrator"
	"github.com/Yates-Labs/lectern/internal/server"
)

var (
	serveAddress string
	serveDocsDir string
	serveStatic  string
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question answering API over HTTP",
	Long: `Start the HTTP server exposing the question answering API.

On startup the configured docs folder is ingested into the vector store,
then the folder is watched so new or rewritten course scripts are indexed
as they land.

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings and the chat model
  MILVUS_ADDRESS     - Milvus server address (default: localhost:19530)

Examples:
  lectern serve
  lectern serve --address :8080 --docs ./course-scripts
  lectern serve --static ./frontend --no-watch`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveDocsDir, "docs", "", "Course documents folder (overrides config)")
	serveCmd.Flags().StringVar(&serveStatic, "static", "", "Static files directory to serve at the site root")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Disable the docs folder watcher")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serveAddress != "" {
		cfg.Server.Address = serveAddress
	}
	if serveDocsDir != "" {
		cfg.Server.DocsDir = serveDocsDir
	}
	if serveStatic != "" {
		cfg.Server.StaticDir = serveStatic
	}
	if serveNoWatch {
		cfg.Server.WatchDocs = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := orchestrator.New(ctx, cfg.Pipeline())
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Close()

	if _, err := os.Stat(cfg.Server.DocsDir); err == nil {
		courses, chunks, err := pipeline.IngestFolder(ctx, cfg.Server.DocsDir)
		if err != nil {
			log.Printf("[Serve] Startup ingestion: %v", err)
		} else {
			log.Printf("[Serve] Loaded %d courses (%d chunks) from %s", courses, chunks, cfg.Server.DocsDir)
		}

		if cfg.Server.WatchDocs {
			go func() {
				if err := pipeline.Watch(ctx, cfg.Server.DocsDir); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("[Serve] Docs watcher stopped: %v", err)
				}
			}()
		}
	} else {
		log.Printf("[Serve] Docs folder %s not found, starting with an empty index", cfg.Server.DocsDir)
	}

	srv := server.New(pipeline, pipeline.Sessions(), cfg.Server.StaticDir)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Serve] Listening on %s", cfg.Server.Address)
		errCh <- srv.Start(cfg.Server.Address)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

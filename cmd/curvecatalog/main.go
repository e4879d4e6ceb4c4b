package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vjranagit/curvecatalog/internal/config"
	"github.com/vjranagit/curvecatalog/pkg/api"
	"github.com/vjranagit/curvecatalog/pkg/catalog"
	"github.com/vjranagit/curvecatalog/pkg/docs"
	"github.com/vjranagit/curvecatalog/pkg/types"
)

const (
	version = "0.3.0"
)

func main() {
	render := flag.Bool("render", false, "render all catalog pages as Markdown into the docs directory and exit")
	flag.Parse()

	fmt.Printf("curvecatalog v%s\n", version)
	fmt.Println("Treasury research data catalog")
	fmt.Println()

	// Load configuration
	cfg := config.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Configuration loaded:")
	log.Printf("  Listen Address: %s", cfg.Server.ListenAddr)
	log.Printf("  Catalog Path: %s", cfg.Catalog.Path)
	log.Printf("  Compression Level: %d", cfg.Catalog.CompressionLevel)
	log.Printf("  Journal Enabled: %v", cfg.Catalog.EnableJournal)

	// Open catalog
	log.Println("Opening catalog...")
	cat, err := catalog.Open(cfg.ToCatalogConfig())
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer cat.Close()

	log.Println("Catalog opened")

	if *render {
		if err := renderAll(cat, cfg.Catalog.DocsDir); err != nil {
			log.Fatalf("Render failed: %v", err)
		}
		return
	}

	// Create API server
	log.Println("Starting API server...")
	cache := catalog.NewDocumentCache(cfg.Cache.Capacity, cfg.Cache.TTL)
	server := api.NewServer(cfg.Server.ListenAddr, cat, cache)

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on %s", cfg.Server.ListenAddr)
		if err := server.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped successfully")
}

// renderAll writes every catalog page as a Markdown file under dir.
func renderAll(cat catalog.Catalog, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ctx := context.Background()

	dataframes, err := cat.ListDataframes(ctx)
	if err != nil {
		return err
	}
	for _, df := range dataframes {
		var pl *types.Pipeline
		if len(df.PipelineIDs) > 0 {
			pl, err = cat.GetPipeline(ctx, df.PipelineIDs[0])
			if err != nil && !errors.Is(err, catalog.ErrNotFound) {
				return err
			}
		}

		path := filepath.Join(dir, docs.DataframePageFilename(df.ID))
		if err := os.WriteFile(path, docs.RenderDataframePage(df, pl), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Printf("Rendered %s", path)
	}

	pipelines, err := cat.ListPipelines(ctx)
	if err != nil {
		return err
	}
	for _, pl := range pipelines {
		path := filepath.Join(dir, docs.PipelinePageFilename(pl.ID))
		if err := os.WriteFile(path, docs.RenderPipelinePage(pl), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Printf("Rendered %s", path)
	}

	log.Printf("Rendered %d dataframe and %d pipeline pages", len(dataframes), len(pipelines))
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mumo-labs/ingest/internal/api"
	"github.com/mumo-labs/ingest/internal/logstore"

	"github.com/spf13/cobra"
)

var (
	serveHost      string
	servePort      int
	dataFile       string
	indexFile      string
	secret         string
	jaegerEndpoint string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the record log server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to listen on")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to listen on")
	serveCmd.Flags().StringVarP(&dataFile, "data-file", "d", "data/data.bin", "Path to store incoming data")
	serveCmd.Flags().StringVarP(&indexFile, "index-file", "i", "data/indices.bin", "Path to store index entries")
	serveCmd.Flags().StringVarP(&secret, "secret", "s", "", "Secret required as the key query parameter")
	serveCmd.Flags().StringVar(&jaegerEndpoint, "jaeger-endpoint", "", "Jaeger collector endpoint for tracing (disabled when empty)")
}

func runServe(cmd *cobra.Command, args []string) error {
	for _, path := range []string{dataFile, indexFile} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory for %s: %w", path, err)
			}
		}
	}

	store, err := logstore.Open(dataFile, indexFile)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	var tracer *api.Tracer
	if jaegerEndpoint != "" {
		tracer, err = api.NewTracer("ingestd", jaegerEndpoint)
		if err != nil {
			return fmt.Errorf("failed to set up tracing: %w", err)
		}
	}

	srv := api.NewServer(store, api.Config{Secret: secret, Tracer: tracer})
	addr := fmt.Sprintf("%s:%d", serveHost, servePort)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if secret != "" {
			log.Printf("Starting server on %s with a secret\n", addr)
		} else {
			log.Printf("Starting server on %s with no secret\n", addr)
		}
		if err := srv.Start(addr); err != nil {
			log.Printf("Server error: %v\n", err)
			cancel()
		}
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, initiating shutdown\n", sig)
	case <-ctx.Done():
		log.Println("Shutting down due to error")
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pevans/mipsize/history"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long in-flight requests may run after a stop
// signal.
const shutdownTimeout = 30 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve size lookups over HTTP",
		Long: `Serve starts an HTTP API:

  POST   /api/v1/sizes         {"path": "<model>-init.csv"}
  GET    /api/v1/lookups       recorded lookups (history enabled only)
  GET    /api/v1/lookups/:id
  DELETE /api/v1/lookups/:id`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", "", "Listen address (MIPSIZE_SERVER_ADDR)")
	cmd.Flags().Bool("history", false, "Record lookups in the history database")
	addCatalogFlags(cmd)

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	var store *history.LookupStore
	if settings.HistoryEnabled {
		log.Printf("Opening lookup history: %s", settings.HistoryDSN)
		store, err = openHistory(settings.HistoryDSN)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	server := history.NewAPIServer(newResolver(settings), store)
	httpServer := &http.Server{
		Addr:              settings.ServerAddr,
		Handler:           server.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting mipsize API server on http://%s/api/v1", settings.ServerAddr)
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("Shutting down gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Println("Shutdown timeout exceeded, forcing exit")
		return err
	}

	log.Println("Server stopped")
	return nil
}

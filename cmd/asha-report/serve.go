package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/asha.report/internal/api"
	"github.com/banshee-data/asha.report/internal/db"
	"github.com/banshee-data/asha.report/internal/indicators"
	"github.com/banshee-data/asha.report/internal/timeutil"
)

func handleServe(args []string, stderr io.Writer) error {
	fs := newFlagSet("serve", stderr)
	common := registerCommonFlags(fs)
	listen := fs.String("listen", "", "Listen address (default from config, else :8080)")
	devMode := fs.Bool("dev", false, "Seed demo workers, records and targets for the current month")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := common.validate(); err != nil {
		return err
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	addr := *listen
	if addr == "" {
		addr = cfg.GetListen()
	}

	store, err := db.NewDB(*common.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *devMode {
		period := indicators.PeriodOf(timeutil.InLocation(timeutil.RealClock{}, cfg.GetLocation()).Now())
		if err := store.SeedDemo(ctx, period); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		log.Printf("seeded demo data for %s", period)
	}

	mux := api.NewServer(store, common.dataSource(cfg, store), cfg).ServeMux()
	if err := store.AttachAdminRoutes(mux); err != nil {
		return fmt.Errorf("failed to attach admin routes: %w", err)
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (source=%s, db=%s)", addr, *common.source, *common.dbPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("Graceful shutdown complete")
	return nil
}

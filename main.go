package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/auditor/config"
	"github.com/seo-optimizer/auditor/report"
	"github.com/seo-optimizer/auditor/session"
)

func setupGinMode(mode string) {
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}

func main() {
	target := flag.String("url", "", "Audit a single URL, print the text report and exit")
	flag.Parse()

	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *target != "" {
		if err := runOnce(ctx, cfg, *target, os.Stdout); err != nil {
			log.Fatalf("Audit failed: %v", err)
		}
		return
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server shut down gracefully")
}

// runOnce audits one URL and writes the text report to w
func runOnce(ctx context.Context, cfg *config.Config, rawURL string, w io.Writer) error {
	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	sess := session.New("cli", generator)
	if _, err := sess.Submit(ctx, rawURL); err != nil {
		return err
	}
	return report.RenderText(w, report.Build(sess.Snapshot()))
}

func run(ctx context.Context, cfg *config.Config) error {
	setupGinMode(cfg.GinMode)

	srv, err := newServer(cfg)
	if err != nil {
		return err
	}
	defer srv.close()

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.router(),
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("Server starting on http://localhost:%s\n", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown error: %w", err)
	}
	return nil
}

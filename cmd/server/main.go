package main

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

	"github.com/shopscout/backend/config"
	httpDelivery "github.com/shopscout/backend/internal/delivery/http"
	"github.com/shopscout/backend/internal/infrastructure/extractor"
	"github.com/shopscout/backend/internal/infrastructure/fetcher"
	"github.com/shopscout/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ShopScout Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	pageClient := fetcher.NewClient(fetcher.Config{
		Timeout: cfg.Fetcher.Timeout,
		Policy: fetcher.RetryPolicy{
			MaxAttempts:   cfg.Fetcher.MaxAttempts,
			BackoffBase:   cfg.Fetcher.BackoffBase,
			BackoffJitter: cfg.Fetcher.BackoffJitter,
			PacingMin:     cfg.Fetcher.PacingMin,
			PacingMax:     cfg.Fetcher.PacingMax,
		},
		MaxBodyBytes:      cfg.Fetcher.MaxBodyBytes,
		TLSFingerprint:    cfg.Fetcher.TLSFingerprint,
		RequestsPerMinute: cfg.RateLimit.Upstream,
	})
	defer pageClient.Close()

	log.Printf("Fetcher: attempts=%d, timeout=%s, tls_fingerprint=%v, upstream=%d/min",
		cfg.Fetcher.MaxAttempts,
		cfg.Fetcher.Timeout,
		cfg.Fetcher.TLSFingerprint,
		cfg.RateLimit.Upstream)

	snapdeal := extractor.NewSnapdeal(cfg.Sites.SnapdealBaseURL, cfg.Sites.MaxCards)
	shopclues := extractor.NewShopClues(cfg.Sites.ShopCluesBaseURL, cfg.Sites.MaxCards)
	log.Printf("Sources: snapdeal=%s, shopclues=%s", cfg.Sites.SnapdealBaseURL, cfg.Sites.ShopCluesBaseURL)

	// Initialize usecase layer
	productService := usecase.NewProductService(pageClient, snapdeal, shopclues)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(productService)

	// Setup router
	router, ipLimiter := httpDelivery.SetupRouter(cfg, handler)
	defer ipLimiter.Stop()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Shutdown signal received: %s", sig)

	// In-flight searches may be sleeping between attempts
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shut down: %v", err)
	} else {
		log.Printf("Server stopped")
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	gommonlog "github.com/labstack/gommon/log"

	"github.com/xiaot623/gogo/replay/internal/config"
	"github.com/xiaot623/gogo/replay/internal/repository"
	"github.com/xiaot623/gogo/replay/internal/service"
	handler "github.com/xiaot623/gogo/replay/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting replay server...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Results: %s", cfg.ResultsDir)
	log.Printf("Database: %s", cfg.DatabaseURL)

	// Initialize extraction catalog
	catalog, err := repository.NewSQLiteCatalog(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize catalog: %v", err)
	}
	defer catalog.Close()

	// Initialize service
	svc := service.New(catalog, cfg, cfg.Personas)

	server := handler.NewServer(svc, cfg.StreamFrameInterval)
	server.Logger.SetLevel(logLevel(cfg.LogLevel))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Replay API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down replay server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Replay server stopped")
}

func logLevel(level string) gommonlog.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return gommonlog.DEBUG
	case "warn":
		return gommonlog.WARN
	case "error":
		return gommonlog.ERROR
	case "off":
		return gommonlog.OFF
	default:
		return gommonlog.INFO
	}
}

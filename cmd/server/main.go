package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cardpulse/card-market-service/internal/api"
	"github.com/cardpulse/card-market-service/internal/cache"
	"github.com/cardpulse/card-market-service/internal/config"
	"github.com/cardpulse/card-market-service/internal/database"
	"github.com/cardpulse/card-market-service/internal/kafka"
)

func main() {
	// Load .env if present; real deployments set env vars directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received shutdown signal: %v", sig)
		cancel()
	}()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	charts, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.ChartTTL)
	if err != nil {
		// Charts are recomputed on every request without the cache;
		// the service stays up.
		log.Printf("Redis unavailable, serving charts uncached: %v", err)
		charts = nil
	} else {
		defer charts.Close()
		log.Println("Chart cache connected")
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.CardEventTopic, cfg.Kafka.SaleTopic)
	defer producer.Close()

	handler := api.NewHandler(db, producer, charts)
	router := api.SetupRoutes(handler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

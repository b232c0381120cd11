package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cardpulse/card-market-service/internal/cache"
	"github.com/cardpulse/card-market-service/internal/config"
	"github.com/cardpulse/card-market-service/internal/database"
	"github.com/cardpulse/card-market-service/internal/ingest"
	"github.com/cardpulse/card-market-service/internal/kafka"
)

func main() {
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
		log.Printf("Redis unavailable, skipping chart invalidation: %v", err)
		charts = nil
	} else {
		defer charts.Close()
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.CardEventTopic, cfg.Kafka.SaleTopic)
	defer producer.Close()

	// The consumer stores what the poller publishes; running both in
	// one process keeps the ingestion path self-contained.
	var invalidator kafka.ChartInvalidator
	if charts != nil {
		invalidator = charts
	}
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.SaleTopic, cfg.Kafka.GroupID, db, invalidator)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Printf("Consumer stopped: %v", err)
		}
	}()

	client := ingest.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.APIKey)
	ingestor := ingest.NewIngestor(db, client, producer, db, cfg.Upstream.PollInterval)

	if err := ingestor.Run(ctx); err != nil {
		log.Fatalf("Ingestor failed: %v", err)
	}
	log.Println("Ingestor stopped")
}

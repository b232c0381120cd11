package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/cardpulse/card-market-service/internal/models"
)

// Producer handles publishing events to Kafka
type Producer struct {
	cardWriter *kafka.Writer
	saleWriter *kafka.Writer
}

// NewProducer creates a new Kafka producer for card and sale topics
func NewProducer(brokers []string, cardEventTopic, saleTopic string) *Producer {
	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		}
	}

	return &Producer{
		cardWriter: newWriter(cardEventTopic),
		saleWriter: newWriter(saleTopic),
	}
}

// PublishCardAdded publishes a card added event
func (p *Producer) PublishCardAdded(ctx context.Context, card *models.Card) error {
	event := models.CardEvent{
		EventID:   uuid.NewString(),
		EventType: "CARD_ADDED",
		Card:      card,
		CardID:    card.ID,
		Timestamp: time.Now(),
	}
	return p.publishCardEvent(ctx, event)
}

// PublishCardRemoved publishes a card removed event
func (p *Producer) PublishCardRemoved(ctx context.Context, cardID int) error {
	event := models.CardEvent{
		EventID:   uuid.NewString(),
		EventType: "CARD_REMOVED",
		CardID:    cardID,
		Timestamp: time.Now(),
	}
	return p.publishCardEvent(ctx, event)
}

// PublishSaleScraped publishes a scraped sale or listing for ingestion
func (p *Producer) PublishSaleScraped(ctx context.Context, source string, data models.SaleData) error {
	event := models.SaleEvent{
		EventID:   uuid.NewString(),
		EventType: "SALE_SCRAPED",
		Source:    source,
		Data:      data,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal sale event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(data.CardID)),
		Value: payload,
	}

	if err := p.saleWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (p *Producer) publishCardEvent(ctx context.Context, event models.CardEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal card event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(event.CardID)),
		Value: payload,
	}

	if err := p.cardWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if err := p.cardWriter.Close(); err != nil {
		return err
	}
	return p.saleWriter.Close()
}

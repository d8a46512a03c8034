package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"

	"egais-writeoff/models"
)

// kafkaMessageWriter abstracts kafka.Writer for testability.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaRunPublisher publishes one record per write-off run, keyed by product type
type KafkaRunPublisher struct {
	writer kafkaMessageWriter
}

// NewKafkaRunPublisher creates a publisher writing to topic on brokers
func NewKafkaRunPublisher(brokers []string, topic string) *KafkaRunPublisher {
	return NewKafkaRunPublisherWith(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
		Async:        false,
	})
}

// NewKafkaRunPublisherWith allows injecting a custom writer (tests)
func NewKafkaRunPublisherWith(w kafkaMessageWriter) *KafkaRunPublisher {
	return &KafkaRunPublisher{writer: w}
}

// Ensure KafkaRunPublisher implements RunPublisherInterface
var _ RunPublisherInterface = (*KafkaRunPublisher)(nil)

// PublishRun writes the run as JSON
func (p *KafkaRunPublisher) PublishRun(ctx context.Context, run models.WriteoffRun) error {
	value, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(run.ProductType),
		Value: value,
		Headers: []kafka.Header{
			{Key: "run-id", Value: []byte(run.ID)},
			{Key: "status", Value: []byte(run.Status)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}
	return nil
}

// Close closes the underlying writer
func (p *KafkaRunPublisher) Close() error {
	if c, ok := p.writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

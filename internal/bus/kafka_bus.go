package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"clinic-booking-saga/internal/domain/entity"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// KafkaBusConfig configures the real pub/sub implementation: a single
// topic carries every booking event, event_type and transaction_id travel
// as headers for routing/filtering, and a DLQ topic catches poison or
// permanently-failing messages after transient retries are exhausted.
type KafkaBusConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	DLQTopic string
}

// KafkaBus is the real pub/sub Bus implementation, adapted from the
// reader/writer/DLQ shape of a production Kafka order consumer: decode,
// validate, dispatch; anything unrecoverable goes to the DLQ instead of
// blocking the partition.
type KafkaBus struct {
	cfg    KafkaBusConfig
	log    *logrus.Logger
	writer *kafka.Writer
	reader *kafka.Reader
	dlq    *kafka.Writer

	mu       sync.RWMutex
	handlers map[entity.EventType][]Handler
}

func NewKafkaBus(cfg KafkaBusConfig, log *logrus.Logger) *KafkaBus {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{}, // partition by key (transaction_id) for per-tx ordering
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})

	var dlq *kafka.Writer
	if cfg.DLQTopic != "" {
		dlq = &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.DLQTopic,
			Balancer: &kafka.LeastBytes{},
		}
	}

	return &KafkaBus{
		cfg:      cfg,
		log:      log,
		writer:   writer,
		reader:   reader,
		dlq:      dlq,
		handlers: make(map[entity.EventType][]Handler),
	}
}

func (b *KafkaBus) Subscribe(eventType entity.EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func (b *KafkaBus) Publish(ctx context.Context, evt entity.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.TransactionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
			{Key: "transaction_id", Value: []byte(evt.TransactionID)},
		},
	})
}

// Run consumes the topic until ctx is cancelled. Every message is decoded
// and dispatched to the handlers registered for its event_type; anything
// that can't be decoded or that any matching handler fails on is
// forwarded to the DLQ rather than re-read forever.
func (b *KafkaBus) Run(ctx context.Context) error {
	for {
		m, err := b.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka read: %w", err)
		}

		var evt entity.Event
		if err := json.Unmarshal(m.Value, &evt); err != nil {
			b.log.Errorf("kafka: invalid event payload: %v", err)
			b.sendToDLQ(ctx, m, "invalid_json", err)
			continue
		}

		b.mu.RLock()
		handlers := append([]Handler(nil), b.handlers[evt.Type]...)
		b.mu.RUnlock()

		var lastErr error
		for _, h := range handlers {
			if err := h(ctx, evt); err != nil {
				lastErr = err
				b.log.WithFields(logrus.Fields{
					"event_type":     evt.Type,
					"transaction_id": evt.TransactionID,
				}).Errorf("handler failed: %v", err)
			}
		}
		if lastErr != nil && len(handlers) > 0 {
			b.sendToDLQ(ctx, m, "handler_error", lastErr)
		}
	}
}

func (b *KafkaBus) sendToDLQ(ctx context.Context, src kafka.Message, reason string, cause error) {
	if b.dlq == nil {
		return
	}
	errText := reason
	if cause != nil {
		errText = fmt.Sprintf("%s: %v", reason, cause)
	}
	dlqMsg := kafka.Message{
		Key:   src.Key,
		Value: src.Value,
		Headers: append(src.Headers, []kafka.Header{
			{Key: "error", Value: []byte(errText)},
			{Key: "origin-topic", Value: []byte(b.cfg.Topic)},
			{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339Nano))},
		}...),
	}
	if err := b.dlq.WriteMessages(ctx, dlqMsg); err != nil {
		b.log.Errorf("kafka: DLQ write failed (topic=%s): %v", b.cfg.DLQTopic, err)
	}
}

func (b *KafkaBus) Close() error {
	if err := b.reader.Close(); err != nil {
		return err
	}
	if b.dlq != nil {
		if err := b.dlq.Close(); err != nil {
			return err
		}
	}
	return b.writer.Close()
}

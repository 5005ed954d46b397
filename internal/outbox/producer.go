package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ProducerOption customises a KafkaProducer.
type ProducerOption func(*KafkaProducer)

// WithProducerLogger routes kafka-go writer errors to logger.
func WithProducerLogger(logger *zap.Logger) ProducerOption {
	return func(p *KafkaProducer) {
		p.logger = logger
	}
}

// WithBatchTimeout bounds how long a partially filled batch waits before it
// is flushed.
func WithBatchTimeout(d time.Duration) ProducerOption {
	return func(p *KafkaProducer) {
		p.batchTimeout = d
	}
}

// KafkaProducer keeps one writer per topic, created on first use. Records
// are hashed on their key, which the outbox sets to the user id, so a
// user's sessions stay ordered within one partition.
type KafkaProducer struct {
	brokers      []string
	logger       *zap.Logger
	batchTimeout time.Duration

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer.
func NewKafkaProducer(brokers []string, opts ...ProducerOption) *KafkaProducer {
	p := &KafkaProducer{
		brokers:      brokers,
		logger:       zap.NewNop(),
		batchTimeout: 50 * time.Millisecond,
		writers:      make(map[string]*kafka.Writer),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WriteMessages publishes msgs to topic and waits for every in-sync replica.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writer(topic).WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		BatchTimeout:           p.batchTimeout,
		AllowAutoTopicCreation: true,
		ErrorLogger:            kafka.LoggerFunc(p.logger.With(zap.String("topic", topic)).Sugar().Errorf),
	}
	p.writers[topic] = w
	return w
}

// Close flushes and closes every writer. The first error is returned.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var first error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
		delete(p.writers, topic)
	}
	return first
}

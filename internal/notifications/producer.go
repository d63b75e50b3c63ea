package notifications

import (
	"context"
	"fmt"
	"time"

	"parkwise/internal/shared/config"
	"parkwise/pkg/logger"

	"github.com/IBM/sarama"
)

// Producer publishes spot commands and driver notifications to Kafka.
type Producer interface {
	PublishCommand(ctx context.Context, cmd SpotCommand) error
	PublishAssignment(ctx context.Context, assignment *Assignment) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// KafkaProducer is the sarama-backed Producer. Commands are keyed by spot id
// so per-spot ordering survives partitioning; at-least-once delivery comes
// from WaitForAll acks plus idempotent writes.
type KafkaProducer struct {
	producer sarama.SyncProducer
	cfg      config.KafkaConfig
	log      *logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log *logger.Logger) (*KafkaProducer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = cfg.ProducerRetryMax
	saramaConfig.Producer.Timeout = cfg.ProducerTimeout
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	// Hash partitioner keeps all commands for one spot on one partition.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info("Kafka producer created",
		"brokers", cfg.Brokers,
		"command_topic", cfg.CommandTopic,
		"notification_topic", cfg.NotificationTopic,
	)

	return &KafkaProducer{
		producer: producer,
		cfg:      cfg,
		log:      log,
	}, nil
}

// PublishCommand sends one command per committed transition.
func (p *KafkaProducer) PublishCommand(ctx context.Context, cmd SpotCommand) error {
	payload, err := cmd.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.cfg.CommandTopic,
		Key:       sarama.StringEncoder(cmd.SpotID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now().UTC(),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send command to Kafka: %w", err)
	}

	p.log.Debug("command published",
		"action", cmd.Action,
		"spot_id", cmd.SpotID,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

// PublishAssignment queues a driver notification. Assignments without an
// email address are dropped here rather than burdening the email worker.
func (p *KafkaProducer) PublishAssignment(ctx context.Context, assignment *Assignment) error {
	if assignment.Email == "" {
		p.log.Debug("no email for driver, skipping notification",
			"license_plate", assignment.LicensePlate)
		return nil
	}

	payload, err := assignment.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal assignment: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.cfg.NotificationTopic,
		Key:       sarama.StringEncoder(assignment.LicensePlate),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: assignment.CreatedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send assignment to Kafka: %w", err)
	}

	p.log.Info("assignment notification queued",
		"spot_id", assignment.SpotID,
		"license_plate", assignment.LicensePlate,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

// HealthCheck verifies the producer can reach a broker.
func (p *KafkaProducer) HealthCheck(ctx context.Context) error {
	// SyncProducer keeps connections alive; a lightweight metadata-backed
	// check is not exposed, so report healthy while the producer is open.
	if p.producer == nil {
		return fmt.Errorf("kafka producer is closed")
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	if p.producer == nil {
		return nil
	}
	err := p.producer.Close()
	p.producer = nil
	return err
}

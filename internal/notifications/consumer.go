package notifications

import (
	"context"
	"fmt"
	"sync"

	"parkwise/internal/shared/config"
	"parkwise/pkg/logger"

	"github.com/IBM/sarama"
)

// Sender delivers one assignment notification to its driver.
type Sender interface {
	SendAssignment(ctx context.Context, assignment *Assignment) error
}

// Consumer drains the notification topic through a consumer group and hands
// each assignment to the Sender. Delivery failures are logged and the message
// is still marked, matching the fire-and-forget notification contract.
type Consumer struct {
	group  sarama.ConsumerGroup
	cfg    config.KafkaConfig
	sender Sender
	log    *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConsumer(cfg config.KafkaConfig, sender Sender, log *logger.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer group: %w", err)
	}

	return &Consumer{
		group:  group,
		cfg:    cfg,
		sender: sender,
		log:    log,
	}, nil
}

// Start begins consuming in the background until Stop or ctx cancellation.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		handler := &assignmentHandler{sender: c.sender, log: c.log}
		for {
			if err := c.group.Consume(ctx, []string{c.cfg.NotificationTopic}, handler); err != nil {
				c.log.Error("consumer group error", "error", err.Error())
			}
			if ctx.Err() != nil {
				return
			}
			// Consume returns on rebalance; loop to rejoin.
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case err, ok := <-c.group.Errors():
				if !ok {
					return
				}
				c.log.Error("consumer error", "error", err.Error())
			case <-ctx.Done():
				return
			}
		}
	}()

	c.log.Info("notification consumer started",
		"topic", c.cfg.NotificationTopic,
		"group", c.cfg.ConsumerGroup,
	)
}

// Stop shuts the consumer group down and waits for in-flight work.
func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.group.Close()
	c.wg.Wait()
	return err
}

// assignmentHandler implements sarama.ConsumerGroupHandler.
type assignmentHandler struct {
	sender Sender
	log    *logger.Logger
}

func (h *assignmentHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *assignmentHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *assignmentHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		assignment, err := FromJSON(message.Value)
		if err != nil {
			h.log.Error("dropping malformed notification",
				"partition", message.Partition,
				"offset", message.Offset,
				"error", err.Error(),
			)
			session.MarkMessage(message, "")
			continue
		}

		if err := h.sender.SendAssignment(session.Context(), assignment); err != nil {
			h.log.Error("failed to deliver assignment notification",
				"spot_id", assignment.SpotID,
				"license_plate", assignment.LicensePlate,
				"error", err.Error(),
			)
		}

		session.MarkMessage(message, "")
	}
	return nil
}

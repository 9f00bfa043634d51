package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	wm_kafka "github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
)

type Config struct {
	ClusterConfig   *sarama.Config
	BrokerAddresses []string
	Topic           string
	GroupID         string
	// MaxInFlight bounds how many messages are processed concurrently.
	MaxInFlight int
}

type Consumer struct {
	subscriber  *wm_kafka.Subscriber
	topic       string
	maxInFlight int
	logger      *zerolog.Logger
}

func NewConsumer(cfg *Config, logger *zerolog.Logger) (*Consumer, error) {
	saramaSubscriberConfig := wm_kafka.DefaultSaramaSubscriberConfig()

	saramaSubscriberConfig.Version = cfg.ClusterConfig.Version
	saramaSubscriberConfig.Consumer.Offsets.Initial = cfg.ClusterConfig.Consumer.Offsets.Initial

	subscriber, err := wm_kafka.NewSubscriber(
		wm_kafka.SubscriberConfig{
			Brokers:               cfg.BrokerAddresses,
			Unmarshaler:           wm_kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaSubscriberConfig,
			ConsumerGroup:         cfg.GroupID,
		},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}

	return &Consumer{
		subscriber:  subscriber,
		topic:       cfg.Topic,
		maxInFlight: cfg.MaxInFlight,
		logger:      logger,
	}, nil
}

// Start subscribes to the topic and hands the message channel to process in a new goroutine.
func (c *Consumer) Start(ctx context.Context, process func(ctx context.Context, messages <-chan *message.Message) error) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("could not subscribe to topic %s: %w", c.topic, err)
	}

	go func() {
		if err := process(ctx, messages); err != nil && ctx.Err() == nil {
			c.logger.Error().Err(err).Str("topic", c.topic).Msg("Message processing stopped")
		}
	}()
	return nil
}

// MaxInFlight returns the configured processing concurrency.
func (c *Consumer) MaxInFlight() int {
	return c.maxInFlight
}

// Close shuts down the subscriber.
func (c *Consumer) Close() error {
	return c.subscriber.Close()
}

package notify

import (
	"fmt"
	"io"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const (
	TransportGoChannel = "gochannel"
	TransportRedis     = "redis"
	TransportKafka     = "kafka"
	TransportNone      = "none"
)

// TransportConfig selects and configures the message transport.
type TransportConfig struct {
	Kind         string
	RedisClient  redis.UniversalClient
	KafkaBrokers []string
}

// Transport bundles the publisher used on the request path and a factory
// for one subscriber per consumer group.
type Transport struct {
	Publisher  message.Publisher
	Subscriber func(consumerGroup string) (message.Subscriber, error)

	closers []io.Closer
}

func (t *Transport) Close() error {
	var firstErr error
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewTransport(cfg TransportConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	switch cfg.Kind {
	case "", TransportGoChannel:
		return newGoChannelTransport(logger), nil
	case TransportRedis:
		return newRedisTransport(cfg.RedisClient, logger)
	case TransportKafka:
		return newKafkaTransport(cfg.KafkaBrokers, logger)
	default:
		return nil, fmt.Errorf("unknown notify transport %q", cfg.Kind)
	}
}

func newGoChannelTransport(logger watermill.LoggerAdapter) *Transport {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
	return &Transport{
		Publisher: pubSub,
		Subscriber: func(string) (message.Subscriber, error) {
			return pubSub, nil
		},
		closers: []io.Closer{pubSub},
	}
}

func newRedisTransport(client redis.UniversalClient, logger watermill.LoggerAdapter) (*Transport, error) {
	if client == nil {
		return nil, fmt.Errorf("redis transport requires a client")
	}
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("redis publisher: %w", err)
	}

	t := &Transport{Publisher: publisher, closers: []io.Closer{publisher}}
	t.Subscriber = func(group string) (message.Subscriber, error) {
		sub, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: group,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("redis subscriber %s: %w", group, err)
		}
		t.closers = append(t.closers, sub)
		return sub, nil
	}
	return t, nil
}

func newKafkaTransport(brokers []string, logger watermill.LoggerAdapter) (*Transport, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka transport requires brokers")
	}
	marshaler := kafka.DefaultMarshaler{}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: marshaler,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("kafka publisher: %w", err)
	}

	t := &Transport{Publisher: publisher, closers: []io.Closer{publisher}}
	t.Subscriber = func(group string) (message.Subscriber, error) {
		saramaConfig := kafka.DefaultSaramaSubscriberConfig()
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
		saramaConfig.ClientID = "ride-booking-notify"

		sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
			Brokers:               brokers,
			Unmarshaler:           marshaler,
			ConsumerGroup:         group,
			OverwriteSaramaConfig: saramaConfig,
			InitializeTopicDetails: &sarama.TopicDetail{
				NumPartitions:     1,
				ReplicationFactor: 1,
			},
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("kafka subscriber %s: %w", group, err)
		}
		t.closers = append(t.closers, sub)
		return sub, nil
	}
	return t, nil
}

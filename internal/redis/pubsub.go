package redis

import (
	"context"
	"errors"
	"time"

	"pollapp/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Publisher sends poll events over Redis pub/sub.
type Publisher struct {
	client  *redis.Client
	timeout time.Duration
}

func NewPublisher(client *redis.Client, timeout time.Duration) *Publisher {
	return &Publisher{client: client, timeout: timeout}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.client.Publish(ctx, channel, payload).Err()
}

// Subscriber receives messages for channel patterns until ctx is done. A
// broken subscription is re-established with exponential backoff.
type Subscriber struct {
	client     *redis.Client
	logger     *logger.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewSubscriber(client *redis.Client, l *logger.Logger) *Subscriber {
	return &Subscriber{
		client:     client,
		logger:     l,
		minBackoff: 100 * time.Millisecond,
		maxBackoff: 5 * time.Second,
	}
}

// Subscribe blocks delivering every message to handler. It returns nil once
// ctx is cancelled or the client is closed.
func (s *Subscriber) Subscribe(ctx context.Context, patterns []string, handler func(channel string, payload []byte)) error {
	backoff := s.minBackoff
	for {
		delivered, err := s.receive(ctx, patterns, handler)
		if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
			return nil
		}
		if delivered {
			backoff = s.minBackoff
		}
		s.logger.Warnf("pubsub %v interrupted, resubscribing in %s: %v", patterns, backoff, err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(2*backoff, s.maxBackoff)
	}
}

// receive runs one subscription until it fails. delivered reports whether
// at least one message got through.
func (s *Subscriber) receive(ctx context.Context, patterns []string, handler func(channel string, payload []byte)) (delivered bool, err error) {
	sub := s.client.PSubscribe(ctx, patterns...)
	defer sub.Close()

	for {
		msg, err := sub.ReceiveMessage(ctx)
		if err != nil {
			return delivered, err
		}
		delivered = true
		handler(msg.Channel, []byte(msg.Payload))
	}
}

// Package nats adapts the durable submission queue to the coordinator.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// Handler consumes one raw submission. It must not return: transport-level
// delivery never depends on downstream grading succeeding.
type Handler func(ctx context.Context, raw []byte)

// ChannelConfig names the JetStream resources the channel owns.
type ChannelConfig struct {
	Stream   string
	Subject  string
	Consumer string
	AckWait  time.Duration
}

func (c *ChannelConfig) applyDefaults() {
	if c.Stream == "" {
		c.Stream = "GAME"
	}
	if c.Subject == "" {
		c.Subject = "game.answers"
	}
	if c.Consumer == "" {
		c.Consumer = "coordinator"
	}
	if c.AckWait == 0 {
		c.AckWait = 30 * time.Second
	}
}

// SubmissionChannel drains a durable at-least-once JetStream consumer into
// the handler. Messages are acked right after dispatch: duplicates are the
// coordinator's problem (idempotent grading), and a poison message must
// never stall delivery of the next one.
type SubmissionChannel struct {
	js      jetstream.JetStream
	cfg     ChannelConfig
	handler Handler
	log     *zap.Logger

	consume jetstream.ConsumeContext
}

func NewSubmissionChannel(nc *nats.Conn, cfg ChannelConfig, handler Handler, log *zap.Logger) (*SubmissionChannel, error) {
	if nc == nil {
		return nil, fmt.Errorf("nats connection is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("submission handler is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	cfg.applyDefaults()

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}
	return &SubmissionChannel{js: js, cfg: cfg, handler: handler, log: log}, nil
}

// Start ensures the stream and durable consumer exist and begins draining.
func (c *SubmissionChannel) Start(ctx context.Context) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     c.cfg.Stream,
		Subjects: []string{c.cfg.Subject},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", c.cfg.Stream, err)
	}

	cons, err := c.js.CreateOrUpdateConsumer(ctx, c.cfg.Stream, jetstream.ConsumerConfig{
		Name:          c.cfg.Consumer,
		Durable:       c.cfg.Consumer,
		FilterSubject: c.cfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       c.cfg.AckWait,
	})
	if err != nil {
		return fmt.Errorf("ensure consumer %s: %w", c.cfg.Consumer, err)
	}

	consume, err := cons.Consume(func(msg jetstream.Msg) {
		c.handler(context.Background(), msg.Data())
		if err := msg.Ack(); err != nil {
			c.log.Warn("submission ack failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	c.consume = consume
	c.log.Info("submission channel started",
		zap.String("stream", c.cfg.Stream), zap.String("subject", c.cfg.Subject))
	return nil
}

// Stop halts consumption. In-flight handlers finish; unacked messages are
// redelivered on the next start.
func (c *SubmissionChannel) Stop() {
	if c.consume != nil {
		c.consume.Stop()
	}
}

// Publish sends one already-encoded submission to the channel's subject.
// Used by the submit CLI and tests; production clients publish directly.
func (c *SubmissionChannel) Publish(ctx context.Context, raw []byte) error {
	if _, err := c.js.Publish(ctx, c.cfg.Subject, raw); err != nil {
		return fmt.Errorf("publish submission: %w", err)
	}
	return nil
}

package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler func(ctx context.Context, event Event) error

// ErrMalformed marks an entry whose payload can never be handled. The
// subscriber acks and drops such entries instead of retrying them.
var ErrMalformed = errors.New("malformed stream entry")

// Subscriber reads one stream as a member of a consumer group. Entries are
// acked only after the handler succeeds; failed entries stay in the
// consumer's pending list and are retried on the next pending sweep.
type Subscriber struct {
	client        *redis.Client
	group         string
	consumer      string
	stream        string
	handler       Handler
	batchSize     int64
	blockDuration time.Duration
	retryInterval time.Duration
	logger        *zap.Logger
}

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
	// RetryInterval is how often pending (delivered but unacked) entries are
	// handed to the handler again. Defaults to 30s.
	RetryInterval time.Duration
	Logger        *zap.Logger
}

func NewSubscriber(client *redis.Client, config SubscriberConfig) *Subscriber {
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.BlockDuration == 0 {
		config.BlockDuration = 5 * time.Second
	}
	if config.RetryInterval == 0 {
		config.RetryInterval = 30 * time.Second
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return &Subscriber{
		client:        client,
		group:         config.Group,
		consumer:      config.Consumer,
		stream:        config.Stream,
		handler:       config.Handler,
		batchSize:     config.BatchSize,
		blockDuration: config.BlockDuration,
		retryInterval: config.RetryInterval,
		logger:        config.Logger.With(zap.String("stream", config.Stream), zap.String("group", config.Group)),
	}
}

// Start consumes until ctx is done and then returns ctx.Err().
func (s *Subscriber) Start(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	s.logger.Info("subscriber started", zap.String("consumer", s.consumer))

	// Entries left pending by an earlier run of this consumer come first.
	nextSweep := time.Now()
	for {
		if ctx.Err() != nil {
			s.logger.Info("subscriber stopping")
			return ctx.Err()
		}

		startID := ">"
		if !time.Now().Before(nextSweep) {
			startID = "0"
			nextSweep = time.Now().Add(s.retryInterval)
		}

		if err := s.read(ctx, startID); err != nil && ctx.Err() == nil {
			s.logger.Warn("error reading messages", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// read fetches one batch. startID ">" asks for new entries; "0" re-reads
// this consumer's own pending entries.
func (s *Subscriber) read(ctx context.Context, startID string) error {
	args := &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, startID},
		Count:    s.batchSize,
		Block:    -1,
	}
	if startID == ">" {
		args.Block = s.blockDuration
	}

	streams, err := s.client.XReadGroup(ctx, args).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			s.handle(ctx, message)
		}
	}
	return nil
}

func (s *Subscriber) handle(ctx context.Context, message redis.XMessage) {
	if err := s.process(ctx, message); err != nil {
		if !errors.Is(err, ErrMalformed) {
			s.logger.Warn("failed to process message", zap.String("message_id", message.ID), zap.Error(err))
			return
		}
		// Retrying cannot fix the payload, so it is dropped.
		s.logger.Error("dropping malformed message", zap.String("message_id", message.ID), zap.Error(err))
	}
	if err := s.client.XAck(ctx, s.stream, s.group, message.ID).Err(); err != nil {
		s.logger.Warn("failed to ack message", zap.String("message_id", message.ID), zap.Error(err))
	}
}

func (s *Subscriber) process(ctx context.Context, message redis.XMessage) error {
	// A pending entry that was trimmed from the stream comes back without values.
	if message.Values == nil {
		return nil
	}
	eventData, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("%w: no event payload", ErrMalformed)
	}

	var event Event
	if err := json.Unmarshal([]byte(eventData), &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return s.handler(ctx, event)
}

// DecodeData re-decodes the untyped Data of an event received from a stream
// into a concrete payload type. Decode failures wrap ErrMalformed.
func DecodeData[T any](event Event) (*T, error) {
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s event data: %v", ErrMalformed, event.Type, err)
	}
	var payload T
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s event data: %v", ErrMalformed, event.Type, err)
	}
	return &payload, nil
}

// Package notify fans domain events out to topic subscribers over Redis
// pub/sub and optionally queues them for the RabbitMQ relay.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nnptud/lms-backend/internal/config"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Envelope is the frame delivered to subscribers and relayed to RabbitMQ.
type Envelope struct {
	Event  model.EventName `json:"event"`
	Topic  string          `json:"topic"`
	Data   json.RawMessage `json:"data"`
	SentAt time.Time       `json:"sent_at"`
}

// publisher is the subset of *redis.Client the fan-out uses.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Fanout publishes events to topics. Publishing never fails the caller:
// the write that triggered the event has already committed.
type Fanout struct {
	rdb        publisher
	prefix     string
	relayQueue string
	log        zerolog.Logger
	now        func() time.Time
}

// NewFanout creates a Fanout. When relay is true every envelope is also
// pushed onto the relay queue drained by worker.EventRelayWorker.
func NewFanout(rdb publisher, prefix string, relay bool, log zerolog.Logger) *Fanout {
	f := &Fanout{
		rdb:    rdb,
		prefix: prefix,
		log:    log.With().Str("component", "notify_fanout").Logger(),
		now:    time.Now,
	}
	if relay {
		f.relayQueue = config.WorkerKey.RelayEventsQueue
	}
	return f
}

// Publish delivers event with data to every current subscriber of topic.
func (f *Fanout) Publish(ctx context.Context, topic string, event model.EventName, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		f.log.Warn().Err(err).Str("topic", topic).Str("event", string(event)).Msg("Marshal event data failed")
		return
	}
	frame, err := json.Marshal(Envelope{
		Event:  event,
		Topic:  topic,
		Data:   raw,
		SentAt: f.now().UTC(),
	})
	if err != nil {
		f.log.Warn().Err(err).Str("topic", topic).Msg("Marshal envelope failed")
		return
	}

	channel := config.TopicKey.Channel(f.prefix, topic)
	if err := f.rdb.Publish(ctx, channel, frame).Err(); err != nil {
		f.log.Warn().Err(err).Str("topic", topic).Str("event", string(event)).Msg("Publish failed")
	}

	if f.relayQueue != "" {
		if err := f.rdb.RPush(ctx, f.relayQueue, frame).Err(); err != nil {
			f.log.Warn().Err(err).Str("topic", topic).Str("event", string(event)).Msg("Relay enqueue failed")
		}
	}
}

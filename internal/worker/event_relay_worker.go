package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nnptud/lms-backend/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	RelayBatchSize      = 50
	RelayBatchTimeout   = 1 * time.Second
	RelayPollTimeout    = 1 * time.Second
	RelayPublishTimeout = 5 * time.Second
)

// amqpPublisher is the subset of *amqp.Channel the relay needs.
type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// relayQueue is the subset of *redis.Client the relay needs.
type relayQueue interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// EventRelayWorker drains the relay queue filled by notify.Fanout and
// publishes each envelope to the RabbitMQ topic exchange, routed by event name.
type EventRelayWorker struct {
	rdb      relayQueue
	ch       amqpPublisher
	exchange string
	log      zerolog.Logger
}

func NewEventRelayWorker(rdb relayQueue, ch amqpPublisher, exchange string, log zerolog.Logger) *EventRelayWorker {
	return &EventRelayWorker{
		rdb:      rdb,
		ch:       ch,
		exchange: exchange,
		log:      log.With().Str("component", "event_relay_worker").Logger(),
	}
}

type relayItem struct {
	raw   []byte
	event string
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *EventRelayWorker) Start(ctx context.Context) {
	w.log.Info().Str("exchange", w.exchange).Msg("EventRelayWorker started")

	batch := make([]relayItem, 0, RelayBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= RelayBatchSize || time.Since(lastFlush) >= RelayBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, RelayPollTimeout, config.WorkerKey.RelayEventsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var head struct {
				Event string `json:"event"`
			}
			if err := json.Unmarshal([]byte(item[1]), &head); err != nil || head.Event == "" {
				w.log.Error().Err(err).Msg("Invalid relay payload, dropping")
				continue
			}

			batch = append(batch, relayItem{raw: []byte(item[1]), event: head.Event})
		}
	}
}

// ----------------------------------------------------------------
// Publish wrapper: failed items go back to the queue
// ----------------------------------------------------------------

func (w *EventRelayWorker) flushSafe(ctx context.Context, batch []relayItem) {
	if len(batch) == 0 {
		return
	}

	failed := 0
	for _, it := range batch {
		if err := w.publish(ctx, it); err != nil {
			failed++
			w.log.Error().Err(err).Str("event", it.event).Msg("publish failed, requeueing")
			w.rdb.RPush(context.Background(), config.WorkerKey.RelayEventsQueue, it.raw)
		}
	}

	w.log.Debug().Int("published", len(batch)-failed).Int("failed", failed).Msg("Relay batch flushed")
}

func (w *EventRelayWorker) publish(ctx context.Context, it relayItem) error {
	publishCtx, cancel := context.WithTimeout(ctx, RelayPublishTimeout)
	defer cancel()

	return w.ch.PublishWithContext(
		publishCtx,
		w.exchange, // exchange
		it.event,   // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         it.raw,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/nnptud/lms-backend/internal/config"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/nnptud/lms-backend/internal/repository"
	ws "github.com/nnptud/lms-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// MaxTopicsPerSession bounds the subscriptions a single connection may hold.
const MaxTopicsPerSession = 64

// Authorizer decides whether an actor may subscribe to a topic.
type Authorizer interface {
	AuthorizeTopic(ctx context.Context, actor *model.Actor, topic string) error
}

// subscriber is the part of *redis.PubSub a session changes at runtime.
type subscriber interface {
	Subscribe(ctx context.Context, channels ...string) error
	Unsubscribe(ctx context.Context, channels ...string) error
}

// Hub serves subscriber sessions over WebSocket connections.
type Hub struct {
	rdb    *redis.Client
	prefix string
	authz  Authorizer
	log    zerolog.Logger
}

// NewHub creates a Hub.
func NewHub(rdb *redis.Client, prefix string, authz Authorizer, log zerolog.Logger) *Hub {
	return &Hub{
		rdb:    rdb,
		prefix: prefix,
		authz:  authz,
		log:    log.With().Str("component", "notify_hub").Logger(),
	}
}

// Serve runs one session until the client disconnects or ctx ends.
// The actor is subscribed to its personal topic before any frame is read.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, actor *model.Actor) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	personal := config.TopicKey.User(actor.ID)
	pubsub := h.rdb.Subscribe(ctx, h.channel(personal))
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.Error().Err(err).Int("user_id", actor.ID).Msg("Subscribe to personal topic failed")
		ws.WriteError(conn, "notifications unavailable")
		return
	}

	s := h.newSession(actor, pubsub)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeLoop(ctx, conn, pubsub.Channel())
		cancel()
		// Unblock the reader once the writer is gone.
		conn.Close()
	}()

	s.log.Info().Msg("Notification session opened")
	s.out <- ws.TopicResponse{Event: ws.EventSubscribed, Topic: personal}
	s.readLoop(ctx, conn)
	cancel()
	wg.Wait()
	s.log.Info().Msg("Notification session closed")
}

func (h *Hub) channel(topic string) string {
	return config.TopicKey.Channel(h.prefix, topic)
}

func (h *Hub) newSession(actor *model.Actor, subs subscriber) *session {
	return &session{
		hub:      h,
		actor:    actor,
		subs:     subs,
		personal: config.TopicKey.User(actor.ID),
		out:      make(chan any, 16),
		topics:   map[string]struct{}{},
		log:      h.log.With().Int("user_id", actor.ID).Logger(),
	}
}

type session struct {
	hub      *Hub
	actor    *model.Actor
	subs     subscriber
	personal string
	out      chan any
	log      zerolog.Logger

	mu     sync.Mutex
	topics map[string]struct{} // shared topics; the personal one is implicit
}

// writeLoop is the only goroutine writing to conn.
func (s *session) writeLoop(ctx context.Context, conn *websocket.Conn, events <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-s.out:
			if err := ws.WriteTyped(conn, frame); err != nil {
				s.log.Debug().Err(err).Msg("Write failed")
				return
			}
		case msg, ok := <-events:
			if !ok {
				return
			}
			deliver, notice := s.admit(ctx, msg.Channel)
			if notice != nil {
				if err := ws.WriteTyped(conn, notice); err != nil {
					s.log.Debug().Err(err).Msg("Write failed")
					return
				}
			}
			if !deliver {
				continue
			}
			if err := ws.WriteRaw(conn, []byte(msg.Payload)); err != nil {
				s.log.Debug().Err(err).Msg("Write failed")
				return
			}
		}
	}
}

// admit re-checks access before a message on a shared topic is forwarded,
// so a removed member or a deleted class stops the stream at the next event.
// A denied topic is unsubscribed and the client gets an error frame.
// Storage outages drop the message but keep the subscription.
func (s *session) admit(ctx context.Context, channel string) (bool, any) {
	topic := strings.TrimPrefix(channel, s.hub.prefix)
	if topic == s.personal {
		return true, nil
	}

	s.mu.Lock()
	_, held := s.topics[topic]
	s.mu.Unlock()
	if !held {
		// Published before an unsubscribe took effect.
		return false, nil
	}

	err := s.hub.authz.AuthorizeTopic(ctx, s.actor, topic)
	if err == nil {
		return true, nil
	}
	if isTransient(err) {
		s.log.Warn().Err(err).Str("topic", topic).Msg("Re-authorization unavailable, message dropped")
		return false, nil
	}

	s.log.Info().Err(err).Str("topic", topic).Msg("Subscription revoked")
	s.mu.Lock()
	delete(s.topics, topic)
	s.mu.Unlock()
	if uerr := s.subs.Unsubscribe(ctx, channel); uerr != nil {
		s.log.Error().Err(uerr).Str("topic", topic).Msg("Redis unsubscribe failed")
	}
	return false, ws.ErrorResponse{Event: ws.EventError, Error: "subscription revoked", Topic: topic}
}

func isTransient(err error) bool {
	return repository.IsUnavailable(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (s *session) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var frame ws.ClientFrame
		if err := ws.ReadJSON(conn, &frame); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				select {
				case s.out <- ws.ErrorResponse{Event: ws.EventError, Error: "malformed frame"}:
					continue
				case <-ctx.Done():
					return
				}
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		select {
		case s.out <- s.handle(ctx, frame):
		case <-ctx.Done():
			return
		}
	}
}

func (s *session) handle(ctx context.Context, frame ws.ClientFrame) any {
	switch frame.Action {
	case ws.ActionPing:
		return ws.PongResponse{Event: ws.EventPong}
	case ws.ActionSubscribe:
		return s.subscribe(ctx, frame.Topic)
	case ws.ActionUnsubscribe:
		return s.unsubscribe(ctx, frame.Topic)
	default:
		return ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(frame.Action)}
	}
}

func (s *session) subscribe(ctx context.Context, topic string) any {
	if topic == s.personal {
		return ws.TopicResponse{Event: ws.EventSubscribed, Topic: topic}
	}

	s.mu.Lock()
	_, held := s.topics[topic]
	count := len(s.topics)
	s.mu.Unlock()
	if held {
		return ws.TopicResponse{Event: ws.EventSubscribed, Topic: topic}
	}
	if count+1 >= MaxTopicsPerSession {
		return ws.ErrorResponse{Event: ws.EventError, Error: "too many subscriptions", Topic: topic}
	}

	if err := s.hub.authz.AuthorizeTopic(ctx, s.actor, topic); err != nil {
		s.log.Debug().Err(err).Str("topic", topic).Msg("Subscription denied")
		return ws.ErrorResponse{Event: ws.EventError, Error: "subscription denied", Topic: topic}
	}

	// Record before subscribing so the first message is not mistaken for a
	// leftover from an earlier unsubscribe.
	s.mu.Lock()
	s.topics[topic] = struct{}{}
	s.mu.Unlock()
	if err := s.subs.Subscribe(ctx, s.hub.channel(topic)); err != nil {
		s.mu.Lock()
		delete(s.topics, topic)
		s.mu.Unlock()
		s.log.Error().Err(err).Str("topic", topic).Msg("Redis subscribe failed")
		return ws.ErrorResponse{Event: ws.EventError, Error: "subscribe failed", Topic: topic}
	}
	return ws.TopicResponse{Event: ws.EventSubscribed, Topic: topic}
}

func (s *session) unsubscribe(ctx context.Context, topic string) any {
	if topic == s.personal {
		return ws.ErrorResponse{Event: ws.EventError, Error: "personal topic cannot be unsubscribed", Topic: topic}
	}

	s.mu.Lock()
	_, held := s.topics[topic]
	s.mu.Unlock()
	if !held {
		return ws.TopicResponse{Event: ws.EventUnsubscribed, Topic: topic}
	}

	if err := s.subs.Unsubscribe(ctx, s.hub.channel(topic)); err != nil {
		s.log.Error().Err(err).Str("topic", topic).Msg("Redis unsubscribe failed")
		return ws.ErrorResponse{Event: ws.EventError, Error: "unsubscribe failed", Topic: topic}
	}
	s.mu.Lock()
	delete(s.topics, topic)
	s.mu.Unlock()
	return ws.TopicResponse{Event: ws.EventUnsubscribed, Topic: topic}
}

package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSubscribe   Action = "subscribe"
	ActionUnsubscribe Action = "unsubscribe"
	ActionPing        Action = "ping"
)

// ClientFrame is every frame a client may send.
type ClientFrame struct {
	Action Action `json:"action"`
	Topic  string `json:"topic,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

// Domain events (submission:new, grade:updated, ...) are forwarded as
// notify.Envelope frames; the events below are session control frames.

type Event string

const (
	EventSubscribed   Event = "subscribed"
	EventUnsubscribed Event = "unsubscribed"
	EventError        Event = "error"
	EventPong         Event = "pong"
)

type TopicResponse struct {
	Event Event  `json:"event"`
	Topic string `json:"topic"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
	Topic string `json:"topic,omitempty"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

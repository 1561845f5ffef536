package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Handler consumes the payload of one named event.
type Handler func(data json.RawMessage)

const (
	reconnectMinDelay = time.Second
	reconnectMaxDelay = 30 * time.Second
)

// LiveChannel maintains the websocket to the realtime gateway. It
// reconnects forever with bounded backoff: presence loss is recoverable
// and cheap, so there is no retry limit.
type LiveChannel struct {
	wsURL  string
	userID string
	log    *slog.Logger

	mu       sync.Mutex
	handlers map[string]Handler
	conn     *websocket.Conn
	closed   bool
}

func NewLiveChannel(baseURL, userID string, log *slog.Logger) *LiveChannel {
	return &LiveChannel{
		wsURL:    websocketURL(baseURL, userID),
		userID:   userID,
		log:      log,
		handlers: make(map[string]Handler),
	}
}

// On registers the handler for an event name, replacing any previous one.
// Re-subscribing is therefore idempotent: events are never handled twice.
func (l *LiveChannel) On(event string, handler Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[event] = handler
}

// Run connects and dispatches events until ctx is done or Close is called.
func (l *LiveChannel) Run(ctx context.Context) {
	delay := reconnectMinDelay
	for {
		if ctx.Err() != nil || l.isClosed() {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.wsURL, nil)
		if err != nil {
			l.log.Debug("Live channel dial failed", "error", err, "retry_in", delay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			if delay *= 2; delay > reconnectMaxDelay {
				delay = reconnectMaxDelay
			}
			continue
		}

		delay = reconnectMinDelay
		l.setConn(conn)
		l.readLoop(conn)
		l.setConn(nil)
	}
}

// Close tears the channel down for good, e.g. on logout.
func (l *LiveChannel) Close() {
	l.mu.Lock()
	l.closed = true
	conn := l.conn
	l.conn = nil
	l.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func (l *LiveChannel) readLoop(conn *websocket.Conn) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			l.log.Debug("Live channel closed", "error", err)
			_ = conn.Close()
			return
		}
		l.dispatch(frame)
	}
}

func (l *LiveChannel) dispatch(frame []byte) {
	var event struct {
		Name string          `json:"event"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(frame, &event); err != nil {
		l.log.Debug("Dropping malformed event frame", "error", err)
		return
	}

	l.mu.Lock()
	handler := l.handlers[event.Name]
	l.mu.Unlock()
	if handler != nil {
		handler(event.Data)
	}
}

func (l *LiveChannel) setConn(conn *websocket.Conn) {
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
}

func (l *LiveChannel) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func websocketURL(baseURL, userID string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	if userID != "" {
		u.RawQuery = "userId=" + url.QueryEscape(userID)
	}
	return u.String()
}

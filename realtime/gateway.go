// Package realtime owns the live channels: websocket lifecycle, presence
// registration and event fan-out to a user's connected channels.
package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pairchat/domain"
	"pairchat/presence"
)

// Gateway bridges Chat API mutations to live channels. Fan-out is
// best-effort: frames to dead or slow channels are dropped, durability is
// the message store's job.
type Gateway struct {
	log      *slog.Logger
	registry *presence.Registry
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	channels map[string]*Channel

	sendBuffer int
}

func NewGateway(log *slog.Logger, grace time.Duration, sendBuffer int, checkOrigin func(*http.Request) bool) *Gateway {
	g := &Gateway{
		log:        log,
		channels:   make(map[string]*Channel),
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
	// The registry calls back into Broadcast whenever the set of distinct
	// online users changes; per-channel events never trigger it.
	g.registry = presence.NewRegistry(log, grace, func(online []string) {
		g.Broadcast(domain.NewOnlineUsersEvent(online))
	})
	return g
}

// Registry exposes presence queries (online roster, channels per user).
func (g *Gateway) Registry() *presence.Registry { return g.registry }

// ServeHTTP upgrades the connection and runs the channel until disconnect.
// The handshake query parameter "userId" ties the channel to a user;
// without it the connection is accepted but excluded from presence.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Debug("Websocket upgrade failed", "error", err)
		return
	}

	channel := &Channel{
		ID:     uuid.NewString(),
		UserID: r.URL.Query().Get("userId"),
		conn:   conn,
		send:   make(chan []byte, g.sendBuffer),
		log:    g.log,
	}
	g.attach(channel)

	go channel.writePump()
	channel.readPump(g)
}

func (g *Gateway) attach(channel *Channel) {
	g.mu.Lock()
	g.channels[channel.ID] = channel
	g.mu.Unlock()

	if channel.UserID != "" {
		g.registry.Register(channel.UserID, channel.ID)
	}
	// The new channel always gets the current roster right away, even when
	// its arrival did not change the online set.
	g.emit(channel, domain.NewOnlineUsersEvent(g.registry.OnlineUserIDs()))
}

func (g *Gateway) detach(channel *Channel) {
	g.mu.Lock()
	if _, ok := g.channels[channel.ID]; ok {
		delete(g.channels, channel.ID)
		close(channel.send)
	}
	g.mu.Unlock()

	// Presence removal is debounced by the registry's grace delay, so a
	// quick reconnect does not flap the roster.
	g.registry.Deregister(channel.ID)
}

// Broadcast pushes one event to every connected channel.
func (g *Gateway) Broadcast(event domain.Event) {
	frame, err := json.Marshal(event)
	if err != nil {
		g.log.Error("Event marshal failed", "event", event.Name, "error", err)
		return
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, channel := range g.channels {
		channel.enqueue(frame)
	}
}

// PushMessage fans a freshly persisted message out to every live channel
// of the receiver, together with the sender's public profile so the
// receiving UI can create a conversation entry when none exists. With zero
// live channels this is a no-op.
func (g *Gateway) PushMessage(message domain.Message, sender domain.PublicProfile) {
	channelIDs := g.registry.ChannelsFor(message.Receiver)
	if len(channelIDs) == 0 {
		return
	}

	events := []domain.Event{
		domain.NewMessageEvent(message),
		domain.NewAddToUserListEvent(sender),
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, id := range channelIDs {
		channel, ok := g.channels[id]
		if !ok {
			continue // closed between lookup and emit; history fetch covers it
		}
		for _, event := range events {
			g.emitLocked(channel, event)
		}
	}
}

func (g *Gateway) emit(channel *Channel, event domain.Event) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	g.emitLocked(channel, event)
}

func (g *Gateway) emitLocked(channel *Channel, event domain.Event) {
	frame, err := json.Marshal(event)
	if err != nil {
		g.log.Error("Event marshal failed", "event", event.Name, "error", err)
		return
	}
	channel.enqueue(frame)
}

package realtime

import (
	"log/slog"

	"github.com/gorilla/websocket"
)

// Channel is one live websocket connection. UserID is empty for
// connections whose handshake carried no user identity; those are served
// broadcasts but never appear in presence.
type Channel struct {
	ID     string
	UserID string
	conn   *websocket.Conn
	send   chan []byte
	log    *slog.Logger
}

// readPump drains client frames until the connection dies. Clients never
// push application data on this protocol; reading is only how we learn
// about disconnects.
func (c *Channel) readPump(gateway *Gateway) {
	defer func() {
		gateway.detach(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.log.Debug("Channel closed", "channel", c.ID, "user", c.UserID, "reason", err)
			return
		}
	}
}

// writePump serializes all writes to the connection. It exits when the
// send queue is closed by the gateway.
func (c *Channel) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()
	for frame := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			c.log.Debug("Channel write failed", "channel", c.ID, "error", err)
			return
		}
	}
}

// enqueue offers a frame without blocking. A full or closing channel drops
// the frame; the recipient recovers it on the next history fetch.
func (c *Channel) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		c.log.Debug("Dropping frame for slow channel", "channel", c.ID)
	}
}

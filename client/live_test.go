package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// fakeGateway accepts websocket connections and pushes every queued frame
// to each new connection.
type fakeGateway struct {
	frames   [][]byte
	upgrader websocket.Upgrader
	dials    atomic.Int64
}

func (f *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	f.dials.Add(1)
	for _, frame := range f.frames {
		_ = conn.WriteMessage(websocket.TextMessage, frame)
	}
	// Keep the connection open until the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			_ = conn.Close()
			return
		}
	}
}

func TestLiveChannel_DispatchesToHandler(t *testing.T) {
	req := require.New(t)
	gateway := &fakeGateway{frames: [][]byte{
		[]byte(`{"event":"getOnlineUsers","data":["alice","bob"]}`),
		[]byte(`{"event":"unhandled","data":{}}`),
		[]byte(`not json at all`),
	}}
	server := httptest.NewServer(gateway)
	defer server.Close()

	live := NewLiveChannel(server.URL, "alice", logs.GetLoggerFromLevel(slog.LevelDebug))
	received := make(chan []string, 1)
	live.On("getOnlineUsers", func(data json.RawMessage) {
		var ids []string
		if err := json.Unmarshal(data, &ids); err == nil {
			received <- ids
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go live.Run(ctx)

	select {
	case ids := <-received:
		req.Equal([]string{"alice", "bob"}, ids)
	case <-time.After(2 * time.Second):
		t.Fatal("event never dispatched")
	}
	live.Close()
}

func TestLiveChannel_OnReplacesHandler(t *testing.T) {
	req := require.New(t)
	gateway := &fakeGateway{frames: [][]byte{
		[]byte(`{"event":"newMessage","data":{"n":1}}`),
	}}
	server := httptest.NewServer(gateway)
	defer server.Close()

	live := NewLiveChannel(server.URL, "alice", logs.GetLoggerFromLevel(slog.LevelDebug))

	var firstCalls, secondCalls atomic.Int64
	live.On("newMessage", func(json.RawMessage) { firstCalls.Add(1) })
	// Re-subscribing replaces the first handler instead of stacking
	done := make(chan struct{}, 1)
	live.On("newMessage", func(json.RawMessage) {
		secondCalls.Add(1)
		done <- struct{}{}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go live.Run(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event never dispatched")
	}
	req.Zero(firstCalls.Load())
	req.Equal(int64(1), secondCalls.Load())
	live.Close()
}

func TestLiveChannel_CloseStopsRun(t *testing.T) {
	req := require.New(t)
	gateway := &fakeGateway{}
	server := httptest.NewServer(gateway)
	defer server.Close()

	live := NewLiveChannel(server.URL, "alice", logs.GetLoggerFromLevel(slog.LevelDebug))
	stopped := make(chan struct{})
	go func() {
		live.Run(context.Background())
		close(stopped)
	}()

	// Wait for the connection, then close for good
	deadline := time.Now().Add(2 * time.Second)
	for gateway.dials.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	req.Positive(gateway.dials.Load())
	live.Close()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after Close")
	}
	req.Equal(int64(1), gateway.dials.Load(), "a closed channel must not reconnect")
}

func TestWebsocketURL(t *testing.T) {
	req := require.New(t)

	req.Equal("ws://localhost:8080/ws?userId=u1", websocketURL("http://localhost:8080", "u1"))
	req.Equal("wss://chat.example.com/ws?userId=u1", websocketURL("https://chat.example.com", "u1"))
	req.Equal("ws://localhost:8080/ws", websocketURL("http://localhost:8080", ""))
}

package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startFeed(t *testing.T, handler func(conn *websocket.Conn)) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestChatClientReceivesFrames(t *testing.T) {
	feedURL := startFeed(t, func(conn *websocket.Conn) {
		require.NoError(t, conn.WriteJSON(chatFrame{Username: "redbot", Message: "bets are now closed"}))
		require.NoError(t, conn.WriteJSON(chatFrame{Username: "alice", Message: "gl"}))
		time.Sleep(100 * time.Millisecond)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type line struct{ username, text string }
	received := make(chan line, 2)

	client := NewChatClient(feedURL, "", zap.NewNop())
	go client.Run(ctx, func(username, text string) {
		received <- line{username, text}
	})

	first := <-received
	assert.Equal(t, "redbot", first.username)
	assert.Equal(t, "bets are now closed", first.text)

	second := <-received
	assert.Equal(t, "alice", second.username)
}

func TestChatClientSkipsInvalidFrames(t *testing.T) {
	feedURL := startFeed(t, func(conn *websocket.Conn) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
		require.NoError(t, conn.WriteJSON(chatFrame{Username: "redbot", Message: "ok"}))
		time.Sleep(100 * time.Millisecond)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	client := NewChatClient(feedURL, "", zap.NewNop())
	go client.Run(ctx, func(_, text string) {
		received <- text
	})

	assert.Equal(t, "ok", <-received, "malformed frame is skipped, next one still arrives")
}

func TestChatClientSendRequiresConnection(t *testing.T) {
	client := NewChatClient("ws://127.0.0.1:0/chat", "", zap.NewNop())

	err := client.Send(context.Background(), "$bal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")
}

func TestChatClientSendWritesFrame(t *testing.T) {
	got := make(chan chatFrame, 1)
	feedURL := startFeed(t, func(conn *websocket.Conn) {
		var frame chatFrame
		require.NoError(t, conn.ReadJSON(&frame))
		got <- frame
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := NewChatClient(feedURL, "", zap.NewNop())
	go client.Run(ctx, func(string, string) {})

	// wait for the connection to come up
	require.Eventually(t, func() bool {
		return client.Send(ctx, "$bet 10") == nil
	}, 2*time.Second, 20*time.Millisecond)

	frame := <-got
	assert.Equal(t, "$bet 10", frame.Message)
}

func TestChatClientChannelQueryParam(t *testing.T) {
	client := NewChatClient("ws://example.com/chat", "spam", zap.NewNop())

	dialURL, err := client.dialURL()
	require.NoError(t, err)
	assert.Equal(t, "ws://example.com/chat?channel=spam", dialURL)
}

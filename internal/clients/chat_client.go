// Package clients holds the chat feed client: the read side supplies raw
// chat lines to the bot, the write side carries dispatched commands.
package clients

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MessageHandler receives one observed chat line. The handler must not
// assume batching or ordering beyond delivery order on the socket.
type MessageHandler func(username, text string)

type chatFrame struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// ChatClient maintains a WebSocket connection to the chat feed, reconnecting
// with exponential backoff when the host drops it.
type ChatClient struct {
	url     string
	channel string
	logger  *zap.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewChatClient creates a client for the given feed URL. channel, when set,
// is passed to the host as a query parameter so the right room is joined.
func NewChatClient(feedURL, channel string, logger *zap.Logger) *ChatClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatClient{url: feedURL, channel: channel, logger: logger}
}

// Run connects and listens until ctx is cancelled, reconnecting on failure.
// Each observed line is handed to handle synchronously, so the downstream
// pipeline sees one message at a time.
func (c *ChatClient) Run(ctx context.Context, handle MessageHandler) error {
	b := &backoff.Backoff{
		Min:    time.Second,
		Max:    30 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.connectAndListen(ctx, handle, b); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			c.logger.Warn("chat connection closed", zap.Error(err))
		}

		delay := b.Duration()
		c.logger.Info("reconnecting to chat", zap.Duration("after", delay))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *ChatClient) connectAndListen(ctx context.Context, handle MessageHandler, b *backoff.Backoff) error {
	dialURL, err := c.dialURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, dialURL, nil)
	if err != nil {
		return errors.Wrap(err, "dial chat feed")
	}

	c.setConn(conn)
	defer func() {
		c.setConn(nil)
		conn.Close()
	}()

	b.Reset()
	c.logger.Info("connected to chat feed", zap.String("url", c.url))

	// drop the connection promptly on cancellation, the read loop below
	// would otherwise block until the next frame
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return errors.Wrap(err, "read chat frame")
		}

		var frame chatFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			c.logger.Warn("invalid chat frame", zap.Error(err))
			continue
		}

		handle(frame.Username, frame.Message)
	}
}

func (c *ChatClient) dialURL() (string, error) {
	if c.channel == "" {
		return c.url, nil
	}

	parsed, err := url.Parse(c.url)
	if err != nil {
		return "", errors.Wrapf(err, "parse chat url %s", c.url)
	}

	query := parsed.Query()
	query.Set("channel", c.channel)
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

func (c *ChatClient) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

// Send writes one line of text into the chat. It fails when no connection is
// established; the caller decides whether that is fatal.
func (c *ChatClient) Send(_ context.Context, text string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return errors.New("chat connection not established")
	}

	if err := conn.WriteJSON(chatFrame{Message: text}); err != nil {
		return errors.Wrap(err, "write chat frame")
	}

	return nil
}

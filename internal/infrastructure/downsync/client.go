package downsync

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler receives the affected file names of one downsync notification.
type Handler func(files []string)

// message is the wire shape of a push-channel event. Only "downsync" is
// semantically handled; unknown types are ignored, not errors.
type message struct {
	Type  string   `json:"type"`
	Files []string `json:"files"`
}

// Client keeps one persistent websocket connection to the grader's push
// channel. On any close, from network failure or an explicit server close, it
// schedules exactly one reconnect attempt after a fixed delay and keeps doing
// so indefinitely: for this class of client, silently going dark is worse
// than retrying forever. Close stops the cycle; a reconnect timer that fires
// after Close must not dial again.
type Client struct {
	url     string
	delay   time.Duration
	handler Handler
	logger  *zap.Logger
	dialer  *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// New builds a push-channel client. handler is invoked on the read loop's
// goroutine for every downsync notification.
func New(url string, delay time.Duration, handler Handler, logger *zap.Logger) *Client {
	if delay <= 0 {
		delay = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:     url,
		delay:   delay,
		handler: handler,
		logger:  logger,
		dialer:  websocket.DefaultDialer,
	}
}

// Start begins connecting in the background.
func (c *Client) Start() {
	go c.connect()
}

// Connected reports whether the channel is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close tears the channel down. No replacement connection is created
// afterward.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *Client) connect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	conn, _, err := c.dialer.Dial(c.url, nil)
	if err != nil {
		c.logger.Warn("downsync channel dial failed",
			zap.String("url", c.url),
			zap.Error(err))
		c.scheduleReconnect()
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.mu.Unlock()

	c.logger.Info("downsync channel open")
	c.readLoop(conn)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			conn.Close()

			c.mu.Lock()
			closed := c.closed
			c.conn = nil
			c.mu.Unlock()

			if !closed {
				c.logger.Warn("downsync channel closed, reconnecting",
					zap.Duration("delay", c.delay),
					zap.Error(err))
				c.scheduleReconnect()
			}
			return
		}
		// Messages are newline-delimited JSON; a frame may carry several.
		for _, line := range bytes.Split(payload, []byte{'\n'}) {
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			c.dispatch(line)
		}
	}
}

func (c *Client) dispatch(line []byte) {
	var msg message
	if err := json.Unmarshal(line, &msg); err != nil {
		c.logger.Warn("downsync message decode failed", zap.Error(err))
		return
	}
	switch msg.Type {
	case "downsync":
		c.logger.Info("downsync notification",
			zap.Strings("files", msg.Files))
		if c.handler != nil {
			c.handler(msg.Files)
		}
	default:
		c.logger.Debug("ignoring unknown channel message",
			zap.String("type", msg.Type))
	}
}

// scheduleReconnect arms a single reconnect attempt. The liveness check runs
// when the timer fires, so a Close issued while waiting wins.
func (c *Client) scheduleReconnect() {
	time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
		c.connect()
	})
}

package signal

import (
	"sync"
	"time"

	"telecare/internal/core/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client wraps one WebSocket connection. Outbound frames go through a
// buffered send queue drained by a dedicated write pump, so a slow peer
// never blocks the goroutine that produced the message. Room and user
// identity are bound exactly once, on the first successful join.
type Client struct {
	ID string

	conn    *websocket.Conn
	send    chan []byte
	logger  *zap.SugaredLogger
	limiter *rate.Limiter

	writeTimeout time.Duration
	pingInterval time.Duration
	pongTimeout  time.Duration
	maxFrameSize int64

	mu     sync.Mutex
	roomID domain.RoomID
	userID domain.UserID
	bound  bool

	closeOnce sync.Once
	closed    chan struct{}
}

type clientOptions struct {
	writeTimeout time.Duration
	pingInterval time.Duration
	pongTimeout  time.Duration
	maxFrameSize int64
	queueSize    int
	limiter      *rate.Limiter
}

func newClient(id string, conn *websocket.Conn, logger *zap.SugaredLogger, opts clientOptions) *Client {
	return &Client{
		ID:           id,
		conn:         conn,
		send:         make(chan []byte, opts.queueSize),
		logger:       logger,
		limiter:      opts.limiter,
		writeTimeout: opts.writeTimeout,
		pingInterval: opts.pingInterval,
		pongTimeout:  opts.pongTimeout,
		maxFrameSize: opts.maxFrameSize,
		closed:       make(chan struct{}),
	}
}

// Bind associates the client with a room and user identity. Returns false if
// the client is already bound; the first binding wins and is permanent.
func (c *Client) Bind(roomID domain.RoomID, userID domain.UserID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bound {
		return false
	}
	c.roomID = roomID
	c.userID = userID
	c.bound = true
	return true
}

// Binding returns the bound room and user identity, if any.
func (c *Client) Binding() (domain.RoomID, domain.UserID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID, c.userID, c.bound
}

// Send enqueues a frame without blocking. Returns false if the queue is full
// or the client is closed; the frame is discarded in both cases.
func (c *Client) Send(data []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close shuts the connection down. Safe to call multiple times and from any
// goroutine; the write pump exits on the closed channel.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// readPump consumes inbound frames until the connection errors or closes,
// invoking handle for each frame that passes the rate limiter. It runs on the
// connection's accept goroutine and returns when the transport is done.
func (c *Client) readPump(handle func(*Client, []byte), onRateLimited func()) {
	c.conn.SetReadLimit(c.maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warnw("connection read error", "client_id", c.ID, "error", err)
			}
			return
		}

		if c.limiter != nil && !c.limiter.Allow() {
			if onRateLimited != nil {
				onRateLimited()
			}
			continue
		}

		handle(c, data)
	}
}

// writePump drains the send queue and keeps the connection alive with
// periodic pings. It owns all writes to the underlying connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return

		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debugw("write failed, closing connection", "client_id", c.ID, "error", err)
				c.Close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

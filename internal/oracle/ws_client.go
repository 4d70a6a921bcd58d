package oracle

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// errConnectionLost is delivered to in-flight requests when the socket drops.
var errConnectionLost = errors.New("websocket connection lost")

// WSClient implements Oracle over a persistent WebSocket.
// Requests are matched to replies by id, so calls may overlap.
type WSClient struct {
	endpoint string
	config   WSClientConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// pending maps request id to the channel waiting for its reply
	pending   map[string]chan wsReply
	pendingMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

var _ Oracle = (*WSClient)(nil)

type wsRequest struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
}

type wsReply struct {
	ID     string  `json:"id"`
	Result *string `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`

	err error
}

// NewWSClient creates a new WebSocket oracle client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClient, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSClient{
		endpoint: endpoint,
		config:   cfg,
		pending:  make(map[string]chan wsReply),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes WebSocket connection.
func (c *WSClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "websocket dial")
	}

	readTimeout := c.config.ReadTimeout
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	c.conn = conn
	return nil
}

// RequestFact sends the prompt and waits for the matching reply.
func (c *WSClient) RequestFact(ctx context.Context, prompt string) (string, error) {
	if c.closed.Load() {
		return "", errors.New("client closed")
	}

	id := uuid.NewString()
	replyCh := make(chan wsReply, 1)
	c.pendingMu.Lock()
	c.pending[id] = replyCh
	c.pendingMu.Unlock()
	defer c.forget(id)

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		return "", errors.New("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(wsRequest{ID: id, Prompt: prompt})
	c.connMu.Unlock()
	if err != nil {
		return "", errors.Wrap(err, "write request")
	}

	select {
	case reply := <-replyCh:
		switch {
		case reply.err != nil:
			return "", reply.err
		case reply.Error != "":
			return "", errors.Newf("oracle error: %s", reply.Error)
		case reply.Result == nil:
			return "", errors.New("oracle reply without result")
		}
		return *reply.Result, nil
	case <-c.done:
		return "", errors.New("client closed")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *WSClient) forget(id string) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

// Close closes the WebSocket connection.
func (c *WSClient) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	return nil
}

// readLoop reads replies and dispatches them to waiting requests.
func (c *WSClient) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			if !c.reconnecting.Swap(true) {
				go c.reconnect(nil, reconnectDelay)
			}
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			c.failPending()
			if !c.reconnecting.Swap(true) {
				go c.reconnect(conn, reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = c.config.ReconnectDelay
		c.handleMessage(message)
	}
}

// handleMessage delivers a reply to its waiting request. Unknown ids are dropped.
func (c *WSClient) handleMessage(message []byte) {
	var reply wsReply
	if err := json.Unmarshal(message, &reply); err != nil {
		return
	}

	c.pendingMu.Lock()
	ch, ok := c.pending[reply.ID]
	delete(c.pending, reply.ID)
	c.pendingMu.Unlock()

	if ok {
		ch <- reply
	}
}

// failPending fails every in-flight request.
func (c *WSClient) failPending() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		ch <- wsReply{ID: id, err: errConnectionLost}
		delete(c.pending, id)
	}
}

// reconnect replaces a dead connection after delay.
func (c *WSClient) reconnect(dead *websocket.Conn, delay time.Duration) {
	defer c.reconnecting.Store(false)

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil && c.conn != dead {
		// Already replaced
		c.connMu.Unlock()
		return
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Failure is retried by readLoop while conn stays nil
	if err := c.connect(ctx); err != nil {
		return
	}

	if c.closed.Load() {
		c.connMu.Lock()
		c.conn.Close()
		c.connMu.Unlock()
	}
}

// pingLoop sends periodic pings to keep connection alive.
func (c *WSClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				_ = c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

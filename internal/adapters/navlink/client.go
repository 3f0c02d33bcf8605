package navlink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	closeWait    = 2 * time.Second
	maxEventSize = 64 << 10
)

var ErrNotConnected = errors.New("navlink: not connected")

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// EventSink receives events from the navigation app. Methods are called from
// the client's read goroutine, one at a time.
type EventSink interface {
	OnAppInitialized()
	OnUpdate()
	OnNavigationInfo(info DirectionInfo)
	OnVoiceRouterNotify()
	// OnDisconnected is called once per connection. err is nil after Close or
	// a normal closure by the peer.
	OnDisconnected(err error)
}

// Logger is a printf-style logging function, e.g. log.Printf.
type Logger func(format string, args ...any)

// Client is a connection to a navigation app's event socket.
type Client struct {
	url    string
	sink   EventSink
	dialer *websocket.Dialer
	header http.Header
	logger Logger

	mu      sync.Mutex
	state   State
	conn    *websocket.Conn
	done    chan struct{}
	closing bool

	writeMu sync.Mutex
}

type Option func(*Client)

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithHeader sets headers sent with the websocket handshake.
func WithHeader(h http.Header) Option {
	return func(c *Client) { c.header = h }
}

func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(url string, sink EventSink, opts ...Option) *Client {
	c := &Client{url: url, sink: sink, dialer: websocket.DefaultDialer}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the navigation app. It is a no-op unless the client is
// disconnected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Disconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = Connecting
	c.closing = false
	c.mu.Unlock()

	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		c.mu.Lock()
		c.state = Disconnected
		c.mu.Unlock()
		return fmt.Errorf("navlink: connect %s: %w", c.url, err)
	}
	conn.SetReadLimit(maxEventSize)

	done := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.done = done
	c.state = Connected
	c.mu.Unlock()

	c.logf("navlink: connected url=%s", c.url)
	go c.readLoop(conn, done)
	return nil
}

// RegisterForVoiceRouterMessages asks the app to forward voice router prompts.
func (c *Client) RegisterForVoiceRouterMessages(ctx context.Context) error {
	return c.send(ctx, cmdRegisterVoiceRouter, nil)
}

func (c *Client) ShowMapPoint(ctx context.Context, p MapPoint) error {
	return c.send(ctx, cmdShowMapPoint, p)
}

// Close ends the connection and waits for the read goroutine to stop.
func (c *Client) Close() error {
	c.mu.Lock()
	conn, done := c.conn, c.done
	if conn == nil {
		c.mu.Unlock()
		return nil
	}
	c.closing = true
	c.mu.Unlock()

	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.writeMu.Unlock()

	// The read loop closes the socket once the peer answers the close frame.
	select {
	case <-done:
	case <-time.After(closeWait):
		_ = conn.Close()
		<-done
	}
	return nil
}

func (c *Client) send(ctx context.Context, typ string, payload any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	env := envelope{Type: typ}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("navlink: marshal %s: %w", typ, err)
		}
		env.Payload = b
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("navlink: send %s: %w", typ, err)
	}
	if err := conn.WriteJSON(env); err != nil {
		return fmt.Errorf("navlink: send %s: %w", typ, err)
	}
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	var err error
	for {
		var env envelope
		if err = conn.ReadJSON(&env); err != nil {
			break
		}
		c.dispatch(env)
	}

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.state = Disconnected
	}
	if c.closing || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		err = nil
	}
	c.mu.Unlock()
	_ = conn.Close()

	c.logf("navlink: disconnected url=%s err=%v", c.url, err)
	if c.sink != nil {
		c.sink.OnDisconnected(err)
	}
}

func (c *Client) dispatch(env envelope) {
	if c.sink == nil {
		return
	}

	switch env.Type {
	case evtAppInitialized:
		c.sink.OnAppInitialized()
	case evtUpdate:
		c.sink.OnUpdate()
	case evtVoiceRouterNotify:
		c.sink.OnVoiceRouterNotify()
	case evtNavigationInfo:
		var info DirectionInfo
		if err := json.Unmarshal(env.Payload, &info); err != nil {
			c.logf("navlink: bad navigation_info payload: %v", err)
			return
		}
		c.sink.OnNavigationInfo(info)
	default:
		c.logf("navlink: ignoring event type=%q", env.Type)
	}
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger(format, args...)
	}
}

// Package natsclient provides the NATS connection used by reclaim
// components, with connection lifecycle management, failure tracking, and
// a minimal publish/subscribe surface.
package natsclient

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/reclaim/errors"
)

// ConnectionStatus tracks the state of the NATS connection
type ConnectionStatus int

const (
	// StatusDisconnected means no connection is established
	StatusDisconnected ConnectionStatus = iota
	// StatusConnecting means a connection attempt is in progress
	StatusConnecting
	// StatusConnected means the connection is healthy
	StatusConnected
	// StatusCircuitOpen means repeated failures tripped the circuit breaker
	StatusCircuitOpen
)

// String returns a string representation of the connection status
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusCircuitOpen:
		return "circuit_open"
	default:
		return "unknown"
	}
}

// failureThreshold trips the circuit breaker after this many consecutive
// connection failures.
const failureThreshold = 5

// Client wraps a NATS connection with status tracking and a circuit
// breaker on repeated connection failures.
type Client struct {
	url  string
	opts clientOptions

	mu       sync.RWMutex
	conn     *nats.Conn
	status   ConnectionStatus
	subs     []*nats.Subscription
	failures int32
}

// NewClient creates a client for the given NATS URL. The connection is not
// established until Connect is called.
func NewClient(url string, opts ...ClientOption) (*Client, error) {
	if url == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Client", "NewClient", "url validation")
	}

	options := defaultClientOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Client{
		url:    url,
		opts:   options,
		status: StatusDisconnected,
	}, nil
}

// URL returns the configured NATS URL.
func (c *Client) URL() string {
	return c.url
}

// Status returns the current connection status.
func (c *Client) Status() ConnectionStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// IsHealthy reports whether the client has a live connection.
func (c *Client) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status == StatusConnected && c.conn != nil && c.conn.IsConnected()
}

// Failures returns the consecutive connection failure count.
func (c *Client) Failures() int32 {
	return atomic.LoadInt32(&c.failures)
}

// Connect establishes the NATS connection, honoring the context deadline.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusCircuitOpen {
		c.mu.Unlock()
		return errors.WrapTransient(errors.ErrCircuitOpen, "Client", "Connect", "circuit check")
	}
	c.status = StatusConnecting
	c.mu.Unlock()

	natsOpts := []nats.Option{
		nats.Name(c.opts.name),
		nats.MaxReconnects(c.opts.maxReconnects),
		nats.ReconnectWait(c.opts.reconnectWait),
		nats.Timeout(c.opts.connectTimeout),
		nats.RetryOnFailedConnect(false),
	}

	if deadline, ok := ctx.Deadline(); ok {
		natsOpts = append(natsOpts, nats.Timeout(time.Until(deadline)))
	}

	conn, err := nats.Connect(c.url, natsOpts...)
	if err != nil {
		c.recordFailure()
		return errors.WrapTransient(err, "Client", "Connect", "nats connect")
	}

	c.mu.Lock()
	c.conn = conn
	c.status = StatusConnected
	c.mu.Unlock()
	atomic.StoreInt32(&c.failures, 0)

	return nil
}

func (c *Client) recordFailure() {
	failures := atomic.AddInt32(&c.failures, 1)
	if c.opts.onFailure != nil {
		c.opts.onFailure()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if failures >= failureThreshold {
		c.status = StatusCircuitOpen
	} else {
		c.status = StatusDisconnected
	}
}

// ResetCircuit clears the failure count and reopens the client for
// connection attempts.
func (c *Client) ResetCircuit() {
	atomic.StoreInt32(&c.failures, 0)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusCircuitOpen {
		c.status = StatusDisconnected
	}
}

// Subscribe registers a handler for a subject. The subscription lives until
// Close.
func (c *Client) Subscribe(ctx context.Context, subject string, handler func(context.Context, []byte)) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return errors.WrapTransient(errors.ErrNoConnection, "Client", "Subscribe", "connection check")
	}

	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(ctx, msg.Data)
	})
	if err != nil {
		return errors.WrapTransient(err, "Client", "Subscribe", subject)
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	return nil
}

// Publish sends data to a subject.
func (c *Client) Publish(_ context.Context, subject string, data []byte) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return errors.WrapTransient(errors.ErrNoConnection, "Client", "Publish", "connection check")
	}

	if err := conn.Publish(subject, data); err != nil {
		return errors.WrapTransient(err, "Client", "Publish", subject)
	}
	return nil
}

// RTT measures the round-trip time to the server.
func (c *Client) RTT() (time.Duration, error) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return 0, errors.WrapTransient(errors.ErrNoConnection, "Client", "RTT", "connection check")
	}
	return conn.RTT()
}

// Close drains subscriptions and closes the connection, honoring the
// context deadline for the drain.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	subs := c.subs
	c.conn = nil
	c.subs = nil
	c.status = StatusDisconnected
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	for _, sub := range subs {
		// Unsubscribe errors during shutdown are not actionable.
		_ = sub.Unsubscribe()
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Drain()
	}()

	select {
	case err := <-done:
		if err != nil {
			conn.Close()
			return errors.WrapTransient(err, "Client", "Close", "drain")
		}
		return nil
	case <-ctx.Done():
		conn.Close()
		return errors.WrapTransient(ctx.Err(), "Client", "Close", "drain timeout")
	}
}

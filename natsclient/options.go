package natsclient

import "time"

type clientOptions struct {
	name           string
	maxReconnects  int
	reconnectWait  time.Duration
	connectTimeout time.Duration
	onFailure      func()
}

func defaultClientOptions() clientOptions {
	return clientOptions{
		name:           "reclaim",
		maxReconnects:  -1, // reconnect forever
		reconnectWait:  2 * time.Second,
		connectTimeout: 5 * time.Second,
	}
}

// ClientOption configures a Client at construction.
type ClientOption func(*clientOptions)

// WithName sets the connection name reported to the NATS server.
func WithName(name string) ClientOption {
	return func(o *clientOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithMaxReconnects bounds automatic reconnect attempts. Negative means
// reconnect forever.
func WithMaxReconnects(n int) ClientOption {
	return func(o *clientOptions) {
		o.maxReconnects = n
	}
}

// WithReconnectWait sets the delay between reconnect attempts.
func WithReconnectWait(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		if d > 0 {
			o.reconnectWait = d
		}
	}
}

// WithConnectTimeout sets the initial connection timeout.
func WithConnectTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithFailureHook registers a callback invoked once per recorded
// connection failure. It feeds failure counters without coupling the
// client to a metrics registry.
func WithFailureHook(fn func()) ClientOption {
	return func(o *clientOptions) {
		o.onFailure = fn
	}
}

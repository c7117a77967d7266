package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// NetworkTCP dials a plain TCP socket.
	NetworkTCP = "tcp"
	// NetworkWebSocket dials a WebSocket whose binary messages carry the stream.
	NetworkWebSocket = "websocket"
)

// DialConfig describes how to reach the debug server.
type DialConfig struct {
	// Network is NetworkTCP or NetworkWebSocket
	Network string
	// Address is host:port for TCP
	Address string
	// URL is the ws:// or wss:// endpoint for WebSocket
	URL string
	// Timeout bounds each connection attempt; zero means no per-attempt limit
	Timeout time.Duration
	// Retries is how many extra attempts follow a failed one
	Retries int
	// InitialBackoff is the first retry delay; zero uses the backoff default
	InitialBackoff time.Duration
	// Logger receives retry warnings
	Logger *zap.Logger
}

// Target returns the address or URL that will be dialed.
func (c DialConfig) Target() string {
	if c.Network == NetworkWebSocket {
		return c.URL
	}
	return c.Address
}

func (c DialConfig) validate() error {
	switch c.Network {
	case "", NetworkTCP:
		if c.Address == "" {
			return fmt.Errorf("tcp dial needs an address")
		}
	case NetworkWebSocket:
		if c.URL == "" {
			return fmt.Errorf("websocket dial needs a url")
		}
	default:
		return fmt.Errorf("unknown transport %q (valid: %s, %s)", c.Network, NetworkTCP, NetworkWebSocket)
	}
	return nil
}

// Dial connects to the debug server, retrying failed attempts with
// exponential backoff. Cancelling ctx stops the retries.
func Dial(ctx context.Context, cfg DialConfig) (io.ReadWriteCloser, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var b backoff.BackOff = &backoff.StopBackOff{}
	if cfg.Retries > 0 {
		exp := backoff.NewExponentialBackOff()
		if cfg.InitialBackoff > 0 {
			exp.InitialInterval = cfg.InitialBackoff
		}
		exp.MaxElapsedTime = 0
		// WithMaxRetries treats zero as unlimited, hence the StopBackOff above.
		b = backoff.WithMaxRetries(exp, uint64(cfg.Retries))
	}
	policy := backoff.WithContext(b, ctx)

	var (
		conn     io.ReadWriteCloser
		attempts int
	)
	op := func() error {
		attempts++
		c, err := dialOnce(ctx, cfg)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("connection attempt failed, retrying",
			zap.String("target", cfg.Target()),
			zap.Int("attempt", attempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, &DialError{Address: cfg.Target(), Attempts: attempts, Err: err}
	}

	logger.Info("connected",
		zap.String("target", cfg.Target()),
		zap.String("network", cfg.Network),
		zap.Int("attempts", attempts),
	)
	return conn, nil
}

func dialOnce(ctx context.Context, cfg DialConfig) (io.ReadWriteCloser, error) {
	if cfg.Network == NetworkWebSocket {
		dialer := websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: cfg.Timeout,
		}
		ws, _, err := dialer.DialContext(ctx, cfg.URL, nil)
		if err != nil {
			return nil, err
		}
		return NewWebSocketConn(ws), nil
	}

	d := net.Dialer{Timeout: cfg.Timeout}
	return d.DialContext(ctx, "tcp", cfg.Address)
}

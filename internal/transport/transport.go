package transport

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/muurk/zdb/internal/logging"
	"go.uber.org/zap"
)

const (
	// DefaultMaxPayload bounds the declared length of a received frame.
	DefaultMaxPayload = 8 * 1024 * 1024

	// DefaultReadSize is the size of each underlying read.
	DefaultReadSize = 1024

	// maxEmptyReads is how many (0, nil) reads are tolerated in a row.
	maxEmptyReads = 100
)

// pending is the receive-side accumulation state for one connection. It is
// reset after every delivered frame.
type pending struct {
	received     int
	headerParsed bool
	expected     int
	buf          []byte
}

func (p *pending) add(b []byte) {
	p.buf = append(p.buf, b...)
	p.received += len(b)
}

// take copies the payload of the completed frame out of the buffer.
func (p *pending) take(headerSize int) []byte {
	payload := make([]byte, p.expected-headerSize)
	copy(payload, p.buf[headerSize:p.expected])
	return payload
}

func (p *pending) reset() {
	p.received = 0
	p.headerParsed = false
	p.expected = 0
	p.buf = p.buf[:0]
}

// deadliner is implemented by connections that support read timeouts.
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// Transport frames payloads over one byte stream. It is owned by a single
// session and not safe for concurrent use.
type Transport struct {
	rw           io.ReadWriter
	codec        FrameCodec
	logger       *zap.Logger
	maxPayload   int
	pipelined    bool
	replyTimeout time.Duration

	readBuf []byte
	pending pending
	err     error
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the transport logger. Frames are dumped at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithMaxPayload overrides DefaultMaxPayload.
func WithMaxPayload(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.maxPayload = n
		}
	}
}

// WithPipelining keeps bytes received past the end of a frame for the next
// Receive instead of rejecting them.
func WithPipelining(enabled bool) Option {
	return func(t *Transport) {
		t.pipelined = enabled
	}
}

// WithReadSize sets the size of each underlying read.
func WithReadSize(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.readBuf = make([]byte, n)
		}
	}
}

// WithReplyTimeout sets a read deadline for each Receive when the stream
// supports one. Zero waits forever.
func WithReplyTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.replyTimeout = d
	}
}

// New creates a Transport over rw using codec for both directions.
func New(rw io.ReadWriter, codec FrameCodec, opts ...Option) *Transport {
	t := &Transport{
		rw:         rw,
		codec:      codec,
		logger:     zap.NewNop(),
		maxPayload: DefaultMaxPayload,
		readBuf:    make([]byte, DefaultReadSize),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send writes payload as one frame. Short writes are retried until every
// byte has been written.
func (t *Transport) Send(payload []byte) error {
	if len(payload) > t.maxPayload {
		return fmt.Errorf("send %d bytes: %w", len(payload), ErrPayloadTooLarge)
	}
	frame, err := Encode(t.codec, payload)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := writeFull(t.rw, frame); err != nil {
		return fmt.Errorf("send frame: %w", err)
	}
	t.logFrame("sent", payload)
	return nil
}

func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		p = p[n:]
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}

// Receive blocks until one complete frame has arrived and returns its
// payload. Framing violations return an error matching ErrInvalidFrame; a
// stream that ends mid-frame returns one matching ErrConnectionClosed. Both
// are sticky: every later call returns the same error.
func (t *Transport) Receive() ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	if t.replyTimeout > 0 {
		if d, ok := t.rw.(deadliner); ok {
			if err := d.SetReadDeadline(time.Now().Add(t.replyTimeout)); err != nil {
				return nil, fmt.Errorf("set read deadline: %w", err)
			}
		}
	}

	payload, err := t.receive()
	if err != nil {
		t.err = err
		t.logger.Debug("receive failed",
			zap.Error(err),
			zap.Int("bytes_pending", t.pending.received),
		)
		return nil, err
	}
	t.logFrame("received", payload)
	return payload, nil
}

func (t *Transport) receive() ([]byte, error) {
	empty := 0
	for {
		if payload, ok, err := t.advance(); ok || err != nil {
			return payload, err
		}

		n, err := t.rw.Read(t.readBuf)
		if n > 0 {
			t.pending.add(t.readBuf[:n])
			empty = 0
		}
		if err != nil {
			if payload, ok, aerr := t.advance(); ok || aerr != nil {
				return payload, aerr
			}
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w (%d bytes of an incomplete frame pending)", ErrConnectionClosed, t.pending.received)
			}
			return nil, fmt.Errorf("read frame: %w", err)
		}
		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return nil, io.ErrNoProgress
			}
		}
	}
}

// advance inspects the accumulated bytes. It returns ok once a whole frame
// is available.
func (t *Transport) advance() ([]byte, bool, error) {
	p := &t.pending
	hs := t.codec.HeaderSize()

	if !p.headerParsed {
		if p.received < hs {
			return nil, false, nil
		}
		n, err := t.codec.DecodeHeader(p.buf[:hs])
		if err != nil {
			return nil, false, &InvalidFrameError{Reason: "undecodable header", Err: err}
		}
		if n > t.maxPayload {
			return nil, false, &InvalidFrameError{
				Reason: fmt.Sprintf("declared length %d exceeds limit %d", n, t.maxPayload),
			}
		}
		p.expected = hs + n
		p.headerParsed = true
	}

	switch {
	case p.received < p.expected:
		return nil, false, nil

	case p.received == p.expected:
		payload := p.take(hs)
		p.reset()
		return payload, true, nil

	case t.pipelined:
		payload := p.take(hs)
		rest := append([]byte(nil), p.buf[p.expected:]...)
		p.reset()
		p.add(rest)
		return payload, true, nil

	default:
		return nil, false, &InvalidFrameError{
			Reason: fmt.Sprintf("received %d bytes but frame declares %d", p.received, p.expected),
		}
	}
}

func (t *Transport) logFrame(direction string, payload []byte) {
	logging.LogFrame(t.logger, direction, payload, zap.String("codec", t.codec.Name()))
}

package session

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muurk/zdb/internal/command"
	"github.com/muurk/zdb/internal/mapfile"
	"github.com/muurk/zdb/internal/transport"
	"go.uber.org/zap"
)

// SuccessReply is the reply text meaning "nothing to display".
const SuccessReply = "success"

// ErrClosed is returned by Execute after Close.
var ErrClosed = errors.New("session closed")

// Outcome collects what one command line produced.
type Outcome struct {
	// Replies holds every reply other than SuccessReply, in order
	Replies []string
	// Problems are non-fatal failures reported by the codec
	Problems []error
	// Sent is the number of directives written to the server
	Sent int
	// Recognized is false when the leading keyword was unknown
	Recognized bool
}

// Session is a single connection to the debug server. It is not safe for
// concurrent use.
type Session struct {
	conn      io.Closer
	transport *transport.Transport
	codec     *command.Codec
	logger    *zap.Logger
	closed    bool
}

// New wraps an established connection. The framing codec is used in both
// directions; opts configure the underlying Transport.
func New(conn io.ReadWriteCloser, codec *command.Codec, framing transport.FrameCodec, logger *zap.Logger, opts ...transport.Option) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append([]transport.Option{transport.WithLogger(logger)}, opts...)
	return &Session{
		conn:      conn,
		transport: transport.New(conn, framing, opts...),
		codec:     codec,
		logger:    logger,
	}
}

// Announce sends the overlay table addresses. Tables missing from the map
// file are sent as mapfile.AbsentTable.
func (s *Session) Announce(locs mapfile.TableLocations) (Outcome, error) {
	d := s.codec.TableLocs(locs, mapfile.AbsentTable)
	s.logger.Info("announcing overlay tables",
		zap.String("directive", d.Command),
		zap.Int("found", locs.Found()),
	)
	return s.Dispatch(command.Result{Directives: []command.Directive{d}, Recognized: true})
}

// Execute builds line into directives and sends them. Blank lines do
// nothing.
func (s *Session) Execute(line string) (Outcome, error) {
	if strings.TrimSpace(line) == "" {
		return Outcome{Recognized: true}, nil
	}
	return s.Dispatch(s.codec.BuildLine(line))
}

// Dispatch sends already-built directives in order, waiting for a reply
// after each one that expects it. It stops at the first transport error.
func (s *Session) Dispatch(res command.Result) (Outcome, error) {
	out := Outcome{
		Problems:   res.Problems,
		Recognized: res.Recognized,
	}
	if s.closed {
		return out, ErrClosed
	}

	for _, d := range res.Directives {
		if err := s.transport.Send(d.Payload()); err != nil {
			return out, fmt.Errorf("send %q: %w", d.Keyword(), err)
		}
		out.Sent++
		s.logger.Debug("directive sent",
			zap.String("command", d.Command),
			zap.Stringer("reply", d.Reply),
		)

		if d.Reply != command.ExpectReply {
			continue
		}
		payload, err := s.transport.Receive()
		if err != nil {
			return out, fmt.Errorf("await reply to %q: %w", d.Keyword(), err)
		}
		if reply := string(payload); reply != SuccessReply {
			out.Replies = append(out.Replies, reply)
		}
	}
	return out, nil
}

// Close closes the connection. Calling it more than once is harmless.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Debug("closing session")
	return s.conn.Close()
}

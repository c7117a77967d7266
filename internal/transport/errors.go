package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFrame reports a framing violation. The connection cannot
	// resynchronize and must be closed.
	ErrInvalidFrame = errors.New("invalid frame")

	// ErrConnectionClosed reports that the peer closed the stream before a
	// frame completed.
	ErrConnectionClosed = errors.New("connection closed by server")

	// ErrPayloadTooLarge is returned by Send for payloads over the limit.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// InvalidFrameError describes why a frame was rejected. errors.Is matches it
// against ErrInvalidFrame.
type InvalidFrameError struct {
	// Reason is a human-readable description
	Reason string
	// Err is the underlying decode failure, if any
	Err error
}

func (e *InvalidFrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("received invalid packet: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("received invalid packet: %s", e.Reason)
}

func (e *InvalidFrameError) Is(target error) bool {
	return target == ErrInvalidFrame
}

func (e *InvalidFrameError) Unwrap() error {
	return e.Err
}

// DialError represents a failure to reach the debug server.
type DialError struct {
	// Address is the host:port or URL that was dialed
	Address string
	// Attempts is how many connection attempts were made
	Attempts int
	// Err is the last dial error
	Err error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("failed to connect to debug server at %s after %d attempt(s): %v\n"+
		"Hint: Ensure the emulator is running with the zdb server script loaded.",
		e.Address, e.Attempts, e.Err)
}

func (e *DialError) Unwrap() error {
	return e.Err
}

// Package transport implements the zdb message framing protocol.
//
// Every message on the wire is a header carrying the payload length followed
// by the payload bytes. The header format is a FrameCodec chosen once per
// connection and used in both directions:
//
//	length-prefix  [4-byte little-endian uint32 N][N bytes]
//	hex            [10 ASCII chars, e.g. "0x0000000c"][N bytes]
//
// Transport.Send writes a whole frame, retrying short writes. Transport.Receive
// accumulates reads of any size until exactly one frame is complete. In the
// default strict mode, bytes beyond the declared frame length mean sender and
// receiver framing have desynchronized and Receive fails with ErrInvalidFrame;
// the connection must then be torn down. With WithPipelining the surplus is
// kept as the start of the next frame instead.
//
// Dial opens the underlying byte stream, either a TCP connection or a
// WebSocket whose binary messages carry the stream, retrying with exponential
// backoff.
package transport

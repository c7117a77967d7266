// Package session drives one connection to the debug server.
//
// A Session owns the connection and its Transport. At startup it announces
// the overlay dispatch table addresses with a tablelocs directive; after
// that each user command line is built into directives by a command.Codec,
// sent one frame at a time, and, for directives that expect one, answered by
// exactly one reply frame before the next directive goes out.
//
// The server replies "success" when it has nothing to report. Those replies
// are swallowed; any other reply text is returned to the caller for display.
//
// Resolution and usage problems come back inside the Outcome and never end
// the session. Transport failures are returned as errors: the stream is no
// longer framed correctly and the caller should close the session.
package session

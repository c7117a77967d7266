package command

import "strings"

// ReplyMode tells the caller whether a reply frame follows a directive.
type ReplyMode int

const (
	// NoReply directives are fire-and-forget.
	NoReply ReplyMode = iota
	// ExpectReply directives are followed by exactly one reply frame.
	ExpectReply
)

func (m ReplyMode) String() string {
	switch m {
	case NoReply:
		return "no-reply"
	case ExpectReply:
		return "expect-reply"
	default:
		return "unknown"
	}
}

// Directive is a wire-ready command line and its reply expectation.
type Directive struct {
	Command string
	Reply   ReplyMode
}

// Payload returns the UTF-8 bytes sent inside one frame.
func (d Directive) Payload() []byte {
	return []byte(d.Command)
}

// Keyword returns the first word of the directive.
func (d Directive) Keyword() string {
	keyword, _, _ := strings.Cut(d.Command, " ")
	return keyword
}

// Result is everything one user command produced.
type Result struct {
	// Directives to send, in order
	Directives []Directive
	// Problems are per-directive failures to report; they never stop the batch
	Problems []error
	// Recognized is false when the leading keyword is unknown
	Recognized bool
}

// Empty reports whether nothing is to be sent.
func (r Result) Empty() bool {
	return len(r.Directives) == 0
}

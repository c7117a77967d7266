// Package command turns user command lines into wire directives for the
// debug server.
//
// A Codec dispatches on the leading keyword, resolves function names through
// a Resolver and renders the exact text the server expects:
//
//	break <func> <addr>
//	break <func> ovl <overlay> <addr>
//	delete <func>
//	info | info breakpoints
//	clear
//	tablelocs <a0> <a1> <a2> <a3>
//
// Each Directive carries a ReplyMode telling the caller whether to block for
// a reply frame after sending it. Resolution failures, usage mistakes and
// unknown keywords are returned as Problems next to whatever directives could
// still be built; none of them abort a batch.
package command

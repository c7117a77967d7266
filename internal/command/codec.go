package command

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/muurk/zdb/internal/mapfile"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Resolver maps a function name to its address. *mapfile.Index satisfies it.
type Resolver interface {
	Resolve(name string) (mapfile.Resolution, error)
}

// Codec builds directives from tokenized user commands.
type Codec struct {
	resolver  Resolver
	fs        afero.Fs
	awaitAcks bool
	logger    *zap.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithFs sets the filesystem batch files are read from (default: the OS).
func WithFs(fs afero.Fs) Option {
	return func(c *Codec) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// WithAwaitAcks marks every directive ExpectReply, for servers that
// acknowledge each command with a status string.
func WithAwaitAcks(await bool) Option {
	return func(c *Codec) {
		c.awaitAcks = await
	}
}

// WithLogger sets the codec logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCodec creates a codec resolving names through r.
func NewCodec(r Resolver, opts ...Option) *Codec {
	c := &Codec{
		resolver: r,
		fs:       afero.NewOsFs(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build dispatches on tokens[0]. An empty token list yields an empty,
// recognized result.
func (c *Codec) Build(tokens []string) Result {
	if len(tokens) == 0 {
		return Result{Recognized: true}
	}

	keyword, args := tokens[0], tokens[1:]
	var res Result
	switch keyword {
	case "break", "b":
		res = c.buildBreak(args)
	case "delete", "d":
		res = c.buildDelete(args)
	case "info":
		res = c.buildInfo(args)
	case "clear":
		res = Result{Recognized: true, Directives: []Directive{c.directive("clear", NoReply)}}
	case "load":
		res = c.buildLoad(args)
	default:
		c.logger.Debug("unrecognized command", zap.String("keyword", keyword))
		return Result{Problems: []error{ErrUnrecognized}}
	}
	return res
}

// BuildLine splits line on whitespace and calls Build.
func (c *Codec) BuildLine(line string) Result {
	return c.Build(strings.Fields(line))
}

func (c *Codec) buildBreak(args []string) Result {
	if len(args) != 1 {
		return usage("break", "break <func>")
	}
	res := Result{Recognized: true}
	c.appendBreak(&res, args[0])
	return res
}

func (c *Codec) buildDelete(args []string) Result {
	if len(args) != 1 {
		return usage("delete", "delete <func>")
	}
	return Result{
		Recognized: true,
		Directives: []Directive{c.directive("delete "+args[0], NoReply)},
	}
}

func (c *Codec) buildInfo(args []string) Result {
	switch {
	case len(args) == 0:
		return Result{Recognized: true, Directives: []Directive{c.directive("info", ExpectReply)}}
	case len(args) == 1 && args[0] == "breakpoints":
		return Result{Recognized: true, Directives: []Directive{c.directive("info breakpoints", ExpectReply)}}
	default:
		return usage("info", "info [breakpoints]")
	}
}

// buildLoad expands a batch file into one break directive per resolvable
// name. Blank lines and lines starting with // are skipped.
func (c *Codec) buildLoad(args []string) Result {
	if len(args) != 1 {
		return usage("load", "load <file>")
	}
	path := args[0]
	res := Result{Recognized: true}

	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		res.Problems = append(res.Problems, &BatchError{Path: path, Err: err})
		return res
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		c.appendBreak(&res, line)
	}
	if err := scanner.Err(); err != nil {
		res.Problems = append(res.Problems, &BatchError{Path: path, Err: err})
	}

	c.logger.Debug("expanded batch file",
		zap.String("path", path),
		zap.Int("directives", len(res.Directives)),
		zap.Int("problems", len(res.Problems)),
	)
	return res
}

func (c *Codec) appendBreak(res *Result, name string) {
	r, err := c.resolver.Resolve(name)
	if err != nil {
		c.logger.Warn("skipping breakpoint", zap.String("func", name), zap.Error(err))
		res.Problems = append(res.Problems, err)
		return
	}
	res.Directives = append(res.Directives, c.directive(BreakCommand(name, r), NoReply))
}

// BreakCommand renders the break directive text for a resolved function.
// Addresses are written in decimal.
func BreakCommand(name string, r mapfile.Resolution) string {
	if r.InOverlay() {
		return fmt.Sprintf("break %s ovl %s %d", name, r.Overlay, r.Address)
	}
	return fmt.Sprintf("break %s %d", name, r.Address)
}

// TableLocsCommand renders the announcement of overlay table addresses.
// Absent tables are written as sentinel.
func TableLocsCommand(locs mapfile.TableLocations, sentinel string) string {
	return "tablelocs " + strings.Join(locs.Args(sentinel), " ")
}

// TableLocs builds the session-start announcement as a directive, honouring
// the codec's await-acks mode.
func (c *Codec) TableLocs(locs mapfile.TableLocations, sentinel string) Directive {
	return c.directive(TableLocsCommand(locs, sentinel), NoReply)
}

func (c *Codec) directive(cmd string, reply ReplyMode) Directive {
	if c.awaitAcks {
		reply = ExpectReply
	}
	return Directive{Command: cmd, Reply: reply}
}

func usage(cmd, form string) Result {
	return Result{Recognized: true, Problems: []error{&UsageError{Command: cmd, Usage: form}}}
}

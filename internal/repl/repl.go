// Package repl reads user command lines and drives a session with them.
//
// On a terminal the loop uses golang.org/x/term for line editing and
// history. Anywhere else (pipes, scripts, tests) it reads plain lines. help,
// quit and exit are handled here and never reach the session.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muurk/zdb/internal/session"
	"github.com/muurk/zdb/internal/ui"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Prompt is printed before every line.
const Prompt = "> "

// Executor runs one command line. *session.Session implements it.
type Executor interface {
	Execute(line string) (session.Outcome, error)
}

// lineReader yields one line per call and io.EOF at end of input.
type lineReader interface {
	ReadLine() (string, error)
}

// Loop is the interactive command loop.
type Loop struct {
	exec   Executor
	in     io.Reader
	out    io.Writer
	logger *zap.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithInput overrides os.Stdin.
func WithInput(r io.Reader) Option {
	return func(l *Loop) { l.in = r }
}

// WithOutput overrides os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(l *Loop) { l.out = w }
}

// WithLogger sets the loop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loop that sends lines to exec.
func New(exec Executor, opts ...Option) *Loop {
	l := &Loop{
		exec:   exec,
		in:     os.Stdin,
		out:    os.Stdout,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run reads lines until quit, end of input or a fatal session error, which
// is returned. ctx is checked between lines.
func (l *Loop) Run(ctx context.Context) error {
	inFile, inOK := l.in.(*os.File)
	outFile, outOK := l.out.(*os.File)
	if inOK && outOK && ui.IsTerminal(inFile) && ui.IsTerminal(outFile) {
		return l.runTerminal(ctx, inFile, outFile)
	}
	return l.run(ctx, &scanReader{
		scanner: bufio.NewScanner(l.in),
		out:     l.out,
	}, ui.NewPrinter(l.out), false)
}

func (l *Loop) runTerminal(ctx context.Context, in, out *os.File) error {
	state, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(int(in.Fd()), state)
	}()

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, ui.PromptStyle.Render(Prompt))
	if w, h, err := term.GetSize(int(out.Fd())); err == nil {
		_ = t.SetSize(w, h)
	}

	// Writes through t translate \n to \r\n while the terminal is raw.
	return l.run(ctx, t, ui.NewPrinter(t), true)
}

func (l *Loop) run(ctx context.Context, lines lineReader, p *ui.Printer, styled bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			l.logger.Debug("end of input")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		cmd := strings.TrimSpace(line)
		switch cmd {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "help":
			if styled {
				p.PrintHelp()
			} else {
				p.Print(ui.PlainHelp())
				p.Newline()
			}
			continue
		}

		out, err := l.exec.Execute(cmd)
		for _, problem := range out.Problems {
			p.PrintProblem(problem)
		}
		for _, reply := range out.Replies {
			p.PrintReply(reply)
		}
		if err != nil {
			l.logger.Error("session failed", zap.String("command", cmd), zap.Error(err))
			return err
		}
	}
}

// scanReader prints the prompt and reads one line from a non-terminal input.
type scanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (r *scanReader) ReadLine() (string, error) {
	_, _ = fmt.Fprint(r.out, Prompt)
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrInterrupted is returned by RunWithSpinner when the user pressed ctrl+c.
var ErrInterrupted = errors.New("interrupted")

// Task is the work shown behind a spinner.
type Task func(ctx context.Context) error

// taskDoneMsg carries the task result back into the Bubble Tea loop
type taskDoneMsg struct{ err error }

// spinnerModel shows "<spinner> label..." until the task finishes, then
// leaves "label...done" (or "label...failed") on screen.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	done    string
	task    Task
	ctx     context.Context
	cancel  context.CancelFunc

	finished bool
	err      error
}

func newSpinnerModel(ctx context.Context, label, done string, task Task) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ctx, cancel := context.WithCancel(ctx)
	return spinnerModel{
		spinner: s,
		label:   label,
		done:    done,
		task:    task,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Init implements tea.Model
func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return taskDoneMsg{err: m.task(m.ctx)}
	})
}

// Update implements tea.Model
func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.finished = true
			m.err = ErrInterrupted
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m spinnerModel) View() string {
	if !m.finished {
		return m.spinner.View() + " " + m.label + "...\n"
	}
	if m.err != nil {
		return m.label + "..." + ErrorMessageStyle.Render("failed") + "\n"
	}
	return m.label + "..." + SuccessTitleStyle.Render(m.done) + "\n"
}

// RunWithSpinner runs task while showing label with a spinner. When out is
// not a terminal it prints "label..." before the task and done after it,
// with no animation.
func RunWithSpinner(ctx context.Context, out io.Writer, label, done string, task Task) error {
	f, ok := out.(*os.File)
	if !ok || !IsTerminal(f) {
		_, _ = fmt.Fprint(out, label+"...")
		err := task(ctx)
		if err != nil {
			_, _ = fmt.Fprintln(out, "failed")
			return err
		}
		_, _ = fmt.Fprintln(out, done)
		return nil
	}

	m := newSpinnerModel(ctx, label, done, task)
	defer m.cancel()

	final, err := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("spinner: %w", err)
	}
	return final.(spinnerModel).err
}

package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestHeaderRender(t *testing.T) {
	h := NewHeader("zdb", "zdb --map z64.map",
		Param{"Server", "localhost:7340"},
		Param{"Symbols", "1234"},
	).SetWidth(80)

	out := h.Render()
	for _, want := range []string{"ZDB", "zdb --map z64.map", "Server:", "localhost:7340", "Symbols:", "1234"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Server:") > strings.Index(out, "Symbols:") {
		t.Error("Render() should keep params in the given order")
	}
}

func TestResultRender(t *testing.T) {
	fail := NewFailureResult("Connection lost", errors.New("received invalid packet"),
		[]string{"Restart the emulator"}).SetWidth(80).Render()
	for _, want := range []string{"FAILED", "Connection lost", "Error: received invalid packet", "Troubleshooting:", "Restart the emulator"} {
		if !strings.Contains(fail, want) {
			t.Errorf("failure box missing %q:\n%s", want, fail)
		}
	}

	ok := NewSuccessResult("Config written", Param{"Path", "zdb.yaml"}).SetWidth(80).Render()
	for _, want := range []string{"SUCCESS", "Config written", "Path:", "zdb.yaml"} {
		if !strings.Contains(ok, want) {
			t.Errorf("success box missing %q:\n%s", want, ok)
		}
	}
}

func TestPrinterReply(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReply("1 breakpoint EnTest_Init")
	if got, want := buf.String(), "\n1 breakpoint EnTest_Init\n\n"; got != want {
		t.Errorf("PrintReply() wrote %q, want %q", got, want)
	}
}

func TestPrinterProblem(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProblem(errors.New("could not find function with name foo"))

	if got, want := buf.String(), "Error: could not find function with name foo\n"; got != want {
		t.Errorf("PrintProblem() wrote %q, want %q", got, want)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"Symbol", "Address"}, [][]string{
		{"bootproc", "0x80000460"},
		{"EnTest_Init", "en_test+0x0"},
	})
	for _, want := range []string{"Symbol", "Address", "bootproc", "0x80000460", "EnTest_Init", "en_test+0x0"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderTable() missing %q:\n%s", want, out)
		}
	}
}

func TestHelp(t *testing.T) {
	styled := RenderHelp()
	plain := PlainHelp()
	for _, c := range Commands {
		if !strings.Contains(styled, c.Usage) {
			t.Errorf("RenderHelp() missing %q", c.Usage)
		}
		if !strings.Contains(plain, c.Usage) {
			t.Errorf("PlainHelp() missing %q", c.Usage)
		}
	}
	if !strings.Contains(plain, "break [func]          set breakpoint on func\n") {
		t.Errorf("PlainHelp() should pad the command column to 20:\n%s", plain)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got := Confirm(strings.NewReader(tt.input), &out, "Overwrite", []string{"zdb.yaml exists"}, "Replace it?")
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Replace it? [y/N]") {
			t.Errorf("Confirm(%q) did not prompt", tt.input)
		}
	}
}

func TestRunWithSpinnerPlain(t *testing.T) {
	var buf bytes.Buffer
	err := RunWithSpinner(context.Background(), &buf, "connecting to localhost on port 7340", "connected",
		func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("RunWithSpinner() error = %v", err)
	}
	if got, want := buf.String(), "connecting to localhost on port 7340...connected\n"; got != want {
		t.Errorf("RunWithSpinner() wrote %q, want %q", got, want)
	}

	buf.Reset()
	boom := errors.New("refused")
	err = RunWithSpinner(context.Background(), &buf, "connecting", "connected",
		func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("RunWithSpinner() error = %v, want %v", err, boom)
	}
	if got, want := buf.String(), "connecting...failed\n"; got != want {
		t.Errorf("RunWithSpinner() wrote %q, want %q", got, want)
	}
}

func TestSpinnerModel(t *testing.T) {
	m := newSpinnerModel(context.Background(), "connecting", "connected", func(context.Context) error { return nil })
	defer m.cancel()

	if !strings.Contains(m.View(), "connecting...") {
		t.Errorf("View() = %q, want the label while running", m.View())
	}

	next, cmd := m.Update(taskDoneMsg{})
	if cmd == nil {
		t.Error("Update(taskDoneMsg) should quit")
	}
	if got := next.(spinnerModel).View(); !strings.Contains(got, "connecting...connected") {
		t.Errorf("View() after done = %q", got)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	sm := next.(spinnerModel)
	if !errors.Is(sm.err, ErrInterrupted) {
		t.Errorf("err after ctrl+c = %v, want ErrInterrupted", sm.err)
	}
	if sm.ctx.Err() == nil {
		t.Error("ctrl+c should cancel the task context")
	}
}

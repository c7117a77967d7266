package ui

import "strings"

// HelpEntry documents one REPL command.
type HelpEntry struct {
	Usage       string
	Description string
}

// Commands lists the REPL commands in the order help shows them.
var Commands = []HelpEntry{
	{"break [func]", "set breakpoint on func"},
	{"delete [func]", "delete breakpoint on func"},
	{"clear", "delete all active breakpoints"},
	{"info", "print all active breakpoints"},
	{"load [file]", "set a breakpoint for each function listed in file (one function per line, use '//' to comment out)"},
	{"help", "show this list"},
	{"quit", "exit the program"},
}

// RenderHelp renders the command list as a table.
func RenderHelp() string {
	rows := make([][]string, 0, len(Commands))
	for _, c := range Commands {
		rows = append(rows, []string{c.Usage, c.Description})
	}
	return "\n" + HeaderTitleStyle.Render("Commands:") + "\n" +
		RenderTable([]string{"Command", "Description"}, rows) + "\n"
}

// PlainHelp renders the command list without styling, one command per line.
func PlainHelp() string {
	var b strings.Builder
	b.WriteString("\nCommands:\n")
	for _, c := range Commands {
		b.WriteString(padRight(c.Usage, 20))
		b.WriteString("  ")
		b.WriteString(c.Description)
		b.WriteString("\n")
	}
	return b.String()
}

// PrintHelp prints the command table.
func (p *Printer) PrintHelp() {
	p.Println(RenderHelp())
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

// Package ui provides terminal output components for the zdb CLI.
//
// Everything is rendered with Lipgloss and written through a Printer:
//
//   - Header: session banner with server, map file and symbol counts
//   - Result: success and failure boxes, failures with troubleshooting tips
//   - Tables: the help listing and the resolve/tables subcommand output
//   - Replies and problems: debug server text and non-fatal command errors
//
// RunWithSpinner wraps a blocking task (connecting, mDNS browsing) in a
// Bubble Tea spinner when stdout is a terminal, and degrades to a plain
// "label...done" line otherwise.
package ui

package command

import (
	"errors"
	"fmt"
)

// ErrUnrecognized is reported for an unknown leading keyword.
var ErrUnrecognized = errors.New("command not recognized")

// UsageError reports a known command used with the wrong arguments.
type UsageError struct {
	// Command is the keyword that was typed
	Command string
	// Usage is the expected form
	Usage string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage: %s", e.Usage)
}

// BatchError reports a batch file that could not be read.
type BatchError struct {
	// Path is the batch file
	Path string
	// Err is the underlying failure
	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("could not read batch file %s: %v", e.Path, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

package mapfile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no address line names the symbol.
	ErrNotFound = errors.New("symbol not found")

	// ErrAmbiguous is returned when more than one address line names the symbol.
	ErrAmbiguous = errors.New("symbol is ambiguous")

	// ErrBelowBase is returned when a symbol inside an overlay has an address
	// lower than the overlay's RAM base, so no offset can be sent for it.
	ErrBelowBase = errors.New("symbol address below overlay base")
)

// ResolveError reports a symbol that could not be resolved to exactly one address.
// It wraps ErrNotFound, ErrAmbiguous or ErrBelowBase.
type ResolveError struct {
	// Symbol is the name that was looked up
	Symbol string
	// Candidates holds every match for an ambiguous symbol, or the raw
	// addresses of lines that fell below their overlay base
	Candidates []Resolution
	// Err is ErrNotFound, ErrAmbiguous or ErrBelowBase
	Err error
}

func (e *ResolveError) Error() string {
	if errors.Is(e.Err, ErrBelowBase) && len(e.Candidates) > 0 {
		c := e.Candidates[0]
		return fmt.Sprintf("function %s at 0x%08x lies below the base of overlay %s", e.Symbol, c.Address, c.Overlay)
	}
	if errors.Is(e.Err, ErrAmbiguous) {
		parts := make([]string, 0, len(e.Candidates))
		for _, c := range e.Candidates {
			parts = append(parts, c.String())
		}
		return fmt.Sprintf("found more than one function with name %s (%s)", e.Symbol, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("could not find function with name %s", e.Symbol)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// ParseError reports a map line that could not be interpreted.
type ParseError struct {
	// Line is the 1-based line number
	Line int
	// Text is the offending line
	Text string
	// Err is the underlying failure
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("map line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

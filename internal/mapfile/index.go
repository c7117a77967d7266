package mapfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// DefaultOverlayPrefix marks overlay section names in the map.
	DefaultOverlayPrefix = "..ovl_"

	// sectionMarker announces the start of a new output section.
	sectionMarker = "load address"

	maxLineSize = 1024 * 1024
)

// Resolution is a resolved symbol address. For overlay symbols Address is the
// offset from the overlay's RAM base and Overlay names the overlay; for base
// image symbols Overlay is empty.
type Resolution struct {
	Address uint32
	Overlay string
}

// InOverlay reports whether the symbol lives in a relocatable overlay.
func (r Resolution) InOverlay() bool {
	return r.Overlay != ""
}

func (r Resolution) String() string {
	if r.Overlay != "" {
		return fmt.Sprintf("%s+0x%x", r.Overlay, r.Address)
	}
	return fmt.Sprintf("0x%08x", r.Address)
}

// section is the overlay cursor while scanning.
type section struct {
	name    string
	ramBase uint32
}

// Index is the symbol table built from one map file. It is read-only after
// Parse returns and safe for concurrent readers.
type Index struct {
	symbols  map[string][]Resolution
	overlays map[string]uint32
	// belowBase holds raw addresses of overlay symbols that precede their
	// section base.
	belowBase map[string][]Resolution
}

type parseOptions struct {
	overlayPrefix string
	logger        *zap.Logger
}

// Option configures Parse.
type Option func(*parseOptions)

// WithOverlayPrefix overrides the overlay section prefix (default "..ovl_").
func WithOverlayPrefix(prefix string) Option {
	return func(o *parseOptions) {
		if prefix != "" {
			o.overlayPrefix = prefix
		}
	}
}

// WithLogger sets the logger used for parse statistics.
func WithLogger(l *zap.Logger) Option {
	return func(o *parseOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// ParseFile reads and parses the map file at path.
func ParseFile(fs afero.Fs, path string, opts ...Option) (*Index, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s as a map file for reading: %w", path, err)
	}
	defer f.Close()

	idx, err := Parse(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not parse map file %s: %w", path, err)
	}
	return idx, nil
}

// Parse builds an Index from map text.
func Parse(r io.Reader, opts ...Option) (*Index, error) {
	o := parseOptions{
		overlayPrefix: DefaultOverlayPrefix,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	idx := &Index{
		symbols:   make(map[string][]Resolution),
		overlays:  make(map[string]uint32),
		belowBase: make(map[string][]Resolution),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var (
		current  *section
		lastLine string
		lineNo   int
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.Contains(line, sectionMarker) {
			next, err := parseSection(lastLine, line, o.overlayPrefix)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Text: line, Err: err}
			}
			current = next
			if current != nil {
				idx.overlays[current.name] = current.ramBase
			}
		} else if name, raw, ok := symbolLine(line); ok {
			switch {
			case current == nil:
				idx.symbols[name] = append(idx.symbols[name], Resolution{Address: raw})
			case raw < current.ramBase:
				o.logger.Warn("symbol below overlay base",
					zap.String("symbol", name),
					zap.String("overlay", current.name),
					zap.Int("line", lineNo),
				)
				idx.belowBase[name] = append(idx.belowBase[name], Resolution{Address: raw, Overlay: current.name})
			default:
				idx.symbols[name] = append(idx.symbols[name], Resolution{Address: raw - current.ramBase, Overlay: current.name})
			}
		}

		lastLine = line
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}

	o.logger.Debug("parsed map file",
		zap.Int("lines", lineNo),
		zap.Int("symbols", len(idx.symbols)),
		zap.Int("overlays", len(idx.overlays)),
	)

	return idx, nil
}

// parseSection interprets a "load address" line. The section name may have
// been wrapped onto the previous line by the linker, so the tokens of both
// lines are read together: name first, RAM base second. A marker line that
// itself starts with the overlay prefix is read on its own, as is one whose
// combined reading has no usable base. Returns nil when the section is not
// an overlay.
func parseSection(prev, line, prefix string) (*section, error) {
	if own := strings.Fields(line); len(own) > 1 && strings.HasPrefix(own[0], prefix) {
		tokens, ramBase, err := sectionBase(own)
		if err == nil {
			return overlaySection(tokens[0], prefix, ramBase), nil
		}
	}

	combined := append(strings.Fields(prev), strings.Fields(line)...)
	tokens, ramBase, err := sectionBase(combined)
	if err != nil {
		var ownErr error
		tokens, ramBase, ownErr = sectionBase(strings.Fields(line))
		if ownErr != nil {
			return nil, err
		}
	}

	if !strings.HasPrefix(tokens[0], prefix) {
		return nil, nil
	}
	return overlaySection(tokens[0], prefix, ramBase), nil
}

func overlaySection(token, prefix string, ramBase uint32) *section {
	return &section{
		name:    strings.ToLower(strings.TrimPrefix(token, prefix)),
		ramBase: ramBase,
	}
}

func sectionBase(tokens []string) ([]string, uint32, error) {
	if len(tokens) < 2 {
		return nil, 0, errors.New("section header has no base address")
	}
	base, err := ParseNumber(tokens[1])
	if err != nil {
		return nil, 0, fmt.Errorf("section base address: %w", err)
	}
	return tokens, base, nil
}

// symbolLine reports whether line is "<address> ... <name>" with the name
// preceded by a single space at the very end of the line.
func symbolLine(line string) (string, uint32, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", 0, false
	}
	name := fields[len(fields)-1]
	if !strings.HasSuffix(line, " "+name) {
		return "", 0, false
	}
	addr, err := ParseNumber(fields[0])
	if err != nil {
		return "", 0, false
	}
	return name, addr, true
}

// Resolve returns the single resolution for name. A name with no address
// line yields a *ResolveError wrapping ErrNotFound; a name with several
// yields one wrapping ErrAmbiguous. A name with any overlay line below its
// section base yields ErrBelowBase.
func (idx *Index) Resolve(name string) (Resolution, error) {
	if below := idx.belowBase[name]; len(below) > 0 {
		out := make([]Resolution, len(below))
		copy(out, below)
		return Resolution{}, &ResolveError{Symbol: name, Candidates: out, Err: ErrBelowBase}
	}

	cands := idx.symbols[name]
	switch len(cands) {
	case 1:
		return cands[0], nil
	case 0:
		return Resolution{}, &ResolveError{Symbol: name, Err: ErrNotFound}
	default:
		out := make([]Resolution, len(cands))
		copy(out, cands)
		return Resolution{}, &ResolveError{Symbol: name, Candidates: out, Err: ErrAmbiguous}
	}
}

// Lookup returns every address line recorded for name.
func (idx *Index) Lookup(name string) []Resolution {
	cands := idx.symbols[name]
	if len(cands) == 0 {
		return nil
	}
	out := make([]Resolution, len(cands))
	copy(out, cands)
	return out
}

// Len returns the number of distinct symbol names.
func (idx *Index) Len() int {
	return len(idx.symbols)
}

// Symbols returns all symbol names in sorted order.
func (idx *Index) Symbols() []string {
	names := make([]string, 0, len(idx.symbols))
	for name := range idx.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OverlayBase returns the RAM base recorded for an overlay section.
func (idx *Index) OverlayBase(overlay string) (uint32, bool) {
	base, ok := idx.overlays[overlay]
	return base, ok
}

// Overlays returns the overlay names seen in the map, sorted.
func (idx *Index) Overlays() []string {
	names := make([]string, 0, len(idx.overlays))
	for name := range idx.overlays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

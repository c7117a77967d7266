package mapfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// AbsentTable is announced in place of a table the map does not define.
const AbsentTable = "none"

// DefaultTableSymbols are the overlay dispatch tables the debug server walks
// to find where an overlay has been loaded.
var DefaultTableSymbols = []string{
	"gActorOverlayTable",
	"gEffectSsOverlayTable",
	"gGameStateOverlayTable",
	"gKaleidoMgrOverlayTable",
}

// TableLocations maps requested table symbols to the address column of the
// map line that defines them. Addresses are kept as written in the map.
type TableLocations struct {
	names []string
	addrs map[string]string
}

// Get returns the address recorded for a table symbol.
func (t TableLocations) Get(name string) (string, bool) {
	addr, ok := t.addrs[name]
	return addr, ok
}

// Names returns the requested table symbols in request order.
func (t TableLocations) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Found returns how many requested tables were located.
func (t TableLocations) Found() int {
	return len(t.addrs)
}

// Args returns one entry per requested table in request order, using
// sentinel for tables that were not found.
func (t TableLocations) Args(sentinel string) []string {
	args := make([]string, len(t.names))
	for i, name := range t.names {
		if addr, ok := t.addrs[name]; ok {
			args[i] = addr
		} else {
			args[i] = sentinel
		}
	}
	return args
}

// LocateTablesFile reads the map at path and locates the named tables.
func LocateTablesFile(fs afero.Fs, path string, names []string) (TableLocations, error) {
	f, err := fs.Open(path)
	if err != nil {
		return TableLocations{}, fmt.Errorf("could not open %s as a map file for reading: %w", path, err)
	}
	defer f.Close()
	return LocateTables(f, names)
}

// LocateTables scans every map line and records the first column of any line
// whose second column is one of names. The raw column is kept: table
// addresses are absolute and never overlay-adjusted. When a name appears on
// several lines the last one wins.
func LocateTables(r io.Reader, names []string) (TableLocations, error) {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	locs := TableLocations{
		names: append([]string(nil), names...),
		addrs: make(map[string]string),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		if _, ok := wanted[fields[1]]; ok {
			locs.addrs[fields[1]] = fields[0]
		}
	}
	if err := scanner.Err(); err != nil {
		return TableLocations{}, fmt.Errorf("read map: %w", err)
	}

	return locs, nil
}

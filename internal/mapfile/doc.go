// Package mapfile resolves symbol names against a GNU ld style linker map.
//
// A map may describe a base executable plus relocatable overlays. Overlay
// sections are announced by a line containing "load address"; the section
// name and its RAM base are read from that line together with the line before
// it:
//
//	..ovl_en_test
//	                0x80800000     0x1c40 load address 0x00de1000
//	                0x80800050                func_a
//
// Symbols inside an overlay are stored as offsets from the section's RAM base
// because the overlay is relocated at load time; only the offset is stable.
// Base-image symbols keep their absolute address.
//
//	idx, err := mapfile.ParseFile(afero.NewOsFs(), "build/z64.map")
//	res, err := idx.Resolve("func_a") // {Address: 0x50, Overlay: "en_test"}
//
// The package also locates the overlay dispatch tables the debug server needs
// at session start (LocateTables).
package mapfile

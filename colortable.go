package gif

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is one R,G,B triple from a color table.
type Color struct {
	R, G, B uint8
}

// colorful converts c to a github.com/lucasb-eyer/go-colorful.Color so
// its perceptual-distance and formatting helpers can be reused, the way
// the teacher's util.go valuename() reuses math/big for rational
// pretty-printing rather than hand-rolling fraction formatting.
func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// String renders c as a hex triple, matching how image editors label
// palette entries.
func (c Color) String() string {
	return c.colorful().Hex()
}

// ColorTable is a sequence of Color entries of a fixed declared size, as
// read from or written to a global or local color table block.
type ColorTable struct {
	Entries []Color
}

// Size returns the number of entries in the table.
func (t ColorTable) Size() int {
	return len(t.Entries)
}

// Nearest returns the index of the table entry perceptually closest to
// c, using CIE76 distance via go-colorful. Non-core: used by tests and
// by callers building fixtures that need to snap an arbitrary color into
// an existing table.
func (t ColorTable) Nearest(c Color) int {
	best := -1
	bestDist := -1.0
	target := c.colorful()
	for i, e := range t.Entries {
		d := target.DistanceCIE76(e.colorful())
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// String renders the table as a comma-separated list of hex triples,
// grounded on the teacher's util.go valuename()/tagname() pattern of
// building a short human-readable summary per record.
func (t ColorTable) String() string {
	parts := make([]string, len(t.Entries))
	for i, c := range t.Entries {
		parts[i] = c.String()
	}
	return fmt.Sprintf("ColorTable[%d]{%s}", len(t.Entries), strings.Join(parts, ","))
}

// padColorTable returns a copy of entries padded with black (Color{})
// up to size, or the original slice truncated-view if it is already
// size or larger (callers must have already rejected the
// larger-than-size case per SPEC_FULL.md §4.2/§8 property 9).
func padColorTable(entries []Color, size int) []Color {
	if len(entries) >= size {
		return entries[:size]
	}
	out := make([]Color, size)
	copy(out, entries)
	return out
}

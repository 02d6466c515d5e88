package vt

// Cell is the atom of the screen: a grapheme cluster plus its style.
// Grounded on memterm's CharOpts (src/screen.rs) and gopyte's
// Attributes (gopyte screen.go) — field names deliberately match
// spec.md §3's vocabulary.
type Cell struct {
	Data          string
	Fg            string
	Bg            string
	Bold          bool
	Italics       bool
	Underscore    bool
	Strikethrough bool
	Reverse       bool
	Blink         bool
}

// DefaultCell is a single space with default colors and no style bits
// set, the value every absent grid slot logically holds.
var DefaultCell = Cell{Data: " ", Fg: "default", Bg: "default"}

// wideTailCell is written into the column immediately after a
// double-width cell; its empty Data marks it as the hidden tail so
// Display can skip it.
func wideTailCell(style Cell) Cell {
	c := style
	c.Data = ""
	return c
}

// Cursor is the screen's write head: position plus the template style
// copied into every cell Draw writes, plus visibility.
type Cursor struct {
	X, Y   int
	Attr   Cell
	Hidden bool
}

// Margins is the inclusive scrolling-region row pair. A nil *Margins on
// Screen means "full screen" (spec.md §3).
type Margins struct {
	Top, Bottom int
}

// Savepoint is a DECSC snapshot: cursor, both charset designations, the
// active one, and the DECOM/DECAWM bits — popped by DECRC.
type Savepoint struct {
	Cursor    Cursor
	G0        [256]rune
	G1        [256]rune
	ActiveIsG0 bool
	DECOM     bool
	DECAWM    bool
}

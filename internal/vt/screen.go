// Package vt implements an in-memory VT100/VT220-compatible terminal
// screen model and the escape-sequence parser that drives it. Screen
// is grounded primarily on scottpeterman/gopyte's NativeScreen (field
// and method naming) and on memterm's Screen (sparse grid storage,
// Display rendering), both close relatives of Python's pyte, which is
// the lineage spec.md describes.
package vt

import (
	"unicode"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"

	"github.com/vtcore/vterm/internal/vt/control"
)

// Screen owns the cell grid, cursor, modes, margins, tabstops,
// charsets, savepoints, and title/icon state. It implements Listener
// directly: the Parser drives it through EscapeDispatch/BasicDispatch/
// CsiDispatch, which call its methods.
type Screen struct {
	columns, lines int

	buffer map[int]map[int]Cell
	cursor Cursor
	margins *Margins

	modes    map[int]struct{}
	tabstops map[int]struct{}

	g0, g1     [256]rune
	activeIsG0 bool

	savepoints []Savepoint

	dirty map[int]struct{}

	title    string
	iconName string

	// writeProcessInput, if set, receives device-attribute and similar
	// host-bound replies (spec.md §6's write_process_input out-edge).
	// A headless test Screen leaves this nil and drops replies.
	writeProcessInput func([]byte)
}

// Mode codes. Non-private modes use their raw numeric value; private
// modes are shifted left 5 bits on entry so they cannot collide with a
// non-private code of the same number (spec.md §3).
const (
	ModeLNM = 20
	ModeIRM = 4

	PrivateDECCOLM = 3 << 5
	PrivateDECOM   = 6 << 5
	PrivateDECAWM  = 7 << 5
	PrivateDECSCNM = 5 << 5
	PrivateDECTCEM = 25 << 5
)

// NewScreen constructs a columns×lines screen and immediately performs
// a full Reset, per spec.md §3's lifecycle contract.
func NewScreen(columns, lines int) *Screen {
	s := &Screen{columns: columns, lines: lines}
	s.Reset()
	return s
}

// SetProcessInputWriter installs the out-edge device-attribute replies
// are written to. Optional — a nil writer silently drops replies.
func (s *Screen) SetProcessInputWriter(w func([]byte)) {
	s.writeProcessInput = w
}

// Columns and Lines report the current screen geometry.
func (s *Screen) Columns() int { return s.columns }
func (s *Screen) Lines() int   { return s.lines }

// Cursor returns a copy of the current cursor state.
func (s *Screen) Cursor() Cursor { return s.cursor }

// Title and IconName return the most recently set OSC strings.
func (s *Screen) Title() string    { return s.title }
func (s *Screen) IconName() string { return s.iconName }

// Margins returns the active scrolling region, or nil for full screen.
func (s *Screen) Margins() *Margins { return s.margins }

// Dirty returns the set of row indices modified since the last call to
// ClearDirty, per spec.md §3's dirty-set contract.
func (s *Screen) Dirty() map[int]struct{} {
	out := make(map[int]struct{}, len(s.dirty))
	for k := range s.dirty {
		out[k] = struct{}{}
	}
	return out
}

// ClearDirty resets the dirty set; a consumer calls this after reading.
func (s *Screen) ClearDirty() {
	s.dirty = make(map[int]struct{})
}

func (s *Screen) markDirty(row int) {
	if row < 0 || row >= s.lines {
		return
	}
	s.dirty[row] = struct{}{}
}

func (s *Screen) markAllDirty() {
	for y := 0; y < s.lines; y++ {
		s.dirty[y] = struct{}{}
	}
}

func (s *Screen) hasMode(code int) bool {
	_, ok := s.modes[code]
	return ok
}

func (s *Screen) row(y int) map[int]Cell {
	r, ok := s.buffer[y]
	if !ok {
		r = make(map[int]Cell)
		s.buffer[y] = r
	}
	return r
}

func (s *Screen) cellAt(y, x int) Cell {
	if r, ok := s.buffer[y]; ok {
		if c, ok := r[x]; ok {
			return c
		}
	}
	return DefaultCell
}

// CellAt returns the cell at the given row/column, DefaultCell if the
// sparse grid has never written there. Exported for consumers (e.g.
// pkg/terminal's wire encoder) that need attributes Display() discards.
func (s *Screen) CellAt(row, col int) Cell {
	return s.cellAt(row, col)
}

func (s *Screen) setCell(y, x int, c Cell) {
	if y < 0 || y >= s.lines || x < 0 || x >= s.columns {
		return
	}
	s.row(y)[x] = c
	s.markDirty(y)
}

func (s *Screen) effectiveMargins() (top, bottom int) {
	if s.margins != nil {
		return s.margins.Top, s.margins.Bottom
	}
	return 0, s.lines - 1
}

// Reset clears the grid, margins, modes, charsets, tabstops, title,
// and cursor back to power-on defaults. Called by NewScreen and by
// RIS. Every row is marked dirty.
func (s *Screen) Reset() {
	s.buffer = make(map[int]map[int]Cell)
	s.margins = nil
	s.modes = map[int]struct{}{
		PrivateDECAWM:  {},
		PrivateDECTCEM: {},
	}
	s.title = ""
	s.iconName = ""
	s.activeIsG0 = true
	s.g0 = control.CharsetB
	s.g1 = control.Charset0
	s.tabstops = defaultTabstops(s.columns)
	s.cursor = Cursor{Attr: DefaultCell}
	s.savepoints = nil
	s.dirty = make(map[int]struct{})
	s.markAllDirty()
}

func defaultTabstops(columns int) map[int]struct{} {
	t := make(map[int]struct{})
	for x := 8; x < columns; x += 8 {
		t[x] = struct{}{}
	}
	return t
}

// activeCharset returns the currently designated translation table.
func (s *Screen) activeCharset() *[256]rune {
	if s.activeIsG0 {
		return &s.g0
	}
	return &s.g1
}

func (s *Screen) translate(r rune) rune {
	if r >= 256 {
		return r
	}
	return s.activeCharset()[r]
}

// Draw implements the listener's text-output event. See spec.md §4.E
// for the full per-code-point algorithm; this is a direct Go
// translation.
func (s *Screen) Draw(text string) {
	for _, raw := range text {
		r := s.translate(raw)
		width := runewidth.RuneWidth(r)

		if s.cursor.X == s.columns {
			if s.hasMode(PrivateDECAWM) && width >= 1 {
				s.CarriageReturn()
				s.Linefeed()
			} else if width >= 1 {
				s.cursor.X -= width
				if s.cursor.X < 0 {
					s.cursor.X = 0
				}
			}
		}

		switch {
		case width == 0:
			if isCombining(r) {
				s.mergeCombining(r)
			}
			// Non-combining width-0 / unprintable: dropped silently.
			continue
		case width == 1:
			if s.hasMode(ModeIRM) {
				s.insertBlanks(s.cursor.Y, s.cursor.X, 1)
			}
			style := s.cursor.Attr
			style.Data = string(r)
			s.setCell(s.cursor.Y, s.cursor.X, style)
			s.advanceCursor(1)
		case width == 2:
			if s.hasMode(ModeIRM) {
				s.insertBlanks(s.cursor.Y, s.cursor.X, 2)
			}
			style := s.cursor.Attr
			style.Data = string(r)
			s.setCell(s.cursor.Y, s.cursor.X, style)
			if s.cursor.X+1 < s.columns {
				s.setCell(s.cursor.Y, s.cursor.X+1, wideTailCell(style))
			}
			s.advanceCursor(2)
		}
	}
	s.markDirty(s.cursor.Y)
}

func (s *Screen) advanceCursor(width int) {
	s.cursor.X += width
	if s.cursor.X > s.columns {
		s.cursor.X = s.columns
	}
}

// isCombining reports whether r is a combining mark (general
// categories Mn, Mc or Me) rather than some other
// unprintable width-0 code point. Grounded on spec.md §9's "grapheme
// handling" note; no corpus library exposes a narrower classification
// than the standard unicode package's range tables (see DESIGN.md).
func isCombining(r rune) bool {
	return unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Me, r) || unicode.Is(unicode.Mc, r)
}

// mergeCombining appends r to the previous visible cell: the column to
// the left of the cursor, or the last column of the previous row when
// the cursor rests at column 0. The result is NFC-normalized so
// Display stays canonical. The cursor does not move.
func (s *Screen) mergeCombining(r rune) {
	y, x := s.cursor.Y, s.cursor.X-1
	if x < 0 {
		y--
		x = s.columns - 1
	}
	if y < 0 {
		return
	}
	c := s.cellAt(y, x)
	c.Data = norm.NFC.String(c.Data + string(r))
	s.setCell(y, x, c)
}

// Display renders the grid into exactly Lines() strings, each of
// display-width Columns(); the column immediately after a double-width
// cell is skipped (its Data is empty), and absent cells render as a
// single space. Grounded on memterm's Screen::display.
func (s *Screen) Display() []string {
	out := make([]string, s.lines)
	for y := 0; y < s.lines; y++ {
		row := s.buffer[y]
		var b []rune
		skipNext := false
		for x := 0; x < s.columns; x++ {
			if skipNext {
				skipNext = false
				continue
			}
			c, ok := row[x]
			if !ok {
				b = append(b, ' ')
				continue
			}
			if c.Data == "" {
				b = append(b, ' ')
				continue
			}
			b = append(b, []rune(c.Data)...)
			if runewidth.StringWidth(c.Data) == 2 {
				skipNext = true
			}
		}
		out[y] = padDisplay(string(b), s.columns)
	}
	return out
}

// padDisplay ensures a rendered row has the declared display width —
// Draw's wide-cell bookkeeping already guarantees this in practice,
// but a defensive pad keeps the well-formedness invariant (spec.md §8
// property 1) under resize edge cases.
func padDisplay(s string, columns int) string {
	width := runewidth.StringWidth(s)
	for width < columns {
		s += " "
		width++
	}
	return s
}

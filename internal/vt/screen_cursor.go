package vt

import "github.com/vtcore/vterm/internal/vt/control"

// Cursor motion, line feed / index family, and tab handling. Grounded
// on gopyte's cursor_up/cursor_down/cursor_position/index/tab and
// memterm's Screen equivalents (src/screen.rs).

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func count(n *int) int {
	if n == nil || *n == 0 {
		return 1
	}
	return *n
}

// cursorBounds returns the Y range the cursor may occupy for vertical
// motion: the scrolling margins when DECOM is set, full screen
// otherwise.
func (s *Screen) cursorBounds() (top, bottom int) {
	if s.hasMode(PrivateDECOM) {
		return s.effectiveMargins()
	}
	return 0, s.lines - 1
}

func (s *Screen) CursorUp(n *int) {
	top, _ := s.cursorBounds()
	s.cursor.X = clamp(s.cursor.X, 0, s.columns-1)
	s.cursor.Y = clamp(s.cursor.Y-count(n), top, s.lines-1)
}

func (s *Screen) CursorDown(n *int) {
	_, bottom := s.cursorBounds()
	s.cursor.Y = clamp(s.cursor.Y+count(n), 0, bottom)
}

func (s *Screen) CursorForward(n *int) {
	s.cursor.X = clamp(s.cursor.X+count(n), 0, s.columns-1)
}

func (s *Screen) CursorBack(n *int) {
	s.cursor.X = clamp(s.cursor.X-count(n), 0, s.columns-1)
}

func (s *Screen) CursorDown1(n *int) {
	s.CursorDown(n)
	s.cursor.X = 0
}

func (s *Screen) CursorUp1(n *int) {
	s.CursorUp(n)
	s.cursor.X = 0
}

// oneIndexed resolves a 1-based CSI parameter: absent (nil) or
// explicitly 0 both mean "1", per ANSI convention.
func oneIndexed(p *int) int {
	if p == nil || *p == 0 {
		return 1
	}
	return *p
}

func (s *Screen) CursorToColumn(col *int) {
	s.cursor.X = clamp(oneIndexed(col)-1, 0, s.columns-1)
}

func (s *Screen) CursorToLine(line *int) {
	top, bottom := s.cursorBounds()
	base := 0
	if s.hasMode(PrivateDECOM) {
		base = top
	}
	s.cursor.Y = clamp(base+oneIndexed(line)-1, top, bottom)
}

func (s *Screen) CursorPosition(line, col *int) {
	top, bottom := s.cursorBounds()
	base := 0
	if s.hasMode(PrivateDECOM) {
		base = top
	}
	s.cursor.Y = clamp(base+oneIndexed(line)-1, top, bottom)
	s.cursor.X = clamp(oneIndexed(col)-1, 0, s.columns-1)
}

// Linefeed moves the cursor down one row, scrolling the margins if
// already at the bottom, and — under LNM — also returns to column 0
// (spec.md §4.E's NEL/LF unification).
func (s *Screen) Linefeed() {
	s.Index()
	if s.hasMode(ModeLNM) {
		s.cursor.X = 0
	}
}

// Index moves the cursor down one row, scrolling the scrolling region
// up by one row when the cursor is already on the bottom margin.
func (s *Screen) Index() {
	top, bottom := s.effectiveMargins()
	if s.cursor.Y == bottom {
		s.scrollUp(top, bottom, 1)
		return
	}
	if s.cursor.Y < s.lines-1 {
		s.cursor.Y++
	}
}

// ReverseIndex moves the cursor up one row, scrolling the scrolling
// region down by one row when the cursor is already on the top margin.
func (s *Screen) ReverseIndex() {
	top, bottom := s.effectiveMargins()
	if s.cursor.Y == top {
		s.scrollDown(top, bottom, 1)
		return
	}
	if s.cursor.Y > 0 {
		s.cursor.Y--
	}
}

// scrollUp shifts rows [top,bottom] up by n, discarding the top n rows
// and filling the bottom n with blanks.
func (s *Screen) scrollUp(top, bottom, n int) {
	for i := 0; i < n; i++ {
		for y := top; y < bottom; y++ {
			if r, ok := s.buffer[y+1]; ok {
				s.buffer[y] = r
			} else {
				delete(s.buffer, y)
			}
			s.markDirty(y)
		}
		delete(s.buffer, bottom)
		s.markDirty(bottom)
	}
}

// scrollDown shifts rows [top,bottom] down by n, discarding the bottom
// n rows and filling the top n with blanks.
func (s *Screen) scrollDown(top, bottom, n int) {
	for i := 0; i < n; i++ {
		for y := bottom; y > top; y-- {
			if r, ok := s.buffer[y-1]; ok {
				s.buffer[y] = r
			} else {
				delete(s.buffer, y)
			}
			s.markDirty(y)
		}
		delete(s.buffer, top)
		s.markDirty(top)
	}
}

func (s *Screen) CarriageReturn() {
	s.cursor.X = 0
}

func (s *Screen) Backspace() {
	if s.cursor.X > 0 {
		s.cursor.X--
	}
}

func (s *Screen) Bell() {
	// No audible/visual bell in an in-memory model; event is dropped.
}

// Tab advances the cursor to the next tab stop, or the right margin if
// none remain.
func (s *Screen) Tab() {
	for x := s.cursor.X + 1; x < s.columns; x++ {
		if _, ok := s.tabstops[x]; ok {
			s.cursor.X = x
			return
		}
	}
	s.cursor.X = s.columns - 1
}

func (s *Screen) SetTabStop() {
	s.tabstops[s.cursor.X] = struct{}{}
}

// ClearTabStop implements TBC: how==3 clears every stop,
// anything else (including absent) clears just the current column.
func (s *Screen) ClearTabStop(how *int) {
	if how != nil && *how == 3 {
		s.tabstops = make(map[int]struct{})
		return
	}
	delete(s.tabstops, s.cursor.X)
}

func (s *Screen) ShiftOut() { s.activeIsG0 = false }
func (s *Screen) ShiftIn()  { s.activeIsG0 = true }

// DefineCharset installs the table for designation code ("B", "0",
// "U", "K") into G0 ('(') or G1 (')'). Unknown codes are ignored.
func (s *Screen) DefineCharset(code, mode string) {
	table, ok := control.Charsets[code]
	if !ok {
		return
	}
	switch mode {
	case "(":
		s.g0 = *table
	case ")":
		s.g1 = *table
	}
}

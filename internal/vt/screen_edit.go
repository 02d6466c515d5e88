package vt

// Insert/delete/erase family. Grounded on gopyte's insert_characters /
// delete_characters / erase_in_line / erase_in_display and memterm's
// Screen equivalents (src/screen.rs).

// insertBlanks shifts the n cells at and after (y,x) right by n within
// the row, dropping whatever falls off the right edge, and fills the
// opened gap with n default cells. Shared by Draw's IRM path and
// InsertCharacters.
func (s *Screen) insertBlanks(y, x, n int) {
	row := s.row(y)
	for col := s.columns - 1; col >= x+n; col-- {
		if c, ok := row[col-n]; ok {
			row[col] = c
		} else {
			delete(row, col)
		}
	}
	for col := x; col < x+n && col < s.columns; col++ {
		row[col] = DefaultCell
	}
	s.markDirty(y)
}

func (s *Screen) InsertCharacters(n *int) {
	s.insertBlanks(s.cursor.Y, s.cursor.X, count(n))
}

// DeleteCharacters removes n cells at the cursor, shifting the
// remainder of the row left and filling the vacated right edge with
// default cells.
func (s *Screen) DeleteCharacters(n *int) {
	y, x := s.cursor.Y, s.cursor.X
	k := count(n)
	row := s.row(y)
	for col := x; col < s.columns; col++ {
		if col+k < s.columns {
			if c, ok := row[col+k]; ok {
				row[col] = c
			} else {
				delete(row, col)
			}
		} else {
			row[col] = DefaultCell
		}
	}
	s.markDirty(y)
}

// EraseCharacters overwrites n cells starting at the cursor with the
// cursor's current style, without moving anything.
func (s *Screen) EraseCharacters(n *int) {
	y, x := s.cursor.Y, s.cursor.X
	for col := x; col < x+count(n) && col < s.columns; col++ {
		s.setCell(y, col, s.cursor.Attr)
	}
}

// InsertLines opens n blank rows at the cursor's row within the
// scrolling margins, pushing the rows below down and off the bottom
// margin. A no-op when the cursor is outside the margins.
func (s *Screen) InsertLines(n *int) {
	top, bottom := s.effectiveMargins()
	if s.cursor.Y < top || s.cursor.Y > bottom {
		return
	}
	s.scrollDown(s.cursor.Y, bottom, count(n))
}

// DeleteLines removes n rows at the cursor's row within the scrolling
// margins, pulling the rows below up and opening blank rows at the
// bottom margin. A no-op when the cursor is outside the margins.
func (s *Screen) DeleteLines(n *int) {
	top, bottom := s.effectiveMargins()
	if s.cursor.Y < top || s.cursor.Y > bottom {
		return
	}
	s.scrollUp(s.cursor.Y, bottom, count(n))
}

// EraseInLine implements CSI K: how 0 (default) erases cursor-to-end,
// 1 erases start-to-cursor inclusive, 2 erases the whole line. The
// private-marker form (DECSEL) behaves identically in this model.
func (s *Screen) EraseInLine(how *int, private bool) {
	mode := 0
	if how != nil {
		mode = *how
	}
	y := s.cursor.Y
	switch mode {
	case 0:
		for x := s.cursor.X; x < s.columns; x++ {
			s.setCell(y, x, s.cursor.Attr)
		}
	case 1:
		for x := 0; x <= s.cursor.X && x < s.columns; x++ {
			s.setCell(y, x, s.cursor.Attr)
		}
	case 2:
		for x := 0; x < s.columns; x++ {
			s.setCell(y, x, s.cursor.Attr)
		}
	}
}

// EraseInDisplay implements CSI J: how 0 erases cursor-to-end-of-
// screen, 1 erases start-of-screen-to-cursor inclusive, 2 and 3 erase
// the whole screen (3 additionally would drop scrollback, which this
// in-memory model does not retain, so it behaves as 2).
func (s *Screen) EraseInDisplay(how *int, private bool) {
	mode := 0
	if how != nil {
		mode = *how
	}
	switch mode {
	case 0:
		s.EraseInLine(intp(0), private)
		for y := s.cursor.Y + 1; y < s.lines; y++ {
			s.fillRow(y, s.cursor.Attr)
		}
	case 1:
		s.EraseInLine(intp(1), private)
		for y := 0; y < s.cursor.Y; y++ {
			s.fillRow(y, s.cursor.Attr)
		}
	case 2, 3:
		for y := 0; y < s.lines; y++ {
			s.fillRow(y, s.cursor.Attr)
		}
	}
}

// fillRow overwrites every cell in row y with style, used by the erase
// family so cleared cells pick up the cursor's current colour instead
// of reverting to the zero-value default the sparse grid implies.
func (s *Screen) fillRow(y int, style Cell) {
	for x := 0; x < s.columns; x++ {
		s.setCell(y, x, style)
	}
}

func intp(v int) *int { return &v }

// AlignmentDisplay implements DECALN: fill the entire screen with 'E'
// in the default style, used by terminals for screen alignment tests.
func (s *Screen) AlignmentDisplay() {
	fill := Cell{Data: "E", Fg: "default", Bg: "default"}
	for y := 0; y < s.lines; y++ {
		for x := 0; x < s.columns; x++ {
			s.setCell(y, x, fill)
		}
	}
}

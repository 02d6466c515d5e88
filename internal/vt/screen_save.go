package vt

// DECSC/DECRC and resize. Grounded on gopyte's save_cursor/
// restore_cursor and memterm's Screen::resize (src/screen.rs).

func (s *Screen) SaveCursor() {
	s.savepoints = append(s.savepoints, Savepoint{
		Cursor:     s.cursor,
		G0:         s.g0,
		G1:         s.g1,
		ActiveIsG0: s.activeIsG0,
		DECOM:      s.hasMode(PrivateDECOM),
		DECAWM:     s.hasMode(PrivateDECAWM),
	})
}

// RestoreCursor pops the most recent savepoint. With no prior save, it
// resets the cursor to the home position with default style instead —
// matching what real terminals do for an unbalanced DECRC.
func (s *Screen) RestoreCursor() {
	if len(s.savepoints) == 0 {
		s.cursor = Cursor{Attr: DefaultCell}
		return
	}
	sp := s.savepoints[len(s.savepoints)-1]
	s.savepoints = s.savepoints[:len(s.savepoints)-1]

	s.cursor = sp.Cursor
	s.g0 = sp.G0
	s.g1 = sp.G1
	s.activeIsG0 = sp.ActiveIsG0
	s.setModeBool(PrivateDECOM, sp.DECOM)
	s.setModeBool(PrivateDECAWM, sp.DECAWM)
}

func (s *Screen) setModeBool(code int, on bool) {
	if on {
		s.modes[code] = struct{}{}
	} else {
		delete(s.modes, code)
	}
}

// Resize changes the screen's geometry in place. On a shrink, lines
// are dropped from the top (content scrolls up out of view, matching
// what happens when a real terminal's window shrinks) rather than the
// bottom; columns beyond the new width are dropped outright. The
// cursor is clamped into the new bounds and margins are always reset
// to full-screen, since a stale scrolling region from the old geometry
// has no reliable meaning at the new size. Grounded on memterm's
// Screen::resize / gopyte's Screen.resize, simplified to this model's
// sparse storage (no reflow — content merely gets a smaller visible
// window, matching spec.md §9's "decide and record" guidance where
// reflow is out of scope for an in-memory model with no history
// buffer).
func (s *Screen) Resize(columns, lines int) {
	if columns == s.columns && lines == s.lines {
		return
	}
	dropped := s.lines - lines
	resized := make(map[int]map[int]Cell, len(s.buffer))
	for y, row := range s.buffer {
		ny := y
		if dropped > 0 {
			ny = y - dropped
		}
		if ny < 0 || ny >= lines {
			continue
		}
		newRow := make(map[int]Cell, len(row))
		for x, c := range row {
			if x < columns {
				newRow[x] = c
			}
		}
		resized[ny] = newRow
	}
	s.buffer = resized

	if dropped > 0 {
		s.cursor.Y -= dropped
	}
	s.columns, s.lines = columns, lines
	s.tabstops = defaultTabstops(columns)
	s.cursor.X = clamp(s.cursor.X, 0, columns-1)
	s.cursor.Y = clamp(s.cursor.Y, 0, lines-1)
	s.margins = nil
	s.dirty = make(map[int]struct{})
	s.markAllDirty()
}

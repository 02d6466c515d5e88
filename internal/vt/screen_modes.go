package vt

import (
	"fmt"
	"strings"

	"github.com/vtcore/vterm/internal/vt/control"
)

// Mode toggling, margins, SGR, titles, and device-attribute reporting.
// Grounded on gopyte's set_mode/reset_mode/select_graphic_rendition
// and memterm's Screen::select_graphic_rendition (src/screen.rs),
// which in turn mirrors memterm's graphics.rs tables.

// modeCode applies the private left-shift spec.md §3 and this
// package's mode-code convention use to keep private and ANSI modes
// from colliding (see PrivateDECCOLM etc. in screen.go).
func modeCode(m int, private bool) int {
	if private {
		return m << 5
	}
	return m
}

func (s *Screen) SetMode(modes []int, private bool) {
	for _, m := range modes {
		code := modeCode(m, private)
		s.modes[code] = struct{}{}
		s.applyModeSideEffect(m, private, true)
	}
}

func (s *Screen) ResetMode(modes []int, private bool) {
	for _, m := range modes {
		code := modeCode(m, private)
		delete(s.modes, code)
		s.applyModeSideEffect(m, private, false)
	}
}

// applyModeSideEffect performs the screen-visible effect a handful of
// modes carry beyond "is this bit set" — DECCOLM resizes and clears,
// DECOM repositions the cursor to the new origin, DECSCNM walks every
// cell to flip its reverse bit and updates the cursor template so
// subsequently drawn cells inherit it too, and DECTCEM only affects
// Cursor().Hidden.
func (s *Screen) applyModeSideEffect(m int, private bool, enabling bool) {
	if !private {
		return
	}
	switch m {
	case 3: // DECCOLM
		cols := 80
		if enabling {
			cols = 132
		}
		s.resizeColumns(cols)
		s.buffer = make(map[int]map[int]Cell)
		s.cursor.X, s.cursor.Y = 0, 0
		s.markAllDirty()
	case 5: // DECSCNM: screen-wide reverse video
		for y := 0; y < s.lines; y++ {
			for x := 0; x < s.columns; x++ {
				c := s.cellAt(y, x)
				c.Reverse = enabling
				s.setCell(y, x, c)
			}
		}
		s.cursor.Attr.Reverse = enabling
		s.markAllDirty()
	case 6: // DECOM
		if enabling {
			top, _ := s.effectiveMargins()
			s.cursor.Y = top
		} else {
			s.cursor.Y = 0
		}
		s.cursor.X = 0
	case 25: // DECTCEM
		s.cursor.Hidden = !enabling
	}
}

func (s *Screen) resizeColumns(cols int) {
	s.columns = cols
	s.tabstops = defaultTabstops(cols)
}

// SetMargins implements DECSTBM. An absent top defaults to 1 and an
// absent bottom to the last line; values are clamped to the screen. A
// pair with top >= bottom clears the margins (nil) and leaves the
// cursor alone; a valid pair sets the margins and homes the cursor
// (to the top margin when DECOM is set).
func (s *Screen) SetMargins(top, bottom *int) {
	t, b := 1, s.lines
	if top != nil {
		t = *top
	}
	if bottom != nil {
		b = *bottom
	}
	if t < 1 {
		t = 1
	}
	if b > s.lines {
		b = s.lines
	}
	if t >= b {
		s.margins = nil
		return
	}
	s.margins = &Margins{Top: t - 1, Bottom: b - 1}
	s.cursor.X, s.cursor.Y = 0, 0
	if s.hasMode(PrivateDECOM) {
		s.cursor.Y = s.margins.Top
	}
}

// SelectGraphicRendition applies an SGR parameter list to the cursor's
// template style. An empty list is equivalent to a single 0 (reset).
func (s *Screen) SelectGraphicRendition(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			s.cursor.Attr = Cell{Fg: "default", Bg: "default"}
		case p == 38 || p == 48:
			consumed := s.applyExtendedColor(p, params[i+1:])
			i += consumed
		case p >= 30 && p <= 39:
			s.cursor.Attr.Fg = ansiColorName(control.FgANSI, p)
		case p >= 40 && p <= 49:
			s.cursor.Attr.Bg = ansiColorName(control.BgANSI, p)
		case p >= 90 && p <= 97:
			s.cursor.Attr.Fg = ansiColorName(control.FgAIXTERM, p)
		case p >= 100 && p <= 107:
			s.cursor.Attr.Bg = ansiColorName(control.BgAIXTERM, p)
		default:
			s.applyTextAttr(p)
		}
	}
}

// applyTextAttr applies everything SGR that isn't a color switch,
// looking the "+name"/"-name" directive up in control.TextAttrs rather
// than re-deriving its own code-to-attribute table.
func (s *Screen) applyTextAttr(p int) {
	switch p {
	case 39:
		s.cursor.Attr.Fg = "default"
		return
	case 49:
		s.cursor.Attr.Bg = "default"
		return
	}
	directive, ok := control.TextAttrs[p]
	if !ok {
		return
	}
	on := directive[0] == '+'
	switch directive[1:] {
	case "bold":
		s.cursor.Attr.Bold = on
	case "italics":
		s.cursor.Attr.Italics = on
	case "underscore":
		s.cursor.Attr.Underscore = on
	case "blink":
		s.cursor.Attr.Blink = on
	case "reverse":
		s.cursor.Attr.Reverse = on
	case "strikethrough":
		s.cursor.Attr.Strikethrough = on
	}
}

// applyExtendedColor handles the 38/48;5;n (256-color) and 38/48;2;r;g;b
// (truecolor) sub-sequences, returning how many of the following
// params it consumed so the caller's loop can skip past them.
func (s *Screen) applyExtendedColor(target int, rest []int) int {
	if len(rest) == 0 {
		return 0
	}
	name := ""
	consumed := 0
	switch rest[0] {
	case 5:
		if len(rest) >= 2 {
			name = fmt.Sprintf("idx:%d", rest[1])
			consumed = 2
		}
	case 2:
		if len(rest) >= 4 {
			name = fmt.Sprintf("rgb:%d,%d,%d", rest[1], rest[2], rest[3])
			consumed = 4
		}
	}
	if name == "" {
		return 0
	}
	if target == 38 {
		s.cursor.Attr.Fg = name
	} else {
		s.cursor.Attr.Bg = name
	}
	return consumed
}

// ansiColorName looks an SGR color code up in one of control.go's
// code-to-name tables (FgANSI/BgANSI/FgAIXTERM/BgAIXTERM), falling back
// to "default" for a code the table doesn't carry (there is none today,
// but a future table edit shouldn't be able to panic this).
func ansiColorName(table map[int]string, code int) string {
	if name, ok := table[code]; ok {
		return name
	}
	return "default"
}

func (s *Screen) SetTitle(t string) {
	s.title = strings.TrimSuffix(t, "\x07")
}

func (s *Screen) SetIconName(name string) {
	s.iconName = strings.TrimSuffix(name, "\x07")
}

// ReportDeviceAttributes answers CSI c / CSI > c, written back through
// writeProcessInput. private selects the secondary DA form (CSI > c);
// the primary form only replies (with the literal VT102 "ESC [ ? 6 c")
// when mode is omitted or explicitly 0, matching real terminals that
// ignore a non-zero primary DA parameter.
func (s *Screen) ReportDeviceAttributes(mode *int, private bool) {
	if private {
		s.WriteProcessInput([]byte("\x1b[>1;10;0c"))
		return
	}
	if mode != nil && *mode != 0 {
		return
	}
	s.WriteProcessInput([]byte("\x1b[?6c"))
}

func (s *Screen) WriteProcessInput(data []byte) {
	if s.writeProcessInput != nil {
		s.writeProcessInput(data)
	}
}

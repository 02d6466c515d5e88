package vt

import "github.com/vtcore/vterm/internal/vt/control"

// EscapeDispatch, BasicDispatch, and CsiDispatch are the default
// dispatchers spec.md §4.B requires to live on the listener contract
// itself rather than duplicated into every implementation. Go has no
// trait default methods, so they are ordinary functions over the
// Listener interface; Parser calls these instead of switching on bytes
// itself, grounded on memterm's ParserListener::escape_dispatch /
// basic_dispatch / csi_dispatch (src/parser_listener.rs).

// EscapeDispatch handles a non-CSI, non-charset ESC-introduced final
// byte (RIS, IND, NEL, RI, HTS, DECSC, DECRC, and the DECALN/charset
// cases that the parser already special-cased before reaching here).
func EscapeDispatch(l Listener, final rune) {
	switch final {
	case control.FinalRIS:
		l.Reset()
	case control.FinalIND:
		l.Index()
	case control.FinalNEL:
		l.Linefeed()
	case control.FinalRI:
		l.ReverseIndex()
	case control.FinalHTS:
		l.SetTabStop()
	case '7':
		l.SaveCursor()
	case '8':
		l.RestoreCursor()
	default:
		// Unknown final byte: log and drop, remain in sync (spec.md §7).
	}
}

// BasicDispatch handles a single C0 byte from the BASIC set.
func BasicDispatch(l Listener, b rune) {
	switch b {
	case control.BEL:
		l.Bell()
	case control.BS:
		l.Backspace()
	case control.HT:
		l.Tab()
	case control.LF, control.VT, control.FF:
		l.Linefeed()
	case control.CR:
		l.CarriageReturn()
	case control.SO:
		l.ShiftOut()
	case control.SI:
		l.ShiftIn()
	}
}

// CsiDispatch maps a CSI final byte plus its parameter list onto the
// matching listener operation. intAt converts the raw
// parameter slice to the Option<u32>-shaped *int the listener expects.
func CsiDispatch(l Listener, final rune, params []int, private bool) {
	p0 := intAt(params, 0)
	p1 := intAt(params, 1)
	switch final {
	case control.FinalICH:
		l.InsertCharacters(p0)
	case control.FinalCUU:
		l.CursorUp(p0)
	case control.FinalCUD:
		l.CursorDown(p0)
	case control.FinalCUF:
		l.CursorForward(p0)
	case control.FinalCUB:
		l.CursorBack(p0)
	case control.FinalCNL:
		l.CursorDown1(p0)
	case control.FinalCPL:
		l.CursorUp1(p0)
	case control.FinalCHA:
		l.CursorToColumn(p0)
	case control.FinalCUP, control.FinalHVP:
		l.CursorPosition(p0, p1)
	case control.FinalED:
		l.EraseInDisplay(p0, private)
	case control.FinalEL:
		l.EraseInLine(p0, private)
	case control.FinalIL:
		l.InsertLines(p0)
	case control.FinalDL:
		l.DeleteLines(p0)
	case control.FinalDCH:
		l.DeleteCharacters(p0)
	case control.FinalECH:
		l.EraseCharacters(p0)
	case control.FinalHPR:
		l.CursorForward(p0)
	case control.FinalDA:
		l.ReportDeviceAttributes(p0, private)
	case control.FinalVPA:
		l.CursorToLine(p0)
	case control.FinalVPR:
		l.CursorDown(p0)
	case control.FinalTBC:
		l.ClearTabStop(p0)
	case control.FinalSM:
		l.SetMode(params, private)
	case control.FinalRM:
		l.ResetMode(params, private)
	case control.FinalSGR:
		l.SelectGraphicRendition(params)
	case control.FinalDECSTBM:
		l.SetMargins(p0, p1)
	default:
		// Unknown CSI final byte: log and drop (spec.md §7).
	}
}

func intAt(params []int, i int) *int {
	if i >= len(params) {
		return nil
	}
	v := params[i]
	return &v
}

package vt

// Listener is the event sink the Parser drives. A Screen is the
// listener used for real terminal emulation; vttest.Counter is a
// diagnostic listener that only counts calls. Grounded on memterm's
// ParserListener trait (src/parser_listener.rs) — Go has no default
// trait methods, so the dispatch helpers memterm attaches to the trait
// itself live as the package-level EscapeDispatch/BasicDispatch/
// CsiDispatch functions in dispatch.go instead, called by Parser.
type Listener interface {
	AlignmentDisplay()
	DefineCharset(code, mode string)
	Reset()
	Index()
	Linefeed()
	ReverseIndex()
	SetTabStop()
	SaveCursor()
	RestoreCursor()
	ShiftOut()
	ShiftIn()

	Bell()
	Backspace()
	Tab()
	CarriageReturn()

	Draw(text string)

	InsertCharacters(n *int)
	CursorUp(n *int)
	CursorDown(n *int)
	CursorForward(n *int)
	CursorBack(n *int)
	CursorDown1(n *int)
	CursorUp1(n *int)
	CursorToColumn(col *int)
	CursorPosition(line, col *int)
	EraseInDisplay(how *int, private bool)
	EraseInLine(how *int, private bool)
	InsertLines(n *int)
	DeleteLines(n *int)
	DeleteCharacters(n *int)
	EraseCharacters(n *int)
	ReportDeviceAttributes(mode *int, private bool)
	CursorToLine(line *int)
	ClearTabStop(how *int)
	SetMode(modes []int, private bool)
	ResetMode(modes []int, private bool)
	SelectGraphicRendition(params []int)
	SetTitle(s string)
	SetIconName(s string)
	SetMargins(top, bottom *int)

	// WriteProcessInput is the out-edge for device-attribute and
	// similar host-bound replies (spec.md §6); a test listener may
	// capture or ignore it.
	WriteProcessInput(data []byte)
}

// Package vttest provides a diagnostic vt.Listener that counts calls
// instead of rendering a screen, for exercising the Parser in
// isolation. Grounded on memterm's Counter (src/counter.rs).
package vttest

// Counter implements vt.Listener by incrementing a named counter per
// call and recording the last Draw text and last OSC title/icon set,
// useful for asserting "the parser reached this dispatch" without a
// full Screen.
type Counter struct {
	Calls map[string]int

	LastDraw     string
	LastTitle    string
	LastIconName string

	LastCursorLine *int
	LastCursorCol  *int

	WrittenToProcess [][]byte
}

// NewCounter returns a ready-to-use Counter.
func NewCounter() *Counter {
	return &Counter{Calls: make(map[string]int)}
}

func (c *Counter) bump(name string) { c.Calls[name]++ }

func (c *Counter) AlignmentDisplay()             { c.bump("AlignmentDisplay") }
func (c *Counter) DefineCharset(code, mode string) { c.bump("DefineCharset") }
func (c *Counter) Reset()                        { c.bump("Reset") }
func (c *Counter) Index()                        { c.bump("Index") }
func (c *Counter) Linefeed()                     { c.bump("Linefeed") }
func (c *Counter) ReverseIndex()                 { c.bump("ReverseIndex") }
func (c *Counter) SetTabStop()                   { c.bump("SetTabStop") }
func (c *Counter) SaveCursor()                   { c.bump("SaveCursor") }
func (c *Counter) RestoreCursor()                { c.bump("RestoreCursor") }
func (c *Counter) ShiftOut()                     { c.bump("ShiftOut") }
func (c *Counter) ShiftIn()                      { c.bump("ShiftIn") }

func (c *Counter) Bell()           { c.bump("Bell") }
func (c *Counter) Backspace()      { c.bump("Backspace") }
func (c *Counter) Tab()            { c.bump("Tab") }
func (c *Counter) CarriageReturn() { c.bump("CarriageReturn") }

func (c *Counter) Draw(text string) {
	c.bump("Draw")
	c.LastDraw = text
}

func (c *Counter) InsertCharacters(n *int)            { c.bump("InsertCharacters") }
func (c *Counter) CursorUp(n *int)                    { c.bump("CursorUp") }
func (c *Counter) CursorDown(n *int)                  { c.bump("CursorDown") }
func (c *Counter) CursorForward(n *int)                { c.bump("CursorForward") }
func (c *Counter) CursorBack(n *int)                  { c.bump("CursorBack") }
func (c *Counter) CursorDown1(n *int)                 { c.bump("CursorDown1") }
func (c *Counter) CursorUp1(n *int)                   { c.bump("CursorUp1") }
func (c *Counter) CursorToColumn(col *int)            { c.bump("CursorToColumn") }
func (c *Counter) CursorPosition(line, col *int) {
	c.bump("CursorPosition")
	c.LastCursorLine = line
	c.LastCursorCol = col
}
func (c *Counter) EraseInDisplay(how *int, private bool) { c.bump("EraseInDisplay") }
func (c *Counter) EraseInLine(how *int, private bool)    { c.bump("EraseInLine") }
func (c *Counter) InsertLines(n *int)                 { c.bump("InsertLines") }
func (c *Counter) DeleteLines(n *int)                 { c.bump("DeleteLines") }
func (c *Counter) DeleteCharacters(n *int)             { c.bump("DeleteCharacters") }
func (c *Counter) EraseCharacters(n *int)             { c.bump("EraseCharacters") }
func (c *Counter) ReportDeviceAttributes(mode *int, private bool) {
	c.bump("ReportDeviceAttributes")
}
func (c *Counter) CursorToLine(line *int)       { c.bump("CursorToLine") }
func (c *Counter) ClearTabStop(how *int)        { c.bump("ClearTabStop") }
func (c *Counter) SetMode(modes []int, private bool)   { c.bump("SetMode") }
func (c *Counter) ResetMode(modes []int, private bool) { c.bump("ResetMode") }
func (c *Counter) SelectGraphicRendition(params []int) { c.bump("SelectGraphicRendition") }

func (c *Counter) SetTitle(s string) {
	c.bump("SetTitle")
	c.LastTitle = s
}

func (c *Counter) SetIconName(s string) {
	c.bump("SetIconName")
	c.LastIconName = s
}

func (c *Counter) SetMargins(top, bottom *int) { c.bump("SetMargins") }

func (c *Counter) WriteProcessInput(data []byte) {
	c.bump("WriteProcessInput")
	c.WrittenToProcess = append(c.WrittenToProcess, data)
}

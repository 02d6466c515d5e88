package vt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func feed(s *Screen, text string) {
	NewParser(s).Feed([]byte(text))
}

func TestScreenDrawWritesCellsAndAdvancesCursor(t *testing.T) {
	s := NewScreen(10, 3)
	feed(s, "hi")
	assert.Equal(t, "hi        ", s.Display()[0])
	assert.Equal(t, 2, s.Cursor().X)
}

func TestScreenAutowrapMovesToNextLine(t *testing.T) {
	s := NewScreen(3, 2)
	feed(s, "abcd")
	assert.Equal(t, "abc", s.Display()[0])
	assert.Equal(t, "d  ", s.Display()[1])
	assert.Equal(t, 1, s.Cursor().X)
	assert.Equal(t, 1, s.Cursor().Y)
}

func TestScreenAutowrapDisabledClampsAtRightMargin(t *testing.T) {
	s := NewScreen(3, 2)
	s.ResetMode([]int{7}, true)
	feed(s, "abcd")
	assert.Equal(t, "abd", s.Display()[0])
	assert.Equal(t, 0, s.Cursor().Y)
}

func TestScreenLinefeedScrollsAtBottomMargin(t *testing.T) {
	s := NewScreen(5, 2)
	feed(s, "one\r\ntwo\r\nthree")
	assert.Equal(t, "two  ", s.Display()[0])
	assert.Equal(t, "three", s.Display()[1])
}

func TestScreenScrollingRegionConfinesIndex(t *testing.T) {
	s := NewScreen(5, 4)
	feed(s, "r0\r\nr1\r\nr2\r\nr3")
	// DECSTBM rows 2-3 (1-based) => 0-indexed margin rows 1-2.
	top, bottom := 2, 3
	s.SetMargins(&top, &bottom)
	s.CursorPosition(intp(3), intp(1)) // absolute row 2 (0-indexed): the bottom margin row
	s.Linefeed()                       // scrolls only rows 1-2
	assert.Equal(t, "r0   ", s.Display()[0], "row outside the margin is untouched")
	assert.Equal(t, "r2   ", s.Display()[1], "row 2 scrolled up into row 1")
	assert.Equal(t, "     ", s.Display()[2], "bottom margin row is now blank")
	assert.Equal(t, "r3   ", s.Display()[3], "row outside the margin is untouched")
}

func TestScreenCombiningMarkMergesIntoPreviousCell(t *testing.T) {
	s := NewScreen(10, 1)
	feed(s, "é") // e + combining acute accent -> U+00E9 after NFC
	assert.Equal(t, 1, s.Cursor().X, "the combining mark must not advance the cursor")
	assert.Equal(t, "é         ", s.Display()[0])
}

func TestScreenWideCellOccupiesTwoColumns(t *testing.T) {
	s := NewScreen(10, 1)
	feed(s, "中") // CJK wide character
	assert.Equal(t, 2, s.Cursor().X)
	assert.Equal(t, "中        ", s.Display()[0])
}

func TestScreenEraseInLine(t *testing.T) {
	s := NewScreen(5, 1)
	feed(s, "hello")
	zero := 0
	s.CursorToColumn(intp(2))
	s.EraseInLine(&zero, false)
	assert.Equal(t, "h    ", s.Display()[0])
}

func TestScreenEraseInDisplayFromCursor(t *testing.T) {
	s := NewScreen(3, 2)
	feed(s, "abc\r\ndef")
	s.CursorPosition(intp(1), intp(2))
	zero := 0
	s.EraseInDisplay(&zero, false)
	assert.Equal(t, "a  ", s.Display()[0])
	assert.Equal(t, "   ", s.Display()[1])
}

func TestScreenInsertAndDeleteCharacters(t *testing.T) {
	s := NewScreen(5, 1)
	feed(s, "abcde")
	s.CursorToColumn(intp(2))
	s.InsertCharacters(intp(2))
	assert.Equal(t, "a  bc", s.Display()[0])

	s.DeleteCharacters(intp(2))
	assert.Equal(t, "abc  ", s.Display()[0])
}

func TestScreenInsertAndDeleteLines(t *testing.T) {
	s := NewScreen(3, 3)
	feed(s, "1\r\n2\r\n3")
	s.CursorPosition(intp(2), intp(1))
	s.InsertLines(intp(1))
	assert.Equal(t, "1  ", s.Display()[0])
	assert.Equal(t, "   ", s.Display()[1])
	assert.Equal(t, "2  ", s.Display()[2])

	s.DeleteLines(intp(1))
	assert.Equal(t, "2  ", s.Display()[1])
}

func TestScreenSGRBoldAndColor(t *testing.T) {
	s := NewScreen(5, 1)
	feed(s, "\x1b[1;31mhi\x1b[0m")
	assert.True(t, s.cellAt(0, 0).Bold)
	assert.Equal(t, "red", s.cellAt(0, 0).Fg)
	assert.Equal(t, "default", s.cursor.Attr.Fg)
}

func TestScreenSGR256Color(t *testing.T) {
	s := NewScreen(5, 1)
	feed(s, "\x1b[38;5;202mhi")
	assert.Equal(t, "idx:202", s.cellAt(0, 0).Fg)
}

func TestScreenSGRTrueColor(t *testing.T) {
	s := NewScreen(5, 1)
	feed(s, "\x1b[38;2;10;20;30mhi")
	assert.Equal(t, "rgb:10,20,30", s.cellAt(0, 0).Fg)
}

func TestScreenSaveRestoreCursor(t *testing.T) {
	s := NewScreen(10, 5)
	s.CursorPosition(intp(3), intp(4))
	s.SaveCursor()
	s.CursorPosition(intp(1), intp(1))
	s.RestoreCursor()
	assert.Equal(t, 2, s.Cursor().Y)
	assert.Equal(t, 3, s.Cursor().X)
}

func TestScreenResizeDropsOutOfBoundsContent(t *testing.T) {
	s := NewScreen(10, 5)
	feed(s, "hello")
	s.Resize(3, 5)
	assert.Equal(t, "hel", s.Display()[0])
}

func TestScreenResizeShrinkHeightDropsFromTop(t *testing.T) {
	s := NewScreen(5, 4)
	feed(s, "one\r\ntwo\r\nthree\r\nfour")
	s.Resize(5, 2)
	assert.Equal(t, "three", s.Display()[0])
	assert.Equal(t, "four ", s.Display()[1])
}

func TestScreenResizeClearsMargins(t *testing.T) {
	s := NewScreen(5, 4)
	top, bottom := 1, 2
	s.SetMargins(&top, &bottom)
	s.Resize(6, 4)
	assert.Nil(t, s.margins)
}

func TestScreenResetClearsEverything(t *testing.T) {
	s := NewScreen(5, 2)
	feed(s, "\x1b[1mhi")
	s.Reset()
	assert.Equal(t, "     ", s.Display()[0])
	assert.Equal(t, 0, s.Cursor().X)
	assert.False(t, s.cursor.Attr.Bold)
}

func TestScreenDeviceAttributesReply(t *testing.T) {
	s := NewScreen(5, 1)
	var got []byte
	s.SetProcessInputWriter(func(b []byte) { got = b })
	feed(s, "\x1b[c")
	assert.Equal(t, "\x1b[?6c", string(got))
}

func TestScreenAlignmentDisplay(t *testing.T) {
	s := NewScreen(3, 2)
	feed(s, "\x1b#8")
	assert.Equal(t, "EEE", s.Display()[0])
	assert.Equal(t, "EEE", s.Display()[1])
}

func TestScreenDECOMConfinesCursorToMargins(t *testing.T) {
	s := NewScreen(5, 5)
	top, bottom := 2, 3
	s.SetMargins(&top, &bottom)
	s.SetMode([]int{6}, true) // DECOM
	s.CursorPosition(intp(1), intp(1))
	assert.Equal(t, 1, s.Cursor().Y) // margin top (0-indexed row 1) + line 1
}

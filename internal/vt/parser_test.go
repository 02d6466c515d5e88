package vt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vtcore/vterm/internal/vt/vttest"
)

func TestParserGroundTextBatchesIntoOneDraw(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Feed([]byte("hello"))
	assert.Equal(t, 1, c.Calls["Draw"])
	assert.Equal(t, "hello", c.LastDraw)
}

func TestParserBasicControlInterruptsGroundRun(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Feed([]byte("ab\rcd"))
	assert.Equal(t, 2, c.Calls["Draw"])
	assert.Equal(t, 1, c.Calls["CarriageReturn"])
}

func TestParserCsiWithParams(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Feed([]byte("\x1b[5A"))
	assert.Equal(t, 1, c.Calls["CursorUp"])
}

func TestParserCsiOmittedLeadingParamDefaultsToOne(t *testing.T) {
	// CSI ; 5 H (CUP) — the line field is empty, so it defaults to 1;
	// this exercises the field-boundary accounting in stepCsiEntry when
	// the very first field is never given a digit.
	s := NewScreen(80, 24)
	p := NewParser(s)
	p.Feed([]byte("\x1b[;5H"))
	cur := s.Cursor()
	assert.Equal(t, 0, cur.Y)
	assert.Equal(t, 4, cur.X)
}

func TestParserCsiPrivateMode(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Feed([]byte("\x1b[?25l"))
	assert.Equal(t, 1, c.Calls["ResetMode"])
}

func TestParserSgrAccumulatesFullParamList(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Feed([]byte("\x1b[1;31;44m"))
	assert.Equal(t, 1, c.Calls["SelectGraphicRendition"])
}

func TestParserOscSetsTitleAndIconOnBelTerminator(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Feed([]byte("\x1b]0;my title\x07"))
	assert.Equal(t, "my title", c.LastTitle)
	assert.Equal(t, "my title", c.LastIconName)
}

func TestParserOscAcceptsSTTerminator(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Feed([]byte("\x1b]2;only title\x1b\\"))
	assert.Equal(t, "only title", c.LastTitle)
	assert.Equal(t, 0, c.Calls["SetIconName"])
}

func TestParserUnknownCsiFinalStaysInSync(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	// CSI 5 n (DSR) is not wired to any listener method; the unknown
	// final byte must still return the parser to Ground so the CUU
	// that follows dispatches normally.
	p.Feed([]byte("\x1b[5n\x1b[2Ahi"))
	assert.Equal(t, 1, c.Calls["CursorUp"])
	assert.Equal(t, "hi", c.LastDraw)
}

func TestParserAlignmentDisplay(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Feed([]byte("\x1b#8"))
	assert.Equal(t, 1, c.Calls["AlignmentDisplay"])
}

func TestParserUtf8Toggle(t *testing.T) {
	p := NewParser(vttest.NewCounter())
	p.Feed([]byte("\x1b%@"))
	assert.False(t, p.Decoder().UTF8())
	p.Feed([]byte("\x1b%G"))
	assert.True(t, p.Decoder().UTF8())
}

func TestParserCharsetDesignation(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Decoder().SetUTF8(false)
	p.Feed([]byte("\x1b(0"))
	assert.Equal(t, 1, c.Calls["DefineCharset"])
}

func TestParserCharsetDesignationDroppedInUtf8Mode(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Feed([]byte("\x1b(0"))
	assert.Equal(t, 0, c.Calls["DefineCharset"])
}

func TestParserShiftOutInDroppedInUtf8Mode(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Feed([]byte{0x0E, 0x0F})
	assert.Equal(t, 0, c.Calls["ShiftOut"])
	assert.Equal(t, 0, c.Calls["ShiftIn"])
}

func TestParserShiftOutInDispatchedOutsideUtf8Mode(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Decoder().SetUTF8(false)
	p.Feed([]byte{0x0E, 0x0F})
	assert.Equal(t, 1, c.Calls["ShiftOut"])
	assert.Equal(t, 1, c.Calls["ShiftIn"])
}

func ExampleParser_Feed() {
	s := NewScreen(10, 3)
	p := NewParser(s)
	p.Feed([]byte("hi\r\n"))
	fmt.Println(s.Cursor().X, s.Cursor().Y)
	// Output: 0 1
}

package vt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vtcore/vterm/internal/vt/vttest"
)

// Scenario tests drawn from the concrete playback scenarios: draw+wrap,
// IRM insert, CSI parameter clamping, OSC title, UTF-8 decoding past an
// embedded C1-looking continuation byte, linefeed-family counting, and
// scroll-region confinement.

func TestScenarioDrawAndWrap(t *testing.T) {
	s := NewScreen(3, 3)
	feed(s, "abca")
	assert.Equal(t, []string{"abc", "a  ", "   "}, s.Display())
	assert.Equal(t, 1, s.Cursor().X)
	assert.Equal(t, 1, s.Cursor().Y)
}

func TestScenarioIRMInsert(t *testing.T) {
	s := NewScreen(3, 3)
	s.SetMode([]int{4}, false) // IRM
	feed(s, "abc")
	s.CursorPosition(intp(1), intp(1))
	feed(s, "x")
	assert.Equal(t, []string{"xab", "   ", "   "}, s.Display())
}

func TestScenarioCsiParamClamp(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Feed([]byte("\x1b[999999999;999999999H"))
	assert.Equal(t, 1, c.Calls["CursorPosition"])
	if assert.NotNil(t, c.LastCursorLine) && assert.NotNil(t, c.LastCursorCol) {
		assert.Equal(t, 9999, *c.LastCursorLine)
		assert.Equal(t, 9999, *c.LastCursorCol)
	}
}

func TestScenarioOscTitle(t *testing.T) {
	s := NewScreen(80, 24)
	feed(s, "\x1b]2;foo\x1b\\")
	assert.Equal(t, "foo", s.title)
}

func TestScenarioUtf8EmbeddedC1LookingByte(t *testing.T) {
	// "➜" is E2 9E 9C; the trailing 0x9C is also the C1 ST code point,
	// but as a UTF-8 continuation byte it must not be reinterpreted as
	// a control code or terminate anything.
	s := NewScreen(80, 24)
	c := vttest.NewCounter()
	NewParser(c).Feed([]byte{0xE2, 0x9E, 0x9C})
	assert.Equal(t, 0, c.Calls["SetTitle"])
	assert.Equal(t, 0, c.Calls["ReportDeviceAttributes"])

	feed(s, string([]byte{0xE2, 0x9E, 0x9C}))
	assert.Equal(t, "➜", s.cellAt(0, 0).Data)
	assert.Equal(t, "", s.title)
}

func TestScenarioLinefeedFamilyCounting(t *testing.T) {
	c := vttest.NewCounter()
	p := NewParser(c)
	p.Feed([]byte{0x0A, 0x0B, 0x0C}) // LF VT FF
	assert.Equal(t, 3, c.Calls["Linefeed"])
	assert.Equal(t, 1, len(c.Calls), "no other listener method should fire")
}

func TestScenarioScrollRegionConfinement(t *testing.T) {
	s := NewScreen(5, 5)
	feed(s, "r1\r\nr2\r\nr3\r\nr4\r\nr5")
	top, bottom := 2, 4
	s.SetMargins(&top, &bottom)
	s.CursorPosition(intp(4), intp(1)) // row 4 (1-indexed) = 0-indexed row 3, the bottom margin row
	s.Index()
	assert.Equal(t, "r1   ", s.Display()[0], "row above the region is untouched")
	assert.Equal(t, "r3   ", s.Display()[1], "row 3 scrolled up into row 2")
	assert.Equal(t, "r4   ", s.Display()[2])
	assert.Equal(t, "     ", s.Display()[3], "bottom region row is now blank")
	assert.Equal(t, "r5   ", s.Display()[4], "row below the region is untouched")
}

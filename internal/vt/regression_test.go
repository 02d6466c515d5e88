package vt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Regression cases built from real program output rather than isolated
// sequences: a colored ls listing, a progress bar that overwrites
// itself with bare \r, and a full-screen redraw using a scrolling
// region the way a pager repaints its status line.

func TestRegressionColoredLsListingAppliesSgrPerField(t *testing.T) {
	s := NewScreen(20, 1)
	// `ls --color` emits bold-blue for a directory, reset, plain file.
	feed(s, "\x1b[01;34mbin\x1b[0m main.go")
	assert.Equal(t, "bin main.go         ", s.Display()[0])
	assert.Equal(t, DefaultCell.Fg, s.CellAt(0, 5).Fg, "reset clears the directory color before \"main.go\"")
}

func TestRegressionCarriageReturnOverwritesProgressBar(t *testing.T) {
	s := NewScreen(10, 1)
	feed(s, "[==  ] 40%")
	feed(s, "\r[====] 99%")
	assert.Equal(t, "[====] 99%", s.Display()[0])
}

func TestRegressionPagerStatusLineRedrawViaScrollingRegion(t *testing.T) {
	s := NewScreen(10, 4)
	// Reserve the last row as a status line: scrolling region rows 1-3,
	// then fill the body and rewrite the status line in place without
	// disturbing it, the way less(1) repaints "--More--".
	top, bottom := 1, 3
	s.SetMargins(&top, &bottom)
	feed(s, "line one\r\n")
	feed(s, "line two\r\n")
	feed(s, "line three")
	feed(s, "\x1b[4;1H--More--")
	assert.Equal(t, "line one  ", s.Display()[0])
	assert.Equal(t, "line two  ", s.Display()[1])
	assert.Equal(t, "line three", s.Display()[2])
	assert.Equal(t, "--More--  ", s.Display()[3])
}

func TestRegressionVimStyleCursorSaveRestoreAroundInsert(t *testing.T) {
	s := NewScreen(10, 2)
	feed(s, "hello world")
	s.CursorPosition(intp(1), intp(1))
	feed(s, "\x1b7")   // DECSC before inserting a line above
	feed(s, "\x1b[1L") // insert a blank line at the cursor
	feed(s, "\x1b8")   // DECRC back to the saved position
	feed(s, "X")
	assert.Equal(t, "X         ", s.Display()[0])
	assert.Equal(t, "hello worl", s.Display()[1])
}

func TestRegressionGitDiffColoredHunkHeader(t *testing.T) {
	s := NewScreen(30, 2)
	feed(s, "\x1b[36m@@ -1,3 +1,4 @@\x1b[m\r\n")
	feed(s, "\x1b[32m+added line\x1b[m")
	assert.Equal(t, "@@ -1,3 +1,4 @@", s.Display()[0][:len("@@ -1,3 +1,4 @@")])
	assert.Equal(t, "+added line", s.Display()[1][:len("+added line")])
	assert.Equal(t, "cyan", s.CellAt(0, 0).Fg)
	assert.Equal(t, "green", s.CellAt(1, 0).Fg)
	assert.Equal(t, DefaultCell.Fg, s.CellAt(1, 12).Fg, "reset after the hunk line leaves trailing cells default")
}

package vt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecoderUTF8(t *testing.T) {
	d := NewDecoder()
	var got []rune
	d.Feed([]byte("héllo→"), func(r rune) { got = append(got, r) })
	assert.Equal(t, []rune("héllo→"), got)
}

func TestDecoderSplitMultibyteAcrossFeeds(t *testing.T) {
	d := NewDecoder()
	full := "→"
	b := []byte(full)

	var got []rune
	d.Feed(b[:1], func(r rune) { got = append(got, r) })
	assert.Empty(t, got, "partial multi-byte sequence must not emit yet")

	d.Feed(b[1:], func(r rune) { got = append(got, r) })
	assert.Equal(t, []rune(full), got)
}

func TestDecoderInvalidByteBecomesReplacementChar(t *testing.T) {
	d := NewDecoder()
	var got []rune
	d.Feed([]byte{0xFF, 'A'}, func(r rune) { got = append(got, r) })
	assert.Equal(t, []rune{0xFFFD, 'A'}, got)
}

func TestDecoderLatin1PassesBytesThrough(t *testing.T) {
	d := NewDecoder()
	d.SetUTF8(false)
	var got []rune
	d.Feed([]byte{0x41, 0xE9}, func(r rune) { got = append(got, r) })
	assert.Equal(t, []rune{0x41, 0xE9}, got)
}

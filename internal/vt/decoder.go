package vt

import "unicode/utf8"

// Decoder turns a raw byte stream into code points under the current
// charset regime, buffering an incomplete trailing UTF-8 sequence
// across Feed calls. Grounded on memterm's ByteParser
// (src/byte_parser.rs): same incomplete-sequence buffering and
// use_utf8 toggle, but built on the standard library's unicode/utf8
// instead of a translated encoding_rs, since every corpus repo that
// decodes UTF-8 reaches for the standard library to do it.
type Decoder struct {
	useUTF8    bool
	incomplete []byte
}

// NewDecoder returns a Decoder with UTF-8 decoding enabled, matching
// the terminal's power-on default.
func NewDecoder() *Decoder {
	return &Decoder{useUTF8: true}
}

// SetUTF8 toggles UTF-8 decoding (ESC % G/8 enables it, ESC % @
// disables it). Disabling clears any buffered partial sequence.
func (d *Decoder) SetUTF8(enabled bool) {
	d.useUTF8 = enabled
	if !enabled {
		d.incomplete = nil
	}
}

// UTF8 reports whether the decoder is currently in UTF-8 mode.
func (d *Decoder) UTF8() bool { return d.useUTF8 }

// Feed decodes data and invokes emit once per resulting code point. In
// UTF-8 mode, invalid byte sequences decode to U+FFFD and never halt
// the stream; a sequence truncated at the end of data is held back and
// completed on the next Feed call. In Latin-1 mode every byte maps
// to the code point of the same value; charset translation is applied
// by the screen layer, not here.
func (d *Decoder) Feed(data []byte, emit func(rune)) {
	if !d.useUTF8 {
		for _, b := range data {
			emit(rune(b))
		}
		return
	}

	buf := data
	if len(d.incomplete) > 0 {
		buf = append(append([]byte(nil), d.incomplete...), data...)
		d.incomplete = nil
	}

	for len(buf) > 0 {
		if !utf8.FullRune(buf) {
			// Truncated at the end of this feed — may complete next call.
			d.incomplete = append([]byte(nil), buf...)
			return
		}
		r, size := utf8.DecodeRune(buf)
		emit(r) // invalid encodings decode to U+FFFD with size 1
		buf = buf[size:]
	}
}

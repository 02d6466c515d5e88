package vt

import (
	"strings"

	"github.com/vtcore/vterm/internal/vt/control"
)

// Parser is the escape-sequence state machine: it consumes code
// points from a Decoder and drives a Listener. Grounded on cli-cli's
// vt10x parser and gdamore/tcell's vt-emulate.go for the explicit
// state-enum shape, and on memterm's Parser (src/parser.rs) for the
// state names and transition table itself — Rust's genawaiter
// coroutine there has no Go equivalent, so each yield point becomes a
// named state plus a resumption field instead.
type Parser struct {
	listener Listener
	decoder  *Decoder

	state parserState

	params      []int
	haveParam   bool
	private     bool

	intermediate strings.Builder

	oscBuffer strings.Builder
	oscESC    bool

	// groundRun batches consecutive printable code points so Draw is
	// called once per run instead of once per rune, the fast path
	// memterm's parser.rs documents for the Ground state.
	groundRun strings.Builder
}

type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeIntermediate
	stateCsiEntry
	stateCsiParam
	stateCsiIntermediate
	stateCsiIgnore
	stateOscString
	stateDcsOrSosOrPm
)

// NewParser constructs a Parser bound to listener, with its own
// Decoder in UTF-8 mode.
func NewParser(listener Listener) *Parser {
	return &Parser{listener: listener, decoder: NewDecoder(), state: stateGround}
}

// Decoder exposes the parser's byte decoder so a caller can toggle
// UTF-8 mode (ESC % G / ESC % @) from outside the parser if needed.
func (p *Parser) Decoder() *Decoder { return p.decoder }

// Feed decodes data and advances the state machine one code point at
// a time, flushing any batched Ground-state text at the end.
func (p *Parser) Feed(data []byte) {
	p.decoder.Feed(data, p.step)
	p.flushGround()
}

func (p *Parser) flushGround() {
	if p.groundRun.Len() == 0 {
		return
	}
	text := p.groundRun.String()
	p.groundRun.Reset()
	p.listener.Draw(text)
}

func (p *Parser) step(r rune) {
	switch p.state {
	case stateGround:
		p.stepGround(r)
	case stateEscape:
		p.flushGround()
		p.stepEscape(r)
	case stateEscapeIntermediate:
		p.flushGround()
		p.stepEscapeIntermediate(r)
	case stateCsiEntry:
		p.flushGround()
		p.stepCsiEntry(r)
	case stateCsiParam:
		p.flushGround()
		p.stepCsiParam(r)
	case stateCsiIntermediate:
		p.flushGround()
		p.stepCsiIntermediate(r)
	case stateCsiIgnore:
		p.flushGround()
		p.stepCsiIgnore(r)
	case stateOscString:
		p.stepOscString(r)
	case stateDcsOrSosOrPm:
		p.stepDcsOrSosOrPm(r)
	}
}

func (p *Parser) toGround() {
	p.state = stateGround
}

func (p *Parser) resetCsi() {
	p.params = nil
	p.haveParam = false
	p.private = false
	p.intermediate.Reset()
}

// stepGround is the common-case fast path: printable text accumulates
// into groundRun; BASIC control bytes dispatch immediately; ESC/CSI/
// OSC introducers switch state.
func (p *Parser) stepGround(r rune) {
	switch r {
	case control.ESC:
		p.flushGround()
		p.state = stateEscape
		return
	case rune(control.CSI):
		p.flushGround()
		p.resetCsi()
		p.state = stateCsiEntry
		return
	case rune(control.OSC):
		p.flushGround()
		p.beginOsc()
		return
	case rune(control.IND):
		p.flushGround()
		p.listener.Index()
		return
	case rune(control.NEL):
		p.flushGround()
		p.listener.Linefeed()
		return
	case rune(control.HTS):
		p.flushGround()
		p.listener.SetTabStop()
		return
	case rune(control.RI):
		p.flushGround()
		p.listener.ReverseIndex()
		return
	}
	if r == rune(control.SO) || r == rune(control.SI) {
		p.flushGround()
		if !p.decoder.UTF8() {
			BasicDispatch(p.listener, r)
		}
		// Silently swallowed while use_utf8 is true: SO/SI select a
		// G1/G0 96-character charset that has no meaning in UTF-8 mode.
		return
	}
	if _, ok := control.BASIC[r]; ok {
		p.flushGround()
		BasicDispatch(p.listener, r)
		return
	}
	if r == control.NUL || r == control.CAN || r == control.SUB {
		return
	}
	p.groundRun.WriteRune(r)
}

func (p *Parser) stepEscape(r rune) {
	switch {
	case r == '[':
		p.resetCsi()
		p.state = stateCsiEntry
	case r == ']':
		p.beginOsc()
	case r == 'P' || r == 'X' || r == '^' || r == '_':
		p.state = stateDcsOrSosOrPm
	case r == '#':
		p.intermediate.Reset()
		p.intermediate.WriteRune(r)
		p.state = stateEscapeIntermediate
	case r == '%':
		p.intermediate.Reset()
		p.intermediate.WriteRune(r)
		p.state = stateEscapeIntermediate
	case r == '(' || r == ')':
		p.intermediate.Reset()
		p.intermediate.WriteRune(r)
		p.state = stateEscapeIntermediate
	case r == '7', r == '8':
		EscapeDispatch(p.listener, r)
		p.toGround()
	case isBasicInEscape(r):
		BasicDispatch(p.listener, r)
	default:
		EscapeDispatch(p.listener, r)
		p.toGround()
	}
}

func isBasicInEscape(r rune) bool {
	_, ok := control.AllowedInCSI[r]
	return ok
}

// stepEscapeIntermediate resolves the two-byte ESC sequences: ESC # 8
// (DECALN), ESC % G/@ (UTF-8 toggle), and ESC ( / ) <code> (charset
// designation).
func (p *Parser) stepEscapeIntermediate(r rune) {
	intro := p.intermediate.String()
	switch intro {
	case "#":
		if r == '8' {
			p.listener.AlignmentDisplay()
		}
		p.toGround()
	case "%":
		switch r {
		case 'G', '8':
			p.decoder.SetUTF8(true)
		case '@':
			p.decoder.SetUTF8(false)
		}
		p.toGround()
	case "(", ")":
		// A G0/G1 96-character charset designation has no meaning in
		// UTF-8 mode, so it's dropped rather than dispatched.
		if !p.decoder.UTF8() {
			p.listener.DefineCharset(string(r), intro)
		}
		p.toGround()
	default:
		p.toGround()
	}
}

func (p *Parser) stepCsiEntry(r rune) {
	switch {
	case r == '?' || r == '>':
		// '?' marks a DEC private mode sequence; '>' marks the
		// secondary-DA query form (CSI > c). Both are folded into the
		// same private flag, so CSI > c reaches ReportDeviceAttributes
		// with private set, just as CSI ? c would.
		p.private = true
		p.state = stateCsiParam
	case r >= '0' && r <= '9':
		p.beginParam(r)
		p.state = stateCsiParam
	case r == ';':
		p.endParamField()
		p.state = stateCsiParam
	case r >= 0x20 && r <= 0x2F:
		p.intermediate.WriteRune(r)
		p.state = stateCsiIntermediate
	case isBasicInEscape(r):
		BasicDispatch(p.listener, r)
	case r >= 0x40 && r <= 0x7E:
		p.dispatchCsi(r)
	default:
		p.state = stateCsiIgnore
	}
}

func (p *Parser) beginParam(r rune) {
	p.params = append(p.params, int(r-'0'))
	p.haveParam = true
}

// endParamField closes the current parameter field at a ';'. A field
// that never saw a digit (an omitted parameter, e.g. the middle field
// of "1;;3") still needs its zero placeholder pushed now so later
// fields keep their correct index; a field that already pushed its
// entry via a digit needs nothing further.
func (p *Parser) endParamField() {
	if !p.haveParam {
		p.params = append(p.params, 0)
	}
	p.haveParam = false
}

func (p *Parser) stepCsiParam(r rune) {
	switch {
	case r >= '0' && r <= '9':
		if !p.haveParam {
			p.params = append(p.params, 0)
			p.haveParam = true
		}
		i := len(p.params) - 1
		p.params[i] = clamp(p.params[i]*10+int(r-'0'), 0, 9999)
	case r == ';':
		p.endParamField()
	case r >= 0x20 && r <= 0x2F:
		p.intermediate.WriteRune(r)
		p.state = stateCsiIntermediate
	case isBasicInEscape(r):
		BasicDispatch(p.listener, r)
	case r >= 0x40 && r <= 0x7E:
		p.dispatchCsi(r)
	default:
		p.state = stateCsiIgnore
	}
}

func (p *Parser) stepCsiIntermediate(r rune) {
	switch {
	case r >= 0x20 && r <= 0x2F:
		p.intermediate.WriteRune(r)
	case isBasicInEscape(r):
		BasicDispatch(p.listener, r)
	case r >= 0x40 && r <= 0x7E:
		p.dispatchCsi(r)
	default:
		p.state = stateCsiIgnore
	}
}

// stepCsiIgnore discards bytes until the sequence's final byte, for
// CSI forms this parser does not recognize — it stays in sync with
// the stream rather than misinterpreting the tail as new input.
func (p *Parser) stepCsiIgnore(r rune) {
	if r >= 0x40 && r <= 0x7E {
		p.toGround()
	}
}

func (p *Parser) dispatchCsi(final rune) {
	CsiDispatch(p.listener, final, p.params, p.private)
	p.toGround()
}

func (p *Parser) beginOsc() {
	p.oscBuffer.Reset()
	p.oscESC = false
	p.state = stateOscString
}

// stepOscString accumulates an OSC payload until BEL, ST (ESC \) or the
// 8-bit C1 ST,
// then splits "code;text" and dispatches SetTitle/SetIconName for
// codes 0, 1, and 2 (icon+title, icon, title respectively); any other
// code is recognized-but-ignored, matching spec.md §7's policy of
// staying in sync rather than rejecting unknown OSC codes.
func (p *Parser) stepOscString(r rune) {
	if p.oscESC {
		p.oscESC = false
		if r == '\\' {
			p.finishOsc()
			return
		}
		// Not a valid ST: treat the ESC as literal and keep accumulating.
		p.oscBuffer.WriteRune(control.ESC)
	}
	switch r {
	case control.BEL, control.ST:
		p.finishOsc()
	case control.ESC:
		p.oscESC = true
	default:
		p.oscBuffer.WriteRune(r)
	}
}

func (p *Parser) finishOsc() {
	payload := p.oscBuffer.String()
	p.oscBuffer.Reset()
	p.toGround()

	idx := strings.IndexByte(payload, ';')
	if idx < 0 {
		return
	}
	code := payload[:idx]
	text := payload[idx+1:]
	switch code {
	case "0":
		p.listener.SetIconName(text)
		p.listener.SetTitle(text)
	case "1":
		p.listener.SetIconName(text)
	case "2":
		p.listener.SetTitle(text)
	}
}

// stepDcsOrSosOrPm discards a DCS/SOS/PM/APC string up to its ST
// terminator. This model implements none of these; spec.md §9 scopes
// them out explicitly, but the parser must still consume them
// correctly to stay in sync with the stream.
func (p *Parser) stepDcsOrSosOrPm(r rune) {
	if p.oscESC {
		p.oscESC = false
		if r == '\\' {
			p.toGround()
		}
		return
	}
	if r == control.ESC {
		p.oscESC = true
	}
}

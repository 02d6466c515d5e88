// Package terminal encodes a vt.Screen into the compact binary frame
// format a browser client decodes, for transports (like a binary
// websocket) that would rather not pay JSON's overhead per frame.
// Adapted from the teacher's pkg/terminal/buffer.go: its own ANSI
// parsing and cell grid are superseded by internal/vt's Screen and
// Parser, but its row/cell binary packing is kept and retargeted at
// vt.Cell.
package terminal

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/vtcore/vterm/internal/vt"
)

// Snapshot is the encodable view of a vt.Screen at one instant.
type Snapshot struct {
	Cols    int
	Rows    int
	CursorX int
	CursorY int
	Cells   [][]vt.Cell
}

// NewSnapshot copies every cell out of screen into row-major order,
// the shape SerializeToBinary expects.
func NewSnapshot(screen *vt.Screen) *Snapshot {
	cols, rows := screen.Columns(), screen.Lines()
	cursor := screen.Cursor()

	cells := make([][]vt.Cell, rows)
	for y := 0; y < rows; y++ {
		row := make([]vt.Cell, cols)
		for x := 0; x < cols; x++ {
			row[x] = screen.CellAt(y, x)
		}
		cells[y] = row
	}

	return &Snapshot{
		Cols:    cols,
		Rows:    rows,
		CursorX: cursor.X,
		CursorY: cursor.Y,
		Cells:   cells,
	}
}

// cell attribute flag bits, matching the teacher's on-wire bitmask.
const (
	flagBold uint8 = 1 << iota
	flagItalic
	flagUnderline
	flagReverse
)

func packFlags(c vt.Cell) uint8 {
	var f uint8
	if c.Bold {
		f |= flagBold
	}
	if c.Italics {
		f |= flagItalic
	}
	if c.Underscore {
		f |= flagUnderline
	}
	if c.Reverse {
		f |= flagReverse
	}
	return f
}

// colorCode packs a vt.Cell color name ("default", "red", "idx:N", or
// "rgb:r,g,b") into the teacher's uint32 scheme: 0 for default, the
// ANSI index (0-255) in the low byte, or the RGB value above 255.
func colorCode(name string) uint32 {
	if name == "" || name == "default" {
		return 0
	}
	if len(name) > 4 && name[:4] == "idx:" {
		return parseUint(name[4:])
	}
	if len(name) > 4 && name[:4] == "rgb:" {
		r, g, b := parseRGB(name[4:])
		return 256 + (r << 16) + (g << 8) + b
	}
	if idx, ok := namedColorIndex[name]; ok {
		return uint32(idx)
	}
	return 0
}

func parseUint(s string) uint32 {
	var v uint32
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		v = v*10 + uint32(r-'0')
	}
	return v
}

func parseRGB(s string) (r, g, b uint32) {
	parts := [3]*uint32{&r, &g, &b}
	idx := 0
	var cur uint32
	for _, ch := range s + "," {
		if ch == ',' {
			if idx < 3 {
				*parts[idx] = cur
			}
			idx++
			cur = 0
			continue
		}
		if ch >= '0' && ch <= '9' {
			cur = cur*10 + uint32(ch-'0')
		}
	}
	return r, g, b
}

// namedColorIndex maps the SGR ANSI color names vt.Cell stores back
// to their 0-7/8-15 palette index.
var namedColorIndex = map[string]int{
	"black": 0, "red": 1, "green": 2, "brown": 3,
	"blue": 4, "magenta": 5, "cyan": 6, "white": 7,
	"brightblack": 8, "brightred": 9, "brightgreen": 10, "brightyellow": 11,
	"brightblue": 12, "brightmagenta": 13, "brightcyan": 14, "brightwhite": 15,
}

// SerializeToBinary packs a snapshot into the wire format: a 28-byte
// header (magic, version, flags, dimensions, cursor) followed by one
// entry per row — an empty-row marker or a row marker plus its
// trimmed, variable-length cell encodings.
func (snapshot *Snapshot) SerializeToBinary() []byte {
	dataSize := 28

	for row := 0; row < snapshot.Rows; row++ {
		var rowCells []vt.Cell
		if row < len(snapshot.Cells) {
			rowCells = snapshot.Cells[row]
		}
		if isEmptyRow(rowCells) {
			dataSize += 2
		} else {
			dataSize += 3
			for _, cell := range trimRowCells(rowCells) {
				dataSize += calculateCellSize(cell)
			}
		}
	}

	buffer := make([]byte, dataSize)
	offset := 0

	binary.LittleEndian.PutUint16(buffer[offset:], 0x5654) // Magic "VT"
	offset += 2
	buffer[offset] = 0x01 // Version 1
	offset++
	buffer[offset] = 0x00 // Flags
	offset++
	binary.LittleEndian.PutUint32(buffer[offset:], uint32(snapshot.Cols))
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], uint32(snapshot.Rows))
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], 0) // viewport offset, unused (no scrollback here)
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], uint32(snapshot.CursorX))
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], uint32(snapshot.CursorY))
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], 0) // Reserved
	offset += 4

	for row := 0; row < snapshot.Rows; row++ {
		var rowCells []vt.Cell
		if row < len(snapshot.Cells) {
			rowCells = snapshot.Cells[row]
		}

		if isEmptyRow(rowCells) {
			buffer[offset] = 0xfe
			offset++
			buffer[offset] = 1
			offset++
			continue
		}

		buffer[offset] = 0xfd
		offset++
		trimmed := trimRowCells(rowCells)
		binary.LittleEndian.PutUint16(buffer[offset:], uint16(len(trimmed)))
		offset += 2
		for _, cell := range trimmed {
			offset = encodeCell(buffer, offset, cell)
		}
	}

	return buffer[:offset]
}

func isBlankCell(c vt.Cell) bool {
	return c.Data == " " && c.Fg == "default" && c.Bg == "default" && packFlags(c) == 0
}

func isEmptyRow(cells []vt.Cell) bool {
	if len(cells) == 0 {
		return true
	}
	for _, cell := range cells {
		if !isBlankCell(cell) {
			return false
		}
	}
	return true
}

func trimRowCells(cells []vt.Cell) []vt.Cell {
	last := len(cells) - 1
	for last >= 0 && isBlankCell(cells[last]) {
		last--
	}
	if last < 0 {
		return cells[:1]
	}
	return cells[:last+1]
}

func cellRune(c vt.Cell) rune {
	if c.Data == "" {
		return ' '
	}
	r, _ := utf8.DecodeRuneInString(c.Data)
	return r
}

func calculateCellSize(cell vt.Cell) int {
	r := cellRune(cell)
	isSpace := r == ' '
	fg := colorCode(cell.Fg)
	bg := colorCode(cell.Bg)
	flags := packFlags(cell)
	isAscii := r <= 127

	if isSpace && flags == 0 && fg == 0 && bg == 0 {
		return 1
	}

	size := 1
	if isAscii {
		size++
	} else {
		size += 1 + utf8.RuneLen(r)
	}

	if flags != 0 || fg != 0 || bg != 0 {
		size++
		if fg != 0 {
			if fg > 255 {
				size += 3
			} else {
				size++
			}
		}
		if bg != 0 {
			if bg > 255 {
				size += 3
			} else {
				size++
			}
		}
	}
	return size
}

func encodeCell(buffer []byte, offset int, cell vt.Cell) int {
	r := cellRune(cell)
	isSpace := r == ' '
	fg := colorCode(cell.Fg)
	bg := colorCode(cell.Bg)
	flags := packFlags(cell)
	isAscii := r <= 127
	hasExt := flags != 0 || fg != 0 || bg != 0

	if isSpace && !hasExt {
		buffer[offset] = 0x00
		return offset + 1
	}

	var typeByte byte
	if hasExt {
		typeByte |= 0x80
	}
	if !isAscii {
		typeByte |= 0x40
		typeByte |= 0x02
	} else if !isSpace {
		typeByte |= 0x01
	}
	if fg != 0 {
		typeByte |= 0x20
		if fg > 255 {
			typeByte |= 0x08
		}
	}
	if bg != 0 {
		typeByte |= 0x10
		if bg > 255 {
			typeByte |= 0x04
		}
	}

	buffer[offset] = typeByte
	offset++

	if !isAscii {
		charBytes := make([]byte, 4)
		n := utf8.EncodeRune(charBytes, r)
		buffer[offset] = byte(n)
		offset++
		copy(buffer[offset:], charBytes[:n])
		offset += n
	} else if !isSpace {
		buffer[offset] = byte(r)
		offset++
	}

	if typeByte&0x80 != 0 {
		buffer[offset] = flags
		offset++

		if fg != 0 {
			if fg > 255 {
				rgb := fg - 256
				buffer[offset] = byte((rgb >> 16) & 0xff)
				offset++
				buffer[offset] = byte((rgb >> 8) & 0xff)
				offset++
				buffer[offset] = byte(rgb & 0xff)
				offset++
			} else {
				buffer[offset] = byte(fg)
				offset++
			}
		}
		if bg != 0 {
			if bg > 255 {
				rgb := bg - 256
				buffer[offset] = byte((rgb >> 16) & 0xff)
				offset++
				buffer[offset] = byte((rgb >> 8) & 0xff)
				offset++
				buffer[offset] = byte(rgb & 0xff)
				offset++
			} else {
				buffer[offset] = byte(bg)
				offset++
			}
		}
	}

	return offset
}

/*
Package otbuild assembles OpenType binary data for tests.

Tables are written big-endian, the way they appear in font files. Font puts
tables together into an SFNT container with a sorted table directory.
*/
package otbuild

import (
	"encoding/binary"
	"slices"
)

// Writer appends big-endian values to a byte buffer.
type Writer struct {
	buf []byte
}

// U8 appends a byte.
func (w *Writer) U8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

// U16 appends one or more uint16 values.
func (w *Writer) U16(vs ...uint16) *Writer {
	for _, v := range vs {
		w.buf = binary.BigEndian.AppendUint16(w.buf, v)
	}
	return w
}

// I16 appends one or more int16 values.
func (w *Writer) I16(vs ...int16) *Writer {
	for _, v := range vs {
		w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(v))
	}
	return w
}

// U24 appends the lower 24 bits of v.
func (w *Writer) U24(v uint32) *Writer {
	w.buf = append(w.buf, byte(v>>16), byte(v>>8), byte(v))
	return w
}

// U32 appends one or more uint32 values.
func (w *Writer) U32(vs ...uint32) *Writer {
	for _, v := range vs {
		w.buf = binary.BigEndian.AppendUint32(w.buf, v)
	}
	return w
}

// Tag appends a 4-letter tag. Shorter tags are padded with spaces.
func (w *Writer) Tag(tag string) *Writer {
	t := []byte(tag + "    ")[:4]
	w.buf = append(w.buf, t...)
	return w
}

// F2Dot14 appends a 2.14 fixed-point number.
func (w *Writer) F2Dot14(v float32) *Writer {
	return w.I16(int16(v * 16384))
}

// Fixed appends a 16.16 fixed-point number.
func (w *Writer) Fixed(v float32) *Writer {
	return w.U32(uint32(int32(v * 65536)))
}

// Raw appends b.
func (w *Writer) Raw(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

// Zeros appends n zero bytes.
func (w *Writer) Zeros(n int) *Writer {
	w.buf = append(w.buf, make([]byte, n)...)
	return w
}

// Len returns the number of bytes written so far. It is used to compute
// offsets of sub-tables appended later.
func (w *Writer) Len() int {
	return len(w.buf)
}

// PatchU16 overwrites the uint16 at position at.
func (w *Writer) PatchU16(at int, v uint16) {
	binary.BigEndian.PutUint16(w.buf[at:], v)
}

// PatchU32 overwrites the uint32 at position at.
func (w *Writer) PatchU32(at int, v uint32) {
	binary.BigEndian.PutUint32(w.buf[at:], v)
}

// Link16 appends data and patches the Offset16 at position at to point to it,
// relative to base. Empty data leaves a null offset.
func (w *Writer) Link16(at, base int, data []byte) *Writer {
	if len(data) == 0 {
		return w
	}
	w.PatchU16(at, uint16(w.Len()-base))
	return w.Raw(data)
}

// Link32 is Link16 for Offset32 fields.
func (w *Writer) Link32(at, base int, data []byte) *Writer {
	if len(data) == 0 {
		return w
	}
	w.PatchU32(at, uint32(w.Len()-base))
	return w.Raw(data)
}

// Bytes returns the data written.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// --- Common layout tables --------------------------------------------------

// Range is a glyph range with a value, used for format 2 coverage (value is
// the start coverage index) and class definitions (value is the class).
type Range struct {
	Start, End uint16
	Value      uint16
}

// Coverage1 returns a format 1 coverage table for a sorted list of glyphs.
func Coverage1(glyphs ...uint16) []byte {
	w := &Writer{}
	w.U16(1, uint16(len(glyphs))).U16(glyphs...)
	return w.Bytes()
}

// Coverage2 returns a format 2 coverage table.
func Coverage2(ranges ...Range) []byte {
	w := &Writer{}
	w.U16(2, uint16(len(ranges)))
	for _, r := range ranges {
		w.U16(r.Start, r.End, r.Value)
	}
	return w.Bytes()
}

// ClassDef1 returns a format 1 class definition table.
func ClassDef1(start uint16, classes ...uint16) []byte {
	w := &Writer{}
	w.U16(1, start, uint16(len(classes))).U16(classes...)
	return w.Bytes()
}

// ClassDef2 returns a format 2 class definition table.
func ClassDef2(ranges ...Range) []byte {
	w := &Writer{}
	w.U16(2, uint16(len(ranges)))
	for _, r := range ranges {
		w.U16(r.Start, r.End, r.Value)
	}
	return w.Bytes()
}

// Region is an axis region for a variation region list: per axis
// (start, peak, end).
type Region [][3]float32

// VarStore returns an item variation store with a single VarData sub-table.
// Rows hold one delta per region; deltas are stored as int16 values.
func VarStore(axisCount int, regions []Region, rows [][]int16) []byte {
	w := &Writer{}
	w.U16(1) // format
	w.U32(0) // region list offset, patched below
	w.U16(1) // varData count
	w.U32(0) // varData offset, patched below
	w.PatchU32(2, uint32(w.Len()))
	w.U16(uint16(axisCount), uint16(len(regions)))
	for _, r := range regions {
		for _, axis := range r {
			w.F2Dot14(axis[0]).F2Dot14(axis[1]).F2Dot14(axis[2])
		}
	}
	w.PatchU32(8, uint32(w.Len()))
	w.U16(uint16(len(rows)), uint16(len(regions)), uint16(len(regions)))
	for i := range regions {
		w.U16(uint16(i))
	}
	for _, row := range rows {
		w.I16(row...)
	}
	return w.Bytes()
}

// --- Font container --------------------------------------------------------

// Font collects tables for an SFNT container.
type Font struct {
	tables map[string][]byte
}

// NewFont creates an empty font.
func NewFont() *Font {
	return &Font{tables: make(map[string][]byte)}
}

// Add sets the data of a table.
func (f *Font) Add(tag string, data []byte) *Font {
	f.tables[tag] = data
	return f
}

// Remove deletes a table.
func (f *Font) Remove(tag string) *Font {
	delete(f.tables, tag)
	return f
}

// Bytes returns the font binary, with TrueType outlines flavour.
func (f *Font) Bytes() []byte {
	tags := make([]string, 0, len(f.tables))
	for tag := range f.tables {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	w := &Writer{}
	w.U32(0x00010000).U16(uint16(len(tags)), 0, 0, 0)
	offset := 12 + 16*len(tags)
	for _, tag := range tags {
		size := len(f.tables[tag])
		w.Tag(tag).U32(0, uint32(offset), uint32(size))
		offset += (size + 3) &^ 3
	}
	for _, tag := range tags {
		data := f.tables[tag]
		w.Raw(data)
		w.Zeros((4 - len(data)%4) % 4)
	}
	return w.Bytes()
}

// --- Required tables -------------------------------------------------------

// Head returns a 'head' table.
func Head(unitsPerEm uint16, indexToLocFormat int16) []byte {
	w := &Writer{}
	w.U16(1, 0).U32(0x00010000, 0, 0x5F0F3CF5)
	w.U16(0, unitsPerEm) // flags, unitsPerEm
	w.Zeros(16)          // created, modified
	w.I16(0, 0, 0, 0)    // bounding box
	w.U16(0, 8).I16(2, indexToLocFormat, 0)
	return w.Bytes()
}

// MaxP returns a version 0.5 'maxp' table.
func MaxP(numGlyphs uint16) []byte {
	w := &Writer{}
	w.U32(0x00005000).U16(numGlyphs)
	return w.Bytes()
}

// HHea returns a 'hhea' or 'vhea' table.
func HHea(ascender, descender, lineGap int16, numberOfLongMetrics uint16) []byte {
	w := &Writer{}
	w.U16(1, 0).I16(ascender, descender, lineGap)
	w.U16(0).I16(0, 0, 0, 1, 0, 0)
	w.Zeros(8)
	w.I16(0).U16(numberOfLongMetrics)
	return w.Bytes()
}

// Metric is an advance and side bearing pair of 'hmtx' or 'vmtx'.
type Metric struct {
	Advance     uint16
	SideBearing int16
}

// HMtx returns a 'hmtx' or 'vmtx' table. Side bearings are written for the
// glyphs following the long metrics.
func HMtx(long []Metric, bearings ...int16) []byte {
	w := &Writer{}
	for _, m := range long {
		w.U16(m.Advance).I16(m.SideBearing)
	}
	w.I16(bearings...)
	return w.Bytes()
}

// OS2 returns a version 4 'OS/2' table with the given vertical metrics.
func OS2(fsSelection uint16, typoAsc, typoDesc, typoGap int16, winAsc, winDesc uint16) []byte {
	w := &Writer{}
	w.U16(4).I16(500)
	w.Zeros(58)
	w.U16(fsSelection, 0x20, 0x7E)
	w.I16(typoAsc, typoDesc, typoGap)
	w.U16(winAsc, winDesc)
	w.Zeros(18)
	return w.Bytes()
}

// --- Optional tables -------------------------------------------------------

// Name returns a 'name' table with Windows BMP records (language en-US) for
// the given name IDs, in ascending order of IDs. Strings must be ASCII.
func Name(names map[uint16]string) []byte {
	ids := make([]uint16, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	w := &Writer{}
	w.U16(0, uint16(len(ids)), uint16(6+12*len(ids)))
	var storage []byte
	for _, id := range ids {
		s := names[id]
		w.U16(3, 1, 0x0409, id, uint16(2*len(s)), uint16(len(storage)))
		for _, c := range []byte(s) {
			storage = append(storage, 0, c)
		}
	}
	w.Raw(storage)
	return w.Bytes()
}

// VertOrigin is a glyph record of table 'VORG'.
type VertOrigin struct {
	Glyph uint16
	Y     int16
}

// VOrg returns a 'VORG' table. Records must be sorted by glyph.
func VOrg(defaultY int16, origins ...VertOrigin) []byte {
	w := &Writer{}
	w.U16(1, 0).I16(defaultY).U16(uint16(len(origins)))
	for _, o := range origins {
		w.U16(o.Glyph).I16(o.Y)
	}
	return w.Bytes()
}

// Glyf returns a 'glyf' table with one empty-outline glyph per bounding box
// (xMin, yMin, xMax, yMax) and the matching short 'loca' table. A zero box
// makes a glyph without outline.
func Glyf(boxes ...[4]int16) (glyf, loca []byte) {
	g, l := &Writer{}, &Writer{}
	for _, box := range boxes {
		l.U16(uint16(g.Len() / 2))
		if box != [4]int16{} {
			g.I16(1).I16(box[:]...).Zeros(2) // one contour, no points
		}
	}
	l.U16(uint16(g.Len() / 2))
	return g.Bytes(), l.Bytes()
}

package ot

import "fmt"

// --- Concrete table implementations ----------------------------------------

// HeadTable gives global information about the font.
// Only a small subset of fields are made public by HeadTable, as they are
// needed for metrics and consistency-checks.
type HeadTable struct {
	tableBase
	Flags            uint16 // see https://docs.microsoft.com/en-us/typography/opentype/spec/head
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	IndexToLocFormat uint16 // needed to interpret loca table
}

const headTableSize = 54

func newHeadTable(tag Tag, b binarySegm, offset, size uint32) (*HeadTable, error) {
	if len(b) < headTableSize {
		return nil, fmt.Errorf("head table too small: %d bytes", len(b))
	}
	t := &HeadTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.Flags = b.U16(16)
	t.UnitsPerEm = b.U16(18)
	t.IndexToLocFormat = b.U16(50)
	t.self = t
	return t, nil
}

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
type MaxPTable struct {
	tableBase
	NumGlyphs int
}

func newMaxPTable(tag Tag, b binarySegm, offset, size uint32) (*MaxPTable, error) {
	if len(b) < 6 {
		return nil, fmt.Errorf("maxp table too small: %d bytes", len(b))
	}
	t := &MaxPTable{NumGlyphs: int(b.U16(4))}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t, nil
}

// HHeaTable contains information for horizontal layout. Table 'vhea' has the
// same layout and is represented by an HHeaTable as well, with ascender,
// descender and line gap denoting vertical metrics.
type HHeaTable struct {
	tableBase
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceMax          uint16
	MinLeadingBearing   int16
	MinTrailingBearing  int16
	MaxExtent           int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	NumberOfLongMetrics int
}

const hheaTableSize = 36

func newHHeaTable(tag Tag, b binarySegm, offset, size uint32) (*HHeaTable, error) {
	if len(b) < hheaTableSize {
		return nil, fmt.Errorf("%s table too small: %d bytes", tag, len(b))
	}
	t := &HHeaTable{
		Ascender:            b.I16(4),
		Descender:           b.I16(6),
		LineGap:             b.I16(8),
		AdvanceMax:          b.U16(10),
		MinLeadingBearing:   b.I16(12),
		MinTrailingBearing:  b.I16(14),
		MaxExtent:           b.I16(16),
		CaretSlopeRise:      b.I16(18),
		CaretSlopeRun:       b.I16(20),
		CaretOffset:         b.I16(22),
		NumberOfLongMetrics: int(b.U16(34)),
	}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t, nil
}

// HMtxTable contains metric information for the horizontal layout each of the glyphs in
// the font. Each element in the contained hMetrics-array has two parts: the advance width
// and left side bearing. The value NumberOfHMetrics is taken from the `hhea` table. In
// a monospaced font, only one entry is required but that entry may not be omitted.
// Optionally, an array of left side bearings follows.
// The corresponding glyphs are assumed to have the same
// advance width as that found in the last entry in the hMetrics array.
//
// Table 'vmtx' has the same structure, with advance heights and top side
// bearings, and is represented by an HMtxTable as well.
type HMtxTable struct {
	tableBase
	NumberOfHMetrics int
	numGlyphs        int
}

func newHMtxTable(tag Tag, b binarySegm, offset, size uint32) *HMtxTable {
	t := &HMtxTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// link connects the table with the glyph count from 'maxp' and the number of
// long metrics from 'hhea' or 'vhea'.
func (t *HMtxTable) link(numGlyphs, numberOfHMetrics int) error {
	if numberOfHMetrics < 0 || numberOfHMetrics > numGlyphs {
		return fmt.Errorf("invalid number of long metrics %d (numGlyphs=%d)", numberOfHMetrics, numGlyphs)
	}
	required := numberOfHMetrics*4 + (numGlyphs-numberOfHMetrics)*2
	if required > len(t.data) {
		// side bearings may be cut short by sloppy fonts; long metrics may not
		if numberOfHMetrics*4 > len(t.data) {
			return fmt.Errorf("%s table too small: need %d bytes, have %d", t.name, required, len(t.data))
		}
	}
	t.NumberOfHMetrics = numberOfHMetrics
	t.numGlyphs = numGlyphs
	return nil
}

// GlyphCount returns the glyph count used when decoding this table.
func (t *HMtxTable) GlyphCount() int {
	if t == nil {
		return 0
	}
	return t.numGlyphs
}

// HMetrics returns the advance and the leading side bearing for a glyph.
func (t *HMtxTable) HMetrics(g GlyphIndex) (uint16, int16, bool) {
	if t == nil || int(g) >= t.numGlyphs || t.NumberOfHMetrics == 0 {
		return 0, 0, false
	}
	if int(g) < t.NumberOfHMetrics {
		return t.data.U16(int(g) * 4), t.data.I16(int(g)*4 + 2), true
	}
	advance := t.data.U16((t.NumberOfHMetrics - 1) * 4)
	at := t.NumberOfHMetrics*4 + (int(g)-t.NumberOfHMetrics)*2
	return advance, t.data.I16(at), true
}

// Advance returns the advance of a glyph, or 0.
func (t *HMtxTable) Advance(g GlyphIndex) uint16 {
	a, _, _ := t.HMetrics(g)
	return a
}

// OS2Table contains a small, concrete subset of metrics from table 'OS/2'
// required for layout fallback decisions.
type OS2Table struct {
	tableBase
	Version       uint16
	XAvgCharWidth int16
	FsSelection   uint16
	TypoAscender  int16
	TypoDescender int16
	TypoLineGap   int16
	WinAscent     uint16
	WinDescent    uint16
}

// OS/2 fsSelection bit USE_TYPO_METRICS.
const OS2UseTypoMetrics = 1 << 7

const os2MinSize = 78

func newOS2Table(tag Tag, b binarySegm, offset, size uint32) (*OS2Table, error) {
	if len(b) < os2MinSize {
		return nil, fmt.Errorf("OS/2 table too small: %d bytes", len(b))
	}
	t := &OS2Table{
		Version:       b.U16(0),
		XAvgCharWidth: b.I16(2),
		FsSelection:   b.U16(62),
		TypoAscender:  b.I16(68),
		TypoDescender: b.I16(70),
		TypoLineGap:   b.I16(72),
		WinAscent:     b.U16(74),
		WinDescent:    b.U16(76),
	}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t, nil
}

// UseTypoMetrics is true if the font asks for the typographic metrics to be
// used for line spacing.
func (t *OS2Table) UseTypoMetrics() bool {
	return t != nil && t.FsSelection&OS2UseTypoMetrics != 0
}

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table.
// By definition, index zero points to the “missing character”, which is the character
// that appears if a character is not found in the font. The missing character is
// commonly represented by a blank box or a space.
type LocaTable struct {
	tableBase
	long   bool // long offsets, according to head.IndexToLocFormat
	locCnt int  // number of locations
}

func newLocaTable(tag Tag, b binarySegm, offset, size uint32) *LocaTable {
	t := &LocaTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// IndexToLocation returns the location of glyph gid within the 'glyf' table,
// together with the size of the glyph data. Glyphs out of range and glyphs
// without outlines yield a size of 0.
func (t *LocaTable) IndexToLocation(gid GlyphIndex) (uint32, uint32) {
	if t == nil || int(gid)+1 >= t.locCnt {
		return 0, 0
	}
	var from, to uint32
	if t.long {
		from, to = t.data.U32(int(gid)*4), t.data.U32(int(gid)*4+4)
	} else {
		from, to = uint32(t.data.U16(int(gid)*2))*2, uint32(t.data.U16(int(gid)*2+2))*2
	}
	if to < from {
		return 0, 0
	}
	return from, to - from
}

// GlyphBounds returns the bounding box of a glyph from table 'glyf', as
// (xMin, yMin, xMax, yMax). Glyphs without outlines yield false.
func (otf *Font) GlyphBounds(gid GlyphIndex) ([4]int16, bool) {
	glyf := otf.tables[T("glyf")]
	if glyf == nil || otf.Loca == nil {
		return [4]int16{}, false
	}
	loc, size := otf.Loca.IndexToLocation(gid)
	if size < 10 {
		return [4]int16{}, false
	}
	b, err := binarySegm(glyf.Binary()).view(int(loc), 10)
	if err != nil {
		return [4]int16{}, false
	}
	return [4]int16{b.I16(2), b.I16(4), b.I16(6), b.I16(8)}, true
}

package ot

// GDefTable, the Glyph Definition (GDEF) table, provides various glyph properties
// used in OpenType Layout processing.
//
//	uint16    majorVersion
//	uint16    minorVersion
//	Offset16  glyphClassDefOffset
//	Offset16  attachListOffset
//	Offset16  ligCaretListOffset
//	Offset16  markAttachClassDefOffset
//	Offset16  markGlyphSetsDefOffset     (version 1.2)
//	Offset32  itemVarStoreOffset         (version 1.3)
//
// See also
// https://docs.microsoft.com/en-us/typography/opentype/spec/gdef
type GDefTable struct {
	tableBase
}

func newGDefTable(tag Tag, b binarySegm, offset, size uint32) *GDefTable {
	t := &GDefTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// GlyphClassDefEnum lists the glyph classes of a GDEF GlyphClassDef table.
type GlyphClassDefEnum uint16

const (
	UnclassifiedGlyph GlyphClassDefEnum = iota // glyph not listed
	BaseGlyph                                  // single character, spacing glyph
	LigatureGlyph                              // multiple character, spacing glyph
	MarkGlyph                                  // non-spacing combining glyph
	ComponentGlyph                             // part of single character, spacing glyph
)

func sanitizeGDef(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 12) || b.U16(0) != 1 {
		tracer().Debugf("GDEF: unsupported header")
		return false
	}
	if !s.offset16(b, 4, sanitizeClassDef) ||
		!s.offset16(b, 6, sanitizeAttachList) ||
		!s.offset16(b, 8, sanitizeLigCaretList) ||
		!s.offset16(b, 10, sanitizeClassDef) {
		return false
	}
	minor := b.U16(2)
	if minor >= 2 && !s.offset16(b, 12, sanitizeMarkGlyphSets) {
		return false
	}
	if minor >= 3 && !s.offset32(b, 14, sanitizeVariationStore) {
		return false
	}
	return true
}

// Version returns major and minor version numbers for this GDEF table.
func (t *GDefTable) Version() (int, int) {
	return int(t.data.U16(0)), int(t.data.U16(2))
}

// GlyphClassDef returns the glyph class definitions.
func (t *GDefTable) GlyphClassDef() ClassDef {
	if t == nil {
		return ClassDef{}
	}
	return ParseClassDef(t.data.offset16(4))
}

// HasGlyphClasses is true if the table has glyph class definitions.
func (t *GDefTable) HasGlyphClasses() bool {
	return t != nil && t.data.U16(4) != 0
}

// GlyphClass returns the glyph class of g.
func (t *GDefTable) GlyphClass(g GlyphIndex) GlyphClassDefEnum {
	return GlyphClassDefEnum(t.GlyphClassDef().Class(g))
}

// MarkAttachClassDef returns the mark attachment class definitions.
func (t *GDefTable) MarkAttachClassDef() ClassDef {
	if t == nil {
		return ClassDef{}
	}
	return ParseClassDef(t.data.offset16(10))
}

// MarkGlyphSets returns the mark glyph sets definition table. Tables before
// version 1.2 have none.
func (t *GDefTable) MarkGlyphSets() MarkGlyphSets {
	if t == nil || t.data.U16(2) < 2 {
		return MarkGlyphSets{}
	}
	return viewMarkGlyphSets(t.data.offset16(12))
}

// VarStore returns the item variation store of the table. Tables before
// version 1.3 have none.
func (t *GDefTable) VarStore() VariationStore {
	if t == nil || t.data.U16(2) < 3 {
		return VariationStore{}
	}
	return ParseVariationStore(t.data.offset32(14))
}

// HasVarStore is true if the table has a non-empty item variation store.
func (t *GDefTable) HasVarStore() bool {
	return !t.VarStore().IsEmpty()
}

// AttachPoints returns the contour point indices of the attachment points for
// glyph g.
func (t *GDefTable) AttachPoints(g GlyphIndex) []uint16 {
	if t == nil {
		return nil
	}
	al := t.data.offset16(6)
	i := ParseCoverage(al.offset16(0)).Index(g)
	if i == NotCovered {
		return nil
	}
	offsets := viewArray16(al, 2, 2)
	ap := viewArray16(offsets.link(al, int(i)), 0, 2)
	points := make([]uint16, ap.Len())
	for k := range points {
		points[k] = ap.U16(k)
	}
	return points
}

// LigCarets returns the ligature caret list.
func (t *GDefTable) LigCarets() LigCaretList {
	if t == nil {
		return LigCaretList{}
	}
	return viewLigCaretList(t.data.offset16(8))
}

// CollectVariationIndices adds the variation indices of all devices
// referenced from ligature carets to set.
func (t *GDefTable) CollectVariationIndices(set *IndexSet) {
	t.LigCarets().CollectVariationIndices(set)
}

func sanitizeAttachList(s *sanitizer, b binarySegm) bool {
	if !s.offset16(b, 0, sanitizeCoverage) {
		return false
	}
	return s.offsetArray16(b, 2, b, func(s *sanitizer, ap binarySegm) bool {
		return s.checkArray16(ap, 0, 2)
	})
}

// --- Mark glyph sets -------------------------------------------------------

// MarkGlyphSets is an array of coverage tables, each defining a set of mark
// glyphs. Lookups with flag LOOKUP_FLAG_USE_MARK_FILTERING_SET reference one
// of these sets.
type MarkGlyphSets struct {
	b    binarySegm
	sets array
}

func viewMarkGlyphSets(b binarySegm) MarkGlyphSets {
	if b.U16(0) != 1 {
		return MarkGlyphSets{}
	}
	return MarkGlyphSets{b: b, sets: viewArray16(b, 2, 4)}
}

func sanitizeMarkGlyphSets(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 2) {
		return false
	}
	if b.U16(0) != 1 {
		return true
	}
	if !s.checkArray16(b, 2, 4) {
		return false
	}
	for i := 0; i < int(b.U16(2)); i++ {
		if !s.offset32(b, 4+4*i, sanitizeCoverage) {
			return false
		}
	}
	return true
}

// Count returns the number of mark glyph sets.
func (m MarkGlyphSets) Count() int {
	return m.sets.Len()
}

// Coverage returns the coverage of mark glyph set i.
func (m MarkGlyphSets) Coverage(i int) Coverage {
	if i < 0 || i >= m.sets.Len() {
		return Coverage{}
	}
	return ParseCoverage(m.b.offset32(4 + 4*i))
}

// Covers is true if glyph g is a member of mark glyph set i.
func (m MarkGlyphSets) Covers(i int, g GlyphIndex) bool {
	return m.Coverage(i).Covers(g)
}

// --- Ligature carets -------------------------------------------------------

// LigCaretList holds caret positions for ligatures.
//
//	Offset16  coverageOffset
//	uint16    ligGlyphCount
//	Offset16  ligGlyphOffsets[ligGlyphCount]
type LigCaretList struct {
	b         binarySegm
	ligGlyphs array
}

func viewLigCaretList(b binarySegm) LigCaretList {
	return LigCaretList{b: b, ligGlyphs: viewArray16(b, 2, 2)}
}

func sanitizeLigCaretList(s *sanitizer, b binarySegm) bool {
	if !s.offset16(b, 0, sanitizeCoverage) {
		return false
	}
	return s.offsetArray16(b, 2, b, sanitizeLigGlyph)
}

func sanitizeLigGlyph(s *sanitizer, b binarySegm) bool {
	return s.offsetArray16(b, 0, b, sanitizeCaretValue)
}

func sanitizeCaretValue(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 4) {
		return false
	}
	if b.U16(0) == 3 {
		return s.checkRange(b, 0, 6) && s.offset16(b, 4, sanitizeDevice)
	}
	return true
}

// Coverage returns the coverage of ligature glyphs with carets.
func (l LigCaretList) Coverage() Coverage {
	return ParseCoverage(l.b.offset16(0))
}

// CaretValue is a caret position within a ligature. Format 1 carries a design
// unit coordinate, format 2 a contour point index, format 3 a coordinate plus
// a device table.
type CaretValue struct {
	Format     uint16
	Coordinate int16
	PointIndex uint16
	Device     Device
}

// Carets returns the caret values of ligature glyph g.
func (l LigCaretList) Carets(g GlyphIndex) []CaretValue {
	i := l.Coverage().Index(g)
	if i == NotCovered {
		return nil
	}
	lg := l.ligGlyphs.link(l.b, int(i))
	offsets := viewArray16(lg, 0, 2)
	carets := make([]CaretValue, 0, offsets.Len())
	for k := 0; k < offsets.Len(); k++ {
		cv := offsets.link(lg, k)
		c := CaretValue{Format: cv.U16(0)}
		switch c.Format {
		case 1:
			c.Coordinate = cv.I16(2)
		case 2:
			c.PointIndex = cv.U16(2)
		case 3:
			c.Coordinate = cv.I16(2)
			c.Device = ParseDevice(cv.offset16(4))
		default:
			continue
		}
		carets = append(carets, c)
	}
	return carets
}

// CollectVariationIndices adds the variation indices of caret devices to set.
func (l LigCaretList) CollectVariationIndices(set *IndexSet) {
	for i := 0; i < l.ligGlyphs.Len(); i++ {
		lg := l.ligGlyphs.link(l.b, i)
		offsets := viewArray16(lg, 0, 2)
		for k := 0; k < offsets.Len(); k++ {
			cv := offsets.link(lg, k)
			if cv.U16(0) == 3 {
				ParseDevice(cv.offset16(4)).CollectVariationIndices(set)
			}
		}
	}
}

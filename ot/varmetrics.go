package ot

// Tables of variable fonts which map glyph and font metrics to deltas in an
// item variation store: HVAR, VVAR and MVAR. VORG is included here as it is
// consulted together with VVAR for vertical layout.

// --- DeltaSetIndexMap ------------------------------------------------------

// DeltaSetIndexMap maps an item index (e.g., a glyph index) to a packed
// variation index.
//
//	uint8   format          0 or 1
//	uint8   entryFormat     inner index bit count and entry size
//	uint16  mapCount        (format 0) or uint32 mapCount (format 1)
//	uint8   mapData[]
type DeltaSetIndexMap struct {
	b binarySegm
}

func viewDeltaSetIndexMap(b binarySegm) DeltaSetIndexMap {
	return DeltaSetIndexMap{b: b}
}

func (m DeltaSetIndexMap) header() (count, dataAt, width, innerBits int) {
	ef := int(m.b[1])
	width = (ef&0x30)>>4 + 1
	innerBits = ef&0x0F + 1
	if m.b[0] == 0 {
		return int(m.b.U16(2)), 4, width, innerBits
	}
	return int(m.b.U32(2)), 6, width, innerBits
}

func sanitizeDeltaSetIndexMap(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 4) {
		return false
	}
	switch b[0] {
	case 0:
	case 1:
		if !s.checkRange(b, 0, 6) || b.U32(2) > MaxOps {
			return false
		}
	default:
		return false
	}
	count, at, width, _ := DeltaSetIndexMap{b: b}.header()
	return s.checkArray(b, at, count, width)
}

// IsEmpty is true for an absent map.
func (m DeltaSetIndexMap) IsEmpty() bool {
	return len(m.b) < 4
}

// Count returns the number of entries of the map.
func (m DeltaSetIndexMap) Count() int {
	if m.IsEmpty() {
		return 0
	}
	count, _, _, _ := m.header()
	return count
}

// Map returns the packed variation index (outer<<16 | inner) for item i.
// Items beyond the end of the map use the last entry. An empty map is the
// identity with an outer index of 0.
func (m DeltaSetIndexMap) Map(i uint32) uint32 {
	if m.IsEmpty() {
		return i
	}
	count, at, width, innerBits := m.header()
	if count == 0 {
		return i
	}
	if i >= uint32(count) {
		i = uint32(count) - 1
	}
	entry := uint32(0)
	pos := at + int(i)*width
	for k := 0; k < width; k++ {
		if pos+k >= len(m.b) {
			return 0
		}
		entry = entry<<8 | uint32(m.b[pos+k])
	}
	outer := entry >> innerBits
	inner := entry & (1<<innerBits - 1)
	return outer<<16 | inner
}

// --- HVAR / VVAR -----------------------------------------------------------

// MetricsVarTable is a HVAR or a VVAR table. It holds deltas for advances and
// side bearings of glyphs.
//
//	uint16    majorVersion
//	uint16    minorVersion
//	Offset32  itemVariationStoreOffset
//	Offset32  advanceMappingOffset
//	Offset32  lsbMappingOffset (HVAR) or tsbMappingOffset (VVAR)
//	Offset32  rsbMappingOffset (HVAR) or bsbMappingOffset (VVAR)
//	Offset32  vOrgMappingOffset (VVAR only)
type MetricsVarTable struct {
	tableBase
	vertical bool
}

func newMetricsVarTable(tag Tag, b binarySegm, offset, size uint32) *MetricsVarTable {
	t := &MetricsVarTable{vertical: tag == T("VVAR")}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

func sanitizeMetricsVar(vertical bool) sanitizeFunc {
	return func(s *sanitizer, b binarySegm) bool {
		size := 20
		if vertical {
			size = 24
		}
		if !s.checkRange(b, 0, size) || b.U16(0) != 1 {
			return false
		}
		if !s.offset32(b, 4, sanitizeVariationStore) {
			return false
		}
		for at := 8; at < size; at += 4 {
			if !s.offset32(b, at, sanitizeDeltaSetIndexMap) {
				return false
			}
		}
		return true
	}
}

// VarStore returns the item variation store of the table.
func (t *MetricsVarTable) VarStore() VariationStore {
	if t == nil {
		return VariationStore{}
	}
	return ParseVariationStore(t.data.offset32(4))
}

// AdvanceMap returns the delta-set index map for advances.
func (t *MetricsVarTable) AdvanceMap() DeltaSetIndexMap {
	return viewDeltaSetIndexMap(t.data.offset32(8))
}

// AdvanceDelta returns the delta of the advance of glyph g, in font units.
func (t *MetricsVarTable) AdvanceDelta(g GlyphIndex, coords []F2Dot14) float32 {
	if t == nil || len(coords) == 0 {
		return 0
	}
	index := t.AdvanceMap().Map(uint32(g))
	return t.VarStore().DeltaIndex(index, coords)
}

// SideBearingDelta returns the delta of the leading side bearing (lsb for
// HVAR, tsb for VVAR) of glyph g. Fonts without a side bearing mapping have
// no side bearing deltas.
func (t *MetricsVarTable) SideBearingDelta(g GlyphIndex, coords []F2Dot14) float32 {
	if t == nil || len(coords) == 0 {
		return 0
	}
	m := viewDeltaSetIndexMap(t.data.offset32(12))
	if m.IsEmpty() {
		return 0
	}
	return t.VarStore().DeltaIndex(m.Map(uint32(g)), coords)
}

// VOriginDelta returns the delta of the vertical origin of glyph g. Only VVAR
// tables have vertical origin deltas.
func (t *MetricsVarTable) VOriginDelta(g GlyphIndex, coords []F2Dot14) float32 {
	if t == nil || !t.vertical || len(coords) == 0 {
		return 0
	}
	m := viewDeltaSetIndexMap(t.data.offset32(20))
	if m.IsEmpty() {
		return 0
	}
	return t.VarStore().DeltaIndex(m.Map(uint32(g)), coords)
}

// --- MVAR ------------------------------------------------------------------

// MVarTable holds deltas for font-wide metrics, identified by tag (e.g.,
// 'hasc' for the horizontal ascender).
//
//	uint16    majorVersion
//	uint16    minorVersion
//	uint16    reserved
//	uint16    valueRecordSize
//	uint16    valueRecordCount
//	Offset16  itemVariationStoreOffset
//	ValueRecord valueRecords[valueRecordCount]   {Tag, uint16 outer, uint16 inner}
type MVarTable struct {
	tableBase
}

// Metric tags of MVAR value records.
var (
	MVarHorizontalAscender  = T("hasc")
	MVarHorizontalDescender = T("hdsc")
	MVarHorizontalLineGap   = T("hlgp")
	MVarVerticalAscender    = T("vasc")
	MVarVerticalDescender   = T("vdsc")
	MVarVerticalLineGap     = T("vlgp")
)

func newMVarTable(tag Tag, b binarySegm, offset, size uint32) *MVarTable {
	t := &MVarTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

func sanitizeMVar(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 12) || b.U16(0) != 1 {
		return false
	}
	recordSize := int(b.U16(6))
	if recordSize < 8 {
		return false
	}
	if !s.checkArray(b, 12, int(b.U16(8)), recordSize) {
		return false
	}
	return s.offset16(b, 10, sanitizeVariationStore)
}

func (t *MVarTable) records() array {
	return viewArray(t.data, 12, int(t.data.U16(8)), int(t.data.U16(6)))
}

// VarStore returns the item variation store of the table.
func (t *MVarTable) VarStore() VariationStore {
	if t == nil {
		return VariationStore{}
	}
	return ParseVariationStore(t.data.offset16(10))
}

// Delta returns the delta for the metric identified by tag, in font units.
// Metrics not listed have a delta of 0.
func (t *MVarTable) Delta(tag Tag, coords []F2Dot14) float32 {
	if t == nil || len(coords) == 0 {
		return 0
	}
	recs := t.records()
	i := recs.bsearch(func(rec binarySegm) int {
		rt := Tag(rec.U32(0))
		switch {
		case rt < tag:
			return -1
		case rt > tag:
			return 1
		}
		return 0
	})
	if i == NotFoundIndex {
		return 0
	}
	rec := recs.Get(int(i))
	return t.VarStore().Delta(int(rec.U16(4)), int(rec.U16(6)), coords)
}

// Tags returns the metric tags the table has records for.
func (t *MVarTable) Tags() []Tag {
	recs := t.records()
	tags := make([]Tag, recs.Len())
	for i := range tags {
		tags[i] = Tag(recs.Get(i).U32(0))
	}
	return tags
}

// --- VORG ------------------------------------------------------------------

// VOrgTable holds the y coordinate of the vertical origin of glyphs, for CFF
// fonts.
//
//	uint16  majorVersion
//	uint16  minorVersion
//	int16   defaultVertOriginY
//	uint16  numVertOriginYMetrics
//	{uint16 glyphIndex, int16 vertOriginY}[numVertOriginYMetrics]
type VOrgTable struct {
	tableBase
}

func newVOrgTable(tag Tag, b binarySegm, offset, size uint32) *VOrgTable {
	t := &VOrgTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

func sanitizeVOrg(s *sanitizer, b binarySegm) bool {
	return s.checkRange(b, 0, 8) && b.U16(0) == 1 && s.checkArray16(b, 6, 4)
}

// DefaultVertOriginY returns the vertical origin for glyphs not listed.
func (t *VOrgTable) DefaultVertOriginY() int16 {
	return t.data.I16(4)
}

// VertOriginY returns the y coordinate of the vertical origin of glyph g.
func (t *VOrgTable) VertOriginY(g GlyphIndex) int16 {
	recs := viewArray16(t.data, 6, 4)
	i := recs.bsearch(func(rec binarySegm) int {
		return int(rec.U16(0)) - int(g)
	})
	if i == NotFoundIndex {
		return t.DefaultVertOriginY()
	}
	return recs.Get(int(i)).I16(2)
}

package ot

import "math/bits"

// GPOS sub-tables are not interpreted by this package, except for the parts
// which reference device tables: value records and anchors. Their device
// tables have to be sanitized, and their variation indices are needed by
// clients collecting the variation data a font uses.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos

// ValueFormat is a bitmask that describes which fields are present in a ValueRecord.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
type ValueFormat uint16

const (
	ValueFormatXPlacement ValueFormat = 0x0001 // Includes horizontal adjustment for placement
	ValueFormatYPlacement ValueFormat = 0x0002 // Includes vertical adjustment for placement
	ValueFormatXAdvance   ValueFormat = 0x0004 // Includes horizontal adjustment for advance
	ValueFormatYAdvance   ValueFormat = 0x0008 // Includes vertical adjustment for advance
	ValueFormatXPlaDevice ValueFormat = 0x0010 // Includes Device table for horizontal placement
	ValueFormatYPlaDevice ValueFormat = 0x0020 // Includes Device table for vertical placement
	ValueFormatXAdvDevice ValueFormat = 0x0040 // Includes Device table for horizontal advance
	ValueFormatYAdvDevice ValueFormat = 0x0080 // Includes Device table for vertical advance
	valueFormatDevices    ValueFormat = 0x00F0
	// Bits 0x0F00 are reserved for future use
)

// Size returns the size of a value record in bytes.
func (vf ValueFormat) Size() int {
	return 2 * bits.OnesCount16(uint16(vf&0xFF))
}

// HasDevices is true if value records of this format carry device offsets.
func (vf ValueFormat) HasDevices() bool {
	return vf&valueFormatDevices != 0
}

// fieldAt returns the byte position of field f within a value record, or -1
// if the field is not present.
func (vf ValueFormat) fieldAt(f ValueFormat) int {
	if vf&f == 0 {
		return -1
	}
	return 2 * bits.OnesCount16(uint16(vf&(f-1)&0xFF))
}

// ValueRecord represents a positioning adjustment for a glyph.
// The actual fields present depend on the ValueFormat bitmask.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
type ValueRecord struct {
	XPlacement int16  // Horizontal adjustment for placement, in design units
	YPlacement int16  // Vertical adjustment for placement, in design units
	XAdvance   int16  // Horizontal adjustment for advance, in design units
	YAdvance   int16  // Vertical adjustment for advance, in design units
	XPlaDevice Device // Device table for horizontal placement
	YPlaDevice Device // Device table for vertical placement
	XAdvDevice Device // Device table for horizontal advance
	YAdvDevice Device // Device table for vertical advance
}

// parseValueRecord decodes the value record rec. Device offsets are relative
// to base.
func parseValueRecord(vf ValueFormat, rec, base binarySegm) ValueRecord {
	var vr ValueRecord
	i16 := func(f ValueFormat) int16 {
		if at := vf.fieldAt(f); at >= 0 {
			return rec.I16(at)
		}
		return 0
	}
	dev := func(f ValueFormat) Device {
		if at := vf.fieldAt(f); at >= 0 {
			if off := rec.U16(at); off != 0 {
				return ParseDevice(base.from(int(off)))
			}
		}
		return Device{}
	}
	vr.XPlacement = i16(ValueFormatXPlacement)
	vr.YPlacement = i16(ValueFormatYPlacement)
	vr.XAdvance = i16(ValueFormatXAdvance)
	vr.YAdvance = i16(ValueFormatYAdvance)
	vr.XPlaDevice = dev(ValueFormatXPlaDevice)
	vr.YPlaDevice = dev(ValueFormatYPlaDevice)
	vr.XAdvDevice = dev(ValueFormatXAdvDevice)
	vr.YAdvDevice = dev(ValueFormatYAdvDevice)
	return vr
}

// CollectVariationIndices adds the variation indices of the record's devices
// to set.
func (vr ValueRecord) CollectVariationIndices(set *IndexSet) {
	vr.XPlaDevice.CollectVariationIndices(set)
	vr.YPlaDevice.CollectVariationIndices(set)
	vr.XAdvDevice.CollectVariationIndices(set)
	vr.YAdvDevice.CollectVariationIndices(set)
}

// sanitizeValueRecords checks count value records starting at byte index at
// of b, including their devices, which are relative to base.
func sanitizeValueRecords(s *sanitizer, b binarySegm, at, count int, vf ValueFormat, base binarySegm) bool {
	size := vf.Size()
	if !s.checkArray(b, at, count, size) {
		return false
	}
	if !vf.HasDevices() {
		return true
	}
	for i := 0; i < count; i++ {
		if !sanitizeValueRecordDevices(s, b, at+i*size, vf, base) {
			return false
		}
	}
	return true
}

func sanitizeValueRecordDevices(s *sanitizer, b binarySegm, at int, vf ValueFormat, base binarySegm) bool {
	for f := ValueFormatXPlaDevice; f <= ValueFormatYAdvDevice; f <<= 1 {
		if pos := vf.fieldAt(f); pos >= 0 {
			if !s.offset16At(b, at+pos, base, sanitizeDevice) {
				return false
			}
		}
	}
	return true
}

// --- Anchors ---------------------------------------------------------------

// AnchorFormat represents the format of an Anchor table.
type AnchorFormat uint16

const (
	AnchorFormat1 AnchorFormat = 1 // Design units only
	AnchorFormat2 AnchorFormat = 2 // Design units plus contour point
	AnchorFormat3 AnchorFormat = 3 // Design units plus Device tables
)

// Anchor represents an attachment point on a glyph.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#anchor-tables
type Anchor struct {
	Format      AnchorFormat // Format identifier
	XCoordinate int16        // Horizontal value, in design units
	YCoordinate int16        // Vertical value, in design units
	AnchorPoint uint16       // Index to glyph contour point (Format 2 only)
	XDevice     Device       // Device table for X coordinate (Format 3 only)
	YDevice     Device       // Device table for Y coordinate (Format 3 only)
}

// ParseAnchor interprets b as an anchor table. Unknown formats yield the zero
// anchor.
func ParseAnchor(b binarySegm) Anchor {
	a := Anchor{Format: AnchorFormat(b.U16(0))}
	switch a.Format {
	case AnchorFormat1, AnchorFormat2, AnchorFormat3:
		a.XCoordinate, a.YCoordinate = b.I16(2), b.I16(4)
	default:
		return Anchor{}
	}
	switch a.Format {
	case AnchorFormat2:
		a.AnchorPoint = b.U16(6)
	case AnchorFormat3:
		a.XDevice = ParseDevice(b.offset16(6))
		a.YDevice = ParseDevice(b.offset16(8))
	}
	return a
}

func sanitizeAnchor(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 2) {
		return false
	}
	switch AnchorFormat(b.U16(0)) {
	case AnchorFormat1:
		return s.checkRange(b, 0, 6)
	case AnchorFormat2:
		return s.checkRange(b, 0, 8)
	case AnchorFormat3:
		return s.checkRange(b, 0, 10) &&
			s.offset16(b, 6, sanitizeDevice) &&
			s.offset16(b, 8, sanitizeDevice)
	}
	return true
}

// --- Sub-tables ------------------------------------------------------------

// sanitizeGPosDevices checks the value records and anchors of GPOS sub-tables
// of type single, pair and cursive.
func sanitizeGPosDevices(s *sanitizer, b binarySegm, lt LayoutTableLookupType) bool {
	switch lt {
	case GPosLookupTypeSingle:
		return sanitizeSinglePos(s, b)
	case GPosLookupTypePair:
		return sanitizePairPos(s, b)
	case GPosLookupTypeCursive:
		return sanitizeCursivePos(s, b)
	}
	return true
}

func sanitizeSinglePos(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 6) {
		return false
	}
	vf := ValueFormat(b.U16(4))
	switch b.U16(0) {
	case 1:
		return sanitizeValueRecords(s, b, 6, 1, vf, b)
	case 2:
		return s.checkRange(b, 6, 2) && sanitizeValueRecords(s, b, 8, int(b.U16(6)), vf, b)
	}
	return true
}

func sanitizePairPos(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 8) {
		return false
	}
	vf1, vf2 := ValueFormat(b.U16(4)), ValueFormat(b.U16(6))
	switch b.U16(0) {
	case 1:
		return s.offsetArray16(b, 8, b, func(s *sanitizer, ps binarySegm) bool {
			return sanitizePairSet(s, ps, vf1, vf2)
		})
	case 2:
		if !s.checkRange(b, 0, 16) ||
			!s.offset16(b, 8, sanitizeClassDef) || !s.offset16(b, 10, sanitizeClassDef) {
			return false
		}
		n, err := checkedMulInt(int(b.U16(12)), int(b.U16(14)))
		if err != nil {
			return false
		}
		return sanitizeRecordPairs(s, b, 16, n, vf1, vf2, 0, b)
	}
	return true
}

func sanitizePairSet(s *sanitizer, b binarySegm, vf1, vf2 ValueFormat) bool {
	if !s.checkRange(b, 0, 2) {
		return false
	}
	return sanitizeRecordPairs(s, b, 2, int(b.U16(0)), vf1, vf2, 2, b)
}

// sanitizeRecordPairs checks count records, each consisting of a prefix of
// prefix bytes and two value records.
func sanitizeRecordPairs(s *sanitizer, b binarySegm, at, count int, vf1, vf2 ValueFormat, prefix int, base binarySegm) bool {
	size := prefix + vf1.Size() + vf2.Size()
	if !s.checkArray(b, at, count, size) {
		return false
	}
	if !vf1.HasDevices() && !vf2.HasDevices() {
		return true
	}
	for i := 0; i < count; i++ {
		rec := at + i*size + prefix
		if !sanitizeValueRecordDevices(s, b, rec, vf1, base) ||
			!sanitizeValueRecordDevices(s, b, rec+vf1.Size(), vf2, base) {
			return false
		}
	}
	return true
}

func sanitizeCursivePos(s *sanitizer, b binarySegm) bool {
	if b.U16(0) != 1 {
		return true
	}
	if !s.checkArray16(b, 4, 4) {
		return false
	}
	for i := 0; i < int(b.U16(4)); i++ {
		at := 6 + 4*i
		if !s.offset16(b, at, sanitizeAnchor) || !s.offset16(b, at+2, sanitizeAnchor) {
			return false
		}
	}
	return true
}

// SingleValue returns the value record of a GPOS single adjustment sub-table
// for glyph g.
func (st LookupSubTable) SingleValue(g GlyphIndex) (ValueRecord, bool) {
	if st.kind != KindGPOS || st.Type != GPosLookupTypeSingle {
		return ValueRecord{}, false
	}
	inx := st.Coverage().Index(g)
	if inx == NotCovered {
		return ValueRecord{}, false
	}
	b := st.data
	vf := ValueFormat(b.U16(4))
	switch b.U16(0) {
	case 1:
		return parseValueRecord(vf, b.from(6), b), true
	case 2:
		recs := viewArray16(b, 6, vf.Size())
		if int(inx) >= recs.Len() {
			return ValueRecord{}, false
		}
		return parseValueRecord(vf, recs.Get(int(inx)), b), true
	}
	return ValueRecord{}, false
}

// CursiveAnchors returns entry and exit anchors of a GPOS cursive attachment
// sub-table for glyph g. Missing anchors have format 0.
func (st LookupSubTable) CursiveAnchors(g GlyphIndex) (entry, exit Anchor, ok bool) {
	if st.kind != KindGPOS || st.Type != GPosLookupTypeCursive || st.Format() != 1 {
		return
	}
	inx := st.Coverage().Index(g)
	if inx == NotCovered {
		return
	}
	recs := viewArray16(st.data, 4, 4)
	rec := recs.Get(int(inx))
	if rec == nil {
		return
	}
	entry = ParseAnchor(linkAt(st.data, rec.U16(0)))
	exit = ParseAnchor(linkAt(st.data, rec.U16(2)))
	return entry, exit, true
}

// CollectVariationIndices adds the variation indices of all device tables
// referenced by a GPOS sub-table to set. Sub-tables of other types than
// single, pair and cursive do not contribute.
func (st LookupSubTable) CollectVariationIndices(set *IndexSet) {
	if st.kind != KindGPOS {
		return
	}
	b := st.data
	switch st.Type {
	case GPosLookupTypeSingle:
		vf := ValueFormat(b.U16(4))
		if !vf.HasDevices() {
			return
		}
		switch b.U16(0) {
		case 1:
			parseValueRecord(vf, b.from(6), b).CollectVariationIndices(set)
		case 2:
			for _, rec := range viewArray16(b, 6, vf.Size()).All() {
				parseValueRecord(vf, rec, b).CollectVariationIndices(set)
			}
		}
	case GPosLookupTypePair:
		collectPairPosVariationIndices(b, set)
	case GPosLookupTypeCursive:
		if b.U16(0) != 1 {
			return
		}
		for _, rec := range viewArray16(b, 4, 4).All() {
			collectAnchorVariationIndices(linkAt(b, rec.U16(0)), set)
			collectAnchorVariationIndices(linkAt(b, rec.U16(2)), set)
		}
	}
}

func collectPairPosVariationIndices(b binarySegm, set *IndexSet) {
	vf1, vf2 := ValueFormat(b.U16(4)), ValueFormat(b.U16(6))
	if !vf1.HasDevices() && !vf2.HasDevices() {
		return
	}
	collect := func(recs array, prefix int, base binarySegm) {
		for _, rec := range recs.All() {
			parseValueRecord(vf1, rec.from(prefix), base).CollectVariationIndices(set)
			parseValueRecord(vf2, rec.from(prefix+vf1.Size()), base).CollectVariationIndices(set)
		}
	}
	size := vf1.Size() + vf2.Size()
	switch b.U16(0) {
	case 1:
		pairSets := viewArray16(b, 8, 2)
		for i := 0; i < pairSets.Len(); i++ {
			ps := pairSets.link(b, i)
			collect(viewArray16(ps, 0, 2+size), 2, ps)
		}
	case 2:
		n := int(b.U16(12)) * int(b.U16(14))
		collect(viewArray(b, 16, n, size), 0, b)
	}
}

func collectAnchorVariationIndices(b binarySegm, set *IndexSet) {
	if AnchorFormat(b.U16(0)) != AnchorFormat3 {
		return
	}
	ParseDevice(b.offset16(6)).CollectVariationIndices(set)
	ParseDevice(b.offset16(8)).CollectVariationIndices(set)
}

// linkAt resolves an Offset16 value relative to base.
func linkAt(base binarySegm, off uint16) binarySegm {
	if off == 0 {
		return nil
	}
	return base.from(int(off))
}

package ot

import "strconv"

// LayoutTableLookupFlag is a flag type for layout tables (GPOS and GSUB).
type LayoutTableLookupFlag uint16

// Lookup flags of layout tables (GPOS and GSUB)
const ( // LookupFlag bit enumeration
	// Note that the RIGHT_TO_LEFT flag is used only for GPOS type 3 lookups and is ignored
	// otherwise. It is not used by client software in determining text direction.
	LOOKUP_FLAG_RIGHT_TO_LEFT             LayoutTableLookupFlag = 0x0001
	LOOKUP_FLAG_IGNORE_BASE_GLYPHS        LayoutTableLookupFlag = 0x0002 // If set, skips over base glyphs
	LOOKUP_FLAG_IGNORE_LIGATURES          LayoutTableLookupFlag = 0x0004 // If set, skips over ligatures
	LOOKUP_FLAG_IGNORE_MARKS              LayoutTableLookupFlag = 0x0008 // If set, skips over all combining marks
	LOOKUP_FLAG_IGNORE_FLAGS              LayoutTableLookupFlag = 0x000E // All of the 'ignore' flags
	LOOKUP_FLAG_USE_MARK_FILTERING_SET    LayoutTableLookupFlag = 0x0010 // If set, the lookup table structure is followed by a MarkFilteringSet field.
	LOOKUP_FLAG_reserved                  LayoutTableLookupFlag = 0x00E0 // For future use (Set to zero)
	LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK LayoutTableLookupFlag = 0xFF00 // If not zero, skips over all marks of attachment type different from specified.
)

// MarkAttachmentType returns the mark attachment class of a lookup flag.
func (f LayoutTableLookupFlag) MarkAttachmentType() uint16 {
	return uint16(f&LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK) >> 8
}

// LayoutTableLookupType is a type identifier for layout lookup records (GPOS and GSUB).
// Enum values are different for GPOS and GSUB.
type LayoutTableLookupType uint16

// GSUB Lookup Type Enumeration
const (
	GSubLookupTypeSingle          LayoutTableLookupType = 1 // Replace one glyph with one glyph
	GSubLookupTypeMultiple        LayoutTableLookupType = 2 // Replace one glyph with more than one glyph
	GSubLookupTypeAlternate       LayoutTableLookupType = 3 // Replace one glyph with one of many glyphs
	GSubLookupTypeLigature        LayoutTableLookupType = 4 // Replace multiple glyphs with one glyph
	GSubLookupTypeContext         LayoutTableLookupType = 5 // Replace one or more glyphs in context
	GSubLookupTypeChainingContext LayoutTableLookupType = 6 // Replace one or more glyphs in chained context
	GSubLookupTypeExtensionSubs   LayoutTableLookupType = 7 // Extension mechanism for other substitutions
	GSubLookupTypeReverseChaining LayoutTableLookupType = 8 // Applied in reverse order, replace single glyph in chaining context
)

// GPOS Lookup Type Enumeration
const (
	GPosLookupTypeSingle            LayoutTableLookupType = 1 // Adjust position of a single glyph
	GPosLookupTypePair              LayoutTableLookupType = 2 // Adjust position of a pair of glyphs
	GPosLookupTypeCursive           LayoutTableLookupType = 3 // Attach cursive glyphs
	GPosLookupTypeMarkToBase        LayoutTableLookupType = 4 // Attach a combining mark to a base glyph
	GPosLookupTypeMarkToLigature    LayoutTableLookupType = 5 // Attach a combining mark to a ligature
	GPosLookupTypeMarkToMark        LayoutTableLookupType = 6 // Attach a combining mark to another mark
	GPosLookupTypeContextPos        LayoutTableLookupType = 7 // Position one or more glyphs in context
	GPosLookupTypeChainedContextPos LayoutTableLookupType = 8 // Position one or more glyphs in chained context
	GPosLookupTypeExtensionPos      LayoutTableLookupType = 9 // Extension mechanism for other positionings
)

const gsubLookupTypeNames = "Single|Multiple|Alternate|Ligature|Context|Chaining|Extension|Reverse"
const gposLookupTypeNames = "Single|Pair|Cursive|MarkToBase|MarkToLigature|MarkToMark|ContextPos|Chained|Ext"

var gsubLookupTypeInx = [...]int{0, 7, 16, 26, 35, 43, 52, 62, 70}
var gposLookupTypeInx = [...]int{0, 7, 12, 20, 31, 46, 57, 68, 76, 80}

// GSubString interprets a layout table lookup type as a GSUB table type.
func (lt LayoutTableLookupType) GSubString() string {
	if lt >= 1 && lt <= GSubLookupTypeReverseChaining {
		return gsubLookupTypeNames[gsubLookupTypeInx[lt-1] : gsubLookupTypeInx[lt]-1]
	}
	return strconv.Itoa(int(lt))
}

// GPosString interprets a layout table lookup type as a GPOS table type.
func (lt LayoutTableLookupType) GPosString() string {
	if lt >= 1 && lt <= GPosLookupTypeExtensionPos {
		return gposLookupTypeNames[gposLookupTypeInx[lt-1] : gposLookupTypeInx[lt]-1]
	}
	return strconv.Itoa(int(lt))
}

// LayoutKind tells GSUB and GPOS apart. Lookup types are numbered differently
// for both tables.
type LayoutKind uint8

const (
	KindGSUB LayoutKind = iota
	KindGPOS
)

func (k LayoutKind) String() string {
	if k == KindGPOS {
		return "GPOS"
	}
	return "GSUB"
}

// extensionType is the lookup type for extension sub-tables.
func (k LayoutKind) extensionType() LayoutTableLookupType {
	if k == KindGPOS {
		return GPosLookupTypeExtensionPos
	}
	return GSubLookupTypeExtensionSubs
}

// isContextual is true for (chained) contextual lookup types.
func (k LayoutKind) isContextual(lt LayoutTableLookupType) (contextual, chained bool) {
	if k == KindGPOS {
		return lt == GPosLookupTypeContextPos || lt == GPosLookupTypeChainedContextPos,
			lt == GPosLookupTypeChainedContextPos
	}
	return lt == GSubLookupTypeContext || lt == GSubLookupTypeChainingContext,
		lt == GSubLookupTypeChainingContext
}

// --- LookupList ------------------------------------------------------------

// LookupList is the list of lookups of a GSUB or GPOS table.
type LookupList struct {
	b       binarySegm
	kind    LayoutKind
	offsets array
}

func viewLookupList(b binarySegm, kind LayoutKind) LookupList {
	return LookupList{b: b, kind: kind, offsets: viewArray16(b, 0, 2)}
}

func sanitizeLookupList(kind LayoutKind) sanitizeFunc {
	return func(s *sanitizer, b binarySegm) bool {
		check := func(s *sanitizer, lb binarySegm) bool {
			return sanitizeLookup(s, lb, kind)
		}
		return s.offsetArray16(b, 0, b, check)
	}
}

// Count returns the number of lookups.
func (ll LookupList) Count() int {
	return ll.offsets.Len()
}

// Lookup returns lookup i. Out-of-range indices yield an empty lookup.
func (ll LookupList) Lookup(i int) Lookup {
	off := int(ll.offsets.U16(i))
	if off == 0 {
		return Lookup{kind: ll.kind}
	}
	return viewLookup(ll.b.from(off), ll.kind)
}

// --- Lookup ----------------------------------------------------------------

// Lookup is a lookup table: a lookup type, lookup flags and a list of
// sub-tables, all of the same lookup type.
type Lookup struct {
	b         binarySegm
	kind      LayoutKind
	subtables array
}

func viewLookup(b binarySegm, kind LayoutKind) Lookup {
	if len(b) < 6 {
		return Lookup{kind: kind}
	}
	return Lookup{b: b, kind: kind, subtables: viewArray16(b, 4, 2)}
}

func sanitizeLookup(s *sanitizer, b binarySegm, kind LayoutKind) bool {
	if !s.checkRange(b, 0, 4) || !s.checkArray16(b, 4, 2) {
		return false
	}
	count := int(b.U16(4))
	if !s.visitSubTables(count) {
		return false
	}
	if LayoutTableLookupFlag(b.U16(2))&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		if !s.checkRange(b, 6+2*count, 2) {
			return false
		}
	}
	lookupType := LayoutTableLookupType(b.U16(0))
	check := sanitizeSubTable(kind, lookupType)
	for i := 0; i < count; i++ {
		if !s.offset16(b, 6+2*i, check) {
			return false
		}
	}
	if lookupType == kind.extensionType() && s.edits == 0 {
		// all extension sub-tables must share the same extension type
		l := viewLookup(b, kind)
		first := l.extensionTypeOf(0)
		for i := 1; i < count; i++ {
			if l.extensionTypeOf(i) != first {
				tracer().Debugf("%s extension lookup with mixed sub-table types", kind)
				return false
			}
		}
	}
	return true
}

// IsEmpty is true for an absent lookup.
func (l Lookup) IsEmpty() bool {
	return len(l.b) == 0
}

// Kind tells whether the lookup is from a GSUB or a GPOS table.
func (l Lookup) Kind() LayoutKind {
	return l.kind
}

// Type returns the lookup type, as stated in the lookup table. For extension
// lookups this is the extension type, see ResolvedType.
func (l Lookup) Type() LayoutTableLookupType {
	return LayoutTableLookupType(l.b.U16(0))
}

// ResolvedType returns the lookup type with extensions resolved.
func (l Lookup) ResolvedType() LayoutTableLookupType {
	lt := l.Type()
	if lt == l.kind.extensionType() && l.SubTableCount() > 0 {
		return l.extensionTypeOf(0)
	}
	return lt
}

// Flag returns the lookup flags.
func (l Lookup) Flag() LayoutTableLookupFlag {
	return LayoutTableLookupFlag(l.b.U16(2))
}

// SubTableCount returns the number of sub-tables.
func (l Lookup) SubTableCount() int {
	return l.subtables.Len()
}

// MarkFilteringSet returns the index of the mark glyph set to use, if the
// lookup flag LOOKUP_FLAG_USE_MARK_FILTERING_SET is set. Otherwise 0 is
// returned.
func (l Lookup) MarkFilteringSet() uint16 {
	if l.Flag()&LOOKUP_FLAG_USE_MARK_FILTERING_SET == 0 {
		return 0
	}
	return l.b.U16(6 + 2*l.subtables.Len())
}

// Props returns the lookup flags in the lower 16 bits and, if the lookup uses a
// mark filtering set, the mark filtering set index in the upper 16 bits.
func (l Lookup) Props() uint32 {
	flag := uint32(l.Flag())
	if l.Flag()&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		flag |= uint32(l.MarkFilteringSet()) << 16
	}
	return flag
}

// SubTable returns sub-table i, with extensions resolved.
func (l Lookup) SubTable(i int) LookupSubTable {
	off := int(l.subtables.U16(i))
	if off == 0 {
		return LookupSubTable{kind: l.kind}
	}
	st := l.b.from(off)
	lt := l.Type()
	if lt == l.kind.extensionType() {
		if st.U16(0) != 1 {
			return LookupSubTable{kind: l.kind}
		}
		lt = LayoutTableLookupType(st.U16(2))
		st = st.offset32(4)
	}
	return LookupSubTable{Type: lt, data: st, kind: l.kind}
}

// extensionTypeOf returns the extension lookup type of sub-table i.
func (l Lookup) extensionTypeOf(i int) LayoutTableLookupType {
	off := int(l.subtables.U16(i))
	if off == 0 {
		return 0
	}
	ext := l.b.from(off)
	if ext.U16(0) != 1 { // only extension format 1 is defined
		return 0
	}
	return LayoutTableLookupType(ext.U16(2))
}

// SubTableDispatcher is applied to the sub-tables of a lookup.
type SubTableDispatcher interface {
	// DispatchSubTable is called for every sub-table of a lookup, in order.
	// Returning true stops the iteration over the lookup's sub-tables.
	DispatchSubTable(st LookupSubTable) (stop bool)
}

// DispatcherFunc adapts a function to a SubTableDispatcher.
type DispatcherFunc func(LookupSubTable) bool

// DispatchSubTable calls f(st).
func (f DispatcherFunc) DispatchSubTable(st LookupSubTable) bool {
	return f(st)
}

// Dispatch applies d to every sub-table of the lookup, until d signals to stop.
// It returns true if d has stopped the iteration.
func (l Lookup) Dispatch(d SubTableDispatcher) bool {
	for i := 0; i < l.SubTableCount(); i++ {
		st := l.SubTable(i)
		if st.IsEmpty() {
			continue
		}
		if d.DispatchSubTable(st) {
			return true
		}
	}
	return false
}

// --- Lookup sub-tables -----------------------------------------------------

// LookupSubTable is a view onto a lookup sub-table. Package ot does not
// interpret sub-tables beyond their primary coverage and, for GPOS, their
// device tables.
type LookupSubTable struct {
	Type LayoutTableLookupType // lookup type, with extensions resolved
	data binarySegm
	kind LayoutKind
}

// IsEmpty is true for an absent sub-table.
func (st LookupSubTable) IsEmpty() bool {
	return len(st.data) == 0
}

// Kind tells whether the sub-table is from a GSUB or a GPOS table.
func (st LookupSubTable) Kind() LayoutKind {
	return st.kind
}

// Format returns the format of the sub-table.
func (st LookupSubTable) Format() uint16 {
	return st.data.U16(0)
}

// Bytes returns the raw bytes of the sub-table.
func (st LookupSubTable) Bytes() []byte {
	return st.data
}

// Coverage returns the primary coverage of the sub-table, i.e. the coverage
// of the glyph a lookup starts matching at. For contextual format 3
// sub-tables this is the coverage of the first input glyph.
func (st LookupSubTable) Coverage() Coverage {
	return ParseCoverage(primaryCoverage(st.data, st.kind, st.Type))
}

// primaryCoverage locates the primary coverage table of a sub-table.
func primaryCoverage(b binarySegm, kind LayoutKind, lt LayoutTableLookupType) binarySegm {
	if contextual, chained := kind.isContextual(lt); contextual && b.U16(0) == 3 {
		at := contextFormat3InputAt(b, chained)
		if at < 0 {
			return nil
		}
		return b.offset16(at)
	}
	return b.offset16(2)
}

// contextFormat3InputAt returns the byte position of the first input coverage
// offset of a (chained) context format 3 sub-table, or -1.
func contextFormat3InputAt(b binarySegm, chained bool) int {
	if !chained { // format, glyphCount, seqLookupCount, coverages[glyphCount]
		if b.U16(2) == 0 {
			return -1
		}
		return 6
	}
	// format, backtrackCount, backtrack[], inputCount, input[]
	at := 4 + 2*int(b.U16(2))
	if b.U16(at) == 0 {
		return -1
	}
	return at + 2
}

// sanitizeSubTable returns a sanitizing function for sub-tables of a lookup
// type. Sub-tables are checked for their primary coverage. Extension
// sub-tables are followed; GPOS sub-tables are additionally checked for their
// device tables.
func sanitizeSubTable(kind LayoutKind, lt LayoutTableLookupType) sanitizeFunc {
	return func(s *sanitizer, b binarySegm) bool {
		if !s.checkRange(b, 0, 2) {
			return false
		}
		if lt == kind.extensionType() {
			if b.U16(0) != 1 {
				return true
			}
			if !s.checkRange(b, 0, 8) {
				return false
			}
			extType := LayoutTableLookupType(b.U16(2))
			if extType == kind.extensionType() {
				return false
			}
			return s.offset32(b, 4, sanitizeSubTable(kind, extType))
		}
		if contextual, chained := kind.isContextual(lt); contextual && b.U16(0) == 3 {
			return sanitizeContextFormat3(s, b, chained)
		}
		if !s.checkRange(b, 0, 4) || !s.offset16(b, 2, sanitizeCoverage) {
			return false
		}
		if kind == KindGPOS {
			return sanitizeGPosDevices(s, b, lt)
		}
		return true
	}
}

// sanitizeContextFormat3 checks the coverage arrays of a (chained) context
// format 3 sub-table.
func sanitizeContextFormat3(s *sanitizer, b binarySegm, chained bool) bool {
	if !chained {
		if !s.checkRange(b, 0, 6) || !s.checkArray(b, 6, int(b.U16(2)), 2) {
			return false
		}
		for i := 0; i < int(b.U16(2)); i++ {
			if !s.offset16(b, 6+2*i, sanitizeCoverage) {
				return false
			}
		}
		return true
	}
	at := 2
	for k := 0; k < 3; k++ { // backtrack, input, lookahead
		if !s.checkArray16(b, at, 2) {
			return false
		}
		n := int(b.U16(at))
		for i := 0; i < n; i++ {
			if !s.offset16(b, at+2+2*i, sanitizeCoverage) {
				return false
			}
		}
		at += 2 + 2*n
	}
	return true
}

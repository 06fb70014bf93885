package ot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"slices"
)

// Font represents the internal structure of an OpenType font.
// It is used to navigate properties of a font for typesetting tasks.
//
// We only support OpenType fonts with advanced layout, i.e. fonts containing tables
// GSUB, GPOS, etc., and variable fonts with tables fvar, HVAR, VVAR and MVAR.
type Font struct {
	Header        *FontHeader
	tables        map[Tag]Table
	Head          *HeadTable       // typed access to head
	MaxP          *MaxPTable       // typed access to maxp
	HHea          *HHeaTable       // typed access to hhea
	HMtx          *HMtxTable       // typed access to hmtx
	VHea          *HHeaTable       // typed access to vhea, may be nil
	VMtx          *HMtxTable       // typed access to vmtx, may be nil
	OS2           *OS2Table        // typed access to OS/2
	Loca          *LocaTable       // typed access to loca, nil for CFF fonts
	VOrg          *VOrgTable       // typed access to VORG, may be nil
	FVar          *FVarTable       // typed access to fvar, nil for static fonts
	HVar          *MetricsVarTable // typed access to HVAR, may be nil
	VVar          *MetricsVarTable // typed access to VVAR, may be nil
	MVar          *MVarTable       // typed access to MVAR, may be nil
	parseErrors   []FontError      // errors accumulated during parsing
	parseWarnings []FontWarning    // warnings accumulated during parsing
	parseOptions  []ParseOption    // options to guide the parsing process
	Layout        struct {         // OpenType core layout tables
		GSub         *LayoutTable // OpenType layout GSUB
		GPos         *LayoutTable // OpenType layout GPOS
		GDef         *GDefTable   // OpenType layout GDEF
		Requirements LayoutRequirements
	}
}

// ParseOption guides and influences the parsing of the font.
type ParseOption int

const (
	IsTestfont ParseOption = iota // relaxes checks for required tables
	NoEdits                       // tables needing corrections are dropped instead
)

// FontHeader is a directory of the top-level tables in a font.
//
// OpenType fonts that contain TrueType outlines should use the value of 0x00010000
// for the FontType. OpenType fonts containing CFF data (version 1 or 2) should
// use 0x4F54544F ('OTTO', when re-interpreted as a Tag).
type FontHeader struct {
	FontType      uint32
	TableCount    uint16
	SearchRange   uint16
	EntrySelector uint16
	RangeShift    uint16
}

// Table is the base interface for all OpenType tables of a font.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; should be treated as read-only by clients
	Self() TableSelf          // reference to itself
}

type tableBase struct {
	data   binarySegm // a table is a slice of font data
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
	self   any
}

// Extent returns offset and byte size of this table within the OpenType font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treated as read-only by
// clients, as it is a view into the original data. Tables which have been
// corrected during sanitizing return their private copy.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

type genericTable struct {
	tableBase
}

func newTable(tag Tag, b binarySegm, offset, size uint32) *genericTable {
	t := &genericTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// TableSelf is a reference to a table. Its primary use is for converting
// a generic table to a concrete table flavour, and for reproducing the
// name tag of a table.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	if tself.tableBase == nil {
		return 0
	}
	return tself.tableBase.name
}

func safeSelf(tself TableSelf) any {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return nil
	}
	return tself.tableBase.self
}

// AsLayout returns this table as a GSUB or GPOS table, or nil.
func (tself TableSelf) AsLayout() *LayoutTable {
	t, _ := safeSelf(tself).(*LayoutTable)
	return t
}

// AsGDef returns this table as a GDEF table, or nil.
func (tself TableSelf) AsGDef() *GDefTable {
	t, _ := safeSelf(tself).(*GDefTable)
	return t
}

// AsMetricsVar returns this table as a HVAR or VVAR table, or nil.
func (tself TableSelf) AsMetricsVar() *MetricsVarTable {
	t, _ := safeSelf(tself).(*MetricsVarTable)
	return t
}

// AsMVar returns this table as a MVAR table, or nil.
func (tself TableSelf) AsMVar() *MVarTable {
	t, _ := safeSelf(tself).(*MVarTable)
	return t
}

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable {
	t, _ := safeSelf(tself).(*HeadTable)
	return t
}

// AsHHea returns this table as a hhea or vhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable {
	t, _ := safeSelf(tself).(*HHeaTable)
	return t
}

// AsHMtx returns this table as a hmtx or vmtx table, or nil.
func (tself TableSelf) AsHMtx() *HMtxTable {
	t, _ := safeSelf(tself).(*HMtxTable)
	return t
}

// --- Font access -----------------------------------------------------------

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned. Tables which failed sanitizing are
// not accessible.
//
// Table tag names are case-sensitive, following the names in the OpenType specification:
//
//	loca := otf.Table(ot.T("loca"))
func (otf *Font) Table(tag Tag) Table {
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// TableTags returns a sorted list of all tables available in the font.
func (otf *Font) TableTags() []Tag {
	tags := make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Errors returns all errors collected while parsing the font.
func (otf *Font) Errors() []FontError {
	return otf.parseErrors
}

// Warnings returns all warnings collected while parsing the font.
func (otf *Font) Warnings() []FontWarning {
	return otf.parseWarnings
}

// CriticalErrors returns the errors of severity SeverityCritical.
func (otf *Font) CriticalErrors() []FontError {
	var errs []FontError
	for _, e := range otf.parseErrors {
		if e.Severity == SeverityCritical {
			errs = append(errs, e)
		}
	}
	return errs
}

// HasCriticalErrors is true if the font has critical errors.
func (otf *Font) HasCriticalErrors() bool {
	return len(otf.CriticalErrors()) > 0
}

// UnitsPerEm returns the design units per em, or 1000 for fonts without a
// usable 'head' table.
func (otf *Font) UnitsPerEm() uint16 {
	if otf.Head == nil || otf.Head.UnitsPerEm < 16 || otf.Head.UnitsPerEm > 16384 {
		return 1000
	}
	return otf.Head.UnitsPerEm
}

// NumGlyphs returns the number of glyphs in the font, as stated by 'maxp'.
func (otf *Font) NumGlyphs() int {
	if otf.MaxP == nil {
		return 0
	}
	return otf.MaxP.NumGlyphs
}

// hasOption is true if opt has been passed to Parse.
func (otf *Font) hasOption(opt ParseOption) bool {
	return slices.Contains(otf.parseOptions, opt)
}

// --- Parsing ---------------------------------------------------------------

// Parse parses an OpenType font from a byte slice.
// An ot.Font needs ongoing access to the fonts byte-data after the Parse function returns.
// Its elements are assumed immutable while the ot.Font remains in use.
//
// Tables which fail sanitizing are dropped from the font and reported as errors
// of severity SeverityMajor. Parse returns an error wrapping ErrFontFormat only
// for fonts which are unusable altogether.
func Parse(font []byte, opts ...ParseOption) (*Font, error) {
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	r := bytes.NewReader(font)
	h := FontHeader{}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrFontFormat, err)
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())

	ec := &errorCollector{}
	if !(h.FontType == 0x4f54544f || // OTTO
		h.FontType == 0x00010000 || // TrueType
		h.FontType == 0x74727565) { // true
		ec.addError(0, "Header", fmt.Sprintf("font type not supported: %x", h.FontType), SeverityCritical, 0)
		return nil, ec.critical()
	}
	otf := &Font{Header: &h, tables: make(map[Tag]Table), parseOptions: opts}
	src := binarySegm(font)
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	buf, err := src.view(12, 16*int(h.TableCount))
	if err != nil {
		ec.addError(0, "TableRecords", "table record entries", SeverityCritical, 12)
		return nil, ec.critical()
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			ec.addError(0, "TableRecords", "table order", SeverityCritical, 12)
			return nil, ec.critical()
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // ignore checksums, but "all tables must begin on four byte boundaries".
			ec.addError(tag, "Offset", "invalid table offset", SeverityCritical, off)
			return nil, ec.critical()
		}
		if uint64(off)+uint64(size) > uint64(len(src)) || uint64(off)+uint64(size) > math.MaxUint32 {
			ec.addError(tag, "Bounds", fmt.Sprintf("bounds [%d:%d] exceed font size %d",
				off, uint64(off)+uint64(size), len(src)), SeverityCritical, off)
			return nil, ec.critical()
		}
		if t := otf.parseTable(tag, src[off:off+size], off, size, ec); t != nil {
			otf.tables[tag] = t
		}
	}
	otf.linkTables(ec)
	otf.extractLayoutInfo(ec)
	otf.parseErrors = ec.errors
	otf.parseWarnings = ec.warnings
	if err := ec.critical(); err != nil {
		return nil, err
	}
	return otf, nil
}

// parseTable creates a table for tag. Tables with lookups, variation data or
// other nested offsets are sanitized first; a table which fails sanitizing is
// reported and nil is returned.
func (otf *Font) parseTable(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) Table {
	var err error
	switch tag {
	case T("head"):
		if otf.Head, err = newHeadTable(tag, b, offset, size); err == nil {
			return otf.Head
		}
	case T("maxp"):
		if otf.MaxP, err = newMaxPTable(tag, b, offset, size); err == nil {
			return otf.MaxP
		}
	case T("hhea"):
		if otf.HHea, err = newHHeaTable(tag, b, offset, size); err == nil {
			return otf.HHea
		}
	case T("vhea"):
		if otf.VHea, err = newHHeaTable(tag, b, offset, size); err == nil {
			return otf.VHea
		}
	case T("OS/2"):
		if otf.OS2, err = newOS2Table(tag, b, offset, size); err == nil {
			return otf.OS2
		}
	case T("hmtx"):
		otf.HMtx = newHMtxTable(tag, b, offset, size)
		return otf.HMtx
	case T("vmtx"):
		otf.VMtx = newHMtxTable(tag, b, offset, size)
		return otf.VMtx
	case T("loca"):
		otf.Loca = newLocaTable(tag, b, offset, size)
		return otf.Loca
	case T("GSUB"), T("GPOS"):
		kind := KindGSUB
		if tag == T("GPOS") {
			kind = KindGPOS
		}
		if data, ok := otf.sanitized(tag, b, offset, sanitizeLayoutTable(kind), ec); ok {
			t := newLayoutTable(tag, data, offset, size, kind)
			if kind == KindGSUB {
				otf.Layout.GSub = t
			} else {
				otf.Layout.GPos = t
			}
			return t
		}
		return nil
	case T("GDEF"):
		if data, ok := otf.sanitized(tag, b, offset, sanitizeGDef, ec); ok {
			otf.Layout.GDef = newGDefTable(tag, data, offset, size)
			return otf.Layout.GDef
		}
		return nil
	case T("HVAR"), T("VVAR"):
		if data, ok := otf.sanitized(tag, b, offset, sanitizeMetricsVar(tag == T("VVAR")), ec); ok {
			t := newMetricsVarTable(tag, data, offset, size)
			if tag == T("HVAR") {
				otf.HVar = t
			} else {
				otf.VVar = t
			}
			return t
		}
		return nil
	case T("MVAR"):
		if data, ok := otf.sanitized(tag, b, offset, sanitizeMVar, ec); ok {
			otf.MVar = newMVarTable(tag, data, offset, size)
			return otf.MVar
		}
		return nil
	case T("VORG"):
		if data, ok := otf.sanitized(tag, b, offset, sanitizeVOrg, ec); ok {
			otf.VOrg = newVOrgTable(tag, data, offset, size)
			return otf.VOrg
		}
		return nil
	case T("fvar"):
		if data, ok := otf.sanitized(tag, b, offset, sanitizeFVar, ec); ok {
			otf.FVar = newFVarTable(tag, data, offset, size)
			return otf.FVar
		}
		return nil
	default:
		return newTable(tag, b, offset, size)
	}
	ec.addError(tag, "Header", err.Error(), SeverityMajor, offset)
	return nil
}

func (otf *Font) sanitized(tag Tag, b binarySegm, offset uint32, check sanitizeFunc, ec *errorCollector) (binarySegm, bool) {
	data, ok := sanitizeTable(tag, b, check, !otf.hasOption(NoEdits))
	if !ok {
		ec.addError(tag, "Sanitize", "table failed sanitizing", SeverityMajor, offset)
		return nil, false
	}
	if len(data) > 0 && len(b) > 0 && &data[0] != &b[0] {
		ec.addWarning(tag, "table has been corrected", offset)
	}
	return data, true
}

// linkTables connects tables which cannot be interpreted in isolation.
func (otf *Font) linkTables(ec *errorCollector) {
	if otf.Head == nil || otf.MaxP == nil {
		if !otf.hasOption(IsTestfont) {
			ec.addError(T("head"), "Missing", "missing required table head or maxp", SeverityCritical, 0)
		}
		return
	}
	numGlyphs := otf.MaxP.NumGlyphs
	if otf.HMtx != nil {
		if otf.HHea == nil {
			ec.addError(T("hmtx"), "Link", "hmtx without hhea", SeverityMajor, otf.HMtx.offset)
			otf.dropTable(T("hmtx"))
			otf.HMtx = nil
		} else if err := otf.HMtx.link(numGlyphs, otf.HHea.NumberOfLongMetrics); err != nil {
			ec.addError(T("hmtx"), "Link", err.Error(), SeverityMajor, otf.HMtx.offset)
			otf.dropTable(T("hmtx"))
			otf.HMtx = nil
		}
	}
	if otf.VMtx != nil {
		if otf.VHea == nil {
			ec.addError(T("vmtx"), "Link", "vmtx without vhea", SeverityMajor, otf.VMtx.offset)
			otf.dropTable(T("vmtx"))
			otf.VMtx = nil
		} else if err := otf.VMtx.link(numGlyphs, otf.VHea.NumberOfLongMetrics); err != nil {
			ec.addError(T("vmtx"), "Link", err.Error(), SeverityMajor, otf.VMtx.offset)
			otf.dropTable(T("vmtx"))
			otf.VMtx = nil
		}
	}
	if otf.Loca != nil {
		otf.Loca.long = otf.Head.IndexToLocFormat == 1
		otf.Loca.locCnt = numGlyphs + 1
		entrySize := 2
		if otf.Loca.long {
			entrySize = 4
		}
		if otf.Loca.locCnt*entrySize > len(otf.Loca.data) {
			otf.Loca.locCnt = len(otf.Loca.data) / entrySize
			ec.addWarning(T("loca"), "table is shorter than glyph count", otf.Loca.offset)
		}
	}
}

func (otf *Font) dropTable(tag Tag) {
	delete(otf.tables, tag)
}

// extractLayoutInfo collects layout requirements and checks them against GDEF.
// Lookups referring to missing GDEF sub-tables still work, but will match more
// glyphs than intended.
func (otf *Font) extractLayoutInfo(ec *errorCollector) {
	otf.Layout.Requirements = LayoutRequirements{}
	if otf.Layout.GSub != nil {
		otf.Layout.Requirements.Merge(otf.Layout.GSub.Requirements())
	}
	if otf.Layout.GPos != nil {
		otf.Layout.Requirements.Merge(otf.Layout.GPos.Requirements())
	}
	req := otf.Layout.Requirements
	gdef := otf.Layout.GDef
	if req.NeedGlyphClassDef && !gdef.HasGlyphClasses() {
		ec.addWarning(T("GDEF"), "lookup flags require glyph classes", 0)
	}
	if req.NeedMarkAttachClassDef && gdef.MarkAttachClassDef().Format() == 0 {
		ec.addWarning(T("GDEF"), "lookup flags require mark attachment classes", 0)
	}
	if req.NeedMarkGlyphSets && gdef.MarkGlyphSets().Count() == 0 {
		ec.addWarning(T("GDEF"), "lookup flags require mark glyph sets", 0)
	}
}

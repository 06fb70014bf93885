package ot

/*
From https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2:

OpenType Layout consists of five tables: the Glyph Substitution table (GSUB),
the Glyph Positioning table (GPOS), the Baseline table (BASE),
the Justification table (JSTF), and the Glyph Definition table (GDEF).
These tables use some of the same data formats.
*/

// --- Layout tables ---------------------------------------------------------

// LayoutTable is a GSUB or GPOS table. Both share the same header, pointing
// to a ScriptList, a FeatureList, a LookupList and, from version 1.1 on,
// a FeatureVariations table.
//
//	uint16    majorVersion
//	uint16    minorVersion
//	Offset16  scriptListOffset
//	Offset16  featureListOffset
//	Offset16  lookupListOffset
//	Offset32  featureVariationsOffset   (version 1.1)
type LayoutTable struct {
	tableBase
	kind LayoutKind
}

func newLayoutTable(tag Tag, b binarySegm, offset, size uint32, kind LayoutKind) *LayoutTable {
	t := &LayoutTable{kind: kind}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// sanitizeLayoutTable returns the sanitizing function for a GSUB or GPOS
// table.
func sanitizeLayoutTable(kind LayoutKind) sanitizeFunc {
	return func(s *sanitizer, b binarySegm) bool {
		if !s.checkRange(b, 0, 10) || b.U16(0) != 1 {
			tracer().Debugf("%s: unsupported header", kind)
			return false
		}
		if !s.offset16(b, 4, sanitizeScriptList) ||
			!s.offset16(b, 6, sanitizeFeatureList) ||
			!s.offset16(b, 8, sanitizeLookupList(kind)) {
			return false
		}
		if b.U16(2) >= 1 {
			return s.offset32(b, 10, sanitizeFeatureVariations)
		}
		return true
	}
}

// Kind tells GSUB and GPOS apart.
func (t *LayoutTable) Kind() LayoutKind {
	return t.kind
}

// Version returns major and minor version of the table.
func (t *LayoutTable) Version() (int, int) {
	return int(t.data.U16(0)), int(t.data.U16(2))
}

// ScriptList returns the table's script list.
func (t *LayoutTable) ScriptList() ScriptList {
	if t == nil {
		return ScriptList{}
	}
	return viewScriptList(t.data.offset16(4))
}

// FeatureList returns the table's feature list.
func (t *LayoutTable) FeatureList() FeatureList {
	if t == nil {
		return FeatureList{}
	}
	return viewFeatureList(t.data.offset16(6))
}

// LookupList returns the table's lookup list.
func (t *LayoutTable) LookupList() LookupList {
	if t == nil {
		return LookupList{}
	}
	return viewLookupList(t.data.offset16(8), t.kind)
}

// FeatureVariations returns the table's feature variations. Tables of
// version 1.0 have none.
func (t *LayoutTable) FeatureVariations() FeatureVariations {
	if t == nil || t.data.U16(2) < 1 {
		return FeatureVariations{}
	}
	return viewFeatureVariations(t.data.offset32(10))
}

// FindVariationsIndex returns the index of the feature variation record
// matching coords, or NotFoundIndex.
func (t *LayoutTable) FindVariationsIndex(coords []F2Dot14) uint32 {
	return t.FeatureVariations().FindIndex(coords)
}

// Feature returns feature i of the feature list. If varIndex is a valid
// feature variations index and the variation record substitutes feature i,
// the alternate feature is returned instead.
func (t *LayoutTable) Feature(i int, varIndex uint32) Feature {
	fl := t.FeatureList()
	if varIndex != NotFoundIndex {
		if f, ok := t.FeatureVariations().FindSubstitute(varIndex, uint32(i)); ok {
			f.tag = fl.TagAt(i)
			return f
		}
	}
	return fl.Feature(i)
}

// Lookup returns lookup i of the lookup list.
func (t *LayoutTable) Lookup(i int) Lookup {
	return t.LookupList().Lookup(i)
}

// Requirements returns the GDEF sub-tables the table's lookups depend on.
func (t *LayoutTable) Requirements() LayoutRequirements {
	var r LayoutRequirements
	ll := t.LookupList()
	for i := 0; i < ll.Count(); i++ {
		r.AddFromLookupFlag(ll.Lookup(i).Flag())
	}
	return r
}

// LayoutRequirements collects GDEF sub-table requirements implied by lookup flags.
type LayoutRequirements struct {
	NeedGlyphClassDef      bool
	NeedMarkAttachClassDef bool
	NeedMarkGlyphSets      bool
}

// AddFromLookupFlag updates requirements based on a lookup's flag bits.
func (r *LayoutRequirements) AddFromLookupFlag(flag LayoutTableLookupFlag) {
	if flag&LOOKUP_FLAG_IGNORE_FLAGS != 0 {
		r.NeedGlyphClassDef = true
	}
	if flag&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		r.NeedMarkGlyphSets = true
	}
	if flag&LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK != 0 {
		r.NeedMarkAttachClassDef = true
	}
}

// Merge combines requirements from another layout table.
func (r *LayoutRequirements) Merge(other LayoutRequirements) {
	r.NeedGlyphClassDef = r.NeedGlyphClassDef || other.NeedGlyphClassDef
	r.NeedMarkAttachClassDef = r.NeedMarkAttachClassDef || other.NeedMarkAttachClassDef
	r.NeedMarkGlyphSets = r.NeedMarkGlyphSets || other.NeedMarkGlyphSets
}

package otbuild

// Layout describes a GSUB or GPOS table.
type Layout struct {
	Scripts           []Script
	Features          []Feature
	Lookups           []Lookup
	FeatureVariations []byte // creates a version 1.1 table if set
}

// Script is a script record with its language systems.
type Script struct {
	Tag     string
	Default *LangSys
	Langs   []Lang
}

// Lang is a language system record of a script.
type Lang struct {
	Tag     string
	LangSys LangSys
}

// LangSys lists the features of a language system. Required is 0xFFFF if
// there is no required feature.
type LangSys struct {
	Required uint16
	Features []uint16
}

// Feature is a feature record.
type Feature struct {
	Tag     string
	Lookups []uint16
	Params  []byte
}

// Lookup is a lookup table. MarkFilteringSet is written if the flag asks for it.
type Lookup struct {
	Type             uint16
	Flag             uint16
	SubTables        [][]byte
	MarkFilteringSet uint16
}

// Bytes returns the binary table.
func (l Layout) Bytes() []byte {
	w := &Writer{}
	if l.FeatureVariations != nil {
		w.U16(1, 1, 0, 0, 0).U32(0)
	} else {
		w.U16(1, 0, 0, 0, 0)
	}
	w.Link16(4, 0, ScriptList(l.Scripts...))
	w.Link16(6, 0, FeatureList(l.Features...))
	w.Link16(8, 0, LookupList(l.Lookups...))
	if l.FeatureVariations != nil {
		w.Link32(10, 0, l.FeatureVariations)
	}
	return w.Bytes()
}

// ScriptList returns a script list table.
func ScriptList(scripts ...Script) []byte {
	w := &Writer{}
	w.U16(uint16(len(scripts)))
	for _, s := range scripts {
		w.Tag(s.Tag).U16(0)
	}
	for i, s := range scripts {
		w.Link16(2+6*i+4, 0, scriptTable(s))
	}
	return w.Bytes()
}

func scriptTable(s Script) []byte {
	w := &Writer{}
	w.U16(0, uint16(len(s.Langs)))
	for _, l := range s.Langs {
		w.Tag(l.Tag).U16(0)
	}
	if s.Default != nil {
		w.Link16(0, 0, langSysTable(*s.Default))
	}
	for i, l := range s.Langs {
		w.Link16(4+6*i+4, 0, langSysTable(l.LangSys))
	}
	return w.Bytes()
}

func langSysTable(ls LangSys) []byte {
	w := &Writer{}
	w.U16(0, ls.Required, uint16(len(ls.Features))).U16(ls.Features...)
	return w.Bytes()
}

// FeatureList returns a feature list table.
func FeatureList(features ...Feature) []byte {
	w := &Writer{}
	w.U16(uint16(len(features)))
	for _, f := range features {
		w.Tag(f.Tag).U16(0)
	}
	for i, f := range features {
		w.Link16(2+6*i+4, 0, FeatureTable(f.Lookups, f.Params))
	}
	return w.Bytes()
}

// FeatureTable returns a feature table with optional feature parameters.
func FeatureTable(lookups []uint16, params []byte) []byte {
	w := &Writer{}
	w.U16(0, uint16(len(lookups))).U16(lookups...)
	w.Link16(0, 0, params)
	return w.Bytes()
}

// LookupList returns a lookup list table.
func LookupList(lookups ...Lookup) []byte {
	w := &Writer{}
	w.U16(uint16(len(lookups)))
	w.Zeros(2 * len(lookups))
	for i, l := range lookups {
		w.Link16(2+2*i, 0, lookupTable(l))
	}
	return w.Bytes()
}

func lookupTable(l Lookup) []byte {
	w := &Writer{}
	w.U16(l.Type, l.Flag, uint16(len(l.SubTables)))
	w.Zeros(2 * len(l.SubTables))
	if l.Flag&0x0010 != 0 {
		w.U16(l.MarkFilteringSet)
	}
	for i, st := range l.SubTables {
		w.Link16(6+2*i, 0, st)
	}
	return w.Bytes()
}

// Extension wraps a sub-table of lookup type extType into an extension
// sub-table.
func Extension(extType uint16, subTable []byte) []byte {
	w := &Writer{}
	w.U16(1, extType).U32(0)
	w.Link32(4, 0, subTable)
	return w.Bytes()
}

// SingleSubst1 returns a GSUB single substitution sub-table of format 1.
func SingleSubst1(coverage []byte, delta int16) []byte {
	w := &Writer{}
	w.U16(1, 0).I16(delta)
	w.Link16(2, 0, coverage)
	return w.Bytes()
}

// ContextFormat3 returns a (chained) context sub-table of format 3 with
// input coverages only.
func ContextFormat3(chained bool, inputs ...[]byte) []byte {
	w := &Writer{}
	var at int
	if chained {
		w.U16(3, 0, uint16(len(inputs)))
		at = w.Len()
		w.Zeros(2 * len(inputs))
		w.U16(0, 0) // no lookahead, no lookup records
	} else {
		w.U16(3, uint16(len(inputs)), 0)
		at = w.Len()
		w.Zeros(2 * len(inputs))
	}
	for i, cov := range inputs {
		w.Link16(at+2*i, 0, cov)
	}
	return w.Bytes()
}

// --- Feature variations ----------------------------------------------------

// Condition is a format 1 axis range condition.
type Condition struct {
	Axis     uint16
	Min, Max float32
}

// Substitution replaces a feature table.
type Substitution struct {
	FeatureIndex uint16
	Lookups      []uint16
}

// FeatureVariation is a feature variation record.
type FeatureVariation struct {
	Conditions    []Condition
	Substitutions []Substitution
}

// FeatureVariations returns a feature variations table.
func FeatureVariations(records ...FeatureVariation) []byte {
	w := &Writer{}
	w.U16(1, 0).U32(uint32(len(records)))
	w.Zeros(8 * len(records))
	for i, r := range records {
		w.Link32(8+8*i, 0, ConditionSet(r.Conditions...))
		w.Link32(8+8*i+4, 0, featureTableSubstitution(r.Substitutions))
	}
	return w.Bytes()
}

// ConditionSet returns a condition set table.
func ConditionSet(conditions ...Condition) []byte {
	w := &Writer{}
	w.U16(uint16(len(conditions)))
	w.Zeros(4 * len(conditions))
	for i, c := range conditions {
		cw := &Writer{}
		cw.U16(1, c.Axis).F2Dot14(c.Min).F2Dot14(c.Max)
		w.Link32(2+4*i, 0, cw.Bytes())
	}
	return w.Bytes()
}

func featureTableSubstitution(subst []Substitution) []byte {
	w := &Writer{}
	w.U16(1, 0, uint16(len(subst)))
	for _, s := range subst {
		w.U16(s.FeatureIndex).U32(0)
	}
	for i, s := range subst {
		w.Link32(6+6*i+2, 0, FeatureTable(s.Lookups, nil))
	}
	return w.Bytes()
}

// --- GDEF ------------------------------------------------------------------

// GDef describes a GDEF table. The version is chosen from the sub-tables
// present.
type GDef struct {
	GlyphClasses      []byte
	AttachList        []byte
	LigCaretList      []byte
	MarkAttachClasses []byte
	MarkGlyphSets     [][]byte // coverages
	VarStore          []byte
}

// Bytes returns the binary table.
func (g GDef) Bytes() []byte {
	w := &Writer{}
	switch {
	case g.VarStore != nil:
		w.U16(1, 3, 0, 0, 0, 0, 0).U32(0)
	case g.MarkGlyphSets != nil:
		w.U16(1, 2, 0, 0, 0, 0, 0)
	default:
		w.U16(1, 0, 0, 0, 0, 0)
	}
	w.Link16(4, 0, g.GlyphClasses)
	w.Link16(6, 0, g.AttachList)
	w.Link16(8, 0, g.LigCaretList)
	w.Link16(10, 0, g.MarkAttachClasses)
	if g.MarkGlyphSets != nil {
		mw := &Writer{}
		mw.U16(1, uint16(len(g.MarkGlyphSets)))
		mw.Zeros(4 * len(g.MarkGlyphSets))
		for i, cov := range g.MarkGlyphSets {
			mw.Link32(4+4*i, 0, cov)
		}
		w.Link16(12, 0, mw.Bytes())
	}
	if g.VarStore != nil {
		w.Link32(14, 0, g.VarStore)
	}
	return w.Bytes()
}

// --- GPOS ------------------------------------------------------------------

// HintingDevice returns a device table of format 1, 2 or 3 with one delta
// per size from startSize on.
func HintingDevice(startSize uint16, format uint16, deltas ...int8) []byte {
	w := &Writer{}
	w.U16(startSize, startSize+uint16(len(deltas))-1, format)
	bits := uint(2) << (format - 1)
	perWord := 16 / int(bits)
	mask := uint16(1)<<bits - 1
	for i := 0; i < len(deltas); i += perWord {
		var word uint16
		for k := 0; k < perWord; k++ {
			word <<= bits
			if i+k < len(deltas) {
				word |= uint16(deltas[i+k]) & mask
			}
		}
		w.U16(word)
	}
	return w.Bytes()
}

// VariationIndex returns a variation index table pointing into an item
// variation store.
func VariationIndex(outer, inner uint16) []byte {
	w := &Writer{}
	w.U16(outer, inner, 0x8000)
	return w.Bytes()
}

// SinglePos1 returns a GPOS single adjustment sub-table of format 1 with an
// XAdvance value and an optional XAdvance device.
func SinglePos1(coverage []byte, xAdvance int16, device []byte) []byte {
	w := &Writer{}
	if device == nil {
		w.U16(1, 0, 0x0004).I16(xAdvance)
	} else {
		w.U16(1, 0, 0x0044).I16(xAdvance).U16(0)
		w.Link16(8, 0, device)
	}
	w.Link16(2, 0, coverage)
	return w.Bytes()
}

// Anchor3 returns an anchor table of format 3 with optional devices.
func Anchor3(x, y int16, xDevice, yDevice []byte) []byte {
	w := &Writer{}
	w.U16(3).I16(x, y).U16(0, 0)
	w.Link16(6, 0, xDevice)
	w.Link16(8, 0, yDevice)
	return w.Bytes()
}

// CursivePos1 returns a GPOS cursive attachment sub-table with one
// (entry, exit) anchor pair per covered glyph.
func CursivePos1(coverage []byte, anchors ...[2][]byte) []byte {
	w := &Writer{}
	w.U16(1, 0, uint16(len(anchors)))
	w.Zeros(4 * len(anchors))
	for i, a := range anchors {
		w.Link16(6+4*i, 0, a[0])
		w.Link16(6+4*i+2, 0, a[1])
	}
	w.Link16(2, 0, coverage)
	return w.Bytes()
}

package otlayout

import (
	"fmt"
	"slices"

	"github.com/npillmayer/otlcommon/ot"
)

// Feature is a type for OpenType layout features.
// From the specification website
// https://docs.microsoft.com/en-us/typography/opentype/spec/featuretags :
//
// “Features provide information about how to use the glyphs in a font to render a script or
// language. For example, an Arabic font might have a feature for substituting initial glyph
// forms, and a Kanji font might have a feature for positioning glyphs vertically. All
// OpenType Layout features define data for glyph substitution, glyph positioning, or both.”
//
// A feature uses ‘lookups’ to do operations on glyphs. GSUB and GPOS tables store lookups in a
// LookupList, into which Features link by maintaining a list of indices into the LookupList.
// The order of the lookup indices matters.
type Feature interface {
	Tag() ot.Tag            // e.g., 'liga'
	Kind() ot.LayoutKind    // GSUB or GPOS ?
	Index() int             // index into the FeatureList
	LookupCount() int       // number of Lookups for this feature
	LookupIndex(int) uint32 // get index of lookup #i
}

// feature is the default implementation of Feature.
type feature struct {
	kind  ot.LayoutKind
	index int
	f     ot.Feature
}

func (f feature) Tag() ot.Tag              { return f.f.Tag() }
func (f feature) Kind() ot.LayoutKind      { return f.kind }
func (f feature) Index() int               { return f.index }
func (f feature) LookupCount() int         { return f.f.LookupCount() }
func (f feature) LookupIndex(i int) uint32 { return f.f.LookupIndex(i) }
func (f feature) String() string           { return fmt.Sprintf("%s[%d]", f.f.Tag(), f.index) }

var _ Feature = feature{}

// FontFeatures looks up OpenType layout features in OpenType font otf, i.e. it tries to
// find features in table GSUB as well as in table GPOS.
// In OpenType, features may be specific for script/language combinations, or DFLT.
// Setting script to 0 will look for a DFLT feature set, setting lang to 0 selects
// the script's default language system.
//
// Feature variations are resolved for design-space position coords, which may be nil.
//
// Returns GSUB features, GPOS features and a possible error condition.
// The features at index 0 of each slice are the mandatory features (for a script), and may
// be nil.
func FontFeatures(otf *ot.Font, script, lang ot.Tag, coords []ot.F2Dot14) ([]Feature, []Feature, error) {
	if otf.Layout.GSub == nil && otf.Layout.GPos == nil {
		return nil, nil, errFontFormat("font has neither GSUB nor GPOS table")
	}
	if script == 0 {
		script = ot.DFLT
	}
	var feats = make([][]Feature, 2)
	for i, t := range []*ot.LayoutTable{otf.Layout.GSub, otf.Layout.GPos} {
		if t == nil {
			continue
		}
		scr, chosen, _ := SelectScript(t, []ot.Tag{script})
		if scr.IsEmpty() {
			tracer().Infof("font has no feature-links from script %s", script)
			feats[i] = []Feature{}
			continue
		}
		tracer().Debugf("found script table for '%s'", chosen)
		var langs []ot.Tag
		if lang != 0 {
			langs = []ot.Tag{lang}
		}
		lsys, _ := SelectLangSys(scr, langs)
		if lsys.IsEmpty() {
			return nil, nil, errFontFormat(fmt.Sprintf("empty LangSys entry for %s", chosen))
		}
		varIndex := t.FindVariationsIndex(coords)
		feats[i] = make([]Feature, 0, 1+lsys.FeatureCount())
		feats[i] = append(feats[i], wrapFeature(t, lsys.RequiredFeatureIndex(), varIndex))
		for j := 0; j < lsys.FeatureCount(); j++ {
			f := wrapFeature(t, lsys.FeatureIndex(j), varIndex)
			feats[i] = append(feats[i], f)
			if f != nil {
				tracer().Debugf("%2d: feat[%v] ", j+1, f.Tag())
			}
		}
	}
	return feats[0], feats[1], nil
}

func wrapFeature(t *ot.LayoutTable, inx uint32, varIndex uint32) Feature {
	if inx == ot.NotFoundIndex || int(inx) >= t.FeatureList().Count() {
		return nil
	}
	f := t.Feature(int(inx), varIndex)
	if f.IsEmpty() {
		return nil
	}
	return feature{kind: t.Kind(), index: int(inx), f: f}
}

// --- Script and language selection -----------------------------------------

// SelectScript finds the first script of scriptTags present in a layout
// table. If none is present, it falls back to 'DFLT', 'dflt' and 'latn', in
// this order. The tag of the script selected is returned, and exact tells
// whether it has been one of scriptTags. If not even a fallback script is
// present, the script returned is empty.
func SelectScript(table *ot.LayoutTable, scriptTags []ot.Tag) (script ot.Script, chosen ot.Tag, exact bool) {
	sl := table.ScriptList()
	for _, tag := range scriptTags {
		if scr, ok := sl.FindScript(tag); ok {
			return scr, tag, true
		}
	}
	for _, tag := range []ot.Tag{ot.DFLT, ot.DFLTLang, ot.T("latn")} {
		if scr, ok := sl.FindScript(tag); ok {
			tracer().Debugf("script fallback to '%s'", tag)
			return scr, tag, false
		}
	}
	return ot.Script{}, 0, false
}

// SelectLangSys finds the first language system of langTags in script. If
// none is present, the script's default language system is returned and
// exact is false. A 'dflt' language system is accepted as a default for fonts
// lacking a proper one.
func SelectLangSys(script ot.Script, langTags []ot.Tag) (lsys ot.LangSys, exact bool) {
	for _, tag := range langTags {
		if i, ok := script.FindLangSysIndex(tag); ok {
			return script.LangSys(i), true
		}
	}
	if script.HasDefaultLangSys() {
		return script.DefaultLangSys(), false
	}
	if i, ok := script.FindLangSysIndex(ot.DFLTLang); ok {
		return script.LangSys(i), false
	}
	return ot.LangSys{}, false
}

// --- Collecting features and lookups ---------------------------------------

// CollectFeatures collects the indices of features of a layout table which
// are reachable from the given scripts and languages and have one of the
// given feature tags. A nil slice of tags matches everything: nil scripts
// visits all scripts, nil langs visits the default and all other language
// systems of a script, and nil features accepts every feature. Required
// features are included regardless of their tag.
//
// The number of language systems visited is limited, to protect against
// fonts with huge script lists.
func CollectFeatures(table *ot.LayoutTable, scripts, langs, features []ot.Tag) *ot.IndexSet {
	c := featureCollector{
		table:    table,
		features: features,
		out:      &ot.IndexSet{},
		visited:  make(map[string]bool),
	}
	sl := table.ScriptList()
	if scripts == nil {
		for i := 0; i < sl.Count() && i < ot.MaxScripts; i++ {
			c.script(sl.Script(i), langs)
		}
		return c.out
	}
	for _, tag := range scripts {
		if scr, ok := sl.FindScript(tag); ok {
			c.script(scr, langs)
		}
	}
	return c.out
}

type featureCollector struct {
	table    *ot.LayoutTable
	features []ot.Tag
	out      *ot.IndexSet
	visited  map[string]bool // LangSys tables already visited, keyed by content
	visits   int
}

func (c *featureCollector) script(scr ot.Script, langs []ot.Tag) {
	if scr.IsEmpty() {
		return
	}
	if langs == nil {
		c.langSys(scr.DefaultLangSys())
		for i := 0; i < scr.LangSysCount(); i++ {
			c.langSys(scr.LangSys(i))
		}
		return
	}
	for _, tag := range langs {
		if i, ok := scr.FindLangSysIndex(tag); ok {
			c.langSys(scr.LangSys(i))
		}
	}
}

func (c *featureCollector) langSys(ls ot.LangSys) {
	if ls.IsEmpty() || c.visits >= ot.MaxLangSys {
		return
	}
	c.visits++
	key := langSysKey(ls)
	if c.visited[key] {
		return
	}
	c.visited[key] = true
	fl := c.table.FeatureList()
	if inx := ls.RequiredFeatureIndex(); inx != ot.NotFoundIndex && int(inx) < fl.Count() {
		c.out.Add(inx)
	}
	for i := 0; i < ls.FeatureCount() && i < ot.MaxFeatureIndices; i++ {
		inx := ls.FeatureIndex(i)
		if int(inx) >= fl.Count() {
			continue
		}
		if c.features == nil || slices.Contains(c.features, fl.TagAt(int(inx))) {
			c.out.Add(inx)
		}
	}
}

// langSysKey identifies a language system by its feature indices. Fonts often
// share LangSys tables between scripts.
func langSysKey(ls ot.LangSys) string {
	indices := make([]uint16, ls.FeatureCount())
	ls.FeatureIndices(0, indices)
	return fmt.Sprintf("%d:%v", ls.RequiredFeatureIndex(), indices)
}

// CollectLookups collects the lookup indices of a set of features. If
// varIndex denotes a feature variation record (see
// ot.LayoutTable.FindVariationsIndex), features substituted by this record
// contribute the lookups of their alternate feature tables. Lookup indices
// beyond the lookup list are dropped.
func CollectLookups(table *ot.LayoutTable, features *ot.IndexSet, varIndex uint32) *ot.IndexSet {
	lookups := &ot.IndexSet{}
	for inx := range features.All() {
		f := table.Feature(int(inx), varIndex)
		for i := 0; i < f.LookupCount() && i < ot.MaxLookupIndices; i++ {
			lookups.Add(f.LookupIndex(i))
		}
	}
	return clampLookups(table, lookups)
}

// CollectAllLookups collects the lookup indices of a set of features for
// every position in design space, i.e. the lookups of the default feature
// tables together with those of all alternate feature tables.
func CollectAllLookups(table *ot.LayoutTable, features *ot.IndexSet) *ot.IndexSet {
	lookups := CollectLookups(table, features, ot.NotFoundIndex)
	table.FeatureVariations().CollectLookups(features, lookups)
	return clampLookups(table, lookups)
}

func clampLookups(table *ot.LayoutTable, lookups *ot.IndexSet) *ot.IndexSet {
	n := uint32(table.LookupList().Count())
	clamped := &ot.IndexSet{}
	for inx := range lookups.All() {
		if inx >= n {
			tracer().Debugf("lookup index %d out of range", inx)
			break
		}
		clamped.Add(inx)
	}
	return clamped
}

package otlayout

import (
	"github.com/npillmayer/otlcommon/ot"
)

// LookupCoverage adds the glyphs of the primary coverage of every sub-table
// of lookup lookupIndex to set, i.e. all glyphs the lookup may start matching
// at. It returns false if a coverage table has turned out to be broken; the
// glyphs collected so far are kept in set.
func LookupCoverage(table *ot.LayoutTable, lookupIndex int, set *ot.GlyphSet) bool {
	ok := true
	table.Lookup(lookupIndex).Dispatch(ot.DispatcherFunc(func(st ot.LookupSubTable) bool {
		if !st.Coverage().Collect(set) {
			tracer().Debugf("lookup %d: broken coverage in sub-table of type %d", lookupIndex, st.Type)
			ok = false
		}
		return false
	}))
	return ok
}

// LookupMayApply is true if lookup lookupIndex may apply to a run consisting
// of glyphs, i.e. if the primary coverage of any of its sub-tables intersects
// glyphs. It stops at the first intersecting sub-table.
func LookupMayApply(table *ot.LayoutTable, lookupIndex int, glyphs *ot.GlyphSet) bool {
	return table.Lookup(lookupIndex).Dispatch(ot.DispatcherFunc(func(st ot.LookupSubTable) bool {
		return st.Coverage().Intersects(glyphs)
	}))
}

// LookupsMayApply filters a set of lookups to those which may apply to
// glyphs. See LookupMayApply.
func LookupsMayApply(table *ot.LayoutTable, lookups *ot.IndexSet, glyphs *ot.GlyphSet) *ot.IndexSet {
	out := &ot.IndexSet{}
	for inx := range lookups.All() {
		if LookupMayApply(table, int(inx), glyphs) {
			out.Add(inx)
		}
	}
	return out
}

// CollectVariationIndices collects the variation indices of all device
// tables of a font which reference its item variation store: those from
// ligature carets in GDEF and those from value records and anchors of GPOS
// lookups. If lookups is non-nil, only these GPOS lookups are visited.
//
// Indices are packed with ot.PackVariationIndex.
func CollectVariationIndices(otf *ot.Font, lookups *ot.IndexSet, set *ot.IndexSet) {
	otf.Layout.GDef.CollectVariationIndices(set)
	gpos := otf.Layout.GPos
	if gpos == nil {
		return
	}
	collect := ot.DispatcherFunc(func(st ot.LookupSubTable) bool {
		st.CollectVariationIndices(set)
		return false
	})
	if lookups != nil {
		for inx := range lookups.All() {
			gpos.Lookup(int(inx)).Dispatch(collect)
		}
		return
	}
	for i := 0; i < gpos.LookupList().Count(); i++ {
		gpos.Lookup(i).Dispatch(collect)
	}
}

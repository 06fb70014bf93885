package ot

import (
	"errors"
	"testing"

	"github.com/npillmayer/otlcommon/internal/otbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tag := Tag(0x636d6170)
	if tag.String() != "cmap" {
		t.Errorf("expected tag 0x636d6170 to be 'cmap', is %s", tag.String())
	}
	tag = MakeTag([]byte("cmap"))
	if tag.String() != "cmap" {
		t.Errorf("expected tag MakeTag(cmap) to be 'cmap', is %s", tag.String())
	}
	if T("kern").String() != "kern" || T("ab").String() != "ab  " {
		t.Errorf("expected short tags to be padded with spaces")
	}
	if !T("ss07").isStylisticSet() || T("ss21").isStylisticSet() || !T("cv99").isCharacterVariant() {
		t.Errorf("stylistic set or character variant tag not recognized")
	}
}

func TestTableName(t *testing.T) {
	tb := tableBase{}
	tb.name = 0x636d6170
	s := tb.Self().NameTag().String()
	if s != "cmap" {
		t.Errorf("expected table name to be cmap, is %v", s)
	}
}

// --- Test font -------------------------------------------------------------

func testVarStore(rows ...int16) []byte {
	r := make([][]int16, len(rows))
	for i, d := range rows {
		r[i] = []int16{d}
	}
	return otbuild.VarStore(1, []otbuild.Region{{{0, 1, 1}}}, r)
}

func testGSub() []byte {
	return otbuild.Layout{
		Scripts: []otbuild.Script{{
			Tag:     "latn",
			Default: &otbuild.LangSys{Required: 0xFFFF, Features: []uint16{0, 1}},
			Langs: []otbuild.Lang{
				{Tag: "TRK ", LangSys: otbuild.LangSys{Required: 1, Features: []uint16{0}}},
			},
		}},
		Features: []otbuild.Feature{
			{Tag: "liga", Lookups: []uint16{0}},
			{Tag: "ss01", Lookups: []uint16{1}},
		},
		Lookups: []otbuild.Lookup{
			{Type: 1, SubTables: [][]byte{otbuild.SingleSubst1(otbuild.Coverage1(1, 2), 1)}},
			{Type: 7, Flag: 0x0018, MarkFilteringSet: 1, SubTables: [][]byte{
				otbuild.Extension(1, otbuild.SingleSubst1(otbuild.Coverage1(2), 2)),
			}},
		},
		FeatureVariations: otbuild.FeatureVariations(otbuild.FeatureVariation{
			Conditions:    []otbuild.Condition{{Axis: 0, Min: 0.5, Max: 1}},
			Substitutions: []otbuild.Substitution{{FeatureIndex: 0, Lookups: []uint16{1}}},
		}),
	}.Bytes()
}

func testGPos() []byte {
	return otbuild.Layout{
		Scripts: []otbuild.Script{{
			Tag:     "DFLT",
			Default: &otbuild.LangSys{Required: 0xFFFF, Features: []uint16{0}},
		}},
		Features: []otbuild.Feature{{Tag: "kern", Lookups: []uint16{0, 1}}},
		Lookups: []otbuild.Lookup{
			{Type: 1, SubTables: [][]byte{
				otbuild.SinglePos1(otbuild.Coverage1(1), -20, otbuild.VariationIndex(0, 0)),
			}},
			{Type: 3, SubTables: [][]byte{
				otbuild.CursivePos1(otbuild.Coverage1(2),
					[2][]byte{otbuild.Anchor3(10, 20, nil, otbuild.VariationIndex(0, 1)), nil}),
			}},
		},
	}.Bytes()
}

func testGDef() []byte {
	return otbuild.GDef{
		GlyphClasses: otbuild.ClassDef2(
			otbuild.Range{Start: 1, End: 2, Value: 1},
			otbuild.Range{Start: 3, End: 3, Value: 3},
		),
		MarkGlyphSets: [][]byte{otbuild.Coverage1(3), otbuild.Coverage1(4)},
		VarStore:      testVarStore(10, 20),
	}.Bytes()
}

func testHVar() []byte {
	w := &otbuild.Writer{}
	w.U16(1, 0).U32(0, 0, 0, 0)
	w.Link32(4, 0, testVarStore(0, 50, -10))
	return w.Bytes()
}

func testMVar() []byte {
	w := &otbuild.Writer{}
	w.U16(1, 0, 0, 8, 1, 0)
	w.Tag("hasc").U16(0, 1)
	w.Link16(10, 0, testVarStore(0, 50))
	return w.Bytes()
}

func testFVar() []byte {
	w := &otbuild.Writer{}
	w.U16(1, 0, 16, 2, 1, 20, 0, 0)
	w.Tag("wght").Fixed(100).Fixed(400).Fixed(900).U16(0, 256)
	return w.Bytes()
}

func testFont() *otbuild.Font {
	return otbuild.NewFont().
		Add("head", otbuild.Head(1000, 0)).
		Add("maxp", otbuild.MaxP(5)).
		Add("hhea", otbuild.HHea(800, -200, 100, 3)).
		Add("hmtx", otbuild.HMtx([]otbuild.Metric{{500, 10}, {600, 20}, {700, 30}}, 40, 50)).
		Add("OS/2", otbuild.OS2(OS2UseTypoMetrics, 750, -250, 50, 900, 300)).
		Add("GSUB", testGSub()).
		Add("GPOS", testGPos()).
		Add("GDEF", testGDef()).
		Add("HVAR", testHVar()).
		Add("MVAR", testMVar()).
		Add("fvar", testFVar())
}

func parseTestFont(t *testing.T, opts ...ParseOption) *Font {
	otf, err := Parse(testFont().Bytes(), opts...)
	require.NoError(t, err)
	require.NotNil(t, otf)
	return otf
}

// --- Tests -----------------------------------------------------------------

func TestParseFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseTestFont(t)
	assert.Empty(t, otf.Errors())
	assert.Empty(t, otf.Warnings())
	assert.False(t, otf.HasCriticalErrors())
	assert.Equal(t, uint16(1000), otf.UnitsPerEm())
	assert.Equal(t, 5, otf.NumGlyphs())
	tags := otf.TableTags()
	require.Len(t, tags, 11)
	for i := 1; i < len(tags); i++ {
		assert.Less(t, tags[i-1], tags[i], "table tags should be sorted")
	}
	assert.NotNil(t, otf.Table(T("GSUB")).Self().AsLayout())
	assert.Nil(t, otf.Table(T("cmap")))
	//
	adv, lsb, ok := otf.HMtx.HMetrics(1)
	assert.True(t, ok)
	assert.Equal(t, uint16(600), adv)
	assert.Equal(t, int16(20), lsb)
	adv, lsb, _ = otf.HMtx.HMetrics(4)
	assert.Equal(t, uint16(700), adv, "glyphs beyond long metrics repeat the last advance")
	assert.Equal(t, int16(50), lsb)
	_, _, ok = otf.HMtx.HMetrics(5)
	assert.False(t, ok)
	assert.True(t, otf.OS2.UseTypoMetrics())
	assert.Equal(t, int16(750), otf.OS2.TypoAscender)
	assert.Equal(t, int16(800), otf.HHea.Ascender)
}

func TestParseLayoutTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseTestFont(t)
	gsub := otf.Layout.GSub
	require.NotNil(t, gsub)
	assert.Equal(t, KindGSUB, gsub.Kind())
	sl := gsub.ScriptList()
	require.Equal(t, 1, sl.Count())
	script, ok := sl.FindScript(T("latn"))
	require.True(t, ok)
	assert.Equal(t, 2, script.DefaultLangSys().FeatureCount())
	i, ok := script.FindLangSysIndex(T("TRK "))
	require.True(t, ok)
	trk := script.LangSys(i)
	assert.True(t, trk.HasRequiredFeature())
	assert.Equal(t, uint32(1), trk.RequiredFeatureIndex())
	//
	liga := gsub.Feature(0, NotFoundIndex)
	assert.Equal(t, T("liga"), liga.Tag())
	assert.Equal(t, uint32(0), liga.LookupIndex(0))
	varIndex := gsub.FindVariationsIndex([]F2Dot14{f2(0.75)})
	assert.Equal(t, uint32(0), varIndex)
	alt := gsub.Feature(0, varIndex)
	assert.Equal(t, T("liga"), alt.Tag(), "substituted feature keeps its tag")
	assert.Equal(t, uint32(1), alt.LookupIndex(0))
	assert.Equal(t, uint32(NotFoundIndex), gsub.FindVariationsIndex(nil))
	//
	req := otf.Layout.Requirements
	assert.True(t, req.NeedGlyphClassDef)
	assert.True(t, req.NeedMarkGlyphSets)
	assert.False(t, req.NeedMarkAttachClassDef)
}

func TestRegistryPaging(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	ls := otbuild.LangSys{Required: 0xFFFF, Features: []uint16{3, 2, 1, 0}}
	lookup := otbuild.Lookup{Type: 1, SubTables: [][]byte{otbuild.SingleSubst1(otbuild.Coverage1(1), 1)}}
	gsub := otbuild.Layout{
		Scripts: []otbuild.Script{
			{Tag: "arab", Default: &ls},
			{Tag: "cyrl", Default: &ls},
			{Tag: "latn", Default: &ls, Langs: []otbuild.Lang{
				{Tag: "DEU ", LangSys: ls}, {Tag: "FRA ", LangSys: ls}, {Tag: "TRK ", LangSys: ls},
			}},
		},
		Features: []otbuild.Feature{
			{Tag: "calt", Lookups: []uint16{0, 1, 2, 3}},
			{Tag: "liga", Lookups: []uint16{0}},
			{Tag: "locl", Lookups: []uint16{1}},
			{Tag: "smcp", Lookups: []uint16{2}},
		},
		Lookups: []otbuild.Lookup{lookup, lookup, lookup, lookup},
	}
	otf, err := Parse(otbuild.NewFont().
		Add("head", otbuild.Head(1000, 0)).
		Add("maxp", otbuild.MaxP(5)).
		Add("GSUB", gsub.Bytes()).
		Bytes())
	require.NoError(t, err)
	require.NotNil(t, otf.Layout.GSub)
	sl := otf.Layout.GSub.ScriptList()
	latn, ok := sl.FindScript(T("latn"))
	require.True(t, ok)
	calt := otf.Layout.GSub.Feature(0, NotFoundIndex)
	//
	scripts := []Tag{T("arab"), T("cyrl"), T("latn")}
	langs := []Tag{T("DEU "), T("FRA "), T("TRK ")}
	features := []uint16{3, 2, 1, 0}
	lookups := []uint16{0, 1, 2, 3}
	for _, page := range []struct {
		start, size int
	}{
		{0, 2}, {1, 2}, {2, 5}, {3, 2}, {4, 1}, {-1, 2}, {1, 0},
	} {
		tags := make([]Tag, page.size)
		assert.Equal(t, 3, sl.Tags(page.start, tags))
		assert.Equal(t, pageOf(scripts, page.start, page.size), tags, "scripts %v", page)
		tags = make([]Tag, page.size)
		assert.Equal(t, 3, latn.LangSysTags(page.start, tags))
		assert.Equal(t, pageOf(langs, page.start, page.size), tags, "langs %v", page)
		indices := make([]uint16, page.size)
		assert.Equal(t, 4, latn.DefaultLangSys().FeatureIndices(page.start, indices))
		assert.Equal(t, pageOf(features, page.start, page.size), indices, "features %v", page)
		indices = make([]uint16, page.size)
		assert.Equal(t, 4, calt.LookupIndices(page.start, indices))
		assert.Equal(t, pageOf(lookups, page.start, page.size), indices, "lookups %v", page)
	}
}

// pageOf returns size entries of all, starting at start. Positions outside
// of all are left zero.
func pageOf[E any](all []E, start, size int) []E {
	page := make([]E, size)
	for i := range page {
		if start >= 0 && start+i < len(all) {
			page[i] = all[start+i]
		}
	}
	return page
}

func TestLookupExtensionAndProps(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseTestFont(t)
	ll := otf.Layout.GSub.LookupList()
	require.Equal(t, 2, ll.Count())
	l0 := ll.Lookup(0)
	assert.Equal(t, GSubLookupTypeSingle, l0.Type())
	assert.Equal(t, uint32(0), l0.Props())
	l1 := ll.Lookup(1)
	assert.Equal(t, GSubLookupTypeExtensionSubs, l1.Type())
	assert.Equal(t, GSubLookupTypeSingle, l1.ResolvedType())
	assert.Equal(t, uint16(1), l1.MarkFilteringSet())
	assert.Equal(t, uint32(0x0018|1<<16), l1.Props())
	st := l1.SubTable(0)
	assert.Equal(t, GSubLookupTypeSingle, st.Type, "extension should be unwrapped")
	assert.Equal(t, uint16(1), st.Format())
	assert.True(t, st.Coverage().Covers(2))
	assert.False(t, st.Coverage().Covers(1))
	assert.True(t, ll.Lookup(2).IsEmpty())
}

func TestLookupDispatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseTestFont(t)
	l := otf.Layout.GSub.Lookup(0)
	calls := 0
	stopped := l.Dispatch(DispatcherFunc(func(st LookupSubTable) bool {
		calls++
		return st.Coverage().Covers(2)
	}))
	assert.True(t, stopped)
	assert.Equal(t, 1, calls)
	stopped = l.Dispatch(DispatcherFunc(func(st LookupSubTable) bool {
		return st.Coverage().Covers(4)
	}))
	assert.False(t, stopped)
}

func TestGPosDevices(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseTestFont(t)
	gpos := otf.Layout.GPos
	require.NotNil(t, gpos)
	store := otf.Layout.GDef.VarStore()
	require.False(t, store.IsEmpty())
	//
	vr, ok := gpos.Lookup(0).SubTable(0).SingleValue(1)
	require.True(t, ok)
	assert.Equal(t, int16(-20), vr.XAdvance)
	assert.Equal(t, int32(20), vr.XAdvDevice.XDelta(testInstance{coords: []F2Dot14{f2(1)}}, store))
	_, ok = gpos.Lookup(0).SubTable(0).SingleValue(2)
	assert.False(t, ok)
	//
	entry, exit, ok := gpos.Lookup(1).SubTable(0).CursiveAnchors(2)
	require.True(t, ok)
	assert.Equal(t, AnchorFormat3, entry.Format)
	assert.Equal(t, int16(20), entry.YCoordinate)
	assert.True(t, entry.XDevice.IsEmpty())
	assert.Equal(t, int32(40), entry.YDevice.YDelta(testInstance{coords: []F2Dot14{f2(1)}}, store))
	assert.Equal(t, AnchorFormat(0), exit.Format)
	//
	var indices IndexSet
	for i := 0; i < gpos.LookupList().Count(); i++ {
		gpos.Lookup(i).Dispatch(DispatcherFunc(func(st LookupSubTable) bool {
			st.CollectVariationIndices(&indices)
			return false
		}))
	}
	assert.Equal(t, []uint32{0, 1}, indices.Slice())
}

func TestGDef(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseTestFont(t)
	gdef := otf.Layout.GDef
	require.NotNil(t, gdef)
	major, minor := gdef.Version()
	assert.Equal(t, 1, major)
	assert.Equal(t, 3, minor)
	assert.Equal(t, BaseGlyph, gdef.GlyphClass(1))
	assert.Equal(t, MarkGlyph, gdef.GlyphClass(3))
	assert.Equal(t, UnclassifiedGlyph, gdef.GlyphClass(4))
	sets := gdef.MarkGlyphSets()
	require.Equal(t, 2, sets.Count())
	assert.True(t, sets.Covers(1, 4))
	assert.False(t, sets.Covers(0, 4))
	assert.True(t, gdef.HasVarStore())
	assert.Nil(t, gdef.LigCarets().Carets(1))
}

func TestMetricsVariations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseTestFont(t)
	require.NotNil(t, otf.HVar)
	half := []F2Dot14{f2(0.5)}
	assert.Equal(t, float32(25), otf.HVar.AdvanceDelta(1, half))
	assert.Equal(t, float32(-5), otf.HVar.AdvanceDelta(2, half))
	assert.Equal(t, float32(0), otf.HVar.AdvanceDelta(4, half), "glyph without delta row")
	assert.Equal(t, float32(0), otf.HVar.AdvanceDelta(1, nil))
	assert.Equal(t, float32(0), otf.HVar.SideBearingDelta(1, half))
	//
	require.NotNil(t, otf.MVar)
	assert.Equal(t, float32(50), otf.MVar.Delta(MVarHorizontalAscender, []F2Dot14{f2(1)}))
	assert.Equal(t, float32(0), otf.MVar.Delta(MVarHorizontalDescender, []F2Dot14{f2(1)}))
	assert.Equal(t, []Tag{MVarHorizontalAscender}, otf.MVar.Tags())
	//
	require.Equal(t, 1, otf.FVar.AxisCount())
	axis := otf.FVar.Axis(0)
	assert.Equal(t, T("wght"), axis.Tag)
	assert.Equal(t, float32(400), axis.Default)
	assert.Equal(t, f2(0.5), axis.Normalize(650))
	assert.Equal(t, f2(-0.5), axis.Normalize(250))
	assert.Equal(t, f2(1), axis.Normalize(1000), "coordinates are clamped")
}

func TestDeltaSetIndexMap(t *testing.T) {
	w := &otbuild.Writer{}
	w.U8(0).U8(0x10|0x03).U16(3) // 2-byte entries, 4 inner bits, 3 entries
	w.U16(0x0012, 0x0005, 0x0021)
	m := viewDeltaSetIndexMap(w.Bytes())
	assert.Equal(t, 3, m.Count())
	assert.Equal(t, PackVariationIndex(1, 2), m.Map(0))
	assert.Equal(t, PackVariationIndex(0, 5), m.Map(1))
	assert.Equal(t, PackVariationIndex(2, 1), m.Map(2))
	assert.Equal(t, PackVariationIndex(2, 1), m.Map(10), "indices past the end use the last entry")
	assert.Equal(t, uint32(7), viewDeltaSetIndexMap(nil).Map(7), "empty map is the identity")
}

func TestParseBrokenGDef(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	gdef := (&otbuild.Writer{}).U16(1, 0, 0, 0, 0x4000, 0).Bytes() // lig caret list beyond end
	data := testFont().Add("GDEF", gdef).Bytes()
	otf, err := Parse(data)
	require.NoError(t, err)
	require.NotNil(t, otf.Layout.GDef, "GDEF should have been corrected")
	assert.Empty(t, otf.Errors())
	require.NotEmpty(t, otf.Warnings())
	assert.Equal(t, T("GDEF"), otf.Warnings()[0].Table)
	//
	otf, err = Parse(data, NoEdits)
	require.NoError(t, err)
	assert.Nil(t, otf.Layout.GDef)
	assert.Nil(t, otf.Table(T("GDEF")))
	require.Len(t, otf.Errors(), 1)
	assert.Equal(t, SeverityMajor, otf.Errors()[0].Severity)
	assert.NotNil(t, otf.Layout.GSub, "other tables are not affected")
}

func TestParseCriticalErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := testFont().Bytes()
	data[0] = 'x'
	_, err := Parse(data)
	assert.True(t, errors.Is(err, ErrFontFormat))
	//
	_, err = Parse(data[:10])
	assert.Error(t, err)
	//
	noHead := otbuild.NewFont().Add("maxp", otbuild.MaxP(3)).Bytes()
	_, err = Parse(noHead)
	assert.True(t, errors.Is(err, ErrFontFormat))
	otf, err := Parse(noHead, IsTestfont)
	require.NoError(t, err)
	assert.Equal(t, uint16(1000), otf.UnitsPerEm(), "fallback units per em")
	//
	data = testFont().Bytes()
	data[12+8+3] = 0xFF // misaligned offset of first table
	_, err = Parse(data)
	assert.True(t, errors.Is(err, ErrFontFormat))
}

func TestParseDropsUnlinkableMetrics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := testFont().Add("hhea", otbuild.HHea(800, -200, 100, 9)).Bytes()
	otf, err := Parse(data)
	require.NoError(t, err)
	assert.Nil(t, otf.HMtx, "hmtx with more long metrics than glyphs is dropped")
	require.Len(t, otf.Errors(), 1)
	assert.Equal(t, T("hmtx"), otf.Errors()[0].Table)
}

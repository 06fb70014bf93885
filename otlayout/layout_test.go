package otlayout

import (
	"testing"

	"github.com/npillmayer/otlcommon/internal/otbuild"
	"github.com/npillmayer/otlcommon/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestTagsForScript(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype.layout")
	defer teardown()
	//
	for _, tc := range []struct {
		script string
		tags   []ot.Tag
	}{
		{"Latn", []ot.Tag{ot.T("latn")}},
		{"Cyrl", []ot.Tag{ot.T("cyrl")}},
		{"Deva", []ot.Tag{ot.T("dev3"), ot.T("dev2"), ot.T("deva")}},
		{"Mymr", []ot.Tag{ot.T("mym2"), ot.T("mymr")}},
		{"Hira", []ot.Tag{ot.T("kana")}},
		{"Laoo", []ot.Tag{ot.T("lao ")}},
		{"Zyyy", nil},
	} {
		assert.Equal(t, tc.tags, TagsForScript(language.MustParseScript(tc.script)), tc.script)
	}
}

func TestTagsForLanguage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype.layout")
	defer teardown()
	//
	for _, tc := range []struct {
		lang string
		tags []ot.Tag
	}{
		{"tr", []ot.Tag{ot.T("TRK ")}},
		{"de-AT", []ot.Tag{ot.T("DEU ")}},
		{"ro", []ot.Tag{ot.T("ROM "), ot.T("MOL ")}},
		{"zh", []ot.Tag{ot.T("ZHS ")}},
		{"zh-TW", []ot.Tag{ot.T("ZHT ")}},
		{"zh-Hant", []ot.Tag{ot.T("ZHT ")}},
		{"zh-HK", []ot.Tag{ot.T("ZHH ")}},
		{"haw", []ot.Tag{ot.T("HAW ")}},
	} {
		assert.Equal(t, tc.tags, TagsForLanguage(language.MustParse(tc.lang)), tc.lang)
	}
	assert.Nil(t, TagsForLanguage(language.Und))
}

func TestSelectScriptAndLangSys(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype.layout")
	defer teardown()
	//
	otf := parseFont(t, testFont())
	gsub := otf.Layout.GSub
	scr, chosen, exact := SelectScript(gsub, []ot.Tag{ot.T("grek"), ot.T("latn")})
	require.False(t, scr.IsEmpty())
	assert.Equal(t, ot.T("latn"), chosen)
	assert.True(t, exact)
	//
	lsys, exact := SelectLangSys(scr, []ot.Tag{ot.T("TRK ")})
	assert.True(t, exact)
	assert.Equal(t, uint32(1), lsys.RequiredFeatureIndex())
	lsys, exact = SelectLangSys(scr, []ot.Tag{ot.T("DEU ")})
	assert.False(t, exact)
	assert.Equal(t, 2, lsys.FeatureCount(), "default language system")
	//
	_, chosen, exact = SelectScript(gsub, []ot.Tag{ot.T("cyrl")})
	assert.Equal(t, ot.DFLT, chosen)
	assert.False(t, exact)
	_, chosen, _ = SelectScript(otf.Layout.GPos, []ot.Tag{ot.T("cyrl")})
	assert.Equal(t, ot.T("latn"), chosen, "last resort is 'latn'")
	scr, _, _ = SelectScript(nil, []ot.Tag{ot.T("latn")})
	assert.True(t, scr.IsEmpty())
}

func TestCollectFeatures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype.layout")
	defer teardown()
	//
	gsub := parseFont(t, testFont()).Layout.GSub
	assert.Equal(t, []uint32{0, 1, 2}, CollectFeatures(gsub, nil, nil, nil).Slice())
	latn, trk := []ot.Tag{ot.T("latn")}, []ot.Tag{ot.T("TRK ")}
	assert.Equal(t, []uint32{0, 1}, CollectFeatures(gsub, latn, trk, nil).Slice())
	assert.Equal(t, []uint32{1, 2}, CollectFeatures(gsub, latn, nil, []ot.Tag{ot.T("ss01")}).Slice(),
		"required feature of 'TRK ' is always included")
	assert.Equal(t, []uint32{0}, CollectFeatures(gsub, []ot.Tag{ot.DFLT}, nil, []ot.Tag{ot.T("liga")}).Slice())
	assert.Equal(t, 0, CollectFeatures(gsub, []ot.Tag{ot.T("cyrl")}, nil, nil).Len())
}

func TestCollectLookups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype.layout")
	defer teardown()
	//
	gsub := parseFont(t, testFont()).Layout.GSub
	features := indexSet(0, 2)
	assert.Equal(t, []uint32{0, 1}, CollectLookups(gsub, features, ot.NotFoundIndex).Slice())
	varIndex := gsub.FindVariationsIndex([]ot.F2Dot14{ot.F2Dot14FromFloat(1)})
	require.Equal(t, uint32(0), varIndex)
	assert.Equal(t, []uint32{1, 3}, CollectLookups(gsub, features, varIndex).Slice(),
		"'liga' is substituted")
	assert.Equal(t, []uint32{0, 3}, CollectAllLookups(gsub, indexSet(0)).Slice())
	assert.Equal(t, 0, CollectLookups(gsub, indexSet(7), ot.NotFoundIndex).Len())
}

func TestFontFeatures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype.layout")
	defer teardown()
	//
	otf := parseFont(t, testFont())
	gsubFeats, gposFeats, err := FontFeatures(otf, ot.T("latn"), ot.T("TRK "), nil)
	require.NoError(t, err)
	require.Len(t, gsubFeats, 2)
	require.NotNil(t, gsubFeats[0])
	assert.Equal(t, ot.T("locl"), gsubFeats[0].Tag())
	assert.Equal(t, ot.KindGSUB, gsubFeats[0].Kind())
	assert.Equal(t, ot.T("liga"), gsubFeats[1].Tag())
	require.Len(t, gposFeats, 2)
	assert.Nil(t, gposFeats[0])
	assert.Equal(t, ot.T("kern"), gposFeats[1].Tag())
	//
	gsubFeats, _, err = FontFeatures(otf, ot.T("cyrl"), 0, []ot.F2Dot14{ot.F2Dot14FromFloat(1)})
	require.NoError(t, err)
	require.Len(t, gsubFeats, 2, "DFLT fallback")
	assert.Nil(t, gsubFeats[0])
	assert.Equal(t, 0, gsubFeats[1].Index())
	assert.Equal(t, uint32(3), gsubFeats[1].LookupIndex(0), "variation substitutes lookups of 'liga'")
	//
	plain, err := ot.Parse(otbuild.NewFont().
		Add("head", otbuild.Head(1000, 0)).
		Add("maxp", otbuild.MaxP(2)).
		Bytes())
	require.NoError(t, err)
	_, _, err = FontFeatures(plain, 0, 0, nil)
	assert.Error(t, err)
}

func TestLookupCoverage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype.layout")
	defer teardown()
	//
	gsub := parseFont(t, testFont()).Layout.GSub
	set := ot.NewGlyphSet()
	assert.True(t, LookupCoverage(gsub, 1, set))
	assert.Equal(t, []ot.GlyphIndex{5, 6, 7}, set.Slice())
	assert.True(t, LookupCoverage(gsub, 2, set))
	assert.Equal(t, []ot.GlyphIndex{3, 5, 6, 7}, set.Slice(), "first input coverage of chained context")
	assert.True(t, LookupCoverage(gsub, 42, set), "missing lookup has no coverage")
	assert.Equal(t, 4, set.Len())
}

func TestLookupMayApply(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype.layout")
	defer teardown()
	//
	gsub := parseFont(t, testFont()).Layout.GSub
	assert.True(t, LookupMayApply(gsub, 0, ot.NewGlyphSet(2, 8)))
	assert.False(t, LookupMayApply(gsub, 0, ot.NewGlyphSet(4)))
	assert.False(t, LookupMayApply(gsub, 0, ot.NewGlyphSet()))
	assert.Equal(t, []uint32{1, 2}, LookupsMayApply(gsub, indexSet(0, 1, 2, 3), ot.NewGlyphSet(3, 6)).Slice())
}

func TestCollectVariationIndices(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype.layout")
	defer teardown()
	//
	otf := parseFont(t, testFont())
	all := &ot.IndexSet{}
	CollectVariationIndices(otf, nil, all)
	assert.Equal(t, []uint32{ot.PackVariationIndex(0, 0), ot.PackVariationIndex(0, 1)}, all.Slice())
	some := &ot.IndexSet{}
	CollectVariationIndices(otf, indexSet(1), some)
	assert.Equal(t, []uint32{ot.PackVariationIndex(0, 1)}, some.Slice())
}

// --- Helpers ---------------------------------------------------------------

func indexSet(indices ...uint32) *ot.IndexSet {
	set := &ot.IndexSet{}
	for _, i := range indices {
		set.Add(i)
	}
	return set
}

// testFont has a GSUB with scripts DFLT and latn (with language 'TRK ') and
// a GPOS with variation devices.
func testFont() *otbuild.Font {
	gsub := otbuild.Layout{
		Scripts: []otbuild.Script{
			{Tag: "DFLT", Default: &otbuild.LangSys{Required: 0xFFFF, Features: []uint16{0}}},
			{
				Tag:     "latn",
				Default: &otbuild.LangSys{Required: 0xFFFF, Features: []uint16{0, 2}},
				Langs: []otbuild.Lang{
					{Tag: "TRK ", LangSys: otbuild.LangSys{Required: 1, Features: []uint16{0}}},
				},
			},
		},
		Features: []otbuild.Feature{
			{Tag: "liga", Lookups: []uint16{0}},
			{Tag: "locl", Lookups: []uint16{2}},
			{Tag: "ss01", Lookups: []uint16{1}},
		},
		Lookups: []otbuild.Lookup{
			{Type: 1, SubTables: [][]byte{otbuild.SingleSubst1(otbuild.Coverage1(1, 2), 1)}},
			{Type: 1, SubTables: [][]byte{
				otbuild.SingleSubst1(otbuild.Coverage2(otbuild.Range{Start: 5, End: 7}), 1),
			}},
			{Type: 6, SubTables: [][]byte{otbuild.ContextFormat3(true, otbuild.Coverage1(3))}},
			{Type: 1, SubTables: [][]byte{otbuild.SingleSubst1(otbuild.Coverage1(9), 1)}},
		},
		FeatureVariations: otbuild.FeatureVariations(otbuild.FeatureVariation{
			Conditions:    []otbuild.Condition{{Axis: 0, Min: 0.5, Max: 1}},
			Substitutions: []otbuild.Substitution{{FeatureIndex: 0, Lookups: []uint16{3}}},
		}),
	}
	gpos := otbuild.Layout{
		Scripts: []otbuild.Script{{
			Tag:     "latn",
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
	}
	store := otbuild.VarStore(1, []otbuild.Region{{{0, 1, 1}}}, [][]int16{{10}, {20}})
	return otbuild.NewFont().
		Add("head", otbuild.Head(1000, 0)).
		Add("maxp", otbuild.MaxP(10)).
		Add("GSUB", gsub.Bytes()).
		Add("GPOS", gpos.Bytes()).
		Add("GDEF", otbuild.GDef{VarStore: store}.Bytes())
}

func parseFont(t *testing.T, font *otbuild.Font) *ot.Font {
	otf, err := ot.Parse(font.Bytes())
	if err != nil {
		t.Fatalf("cannot parse test font: %v", err)
	}
	for _, e := range otf.Errors() {
		t.Logf("test font: %v", e)
	}
	return otf
}

package ot

import (
	"testing"

	"github.com/npillmayer/otlcommon/internal/otbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupTypeStrings(t *testing.T) {
	for lt, name := range map[LayoutTableLookupType]string{
		GSubLookupTypeSingle:          "Single",
		GSubLookupTypeLigature:        "Ligature",
		GSubLookupTypeChainingContext: "Chaining",
		GSubLookupTypeReverseChaining: "Reverse",
		0:                             "0",
		12:                            "12",
	} {
		if lt.GSubString() != name {
			t.Errorf("expected GSUB lookup type %d to be %q, is %q", lt, name, lt.GSubString())
		}
	}
	if GPosLookupTypeMarkToLigature.GPosString() != "MarkToLigature" {
		t.Errorf("expected GPOS lookup type 5 to be MarkToLigature, is %q", GPosLookupTypeMarkToLigature.GPosString())
	}
	if GPosLookupTypeExtensionPos.GPosString() != "Ext" {
		t.Errorf("expected GPOS lookup type 9 to be Ext, is %q", GPosLookupTypeExtensionPos.GPosString())
	}
	if LayoutTableLookupFlag(0x0308).MarkAttachmentType() != 3 {
		t.Errorf("expected mark attachment type 3 for flag 0x0308")
	}
}

func TestLookupRequirements(t *testing.T) {
	var req LayoutRequirements
	req.AddFromLookupFlag(LOOKUP_FLAG_RIGHT_TO_LEFT)
	assert.Equal(t, LayoutRequirements{}, req)
	req.AddFromLookupFlag(LOOKUP_FLAG_IGNORE_LIGATURES | 0x0200)
	assert.True(t, req.NeedGlyphClassDef)
	assert.True(t, req.NeedMarkAttachClassDef)
	assert.False(t, req.NeedMarkGlyphSets)
	req.Merge(LayoutRequirements{NeedMarkGlyphSets: true})
	assert.True(t, req.NeedMarkGlyphSets)
}

func TestContextualPrimaryCoverage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	b := otbuild.LookupList(
		otbuild.Lookup{Type: 6, SubTables: [][]byte{
			otbuild.ContextFormat3(true, otbuild.Coverage1(5), otbuild.Coverage1(6)),
		}},
		otbuild.Lookup{Type: 5, SubTables: [][]byte{
			otbuild.ContextFormat3(false, otbuild.Coverage1(7, 8)),
		}},
	)
	data, ok := sanitizeTable(T("GSUB"), b, sanitizeLookupList(KindGSUB), false)
	require.True(t, ok)
	ll := viewLookupList(data, KindGSUB)
	chained := ll.Lookup(0).SubTable(0)
	assert.Equal(t, uint16(3), chained.Format())
	assert.True(t, chained.Coverage().Covers(5), "primary coverage is the first input coverage")
	assert.False(t, chained.Coverage().Covers(6))
	ctx := ll.Lookup(1).SubTable(0)
	assert.Equal(t, 2, ctx.Coverage().Len())
	assert.True(t, ctx.Coverage().Covers(8))
	//
	// the same sub-table as GPOS contextual positioning
	b = otbuild.LookupList(otbuild.Lookup{Type: 8, SubTables: [][]byte{
		otbuild.ContextFormat3(true, otbuild.Coverage1(9)),
	}})
	data, ok = sanitizeTable(T("GPOS"), b, sanitizeLookupList(KindGPOS), false)
	require.True(t, ok)
	assert.True(t, viewLookupList(data, KindGPOS).Lookup(0).SubTable(0).Coverage().Covers(9))
}

func TestContextWithoutInput(t *testing.T) {
	b := otbuild.ContextFormat3(false)
	st := LookupSubTable{Type: GSubLookupTypeContext, data: b, kind: KindGSUB}
	assert.Equal(t, 0, st.Coverage().Format(), "context without input glyphs has no coverage")
}

func TestMixedExtensionTypes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	b := otbuild.LookupList(otbuild.Lookup{Type: 7, SubTables: [][]byte{
		otbuild.Extension(1, otbuild.SingleSubst1(otbuild.Coverage1(1), 1)),
		otbuild.Extension(3, otbuild.SingleSubst1(otbuild.Coverage1(1), 1)),
	}})
	_, ok := sanitizeTable(T("GSUB"), b, sanitizeLookupList(KindGSUB), false)
	assert.False(t, ok, "extension sub-tables of different types should fail")
	data, ok := sanitizeTable(T("GSUB"), b, sanitizeLookupList(KindGSUB), true)
	require.True(t, ok)
	assert.True(t, viewLookupList(data, KindGSUB).Lookup(0).IsEmpty())
}

func TestNestedExtensionRejected(t *testing.T) {
	inner := otbuild.Extension(1, otbuild.SingleSubst1(otbuild.Coverage1(1), 1))
	b := otbuild.LookupList(otbuild.Lookup{Type: 7, SubTables: [][]byte{
		otbuild.Extension(7, inner),
	}})
	data, ok := sanitizeTable(T("GSUB"), b, sanitizeLookupList(KindGSUB), true)
	require.True(t, ok)
	l := viewLookupList(data, KindGSUB).Lookup(0)
	require.False(t, l.IsEmpty())
	assert.True(t, l.SubTable(0).IsEmpty(), "extension of an extension is neutered")
}

func TestExtensionFormatUnknown(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	ext := otbuild.Extension(1, otbuild.SingleSubst1(otbuild.Coverage1(1), 1))
	ext[1] = 2 // extension format 2 is undefined
	b := otbuild.LookupList(otbuild.Lookup{Type: 7, SubTables: [][]byte{ext}})
	data, ok := sanitizeTable(T("GSUB"), b, sanitizeLookupList(KindGSUB), false)
	require.True(t, ok)
	l := viewLookupList(data, KindGSUB).Lookup(0)
	require.False(t, l.IsEmpty())
	assert.Equal(t, GSubLookupTypeExtensionSubs, l.Type())
	assert.Equal(t, LayoutTableLookupType(0), l.ResolvedType(),
		"extension type of an unknown extension format is undefined")
	assert.True(t, l.SubTable(0).IsEmpty(), "unknown extension format is not unwrapped")
}

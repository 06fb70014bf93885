package ot

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/otlcommon/internal/otbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestCoverageFormat1(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cov := ParseCoverage(otbuild.Coverage1(3, 7, 12))
	if cov.Format() != 1 {
		t.Fatalf("expected coverage format 1, is %d", cov.Format())
	}
	for g, inx := range map[GlyphIndex]uint32{3: 0, 7: 1, 12: 2, 4: NotCovered, 13: NotCovered} {
		if cov.Index(g) != inx {
			t.Errorf("expected coverage index of glyph %d to be %d, is %d", g, inx, cov.Index(g))
		}
	}
	if cov.Len() != 3 {
		t.Errorf("expected coverage population to be 3, is %d", cov.Len())
	}
}

func TestCoverageFormat2(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cov := ParseCoverage(otbuild.Coverage2(
		otbuild.Range{Start: 10, End: 12, Value: 0},
		otbuild.Range{Start: 20, End: 21, Value: 3},
	))
	if cov.Format() != 2 {
		t.Fatalf("expected coverage format 2, is %d", cov.Format())
	}
	for g, inx := range map[GlyphIndex]uint32{10: 0, 11: 1, 12: 2, 20: 3, 21: 4, 13: NotCovered, 9: NotCovered} {
		if cov.Index(g) != inx {
			t.Errorf("expected coverage index of glyph %d to be %d, is %d", g, inx, cov.Index(g))
		}
	}
	type pair struct {
		G   GlyphIndex
		Inx uint32
	}
	var pairs []pair
	for g, inx := range cov.All() {
		pairs = append(pairs, pair{g, inx})
	}
	expected := []pair{{10, 0}, {11, 1}, {12, 2}, {20, 3}, {21, 4}}
	if diff := cmp.Diff(expected, pairs); diff != "" {
		t.Errorf("coverage iteration mismatch (-want +got):\n%s", diff)
	}
	if cov.Len() != 5 {
		t.Errorf("expected coverage population to be 5, is %d", cov.Len())
	}
}

func TestCoverageIteratorStopsAtBrokenIndices(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cov := ParseCoverage(otbuild.Coverage2(
		otbuild.Range{Start: 10, End: 11, Value: 0},
		otbuild.Range{Start: 20, End: 21, Value: 7}, // should be 2
	))
	var glyphs []GlyphIndex
	for g := range cov.Glyphs() {
		glyphs = append(glyphs, g)
	}
	if diff := cmp.Diff([]GlyphIndex{10, 11}, glyphs); diff != "" {
		t.Errorf("expected iteration to stop at non-consecutive range (-want +got):\n%s", diff)
	}
}

func TestCoverageIteratorStartIndex(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cov := ParseCoverage(otbuild.Coverage2(
		otbuild.Range{Start: 10, End: 11, Value: 5},
		otbuild.Range{Start: 20, End: 20, Value: 7},
	))
	n := 0
	for g, inx := range cov.All() {
		if cov.Index(g) != inx {
			t.Errorf("iterator yields index %d for glyph %d, Index returns %d", inx, g, cov.Index(g))
		}
		n++
	}
	if n != 3 {
		t.Errorf("expected 3 covered glyphs, iterated %d", n)
	}
}

func TestCoverageIteratorReset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	type pair struct {
		G   GlyphIndex
		Inx uint32
	}
	for _, cov := range []Coverage{
		ParseCoverage(otbuild.Coverage1(3, 7, 12)),
		ParseCoverage(otbuild.Coverage2(
			otbuild.Range{Start: 10, End: 11, Value: 2},
			otbuild.Range{Start: 20, End: 20, Value: 4},
		)),
	} {
		it := cov.Iter()
		var first, second []pair
		for ; it.More(); it.Next() {
			first = append(first, pair{it.Glyph(), it.Index()})
		}
		it.Reset()
		for ; it.More(); it.Next() {
			second = append(second, pair{it.Glyph(), it.Index()})
		}
		if len(first) != 3 {
			t.Errorf("format %d: expected 3 glyphs, have %v", cov.Format(), first)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("format %d: iteration after Reset differs (-first +second):\n%s", cov.Format(), diff)
		}
	}
}

func TestCoverageIntersections(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cov := ParseCoverage(otbuild.Coverage2(
		otbuild.Range{Start: 10, End: 12, Value: 0},
		otbuild.Range{Start: 20, End: 21, Value: 3},
	))
	if !cov.Intersects(NewGlyphSet(5, 21)) {
		t.Errorf("expected coverage to intersect {5, 21}")
	}
	if cov.Intersects(NewGlyphSet(13, 19, 22)) {
		t.Errorf("expected coverage not to intersect {13, 19, 22}")
	}
	if !cov.IntersectsIndex(NewGlyphSet(20), 3) {
		t.Errorf("expected coverage index 3 (glyph 20) to intersect {20}")
	}
	if cov.IntersectsIndex(NewGlyphSet(20), 4) {
		t.Errorf("expected coverage index 4 (glyph 21) not to intersect {20}")
	}
	var indices IndexSet
	cov.IntersectedIndices(NewGlyphSet(11, 15, 21), &indices)
	if diff := cmp.Diff([]uint32{1, 4}, indices.Slice()); diff != "" {
		t.Errorf("intersected indices mismatch (-want +got):\n%s", diff)
	}
	set := &GlyphSet{}
	if !cov.Collect(set) {
		t.Fatalf("expected coverage to collect without error")
	}
	if diff := cmp.Diff([]GlyphIndex{10, 11, 12, 20, 21}, set.Slice()); diff != "" {
		t.Errorf("collected glyphs mismatch (-want +got):\n%s", diff)
	}
}

func TestCoverageCollectUnsorted(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cov := ParseCoverage(otbuild.Coverage1(8, 4))
	if cov.Collect(&GlyphSet{}) {
		t.Errorf("expected collecting an unsorted coverage to fail")
	}
}

func TestEmptyCoverage(t *testing.T) {
	cov := ParseCoverage(nil)
	if cov.Format() != 0 || cov.Covers(0) || cov.Len() != 0 {
		t.Errorf("expected empty coverage to cover nothing")
	}
	if cov.Intersects(NewGlyphSet(0, 1)) {
		t.Errorf("expected empty coverage not to intersect")
	}
}

func TestClassDefFormat1(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cd := ParseClassDef(otbuild.ClassDef1(5, 1, 0, 2, 2))
	for g, klass := range map[GlyphIndex]uint16{4: 0, 5: 1, 6: 0, 7: 2, 8: 2, 9: 0} {
		if cd.Class(g) != klass {
			t.Errorf("expected class of glyph %d to be %d, is %d", g, klass, cd.Class(g))
		}
	}
	set := &GlyphSet{}
	cd.Collect(set)
	if diff := cmp.Diff([]GlyphIndex{5, 7, 8}, set.Slice()); diff != "" {
		t.Errorf("collect mismatch (-want +got):\n%s", diff)
	}
	set = &GlyphSet{}
	cd.CollectClass(set, 2)
	if diff := cmp.Diff([]GlyphIndex{7, 8}, set.Slice()); diff != "" {
		t.Errorf("collect class 2 mismatch (-want +got):\n%s", diff)
	}
	if !cd.IntersectsClass(NewGlyphSet(6), 0) {
		t.Errorf("expected glyph 6 to intersect class 0")
	}
	if !cd.IntersectsClass(NewGlyphSet(100), 0) {
		t.Errorf("expected glyph 100 (unlisted) to intersect class 0")
	}
	if cd.IntersectsClass(NewGlyphSet(5, 7), 0) {
		t.Errorf("expected glyphs {5, 7} not to intersect class 0")
	}
}

func TestClassDefFormat2(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cd := ParseClassDef(otbuild.ClassDef2(
		otbuild.Range{Start: 10, End: 14, Value: 1},
		otbuild.Range{Start: 20, End: 20, Value: 3},
	))
	for g, klass := range map[GlyphIndex]uint16{9: 0, 10: 1, 14: 1, 15: 0, 20: 3, 21: 0} {
		if cd.Class(g) != klass {
			t.Errorf("expected class of glyph %d to be %d, is %d", g, klass, cd.Class(g))
		}
	}
	set := &GlyphSet{}
	cd.CollectClass(set, 1)
	if set.Len() != 5 {
		t.Errorf("expected class 1 to have 5 glyphs, has %d", set.Len())
	}
	if !cd.IntersectsClass(NewGlyphSet(12), 1) || cd.IntersectsClass(NewGlyphSet(12), 3) {
		t.Errorf("expected glyph 12 to intersect class 1 only")
	}
	if cd.IntersectsClass(NewGlyphSet(10, 20), 0) {
		t.Errorf("expected glyphs {10, 20} not to intersect class 0")
	}
	if !cd.IntersectsClass(NewGlyphSet(10, 17), 0) {
		t.Errorf("expected glyph 17 to intersect class 0")
	}
	empty := ParseClassDef(otbuild.ClassDef2())
	if !empty.IntersectsClass(NewGlyphSet(1), 0) {
		t.Errorf("expected a class def without ranges to intersect class 0")
	}
}

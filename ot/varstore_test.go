package ot

import (
	"runtime"
	"testing"

	"github.com/npillmayer/otlcommon/internal/otbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f2(v float32) F2Dot14 {
	return F2Dot14FromFloat(v)
}

func TestRegionAxisEvaluate(t *testing.T) {
	tent := VarRegionAxis{Start: 0, Peak: f2(1), End: f2(1)}
	assert.Equal(t, float32(0), tent.Evaluate(0))
	assert.Equal(t, float32(0.5), tent.Evaluate(f2(0.5)))
	assert.Equal(t, float32(1), tent.Evaluate(f2(1)))
	assert.Equal(t, float32(0), tent.Evaluate(f2(-0.5)))
	//
	tent = VarRegionAxis{Start: f2(-1), Peak: f2(-0.5), End: 0}
	assert.Equal(t, float32(0.5), tent.Evaluate(f2(-0.75)))
	assert.Equal(t, float32(0.5), tent.Evaluate(f2(-0.25)))
	//
	peakless := VarRegionAxis{Start: f2(-1), Peak: 0, End: f2(1)}
	assert.Equal(t, float32(1), peakless.Evaluate(f2(0.7)), "peak at 0 does not restrict")
	malformed := VarRegionAxis{Start: f2(0.5), Peak: f2(0.2), End: f2(1)}
	assert.Equal(t, float32(1), malformed.Evaluate(f2(0.9)), "start > peak is ignored")
	crossing := VarRegionAxis{Start: f2(-0.5), Peak: f2(0.5), End: f2(1)}
	assert.Equal(t, float32(1), crossing.Evaluate(f2(0.9)), "a region crossing 0 is ignored")
}

func TestVariationStoreSingleRegion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	b := otbuild.VarStore(1, []otbuild.Region{{{0, 1, 1}}}, [][]int16{{100}, {-40}})
	data, ok := sanitizeTable(T("test"), b, sanitizeVariationStore, false)
	require.True(t, ok, "variation store should pass sanitizing")
	store := ParseVariationStore(data)
	require.False(t, store.IsEmpty())
	assert.Equal(t, 1, store.DataCount())
	assert.Equal(t, 1, store.Regions().AxisCount())
	assert.Equal(t, 1, store.Regions().RegionCount())
	assert.Equal(t, 2, store.Data(0).ItemCount())
	//
	assert.Equal(t, float32(50), store.Delta(0, 0, []F2Dot14{f2(0.5)}))
	assert.Equal(t, float32(100), store.Delta(0, 0, []F2Dot14{f2(1)}))
	assert.Equal(t, float32(-20), store.DeltaIndex(PackVariationIndex(0, 1), []F2Dot14{f2(0.5)}))
	assert.Equal(t, float32(0), store.Delta(0, 0, nil), "default instance has no deltas")
	assert.Equal(t, float32(0), store.Delta(1, 0, []F2Dot14{f2(1)}), "outer index out of range")
	assert.Equal(t, float32(0), store.Delta(0, 2, []F2Dot14{f2(1)}), "inner index out of range")
	//
	scalars := make([]float32, 3)
	store.Scalars(0, []F2Dot14{f2(0.25)}, scalars)
	assert.Equal(t, []float32{0.25, 0, 0}, scalars)
}

func TestVarDataMixedDeltaSizes(t *testing.T) {
	// two regions, the first with int16 deltas, the second with int8 deltas
	w := &otbuild.Writer{}
	w.U16(1, 1, 2, 0, 1) // itemCount, shortCount, regionIndexCount, indices
	w.I16(1000).U8(0xFE) // row 0: 1000, -2
	vd := viewVarData(w.Bytes())
	assert.Equal(t, 1, vd.ShortCount())
	assert.Equal(t, int16(1000), vd.ItemDelta(0, 0))
	assert.Equal(t, int16(-2), vd.ItemDelta(0, 1))
	out := make([]int16, 2)
	assert.Equal(t, 2, vd.ItemDeltas(0, out))
	assert.Equal(t, []int16{1000, -2}, out)
}

func TestVariationStoreRejectsShortCount(t *testing.T) {
	w := &otbuild.Writer{}
	w.U16(0, 2, 1, 0) // short count 2 > region count 1
	_, ok := sanitizeTable(T("test"), w.Bytes(), sanitizeVarData, true)
	assert.False(t, ok)
}

func TestConditionSet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	b := otbuild.ConditionSet(otbuild.Condition{Axis: 0, Min: 0.5, Max: 1})
	data, ok := sanitizeTable(T("test"), b, sanitizeConditionSet, false)
	require.True(t, ok)
	cs := viewConditionSet(data)
	require.Equal(t, 1, cs.Count())
	assert.True(t, cs.Evaluate([]F2Dot14{f2(0.75)}))
	assert.False(t, cs.Evaluate([]F2Dot14{f2(0.25)}))
	assert.False(t, cs.Evaluate(nil), "missing axis is at coordinate 0")
	assert.True(t, viewConditionSet(nil).Evaluate(nil), "empty condition set always holds")
}

func TestFeatureVariationsFirstMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	b := otbuild.FeatureVariations(
		otbuild.FeatureVariation{
			Conditions:    []otbuild.Condition{{Axis: 0, Min: 0.5, Max: 1}},
			Substitutions: []otbuild.Substitution{{FeatureIndex: 0, Lookups: []uint16{3}}},
		},
		otbuild.FeatureVariation{
			Conditions:    []otbuild.Condition{{Axis: 0, Min: 0, Max: 1}},
			Substitutions: []otbuild.Substitution{{FeatureIndex: 0, Lookups: []uint16{4, 5}}},
		},
	)
	data, ok := sanitizeTable(T("test"), b, sanitizeFeatureVariations, false)
	require.True(t, ok)
	fv := viewFeatureVariations(data)
	require.Equal(t, 2, fv.Count())
	assert.Equal(t, uint32(0), fv.FindIndex([]F2Dot14{f2(0.8)}), "first matching record wins")
	assert.Equal(t, uint32(1), fv.FindIndex([]F2Dot14{f2(0.2)}))
	assert.Equal(t, uint32(NotFoundIndex), fv.FindIndex([]F2Dot14{f2(-0.2)}))
	//
	f, ok := fv.FindSubstitute(1, 0)
	require.True(t, ok)
	assert.Equal(t, 2, f.LookupCount())
	assert.Equal(t, uint32(5), f.LookupIndex(1))
	_, ok = fv.FindSubstitute(1, 1)
	assert.False(t, ok, "feature 1 has no substitute")
	_, ok = fv.FindSubstitute(NotFoundIndex, 0)
	assert.False(t, ok)
	//
	var features, lookups IndexSet
	features.Add(0)
	fv.CollectLookups(&features, &lookups)
	assert.Equal(t, []uint32{3, 4, 5}, lookups.Slice())
}

func TestHintingDevice(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	b := otbuild.HintingDevice(11, DeviceFormatHinting8Bit, 1, -1, 2)
	data, ok := sanitizeTable(T("test"), b, sanitizeDevice, false)
	require.True(t, ok)
	d := ParseDevice(data)
	h, ok := d.Hinting()
	require.True(t, ok)
	assert.Equal(t, 10, h.Size())
	assert.Equal(t, 1, h.DeltaPixels(11))
	assert.Equal(t, -1, h.DeltaPixels(12))
	assert.Equal(t, 2, h.DeltaPixels(13))
	assert.Equal(t, 0, h.DeltaPixels(10), "size below range")
	assert.Equal(t, 0, h.DeltaPixels(14), "size above range")
	assert.Equal(t, int32(-83), h.Delta(12, 1000))
	//
	h = mustHinting(t, otbuild.HintingDevice(10, DeviceFormatHinting2Bit, 1, -1, 0, -2, 1))
	assert.Equal(t, []int{1, -1, 0, -2, 1}, deltaPixels(h, 10, 14))
	h = mustHinting(t, otbuild.HintingDevice(8, DeviceFormatHinting4Bit, 7, -8, 3, 0, -1))
	assert.Equal(t, []int{7, -8, 3, 0, -1}, deltaPixels(h, 8, 12))
}

func mustHinting(t *testing.T, b []byte) HintingDevice {
	h, ok := ParseDevice(b).Hinting()
	require.True(t, ok)
	return h
}

func deltaPixels(h HintingDevice, from, to uint16) []int {
	var r []int
	for ppem := from; ppem <= to; ppem++ {
		r = append(r, h.DeltaPixels(ppem))
	}
	return r
}

func TestDeviceTruncated(t *testing.T) {
	b := otbuild.HintingDevice(11, DeviceFormatHinting8Bit, 1, -1, 2)
	_, ok := sanitizeTable(T("test"), b[:8], sanitizeDevice, true)
	assert.False(t, ok, "truncated device table should fail")
	unknown := (&otbuild.Writer{}).U16(11, 13, 4).Bytes()
	assert.True(t, ParseDevice(unknown).IsEmpty(), "unknown delta format yields absent device")
}

type testInstance struct {
	coords []F2Dot14
}

func (ti testInstance) XScale() int32 { return 2000 }
func (ti testInstance) YScale() int32 { return 2000 }
func (ti testInstance) XPPEM() uint16 { return 12 }
func (ti testInstance) YPPEM() uint16 { return 12 }
func (ti testInstance) Coords() []F2Dot14 { return ti.coords }
func (ti testInstance) HasVerticalOrigins() bool { return false }
func (ti testInstance) EmScaleX(v float32) int32 { return int32(v * 2) }
func (ti testInstance) EmScaleY(v float32) int32 { return int32(v * 2) }

func TestVariationDevice(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	store := ParseVariationStore(otbuild.VarStore(1, []otbuild.Region{{{0, 1, 1}}}, [][]int16{{0}, {30}}))
	d := ParseDevice(otbuild.VariationIndex(0, 1))
	v, ok := d.Variation()
	require.True(t, ok)
	assert.Equal(t, uint16(1), v.Inner)
	assert.Equal(t, float32(15), v.Delta([]F2Dot14{f2(0.5)}, store))
	assert.Equal(t, int32(60), d.XDelta(testInstance{coords: []F2Dot14{f2(1)}}, store))
	assert.Equal(t, int32(0), d.YDelta(testInstance{}, store))
	//
	var set IndexSet
	d.CollectVariationIndices(&set)
	assert.Equal(t, []uint32{PackVariationIndex(0, 1)}, set.Slice())
	//
	h := ParseDevice(otbuild.HintingDevice(12, DeviceFormatHinting8Bit, 3))
	assert.Equal(t, int32(500), h.XDelta(testInstance{}, store))
	assert.Equal(t, int32(0), Device{}.XDelta(testInstance{}, store))
}

func TestCollectNoVariationIndex(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	var set IndexSet
	ParseDevice(otbuild.VariationIndex(0xFFFF, 0xFFFF)).CollectVariationIndices(&set)
	ParseDevice(otbuild.VariationIndex(0, 3)).CollectVariationIndices(&set)
	runtime.ReadMemStats(&after)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20),
		"collecting two indices must not allocate a dense bitmap")
	assert.Equal(t, []uint32{PackVariationIndex(0, 3), 0xFFFFFFFF}, set.Slice())
	assert.True(t, set.Contains(0xFFFFFFFF))
	assert.False(t, set.Contains(0xFFFF0000))
	assert.Equal(t, 2, set.Len())
}

func TestIndexSetAcrossPages(t *testing.T) {
	var set IndexSet
	for _, i := range []uint32{0x30000, 5, 0x10000, 0xFFFF, 5} {
		set.Add(i)
	}
	assert.Equal(t, []uint32{5, 0xFFFF, 0x10000, 0x30000}, set.Slice())
	var empty *IndexSet
	assert.Equal(t, 0, empty.Len())
	assert.False(t, empty.Contains(5))
}

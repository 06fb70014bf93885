package ot

// Item variation stores hold the deltas of variable fonts. Deltas are stored
// per item (a glyph metric, an anchor coordinate, …) and per region of the
// font's design space. A region is a product of tents, one per axis.
//
// See https://learn.microsoft.com/en-us/typography/opentype/spec/otvarcommonformats

// --- Regions ---------------------------------------------------------------

// VarRegionAxis is the interpolation tent of a region for a single axis.
type VarRegionAxis struct {
	Start, Peak, End F2Dot14
}

// Evaluate returns the weight of a coordinate within the tent. Tents which are
// malformed evaluate to 1, as do tents with a peak at 0.
func (a VarRegionAxis) Evaluate(coord F2Dot14) float32 {
	start, peak, end := int32(a.Start), int32(a.Peak), int32(a.End)
	c := int32(coord)
	if start > peak || peak > end {
		return 1
	}
	if start < 0 && end > 0 && peak != 0 {
		return 1
	}
	if peak == 0 || c == peak {
		return 1
	}
	if c <= start || end <= c {
		return 0
	}
	if c < peak {
		return float32(c-start) / float32(peak-start)
	}
	return float32(end-c) / float32(end-peak)
}

// VarRegionList is the list of regions of a variation store, all of them with
// the same number of axes.
type VarRegionList struct {
	b binarySegm
}

const varRegionAxisSize = 6

func viewVarRegionList(b binarySegm) VarRegionList {
	return VarRegionList{b: b}
}

func sanitizeVarRegionList(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 4) {
		return false
	}
	n, err := checkedMulInt(int(b.U16(0)), int(b.U16(2)))
	if err != nil {
		return false
	}
	return s.checkArray(b, 4, n, varRegionAxisSize)
}

// AxisCount returns the number of axes of every region.
func (rl VarRegionList) AxisCount() int {
	return int(rl.b.U16(0))
}

// RegionCount returns the number of regions.
func (rl VarRegionList) RegionCount() int {
	return int(rl.b.U16(2))
}

// Axis returns the tent for axis of region.
func (rl VarRegionList) Axis(region, axis int) VarRegionAxis {
	at := 4 + (region*rl.AxisCount()+axis)*varRegionAxisSize
	return VarRegionAxis{
		Start: F2Dot14(rl.b.I16(at)),
		Peak:  F2Dot14(rl.b.I16(at + 2)),
		End:   F2Dot14(rl.b.I16(at + 4)),
	}
}

// Evaluate returns the scalar of a region for a set of normalized
// coordinates. Axes beyond the end of coords are at coordinate 0. Regions out
// of range evaluate to 0.
func (rl VarRegionList) Evaluate(region int, coords []F2Dot14) float32 {
	if region < 0 || region >= rl.RegionCount() {
		return 0
	}
	v := float32(1)
	for i := 0; i < rl.AxisCount(); i++ {
		f := rl.Axis(region, i).Evaluate(coordAt(coords, i))
		if f == 0 {
			return 0
		}
		v *= f
	}
	return v
}

// --- Delta sets ------------------------------------------------------------

// VarData is an item variation data sub-table, i.e. a set of delta rows. Each
// row holds one delta per region referenced. The first ShortCount deltas of a
// row are int16 values, the remaining ones are int8 values.
type VarData struct {
	b       binarySegm
	regions array
}

func viewVarData(b binarySegm) VarData {
	if len(b) < 6 {
		return VarData{}
	}
	return VarData{b: b, regions: viewArray16(b, 4, 2)}
}

func sanitizeVarData(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 6) || !s.checkArray16(b, 4, 2) {
		return false
	}
	regionCount := int(b.U16(4))
	if int(b.U16(2)) > regionCount {
		tracer().Debugf("VarData: short count %d > region count %d", b.U16(2), regionCount)
		return false
	}
	return s.checkArray(b, 6+2*regionCount, int(b.U16(0)), varDataRowSize(b))
}

// varDataRowSize is shortCount*2 + (regionCount-shortCount)*1.
func varDataRowSize(b binarySegm) int {
	return int(b.U16(2)) + int(b.U16(4))
}

// ItemCount returns the number of delta rows.
func (vd VarData) ItemCount() int {
	return int(vd.b.U16(0))
}

// ShortCount returns the number of int16 deltas per row.
func (vd VarData) ShortCount() int {
	return int(vd.b.U16(2))
}

// RegionIndexCount returns the number of regions referenced.
func (vd VarData) RegionIndexCount() int {
	return vd.regions.Len()
}

// RegionIndices copies the region indices, starting at index start, into out
// and returns the total number of region indices.
func (vd VarData) RegionIndices(start int, out []uint16) int {
	return copyIndices(vd.regions, start, out)
}

// row returns the delta row of an item.
func (vd VarData) row(item int) binarySegm {
	size := varDataRowSize(vd.b)
	at := 6 + 2*vd.regions.Len() + item*size
	r, err := vd.b.view(at, size)
	if err != nil {
		return nil
	}
	return r
}

// ItemDelta returns the raw delta of item for the region at index region of
// the region indices.
func (vd VarData) ItemDelta(item, region int) int16 {
	if item < 0 || item >= vd.ItemCount() || region < 0 || region >= vd.regions.Len() {
		return 0
	}
	row := vd.row(item)
	if region < vd.ShortCount() {
		return row.I16(2 * region)
	}
	at := 2*vd.ShortCount() + region - vd.ShortCount()
	if at >= len(row) {
		return 0
	}
	return int16(int8(row[at]))
}

// ItemDeltas copies the raw deltas of an item into out and returns the number
// of deltas of the row.
func (vd VarData) ItemDeltas(item int, out []int16) int {
	n := vd.regions.Len()
	for i := 0; i < len(out) && i < n; i++ {
		out[i] = vd.ItemDelta(item, i)
	}
	return n
}

// Delta returns the interpolated delta for item inner. Items out of range
// have a delta of 0.
func (vd VarData) Delta(inner int, coords []F2Dot14, regions VarRegionList) float32 {
	if inner < 0 || inner >= vd.ItemCount() {
		return 0
	}
	row := vd.row(inner)
	if row == nil {
		return 0
	}
	scount, count := vd.ShortCount(), vd.regions.Len()
	var delta float32
	i := 0
	for ; i < scount; i++ {
		scalar := regions.Evaluate(int(vd.regions.U16(i)), coords)
		delta += scalar * float32(row.I16(2*i))
	}
	bytes := row[2*scount:]
	for ; i < count; i++ {
		scalar := regions.Evaluate(int(vd.regions.U16(i)), coords)
		delta += scalar * float32(int8(bytes[i-scount]))
	}
	return delta
}

// Scalars writes the region scalars for coords into out. Entries of out beyond
// the number of regions referenced are set to 0.
func (vd VarData) Scalars(coords []F2Dot14, regions VarRegionList, out []float32) {
	count := min(len(out), vd.regions.Len())
	for i := 0; i < count; i++ {
		out[i] = regions.Evaluate(int(vd.regions.U16(i)), coords)
	}
	for i := count; i < len(out); i++ {
		out[i] = 0
	}
}

// --- Variation store -------------------------------------------------------

// VariationStore is an item variation store. Deltas are addressed by an
// outer index, selecting a VarData sub-table, and an inner index, selecting
// a row of the sub-table.
//
// The zero value is an empty store, returning 0 for every delta.
type VariationStore struct {
	b binarySegm
}

// ParseVariationStore interprets b as an item variation store. b must have
// been sanitized.
func ParseVariationStore(b binarySegm) VariationStore {
	if b.U16(0) != 1 {
		return VariationStore{}
	}
	return VariationStore{b: b}
}

func sanitizeVariationStore(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 8) || b.U16(0) != 1 {
		tracer().Debugf("item variation store: bad header")
		return false
	}
	if !s.offset32(b, 2, sanitizeVarRegionList) {
		return false
	}
	if !s.checkArray16(b, 6, 4) {
		return false
	}
	for i := 0; i < int(b.U16(6)); i++ {
		if !s.offset32(b, 8+4*i, sanitizeVarData) {
			return false
		}
	}
	return true
}

// IsEmpty is true for an absent store.
func (vs VariationStore) IsEmpty() bool {
	return len(vs.b) == 0
}

// Regions returns the region list of the store.
func (vs VariationStore) Regions() VarRegionList {
	return viewVarRegionList(vs.b.offset32(2))
}

// DataCount returns the number of VarData sub-tables.
func (vs VariationStore) DataCount() int {
	return int(vs.b.U16(6))
}

// Data returns VarData sub-table outer.
func (vs VariationStore) Data(outer int) VarData {
	if outer < 0 || outer >= vs.DataCount() {
		return VarData{}
	}
	return viewVarData(vs.b.offset32(8 + 4*outer))
}

// Delta returns the interpolated delta for an item. Indices out of range
// yield 0.
func (vs VariationStore) Delta(outer, inner int, coords []F2Dot14) float32 {
	if outer < 0 || outer >= vs.DataCount() {
		return 0
	}
	return vs.Data(outer).Delta(inner, coords, vs.Regions())
}

// DeltaIndex returns the delta for a packed variation index, where the outer
// index is in the high 16 bits and the inner index in the low 16 bits.
func (vs VariationStore) DeltaIndex(index uint32, coords []F2Dot14) float32 {
	return vs.Delta(int(index>>16), int(index&0xFFFF), coords)
}

// RegionIndexCount returns the number of regions referenced by VarData outer.
func (vs VariationStore) RegionIndexCount(outer int) int {
	return vs.Data(outer).RegionIndexCount()
}

// Scalars writes the region scalars of VarData outer into out.
func (vs VariationStore) Scalars(outer int, coords []F2Dot14, out []float32) {
	vs.Data(outer).Scalars(coords, vs.Regions(), out)
}

// PackVariationIndex packs an (outer, inner) pair into a single index.
func PackVariationIndex(outer, inner uint16) uint32 {
	return uint32(outer)<<16 + uint32(inner)
}

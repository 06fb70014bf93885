package ot

import "iter"

// Coverage is a coverage table. A coverage table identifies the glyphs which
// are affected by a lookup sub-table, and maps each of them to a coverage index,
// i.e. its ordinal position within the set of covered glyphs.
//
// Coverage tables come in two formats: format 1 is a sorted array of glyphs,
// format 2 a sorted array of glyph ranges, each carrying the coverage index of
// its first glyph.
//
// The zero value is an empty coverage, covering no glyph.
type Coverage struct {
	impl coverageImpl
}

// coverageImpl is implemented by the concrete coverage formats.
type coverageImpl interface {
	index(g GlyphIndex) uint32
	intersects(set *GlyphSet) bool
	intersectsIndex(set *GlyphSet, inx uint32) bool
	intersectedIndices(set *GlyphSet, out *IndexSet)
	collect(set *GlyphSet) bool
	population() int
	start(it *CoverageIter)
	advance(it *CoverageIter)
	more(it *CoverageIter) bool
}

// coverageFormat1 is a sorted array of glyphs.
type coverageFormat1 struct {
	glyphs array
}

// coverageFormat2 is a sorted array of range records
// {startGlyphID, endGlyphID, startCoverageIndex}.
type coverageFormat2 struct {
	ranges array
}

// ParseCoverage interprets b as a coverage table. b should have been sanitized
// with sanitizeCoverage. Unknown formats yield an empty coverage.
func ParseCoverage(b binarySegm) Coverage {
	switch b.U16(0) {
	case 1:
		return Coverage{impl: coverageFormat1{glyphs: viewArray16(b, 2, 2)}}
	case 2:
		return Coverage{impl: coverageFormat2{ranges: viewArray16(b, 2, 6)}}
	}
	return Coverage{}
}

func sanitizeCoverage(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 2) {
		return false
	}
	switch b.U16(0) {
	case 1:
		return s.checkArray16(b, 2, 2)
	case 2:
		return s.checkArray16(b, 2, 6)
	}
	return true
}

// Format returns the format of the coverage table (1 or 2), or 0 for an empty
// coverage.
func (c Coverage) Format() int {
	switch c.impl.(type) {
	case coverageFormat1:
		return 1
	case coverageFormat2:
		return 2
	}
	return 0
}

// Index returns the coverage index of glyph g, or NotCovered.
func (c Coverage) Index(g GlyphIndex) uint32 {
	if c.impl == nil {
		return NotCovered
	}
	return c.impl.index(g)
}

// Covers is true if glyph g is covered.
func (c Coverage) Covers(g GlyphIndex) bool {
	return c.Index(g) != NotCovered
}

// Intersects is true if any glyph of set is covered.
func (c Coverage) Intersects(set *GlyphSet) bool {
	if c.impl == nil || set.IsEmpty() {
		return false
	}
	return c.impl.intersects(set)
}

// IntersectsIndex is true if the glyph with coverage index inx is a member of set.
func (c Coverage) IntersectsIndex(set *GlyphSet, inx uint32) bool {
	if c.impl == nil || set.IsEmpty() {
		return false
	}
	return c.impl.intersectsIndex(set, inx)
}

// IntersectedIndices adds the coverage indices of all glyphs of set to out.
func (c Coverage) IntersectedIndices(set *GlyphSet, out *IndexSet) {
	if c.impl == nil || set.IsEmpty() {
		return
	}
	c.impl.intersectedIndices(set, out)
}

// Collect adds all covered glyphs to set. It returns false if the table is
// obviously broken, i.e. glyphs are unsorted (format 1) or a range is
// inverted (format 2).
func (c Coverage) Collect(set *GlyphSet) bool {
	if c.impl == nil {
		return true
	}
	return c.impl.collect(set)
}

// Len returns the number of covered glyphs, as stated by the table.
func (c Coverage) Len() int {
	if c.impl == nil {
		return 0
	}
	return c.impl.population()
}

// Iter returns an iterator over the covered glyphs.
func (c Coverage) Iter() *CoverageIter {
	it := &CoverageIter{cov: c}
	it.Reset()
	return it
}

// All iterates over all covered glyphs in ascending order, together with
// their coverage index.
func (c Coverage) All() iter.Seq2[GlyphIndex, uint32] {
	return func(yield func(GlyphIndex, uint32) bool) {
		for it := c.Iter(); it.More(); it.Next() {
			if !yield(it.Glyph(), it.Index()) {
				return
			}
		}
	}
}

// Glyphs iterates over all covered glyphs in ascending order.
func (c Coverage) Glyphs() iter.Seq[GlyphIndex] {
	return func(yield func(GlyphIndex) bool) {
		for g := range c.All() {
			if !yield(g) {
				return
			}
		}
	}
}

// CoverageIter is a forward-only iterator over the glyphs of a coverage table.
// Glyphs are produced in the order of the table, which for well-formed tables
// is ascending. For format 2 tables, iteration stops at the first range whose
// coverage index does not continue the previous range.
//
//	for it := cov.Iter(); it.More(); it.Next() {
//	    g, inx := it.Glyph(), it.Index()
//	}
type CoverageIter struct {
	cov   Coverage
	i     int    // current array position
	j     uint32 // current glyph (format 2)
	index uint32 // current coverage index (format 2)
}

// Reset restarts the iterator at the first glyph.
func (it *CoverageIter) Reset() {
	it.i, it.j, it.index = 0, 0, 0
	if it.cov.impl != nil {
		it.cov.impl.start(it)
	}
}

// More is true if the iterator has not been exhausted.
func (it *CoverageIter) More() bool {
	if it.cov.impl == nil {
		return false
	}
	return it.cov.impl.more(it)
}

// Next advances the iterator.
func (it *CoverageIter) Next() {
	if it.More() {
		it.cov.impl.advance(it)
	}
}

// Glyph returns the current glyph.
func (it *CoverageIter) Glyph() GlyphIndex {
	if c, ok := it.cov.impl.(coverageFormat1); ok {
		return GlyphIndex(c.glyphs.U16(it.i))
	}
	return GlyphIndex(it.j)
}

// Index returns the coverage index of the current glyph.
func (it *CoverageIter) Index() uint32 {
	if _, ok := it.cov.impl.(coverageFormat1); ok {
		return uint32(it.i)
	}
	return it.index
}

// --- Format 1 --------------------------------------------------------------

func (c coverageFormat1) index(g GlyphIndex) uint32 {
	return c.glyphs.bsearch(func(rec binarySegm) int {
		return int(rec.U16(0)) - int(g)
	})
}

func (c coverageFormat1) intersects(set *GlyphSet) bool {
	for _, rec := range c.glyphs.All() {
		if set.Contains(GlyphIndex(rec.U16(0))) {
			return true
		}
	}
	return false
}

func (c coverageFormat1) intersectsIndex(set *GlyphSet, inx uint32) bool {
	if inx >= uint32(c.glyphs.Len()) {
		return false
	}
	return set.Contains(GlyphIndex(c.glyphs.U16(int(inx))))
}

func (c coverageFormat1) intersectedIndices(set *GlyphSet, out *IndexSet) {
	for i, rec := range c.glyphs.All() {
		if set.Contains(GlyphIndex(rec.U16(0))) {
			out.Add(uint32(i))
		}
	}
}

func (c coverageFormat1) collect(set *GlyphSet) bool {
	return set.AddSorted(func(yield func(GlyphIndex) bool) {
		for _, rec := range c.glyphs.All() {
			if !yield(GlyphIndex(rec.U16(0))) {
				return
			}
		}
	})
}

func (c coverageFormat1) population() int {
	return c.glyphs.Len()
}

func (c coverageFormat1) start(it *CoverageIter) {}

func (c coverageFormat1) more(it *CoverageIter) bool {
	return it.i < c.glyphs.Len()
}

func (c coverageFormat1) advance(it *CoverageIter) {
	it.i++
}

// --- Format 2 --------------------------------------------------------------

// glyphRange decodes a range record.
func glyphRange(rec binarySegm) (first, last GlyphIndex, value uint16) {
	return GlyphIndex(rec.U16(0)), GlyphIndex(rec.U16(2)), rec.U16(4)
}

// findRange does a binary search for a range record containing g.
func findRange(ranges array, g GlyphIndex) uint32 {
	return ranges.bsearch(func(rec binarySegm) int {
		first, last, _ := glyphRange(rec)
		if g < first {
			return 1
		} else if g > last {
			return -1
		}
		return 0
	})
}

func (c coverageFormat2) index(g GlyphIndex) uint32 {
	i := findRange(c.ranges, g)
	if i == NotFoundIndex {
		return NotCovered
	}
	first, _, value := glyphRange(c.ranges.Get(int(i)))
	return uint32(value) + uint32(g-first)
}

func (c coverageFormat2) intersects(set *GlyphSet) bool {
	for _, rec := range c.ranges.All() {
		first, last, _ := glyphRange(rec)
		if set.IntersectsRange(first, last) {
			return true
		}
	}
	return false
}

func (c coverageFormat2) intersectsIndex(set *GlyphSet, inx uint32) bool {
	for _, rec := range c.ranges.All() {
		first, last, value := glyphRange(rec)
		if inx < uint32(value) {
			return false
		}
		if first <= last && inx <= uint32(value)+uint32(last-first) {
			return set.Contains(first + GlyphIndex(inx-uint32(value)))
		}
	}
	return false
}

func (c coverageFormat2) intersectedIndices(set *GlyphSet, out *IndexSet) {
	for _, rec := range c.ranges.All() {
		first, last, value := glyphRange(rec)
		if first > last {
			continue
		}
		for g, ok := set.atOrAfter(first); ok && g <= last; g, ok = set.Next(g) {
			out.Add(uint32(value) + uint32(g-first))
		}
	}
}

func (c coverageFormat2) collect(set *GlyphSet) bool {
	for _, rec := range c.ranges.All() {
		first, last, _ := glyphRange(rec)
		if !set.AddRange(first, last) {
			return false
		}
	}
	return true
}

func (c coverageFormat2) population() int {
	n := 0
	for _, rec := range c.ranges.All() {
		first, last, _ := glyphRange(rec)
		if first <= last {
			n += int(last-first) + 1
		}
	}
	return n
}

func (c coverageFormat2) start(it *CoverageIter) {
	if c.ranges.Len() == 0 {
		return
	}
	first, last, value := glyphRange(c.ranges.Get(0))
	it.j = uint32(first)
	it.index = uint32(value)
	if first > last { // broken table, skip it
		it.i = c.ranges.Len()
	}
}

func (c coverageFormat2) more(it *CoverageIter) bool {
	return it.i < c.ranges.Len()
}

func (c coverageFormat2) advance(it *CoverageIter) {
	_, last, _ := glyphRange(c.ranges.Get(it.i))
	if it.j >= uint32(last) {
		it.i++
		if it.i < c.ranges.Len() {
			prev := it.index
			first, _, value := glyphRange(c.ranges.Get(it.i))
			it.j = uint32(first)
			it.index = uint32(value)
			if it.index != prev+1 { // coverage indices must be consecutive
				it.i = c.ranges.Len()
			}
		}
		return
	}
	it.index++
	it.j++
}

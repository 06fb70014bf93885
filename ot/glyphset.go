package ot

import (
	"iter"
	"maps"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// GlyphSet is a set of glyph indices. It is used by coverage and class
// definition tables to collect glyphs and to test for intersections.
//
// The zero value is an empty set, ready to use.
type GlyphSet struct {
	bits bitset.BitSet
}

// NewGlyphSet creates a glyph set containing the given glyphs.
func NewGlyphSet(glyphs ...GlyphIndex) *GlyphSet {
	set := &GlyphSet{}
	for _, g := range glyphs {
		set.Add(g)
	}
	return set
}

// Add adds a glyph to the set.
func (set *GlyphSet) Add(g GlyphIndex) {
	set.bits.Set(uint(g))
}

// AddRange adds all glyphs in [first, last]. It returns false and does not
// add anything if first > last.
func (set *GlyphSet) AddRange(first, last GlyphIndex) bool {
	if first > last {
		return false
	}
	for g := uint(first); g <= uint(last); g++ {
		set.bits.Set(g)
	}
	return true
}

// AddSorted adds glyphs from a sequence which is expected to be sorted in
// ascending order. It returns false as soon as it encounters a glyph smaller
// than its predecessor; glyphs up to this point have been added.
func (set *GlyphSet) AddSorted(glyphs iter.Seq[GlyphIndex]) bool {
	first, last := true, GlyphIndex(0)
	for g := range glyphs {
		if !first && g < last {
			return false
		}
		set.bits.Set(uint(g))
		first, last = false, g
	}
	return true
}

// Contains checks if a glyph is a member of the set.
func (set *GlyphSet) Contains(g GlyphIndex) bool {
	if set == nil {
		return false
	}
	return set.bits.Test(uint(g))
}

// Remove deletes a glyph from the set.
func (set *GlyphSet) Remove(g GlyphIndex) {
	set.bits.Clear(uint(g))
}

// Len returns the number of glyphs in the set.
func (set *GlyphSet) Len() int {
	if set == nil {
		return 0
	}
	return int(set.bits.Count())
}

// IsEmpty is true if the set does not contain any glyph.
func (set *GlyphSet) IsEmpty() bool {
	return set.Len() == 0
}

// Next returns the smallest member of the set which is greater than g.
// If there is none, false is returned.
func (set *GlyphSet) Next(g GlyphIndex) (GlyphIndex, bool) {
	if set == nil {
		return 0, false
	}
	n, ok := set.bits.NextSet(uint(g) + 1)
	if !ok || n > MaxGlyphCount {
		return 0, false
	}
	return GlyphIndex(n), true
}

// atOrAfter returns the smallest member of the set which is not less than g.
func (set *GlyphSet) atOrAfter(g GlyphIndex) (GlyphIndex, bool) {
	if set == nil {
		return 0, false
	}
	n, ok := set.bits.NextSet(uint(g))
	if !ok || n > MaxGlyphCount {
		return 0, false
	}
	return GlyphIndex(n), true
}

// First returns the smallest member of the set.
func (set *GlyphSet) First() (GlyphIndex, bool) {
	if set == nil {
		return 0, false
	}
	n, ok := set.bits.NextSet(0)
	if !ok || n > MaxGlyphCount {
		return 0, false
	}
	return GlyphIndex(n), true
}

// IntersectsRange is true if the set contains any glyph in [first, last].
func (set *GlyphSet) IntersectsRange(first, last GlyphIndex) bool {
	if set == nil || first > last {
		return false
	}
	n, ok := set.bits.NextSet(uint(first))
	return ok && n <= uint(last)
}

// Union adds all glyphs of other to set.
func (set *GlyphSet) Union(other *GlyphSet) {
	if other == nil {
		return
	}
	set.bits.InPlaceUnion(&other.bits)
}

// Glyphs iterates over all glyphs of the set in ascending order.
func (set *GlyphSet) Glyphs() iter.Seq[GlyphIndex] {
	return func(yield func(GlyphIndex) bool) {
		if set == nil {
			return
		}
		for i, ok := set.bits.NextSet(0); ok && i <= MaxGlyphCount; i, ok = set.bits.NextSet(i + 1) {
			if !yield(GlyphIndex(i)) {
				return
			}
		}
	}
}

// Slice returns the glyphs of the set as a sorted slice.
func (set *GlyphSet) Slice() []GlyphIndex {
	glyphs := make([]GlyphIndex, 0, set.Len())
	for g := range set.Glyphs() {
		glyphs = append(glyphs, g)
	}
	return glyphs
}

// IndexSet is a set of non-negative integers, such as lookup indices,
// feature indices or packed variation indices. Members are kept in pages of
// 2^16 bits, keyed by the upper 16 bits of an index, so sparse sets of large
// indices stay small.
//
// The zero value is an empty set, ready to use.
type IndexSet struct {
	pages map[uint16]*bitset.BitSet
}

// Add adds an index to the set.
func (set *IndexSet) Add(i uint32) {
	if set.pages == nil {
		set.pages = make(map[uint16]*bitset.BitSet)
	}
	page := set.pages[uint16(i>>16)]
	if page == nil {
		page = &bitset.BitSet{}
		set.pages[uint16(i>>16)] = page
	}
	page.Set(uint(i & 0xFFFF))
}

// Contains checks if i is a member of the set.
func (set *IndexSet) Contains(i uint32) bool {
	if set == nil {
		return false
	}
	page := set.pages[uint16(i>>16)]
	return page != nil && page.Test(uint(i&0xFFFF))
}

// Len returns the number of members.
func (set *IndexSet) Len() int {
	if set == nil {
		return 0
	}
	n := 0
	for _, page := range set.pages {
		n += int(page.Count())
	}
	return n
}

// All iterates over all members in ascending order.
func (set *IndexSet) All() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		if set == nil {
			return
		}
		for _, key := range slices.Sorted(maps.Keys(set.pages)) {
			page, base := set.pages[key], uint32(key)<<16
			for i, ok := page.NextSet(0); ok; i, ok = page.NextSet(i + 1) {
				if !yield(base | uint32(i)) {
					return
				}
			}
		}
	}
}

// Slice returns the members as a sorted slice.
func (set *IndexSet) Slice() []uint32 {
	r := make([]uint32, 0, set.Len())
	for i := range set.All() {
		r = append(r, i)
	}
	return r
}

package ot

import "iter"

// ClassDef is a class definition table. It assigns glyphs to classes, which
// are small non-negative integers. Glyphs not mentioned in the table are in
// class 0.
//
// Format 1 lists the classes for a contiguous range of glyphs, starting at a
// start glyph. Format 2 lists glyph ranges sorted by glyph, each with a class.
//
// The zero value is an empty class definition, putting every glyph in class 0.
type ClassDef struct {
	impl classDefImpl
}

type classDefImpl interface {
	class(g GlyphIndex) uint16
	collect(set *GlyphSet) bool
	collectClass(set *GlyphSet, klass uint16) bool
	intersects(set *GlyphSet) bool
	intersectsClass(set *GlyphSet, klass uint16) bool
	ranges() iter.Seq2[[2]GlyphIndex, uint16]
}

// classDefFormat1 holds the classes for glyphs [start, start+len(classes)).
type classDefFormat1 struct {
	startGlyph GlyphIndex
	classes    array
}

// classDefFormat2 holds range records {startGlyphID, endGlyphID, class}.
type classDefFormat2 struct {
	rangeRecords array
}

// ParseClassDef interprets b as a class definition table. b should have been
// sanitized with sanitizeClassDef. Unknown formats yield an empty ClassDef.
func ParseClassDef(b binarySegm) ClassDef {
	switch b.U16(0) {
	case 1:
		return ClassDef{impl: classDefFormat1{
			startGlyph: GlyphIndex(b.U16(2)),
			classes:    viewArray16(b, 4, 2),
		}}
	case 2:
		return ClassDef{impl: classDefFormat2{rangeRecords: viewArray16(b, 2, 6)}}
	}
	return ClassDef{}
}

func sanitizeClassDef(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 2) {
		return false
	}
	switch b.U16(0) {
	case 1:
		return s.checkRange(b, 2, 2) && s.checkArray16(b, 4, 2)
	case 2:
		return s.checkArray16(b, 2, 6)
	}
	return true
}

// Format returns the format of the table (1 or 2), or 0 for an empty ClassDef.
func (cd ClassDef) Format() int {
	switch cd.impl.(type) {
	case classDefFormat1:
		return 1
	case classDefFormat2:
		return 2
	}
	return 0
}

// Class returns the class of glyph g. Glyphs not listed are in class 0.
func (cd ClassDef) Class(g GlyphIndex) uint16 {
	if cd.impl == nil {
		return 0
	}
	return cd.impl.class(g)
}

// Collect adds all glyphs with a class other than 0 to set. It returns false if
// the table is obviously broken.
func (cd ClassDef) Collect(set *GlyphSet) bool {
	if cd.impl == nil {
		return true
	}
	return cd.impl.collect(set)
}

// CollectClass adds all glyphs listed with class klass to set. It returns false
// if the table is obviously broken.
func (cd ClassDef) CollectClass(set *GlyphSet, klass uint16) bool {
	if cd.impl == nil {
		return true
	}
	return cd.impl.collectClass(set, klass)
}

// Intersects is true if any glyph of set has a class other than 0.
func (cd ClassDef) Intersects(set *GlyphSet) bool {
	if cd.impl == nil || set.IsEmpty() {
		return false
	}
	return cd.impl.intersects(set)
}

// IntersectsClass is true if any glyph of set is in class klass. For klass 0
// this includes glyphs of set which are not listed in the table.
func (cd ClassDef) IntersectsClass(set *GlyphSet, klass uint16) bool {
	if set.IsEmpty() {
		return false
	}
	if cd.impl == nil {
		return klass == 0
	}
	return cd.impl.intersectsClass(set, klass)
}

// IntersectedClassGlyphs adds all glyphs of set which are in class klass to out.
func (cd ClassDef) IntersectedClassGlyphs(set *GlyphSet, klass uint16, out *GlyphSet) {
	for g := range set.Glyphs() {
		if cd.Class(g) == klass {
			out.Add(g)
		}
	}
}

// Ranges iterates over glyph ranges [first, last] with a uniform class.
// Format 1 tables yield runs of glyphs with the same class, including class 0.
func (cd ClassDef) Ranges() iter.Seq2[[2]GlyphIndex, uint16] {
	if cd.impl == nil {
		return func(yield func([2]GlyphIndex, uint16) bool) {}
	}
	return cd.impl.ranges()
}

// --- Format 1 --------------------------------------------------------------

func (cd classDefFormat1) class(g GlyphIndex) uint16 {
	if g < cd.startGlyph {
		return 0
	}
	return cd.classes.U16(int(g - cd.startGlyph))
}

// glyphAt returns startGlyph + i, clamped to the glyph index range.
func (cd classDefFormat1) glyphAt(i int) (GlyphIndex, bool) {
	g := int(cd.startGlyph) + i
	if g > MaxGlyphCount {
		return MaxGlyphCount, false
	}
	return GlyphIndex(g), true
}

func (cd classDefFormat1) collect(set *GlyphSet) bool {
	start, count := 0, cd.classes.Len()
	for i := 0; i < count; i++ {
		if cd.classes.U16(i) != 0 {
			continue
		}
		if start != i {
			first, _ := cd.glyphAt(start)
			last, _ := cd.glyphAt(i - 1)
			if !set.AddRange(first, last) {
				return false
			}
		}
		start = i + 1
	}
	if start != count {
		first, _ := cd.glyphAt(start)
		last, _ := cd.glyphAt(count - 1)
		if !set.AddRange(first, last) {
			return false
		}
	}
	return true
}

func (cd classDefFormat1) collectClass(set *GlyphSet, klass uint16) bool {
	for i := 0; i < cd.classes.Len(); i++ {
		if cd.classes.U16(i) == klass {
			g, ok := cd.glyphAt(i)
			if !ok {
				break
			}
			set.Add(g)
		}
	}
	return true
}

func (cd classDefFormat1) intersects(set *GlyphSet) bool {
	for g, ok := set.atOrAfter(cd.startGlyph); ok; g, ok = set.Next(g) {
		i := int(g - cd.startGlyph)
		if i >= cd.classes.Len() {
			break
		}
		if cd.classes.U16(i) != 0 {
			return true
		}
	}
	return false
}

func (cd classDefFormat1) intersectsClass(set *GlyphSet, klass uint16) bool {
	count := cd.classes.Len()
	if klass == 0 { // match any glyph not listed
		g, ok := set.First()
		if !ok {
			return false
		}
		if g < cd.startGlyph {
			return true
		}
		if count == 0 {
			return true
		}
		if last, ok := cd.glyphAt(count - 1); ok {
			if _, ok := set.Next(last); ok {
				return true
			}
		}
	}
	for i := 0; i < count; i++ {
		if cd.classes.U16(i) == klass {
			g, ok := cd.glyphAt(i)
			if !ok {
				break
			}
			if set.Contains(g) {
				return true
			}
		}
	}
	return false
}

func (cd classDefFormat1) ranges() iter.Seq2[[2]GlyphIndex, uint16] {
	return func(yield func([2]GlyphIndex, uint16) bool) {
		count := cd.classes.Len()
		for start := 0; start < count; {
			klass := cd.classes.U16(start)
			end := start + 1
			for end < count && cd.classes.U16(end) == klass {
				end++
			}
			first, ok1 := cd.glyphAt(start)
			last, ok2 := cd.glyphAt(end - 1)
			if !ok1 || !yield([2]GlyphIndex{first, last}, klass) || !ok2 {
				return
			}
			start = end
		}
	}
}

// --- Format 2 --------------------------------------------------------------

func (cd classDefFormat2) class(g GlyphIndex) uint16 {
	i := findRange(cd.rangeRecords, g)
	if i == NotFoundIndex {
		return 0
	}
	_, _, klass := glyphRange(cd.rangeRecords.Get(int(i)))
	return klass
}

func (cd classDefFormat2) collect(set *GlyphSet) bool {
	for _, rec := range cd.rangeRecords.All() {
		first, last, klass := glyphRange(rec)
		if klass != 0 && !set.AddRange(first, last) {
			return false
		}
	}
	return true
}

func (cd classDefFormat2) collectClass(set *GlyphSet, klass uint16) bool {
	for _, rec := range cd.rangeRecords.All() {
		first, last, k := glyphRange(rec)
		if k == klass && !set.AddRange(first, last) {
			return false
		}
	}
	return true
}

func (cd classDefFormat2) intersects(set *GlyphSet) bool {
	for _, rec := range cd.rangeRecords.All() {
		first, last, klass := glyphRange(rec)
		if klass != 0 && set.IntersectsRange(first, last) {
			return true
		}
	}
	return false
}

func (cd classDefFormat2) intersectsClass(set *GlyphSet, klass uint16) bool {
	count := cd.rangeRecords.Len()
	if klass == 0 { // match any glyph not listed
		if count == 0 {
			return true
		}
		var g GlyphIndex
		ok, started := false, false
		for _, rec := range cd.rangeRecords.All() {
			if !started {
				g, ok = set.First()
			} else {
				g, ok = set.Next(g)
			}
			started = true
			if !ok {
				break
			}
			first, last, _ := glyphRange(rec)
			if g < first {
				return true
			}
			g = last
		}
		if ok {
			if _, ok := set.Next(g); ok {
				return true
			}
		}
	}
	for _, rec := range cd.rangeRecords.All() {
		first, last, k := glyphRange(rec)
		if k == klass && set.IntersectsRange(first, last) {
			return true
		}
	}
	return false
}

func (cd classDefFormat2) ranges() iter.Seq2[[2]GlyphIndex, uint16] {
	return func(yield func([2]GlyphIndex, uint16) bool) {
		for _, rec := range cd.rangeRecords.All() {
			first, last, klass := glyphRange(rec)
			if !yield([2]GlyphIndex{first, last}, klass) {
				return
			}
		}
	}
}

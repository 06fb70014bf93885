package ot

// Feature variations swap in alternate feature tables for regions of a
// variable font's design space. Each record pairs a condition set with a
// feature table substitution; the first record whose conditions hold wins.

// Condition is a range test on a single axis, in normalized coordinates.
// Only format 1 is defined; conditions of other formats never hold.
type Condition struct {
	Format    uint16
	AxisIndex uint16
	Min, Max  F2Dot14
}

func parseCondition(b binarySegm) Condition {
	c := Condition{Format: b.U16(0)}
	if c.Format == 1 {
		c.AxisIndex = b.U16(2)
		c.Min = F2Dot14(b.I16(4))
		c.Max = F2Dot14(b.I16(6))
	}
	return c
}

func sanitizeCondition(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 2) {
		return false
	}
	if b.U16(0) == 1 {
		return s.checkRange(b, 0, 8)
	}
	return true
}

// Evaluate checks if the coordinate of the condition's axis is within
// [Min, Max]. Axes not present in coords are at coordinate 0.
func (c Condition) Evaluate(coords []F2Dot14) bool {
	if c.Format != 1 {
		return false
	}
	coord := coordAt(coords, int(c.AxisIndex))
	return c.Min <= coord && coord <= c.Max
}

// ConditionSet is a conjunction of conditions.
type ConditionSet struct {
	b          binarySegm
	conditions array
}

func viewConditionSet(b binarySegm) ConditionSet {
	return ConditionSet{b: b, conditions: viewArray16(b, 0, 4)}
}

func sanitizeConditionSet(s *sanitizer, b binarySegm) bool {
	if !s.checkArray16(b, 0, 4) {
		return false
	}
	for i := 0; i < int(b.U16(0)); i++ {
		if !s.offset32(b, 2+4*i, sanitizeCondition) {
			return false
		}
	}
	return true
}

// Count returns the number of conditions.
func (cs ConditionSet) Count() int {
	return cs.conditions.Len()
}

// Condition returns condition i.
func (cs ConditionSet) Condition(i int) Condition {
	return parseCondition(cs.b.offset32(2 + 4*i))
}

// Evaluate is true if all conditions hold. An empty set always holds.
func (cs ConditionSet) Evaluate(coords []F2Dot14) bool {
	for i := 0; i < cs.Count(); i++ {
		if !cs.Condition(i).Evaluate(coords) {
			return false
		}
	}
	return true
}

// FeatureTableSubstitution maps feature indices to alternate feature tables.
type FeatureTableSubstitution struct {
	b       binarySegm
	records array
}

func viewFeatureTableSubstitution(b binarySegm) FeatureTableSubstitution {
	return FeatureTableSubstitution{b: b, records: viewArray16(b, 4, 6)}
}

func sanitizeFeatureTableSubstitution(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 4) || b.U16(0) != 1 {
		tracer().Debugf("feature table substitution: bad version")
		return false
	}
	if !s.checkArray16(b, 4, 6) {
		return false
	}
	check := func(s *sanitizer, fb binarySegm) bool {
		return sanitizeFeature(s, fb, 0, nil)
	}
	for i := 0; i < int(b.U16(4)); i++ {
		if !s.offset32(b, 6+6*i+2, check) {
			return false
		}
	}
	return true
}

// Count returns the number of substitution records.
func (fs FeatureTableSubstitution) Count() int {
	return fs.records.Len()
}

// FeatureIndex returns the feature index of substitution record i.
func (fs FeatureTableSubstitution) FeatureIndex(i int) uint16 {
	return fs.records.U16(i)
}

// substitute returns the alternate feature of record i.
func (fs FeatureTableSubstitution) substitute(i int, tag Tag) Feature {
	return viewFeature(fs.b.offset32(6+6*i+2), tag)
}

// FindSubstitute returns the alternate feature table for a feature index.
// The feature returned does not know its tag.
func (fs FeatureTableSubstitution) FindSubstitute(featureIndex uint32) (Feature, bool) {
	for i := 0; i < fs.records.Len(); i++ {
		if uint32(fs.records.U16(i)) == featureIndex {
			f := fs.substitute(i, 0)
			return f, !f.IsEmpty()
		}
	}
	return Feature{}, false
}

// CollectLookups adds the lookup indices of all alternate features for the
// given feature indices to lookups.
func (fs FeatureTableSubstitution) CollectLookups(featureIndices, lookups *IndexSet) {
	for i := 0; i < fs.records.Len(); i++ {
		if !featureIndices.Contains(uint32(fs.records.U16(i))) {
			continue
		}
		f := fs.substitute(i, 0)
		for j := 0; j < f.LookupCount(); j++ {
			lookups.Add(f.LookupIndex(j))
		}
	}
}

// FeatureVariations is the FeatureVariations table of GSUB or GPOS (version 1.1).
//
// The zero value has no records; FindIndex will always return NotFoundIndex.
type FeatureVariations struct {
	b       binarySegm
	records array
}

const featureVariationRecordSize = 8

func viewFeatureVariations(b binarySegm) FeatureVariations {
	return FeatureVariations{b: b, records: viewArray32(b, 4, featureVariationRecordSize)}
}

func sanitizeFeatureVariations(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 4) || b.U16(0) != 1 {
		tracer().Debugf("feature variations: bad version")
		return false
	}
	if !s.checkArray32(b, 4, featureVariationRecordSize) {
		return false
	}
	n := int(b.U32(4))
	for i := 0; i < n; i++ {
		at := 8 + featureVariationRecordSize*i
		if !s.offset32(b, at, sanitizeConditionSet) ||
			!s.offset32(b, at+4, sanitizeFeatureTableSubstitution) {
			return false
		}
	}
	return true
}

// Count returns the number of feature variation records.
func (fv FeatureVariations) Count() int {
	return fv.records.Len()
}

// ConditionSet returns the condition set of record i. An absent condition set
// is empty and always holds.
func (fv FeatureVariations) ConditionSet(i int) ConditionSet {
	return viewConditionSet(fv.b.offset32(8 + featureVariationRecordSize*i))
}

// Substitution returns the feature table substitution of record i.
func (fv FeatureVariations) Substitution(i int) FeatureTableSubstitution {
	if i < 0 || i >= fv.records.Len() {
		return FeatureTableSubstitution{}
	}
	return viewFeatureTableSubstitution(fv.b.offset32(8 + featureVariationRecordSize*i + 4))
}

// FindIndex returns the index of the first record whose condition set holds
// for coords, or NotFoundIndex.
func (fv FeatureVariations) FindIndex(coords []F2Dot14) uint32 {
	for i := 0; i < fv.records.Len(); i++ {
		if fv.ConditionSet(i).Evaluate(coords) {
			return uint32(i)
		}
	}
	return NotFoundIndex
}

// FindSubstitute returns the alternate feature table for a feature index under
// variation record varIndex.
func (fv FeatureVariations) FindSubstitute(varIndex, featureIndex uint32) (Feature, bool) {
	if varIndex == NotFoundIndex || int(varIndex) >= fv.records.Len() {
		return Feature{}, false
	}
	return fv.Substitution(int(varIndex)).FindSubstitute(featureIndex)
}

// CollectLookups adds the lookup indices of all alternate features, under any
// variation record, for the given feature indices to lookups.
func (fv FeatureVariations) CollectLookups(featureIndices, lookups *IndexSet) {
	for i := 0; i < fv.records.Len(); i++ {
		fv.Substitution(i).CollectLookups(featureIndices, lookups)
	}
}

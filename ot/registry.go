package ot

// The registry of OpenType layout is a four-level hierarchy:
//
//	ScriptList  (tag → Script)
//	Script      (tag → LangSys, plus an optional default LangSys)
//	LangSys     (feature indices, plus an optional required feature)
//	FeatureList (tag → Feature, Feature → lookup indices)
//
// All types in this file are views into sanitized font data. Their zero values
// are empty tables.

// --- ScriptList ------------------------------------------------------------

// ScriptList is the list of scripts supported by a GSUB or GPOS table.
type ScriptList struct {
	b       binarySegm
	records tagRecordArray
}

func viewScriptList(b binarySegm) ScriptList {
	return ScriptList{b: b, records: viewTagRecords16(b, 0)}
}

func sanitizeScriptList(s *sanitizer, b binarySegm) bool {
	if !s.checkArray16(b, 0, 6) {
		return false
	}
	records := viewTagRecords16(b, 0)
	for i := 0; i < records.Len(); i++ {
		if !s.offset16At(records.Get(i), 4, b, sanitizeScript) {
			return false
		}
	}
	return true
}

// Count returns the number of scripts.
func (sl ScriptList) Count() int {
	return sl.records.Len()
}

// TagAt returns the tag of script i.
func (sl ScriptList) TagAt(i int) Tag {
	return sl.records.TagAt(i)
}

// Tags copies the script tags, starting at index start, into out, and returns the
// total number of scripts. Use it to page through large lists.
func (sl ScriptList) Tags(start int, out []Tag) int {
	return sl.records.tags(start, out)
}

// FindIndex searches for a script by tag.
func (sl ScriptList) FindIndex(tag Tag) (int, bool) {
	i := sl.records.find(tag)
	return int(i), i != NotFoundIndex
}

// Script returns script i. Out-of-range indices yield an empty script.
func (sl ScriptList) Script(i int) Script {
	return viewScript(sl.records.link(sl.b, i))
}

// FindScript searches for a script by tag.
func (sl ScriptList) FindScript(tag Tag) (Script, bool) {
	i, ok := sl.FindIndex(tag)
	if !ok {
		return Script{}, false
	}
	return sl.Script(i), true
}

// --- Script ----------------------------------------------------------------

// DefaultLangSysIndex selects the default language system of a script.
const DefaultLangSysIndex = NotFoundIndex

// Script lists the language systems of a script.
type Script struct {
	b       binarySegm
	records tagRecordArray
}

func viewScript(b binarySegm) Script {
	if len(b) < 4 {
		return Script{}
	}
	return Script{b: b, records: viewTagRecords16(b, 2)}
}

func sanitizeScript(s *sanitizer, b binarySegm) bool {
	if !s.offset16(b, 0, sanitizeLangSys) || !s.checkArray16(b, 2, 6) {
		return false
	}
	records := viewTagRecords16(b, 2)
	for i := 0; i < records.Len(); i++ {
		if !s.offset16At(records.Get(i), 4, b, sanitizeLangSys) {
			return false
		}
	}
	return true
}

// IsEmpty is true for an absent script.
func (sc Script) IsEmpty() bool {
	return len(sc.b) == 0
}

// HasDefaultLangSys is true if the script has a default language system.
func (sc Script) HasDefaultLangSys() bool {
	return sc.b.U16(0) != 0
}

// DefaultLangSys returns the default language system, which may be empty.
func (sc Script) DefaultLangSys() LangSys {
	return viewLangSys(sc.b.offset16(0))
}

// LangSysCount returns the number of (non-default) language systems.
func (sc Script) LangSysCount() int {
	return sc.records.Len()
}

// LangSysTag returns the tag of language system i.
func (sc Script) LangSysTag(i int) Tag {
	return sc.records.TagAt(i)
}

// LangSysTags copies language system tags, starting at index start, into out
// and returns the total number of language systems.
func (sc Script) LangSysTags(start int, out []Tag) int {
	return sc.records.tags(start, out)
}

// FindLangSysIndex searches for a language system by tag.
func (sc Script) FindLangSysIndex(tag Tag) (int, bool) {
	i := sc.records.find(tag)
	return int(i), i != NotFoundIndex
}

// LangSys returns language system i. Index DefaultLangSysIndex selects the
// default language system.
func (sc Script) LangSys(i int) LangSys {
	if uint32(i) == DefaultLangSysIndex {
		return sc.DefaultLangSys()
	}
	return viewLangSys(sc.records.link(sc.b, i))
}

// --- LangSys ---------------------------------------------------------------

// LangSys is a language system. It lists the features to be activated for a
// language, by index into the FeatureList.
type LangSys struct {
	b       binarySegm
	indices array
}

func viewLangSys(b binarySegm) LangSys {
	if len(b) < 6 {
		return LangSys{}
	}
	return LangSys{b: b, indices: viewArray16(b, 4, 2)}
}

func sanitizeLangSys(s *sanitizer, b binarySegm) bool {
	return s.checkRange(b, 0, 6) && s.checkArray16(b, 4, 2)
}

// IsEmpty is true for an absent language system.
func (ls LangSys) IsEmpty() bool {
	return len(ls.b) == 0
}

// FeatureCount returns the number of feature indices.
func (ls LangSys) FeatureCount() int {
	return ls.indices.Len()
}

// FeatureIndex returns feature index i, or NotFoundIndex if i is out of range.
func (ls LangSys) FeatureIndex(i int) uint32 {
	if i < 0 || i >= ls.indices.Len() {
		return NotFoundIndex
	}
	return uint32(ls.indices.U16(i))
}

// FeatureIndices copies feature indices, starting at index start, into out and
// returns the total number of feature indices.
func (ls LangSys) FeatureIndices(start int, out []uint16) int {
	return copyIndices(ls.indices, start, out)
}

// HasRequiredFeature is true if the language system has a required feature.
func (ls LangSys) HasRequiredFeature() bool {
	return len(ls.b) >= 4 && ls.b.U16(2) != NoRequiredFeature
}

// RequiredFeatureIndex returns the index of the required feature, or
// NotFoundIndex.
func (ls LangSys) RequiredFeatureIndex() uint32 {
	if !ls.HasRequiredFeature() {
		return NotFoundIndex
	}
	return uint32(ls.b.U16(2))
}

// --- FeatureList -----------------------------------------------------------

// FeatureList is the list of features of a GSUB or GPOS table.
type FeatureList struct {
	b       binarySegm
	records tagRecordArray
}

func viewFeatureList(b binarySegm) FeatureList {
	return FeatureList{b: b, records: viewTagRecords16(b, 0)}
}

func sanitizeFeatureList(s *sanitizer, b binarySegm) bool {
	if !s.checkArray16(b, 0, 6) {
		return false
	}
	records := viewTagRecords16(b, 0)
	for i := 0; i < records.Len(); i++ {
		tag := records.TagAt(i)
		check := func(s *sanitizer, fb binarySegm) bool {
			return sanitizeFeature(s, fb, tag, b)
		}
		if !s.offset16At(records.Get(i), 4, b, check) {
			return false
		}
	}
	return true
}

// Count returns the number of features.
func (fl FeatureList) Count() int {
	return fl.records.Len()
}

// TagAt returns the tag of feature i.
func (fl FeatureList) TagAt(i int) Tag {
	return fl.records.TagAt(i)
}

// Tags copies feature tags, starting at index start, into out and returns the
// total number of features.
func (fl FeatureList) Tags(start int, out []Tag) int {
	return fl.records.tags(start, out)
}

// FindIndex searches for a feature by tag. Feature lists are sorted by tag, but
// may contain a tag more than once; the index of any one of them is returned.
func (fl FeatureList) FindIndex(tag Tag) (int, bool) {
	i := fl.records.find(tag)
	return int(i), i != NotFoundIndex
}

// Feature returns feature i. Out-of-range indices yield an empty feature.
func (fl FeatureList) Feature(i int) Feature {
	return viewFeature(fl.records.link(fl.b, i), fl.records.TagAt(i))
}

// --- Feature ---------------------------------------------------------------

// Feature is a feature table. It lists the lookups which make up a feature.
type Feature struct {
	b       binarySegm
	tag     Tag
	lookups array
}

func viewFeature(b binarySegm, tag Tag) Feature {
	if len(b) < 4 {
		return Feature{tag: tag}
	}
	return Feature{b: b, tag: tag, lookups: viewArray16(b, 2, 2)}
}

// IsEmpty is true for an absent feature.
func (f Feature) IsEmpty() bool {
	return len(f.b) == 0
}

// Tag returns the tag of the feature, as recorded in the feature list.
func (f Feature) Tag() Tag {
	return f.tag
}

// LookupCount returns the number of lookup indices.
func (f Feature) LookupCount() int {
	return f.lookups.Len()
}

// LookupIndex returns lookup index i, or NotFoundIndex if i is out of range.
func (f Feature) LookupIndex(i int) uint32 {
	if i < 0 || i >= f.lookups.Len() {
		return NotFoundIndex
	}
	return uint32(f.lookups.U16(i))
}

// LookupIndices copies lookup indices, starting at index start, into out and
// returns the total number of lookup indices.
func (f Feature) LookupIndices(start int, out []uint16) int {
	return copyIndices(f.lookups, start, out)
}

// HasParams is true if the feature carries a FeatureParams table.
func (f Feature) HasParams() bool {
	return f.b.U16(0) != 0
}

// Params interprets the feature's FeatureParams table, depending on the
// feature's tag. It returns nil if the feature has no parameters or the tag
// does not define any.
func (f Feature) Params() FeatureParams {
	return parseFeatureParams(f.b.offset16(0), f.tag)
}

// sanitizeFeature checks a feature table. tag is the feature's tag, list the
// enclosing FeatureList, if known.
//
// Some old fonts have the offset to the 'size' FeatureParams relative to the
// FeatureList instead of the Feature. If the params table does not check out
// as-is, we try to re-interpret its offset relative to the FeatureList.
func sanitizeFeature(s *sanitizer, b binarySegm, tag Tag, list binarySegm) bool {
	if !s.checkRange(b, 0, 4) || !s.checkArray16(b, 2, 2) {
		return false
	}
	orig := b.U16(0)
	check := func(s *sanitizer, pb binarySegm) bool {
		return sanitizeFeatureParams(s, pb, tag)
	}
	if !s.offset16(b, 0, check) {
		return false
	}
	if orig == 0 || b.U16(0) != 0 {
		return true // no params or params ok
	}
	// params have been neutered, try the legacy interpretation
	if tag != tagSize || list == nil {
		return true
	}
	dist := distance(list, b)
	if dist <= 0 {
		return true
	}
	corrected := int(orig) - dist
	if corrected <= 0 || corrected > 0xFFFF {
		return true
	}
	tracer().Debugf("trying legacy 'size' params offset %d → %d", orig, corrected)
	if s.tryEdit(b, 0, uint16(corrected)) && !s.offset16(b, 0, check) {
		return false
	}
	return true
}

// distance returns the byte distance from the start of segment from to the
// start of segment to. Both have to be sub-slices of the same font data, with
// to located after from.
func distance(from, to binarySegm) int {
	return cap(from) - cap(to)
}

// copyIndices copies uint16 entries of a starting at index start into out, and
// returns the length of a.
func copyIndices(a array, start int, out []uint16) int {
	if start >= 0 && start < a.Len() {
		for i := 0; i < len(out) && start+i < a.Len(); i++ {
			out[i] = a.U16(start + i)
		}
	}
	return a.Len()
}

package ot

// Sanitizing is the trust boundary of this package. Every table of a font has to
// pass a sanitizing run before clients get access to it. A successful run
// guarantees that every offset and every array the table format allows lies
// within the table's bytes.
//
// The sanitizer keeps track of
//
//   - the nesting depth of offsets being followed, capped at MaxNestingLevel,
//   - an operations budget, proportional to the table size,
//   - the number of in-place edits.
//
// Edits happen for two reasons: a broken offset to an optional sub-table is
// set to 0 ("neutered"), and the legacy 'size' feature params offset gets
// corrected. Edits are only performed on a writable copy of the table data.
// A run on read-only data which would like to edit counts the edit, but fails.
// The caller may then re-run on a private copy, see sanitizeTable.

// sanitizer holds the state of a single sanitizing run.
type sanitizer struct {
	start     binarySegm // the table being sanitized
	depth     int        // current nesting level
	ops       int        // remaining operations budget
	edits     int        // number of edits performed or requested
	subtables int        // number of lookup sub-tables visited
	writable  bool       // may we edit start?
}

func newSanitizer(b binarySegm, writable bool) *sanitizer {
	ops := len(b) * OpsFactor
	if len(b) > MaxOps/OpsFactor {
		ops = MaxOps
	}
	if ops < MinOps {
		ops = MinOps
	}
	return &sanitizer{start: b, ops: ops, writable: writable}
}

// checkRange checks that n bytes starting at byte index off lie within b.
func (s *sanitizer) checkRange(b binarySegm, off, n int) bool {
	s.ops--
	if s.ops <= 0 {
		tracer().Debugf("sanitizer: operations budget exhausted")
		return false
	}
	if off < 0 || n < 0 || off > len(b) || n > len(b)-off {
		tracer().Debugf("sanitizer: range [%d,+%d) out of bounds (%d)", off, n, len(b))
		return false
	}
	return true
}

// checkArray checks that an array of count records of recordSize bytes each,
// starting at byte index off, lies within b.
func (s *sanitizer) checkArray(b binarySegm, off, count, recordSize int) bool {
	size, err := checkedMulInt(count, recordSize)
	if err != nil {
		tracer().Debugf("sanitizer: %v", err)
		return false
	}
	return s.checkRange(b, off, size)
}

// checkArray16 checks a uint16 count at byte index off, followed by the records.
func (s *sanitizer) checkArray16(b binarySegm, off, recordSize int) bool {
	if !s.checkRange(b, off, 2) {
		return false
	}
	return s.checkArray(b, off+2, int(b.U16(off)), recordSize)
}

// checkArray32 checks a uint32 count at byte index off, followed by the records.
func (s *sanitizer) checkArray32(b binarySegm, off, recordSize int) bool {
	if !s.checkRange(b, off, 4) {
		return false
	}
	n := b.U32(off)
	if n > MaxOps {
		return false
	}
	return s.checkArray(b, off+4, int(n), recordSize)
}

// visitSubTables counts n lookup sub-tables. It fails if the total exceeds
// MaxSubTables.
func (s *sanitizer) visitSubTables(n int) bool {
	s.subtables += n
	if s.subtables > MaxSubTables {
		tracer().Debugf("sanitizer: more than %d lookup sub-tables", MaxSubTables)
		return false
	}
	return true
}

// enter increments the nesting level. It fails if the level exceeds
// MaxNestingLevel.
func (s *sanitizer) enter() bool {
	if s.depth >= MaxNestingLevel {
		tracer().Debugf("sanitizer: max nesting level %d exceeded", MaxNestingLevel)
		return false
	}
	s.depth++
	return true
}

func (s *sanitizer) leave() {
	s.depth--
}

// mayEdit counts an edit request and reports whether editing is possible.
func (s *sanitizer) mayEdit() bool {
	if s.edits >= MaxEdits {
		return false
	}
	s.edits++
	return s.writable
}

// tryEdit sets the uint16 at byte index at of b to v, if editing is possible.
// b has to be a sub-segment of the table being sanitized.
func (s *sanitizer) tryEdit(b binarySegm, at int, v uint16) bool {
	if !s.mayEdit() {
		return false
	}
	if at < 0 || at > len(b)-2 {
		return false
	}
	b[at] = byte(v >> 8)
	b[at+1] = byte(v)
	return true
}

// tryEdit32 sets the uint32 at byte index at of b to v, if editing is possible.
func (s *sanitizer) tryEdit32(b binarySegm, at int, v uint32) bool {
	if !s.mayEdit() {
		return false
	}
	if at < 0 || at > len(b)-4 {
		return false
	}
	b[at], b[at+1], b[at+2], b[at+3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
	return true
}

// sanitizeFunc is a sanitizing method for a sub-table.
type sanitizeFunc func(s *sanitizer, b binarySegm) bool

// offset16 sanitizes an Offset16 at byte index at of base and the sub-table it
// points to. A null offset is fine. If the sub-table fails, the offset is
// neutered, i.e. set to 0, which will make the sub-table absent.
func (s *sanitizer) offset16(base binarySegm, at int, check sanitizeFunc) bool {
	if !s.checkRange(base, at, 2) {
		return false
	}
	off := int(base.U16(at))
	if off == 0 {
		return true
	}
	if s.follow(base, off, check) {
		return true
	}
	return s.tryEdit(base, at, 0)
}

// offset32 is the Offset32 variant of offset16.
func (s *sanitizer) offset32(base binarySegm, at int, check sanitizeFunc) bool {
	if !s.checkRange(base, at, 4) {
		return false
	}
	off := base.U32(at)
	if off == 0 {
		return true
	}
	if uint64(off) < uint64(len(base)) && s.follow(base, int(off), check) {
		return true
	}
	return s.tryEdit32(base, at, 0)
}

// follow sanitizes the sub-table at byte index off of base, one nesting level
// deeper.
func (s *sanitizer) follow(base binarySegm, off int, check sanitizeFunc) bool {
	if off < 0 || off >= len(base) {
		return false
	}
	if !s.enter() {
		return false
	}
	defer s.leave()
	return check(s, base[off:])
}

// offsetArray16 sanitizes a uint16-counted array of Offset16 values at byte
// index at of b. Offsets are relative to base.
func (s *sanitizer) offsetArray16(b binarySegm, at int, base binarySegm, check sanitizeFunc) bool {
	if !s.checkArray16(b, at, 2) {
		return false
	}
	n := int(b.U16(at))
	for i := 0; i < n; i++ {
		if !s.offset16At(b, at+2+2*i, base, check) {
			return false
		}
	}
	return true
}

// offset16At sanitizes an Offset16 stored in b at byte index at, but relative
// to base. b must be a sub-segment of base.
func (s *sanitizer) offset16At(b binarySegm, at int, base binarySegm, check sanitizeFunc) bool {
	if !s.checkRange(b, at, 2) {
		return false
	}
	off := int(b.U16(at))
	if off == 0 {
		return true
	}
	if s.follow(base, off, check) {
		return true
	}
	return s.tryEdit(b, at, 0)
}

// sanitizeTable runs a sanitizing pass over b. If the pass fails because the
// sanitizer would like to edit the data, and editing is allowed, the pass is
// repeated on a private copy of b. A table that got edited is checked once
// more, this time without any edits permitted.
//
// Returns the table data to use (b or a corrected copy) and a success flag.
func sanitizeTable(tag Tag, b binarySegm, check sanitizeFunc, allowEdits bool) (binarySegm, bool) {
	s := newSanitizer(b, false)
	ok := check(s, b)
	if ok && s.edits == 0 {
		return b, true
	}
	if s.edits == 0 || !allowEdits {
		tracer().Infof("table %s failed sanitizing", tag)
		return nil, false
	}
	tracer().Debugf("table %s needs %d edits, retrying on a copy", tag, s.edits)
	c := make(binarySegm, len(b))
	copy(c, b)
	s = newSanitizer(c, true)
	if !check(s, c) {
		tracer().Infof("table %s failed sanitizing after edits", tag)
		return nil, false
	}
	if s.edits > 0 {
		s = newSanitizer(c, false)
		if !check(s, c) || s.edits > 0 {
			tracer().Infof("table %s failed sanitizing after edits", tag)
			return nil, false
		}
	}
	return c, true
}

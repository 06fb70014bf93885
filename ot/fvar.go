package ot

// FVarTable is the font variations table, listing the design axes of a
// variable font.
type FVarTable struct {
	tableBase
}

// VariationAxis is a design axis of a variable font. Values are in user
// coordinates.
type VariationAxis struct {
	Tag               Tag
	Min, Default, Max float32
	Flags             uint16
	AxisNameID        uint16
}

const fvarAxisRecordSize = 20

func newFVarTable(tag Tag, b binarySegm, offset, size uint32) *FVarTable {
	t := &FVarTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

func sanitizeFVar(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 16) || b.U16(0) != 1 {
		return false
	}
	if int(b.U16(10)) < fvarAxisRecordSize {
		return false
	}
	return s.checkArray(b, int(b.U16(4)), int(b.U16(8)), int(b.U16(10)))
}

// AxisCount returns the number of design axes.
func (t *FVarTable) AxisCount() int {
	if t == nil {
		return 0
	}
	return int(t.data.U16(8))
}

// Axis returns design axis i.
func (t *FVarTable) Axis(i int) VariationAxis {
	if i < 0 || i >= t.AxisCount() {
		return VariationAxis{}
	}
	rec := t.data.from(int(t.data.U16(4)) + i*int(t.data.U16(10)))
	fixed := func(at int) float32 {
		return float32(int32(rec.U32(at))) / 65536
	}
	return VariationAxis{
		Tag:        Tag(rec.U32(0)),
		Min:        fixed(4),
		Default:    fixed(8),
		Max:        fixed(12),
		Flags:      rec.U16(16),
		AxisNameID: rec.U16(18),
	}
}

// Normalize maps a user coordinate of the axis to the normalized range
// [-1, 1]. Mappings from table 'avar' are not applied.
func (a VariationAxis) Normalize(v float32) F2Dot14 {
	v = max(a.Min, min(a.Max, v))
	var n float32
	switch {
	case v < a.Default && a.Default > a.Min:
		n = (v - a.Default) / (a.Default - a.Min)
	case v > a.Default && a.Max > a.Default:
		n = (v - a.Default) / (a.Max - a.Default)
	}
	return F2Dot14FromFloat(n)
}

package ot

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by the spec as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// Tags which are used throughout this module.
var (
	DFLT     = T("DFLT") // default script
	DFLTLang = T("dflt") // default language system, erroneously used by some fonts
	tagLatn  = T("latn")
	tagSize  = T("size") // optical size feature
)

// isStylisticSet is true for tags 'ss01' … 'ss20'.
func (t Tag) isStylisticSet() bool {
	if t&0xFFFF0000 != T("ss  ")&0xFFFF0000 {
		return false
	}
	d1, d2 := byte(t>>8), byte(t)
	if d1 < '0' || d1 > '9' || d2 < '0' || d2 > '9' {
		return false
	}
	n := int(d1-'0')*10 + int(d2-'0')
	return n >= 1 && n <= 20
}

// isCharacterVariant is true for tags 'cv01' … 'cv99'.
func (t Tag) isCharacterVariant() bool {
	if t&0xFFFF0000 != T("cv  ")&0xFFFF0000 {
		return false
	}
	d1, d2 := byte(t>>8), byte(t)
	if d1 < '0' || d1 > '9' || d2 < '0' || d2 > '9' {
		return false
	}
	return d1 != '0' || d2 != '0'
}

// --- Fixed point -----------------------------------------------------------

// F2Dot14 is a signed 2.14 fixed-point number, used for normalized
// variation-axis coordinates. Its range is [-2.0, 2.0).
type F2Dot14 int16

// Float returns the value of a 2.14 fixed-point number as a float.
func (f F2Dot14) Float() float32 {
	return float32(f) / 16384
}

// F2Dot14FromFloat converts a float to 2.14 fixed-point, rounding and clamping
// to the representable range.
func F2Dot14FromFloat(v float32) F2Dot14 {
	x := v * 16384
	if x >= 0 {
		x += 0.5
	} else {
		x -= 0.5
	}
	if x > 32767 {
		return 32767
	} else if x < -32768 {
		return -32768
	}
	return F2Dot14(int32(x))
}

// coordAt returns the coordinate for axis i, or 0 if the axis is not present
// in coords.
func coordAt(coords []F2Dot14, i int) F2Dot14 {
	if i < 0 || i >= len(coords) {
		return 0
	}
	return coords[i]
}

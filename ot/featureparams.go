package ot

// FeatureParams is the interpretation of a feature's FeatureParams table. The
// structure of the table depends on the feature tag. Concrete types are
// SizeParams ('size'), StylisticSetParams ('ss01' … 'ss20') and
// CharacterVariantParams ('cv01' … 'cv99').
type FeatureParams interface {
	featureParams()
}

// SizeParams are the parameters of feature 'size'. Sizes are given in
// decipoints.
type SizeParams struct {
	DesignSize      uint16 // design size the font was optimized for
	SubfamilyID     uint16 // identifier for fonts of a family differing only in size
	SubfamilyNameID uint16 // name ID of the subfamily name
	RangeStart      uint16 // small end of the recommended usage range (exclusive)
	RangeEnd        uint16 // large end of the recommended usage range (inclusive)
}

// StylisticSetParams are the parameters of features 'ss01' … 'ss20'.
type StylisticSetParams struct {
	Version  uint16
	UINameID uint16 // name ID of a user-interface string for the set, or 0xFFFF
}

// CharacterVariantParams are the parameters of features 'cv01' … 'cv99'.
type CharacterVariantParams struct {
	Format                  uint16
	FeatUILabelNameID       uint16 // name ID of the feature's user-interface label
	FeatUITooltipTextNameID uint16
	SampleTextNameID        uint16
	NumNamedParameters      uint16
	FirstParamUILabelNameID uint16
	Characters              []rune // characters the feature provides variants for
}

func (SizeParams) featureParams()             {}
func (StylisticSetParams) featureParams()     {}
func (CharacterVariantParams) featureParams() {}

// sanitizeFeatureParams checks a FeatureParams table for a feature with the
// given tag. Tags without FeatureParams definition always pass.
func sanitizeFeatureParams(s *sanitizer, b binarySegm, tag Tag) bool {
	switch {
	case tag == tagSize:
		if !s.checkRange(b, 0, 10) {
			return false
		}
		return checkSizeParams(decodeSizeParams(b))
	case tag.isStylisticSet():
		return s.checkRange(b, 0, 4)
	case tag.isCharacterVariant():
		return s.checkRange(b, 0, 14) && s.checkArray(b, 14, int(b.U16(12)), 3)
	}
	return true
}

// checkSizeParams reports whether size parameters are plausible.
//
// If SubfamilyID, SubfamilyNameID, RangeStart and RangeEnd are all 0, only
// the design size is present. Otherwise the design size has to lie within the
// recommended range and the subfamily name ID has to lie in the font-specific
// range of name IDs.
func checkSizeParams(p SizeParams) bool {
	if p.DesignSize == 0 {
		return false
	}
	if p.SubfamilyID == 0 && p.SubfamilyNameID == 0 && p.RangeStart == 0 && p.RangeEnd == 0 {
		return true
	}
	if p.DesignSize < p.RangeStart || p.DesignSize > p.RangeEnd ||
		p.SubfamilyNameID < 256 || p.SubfamilyNameID > 32767 {
		return false
	}
	return true
}

func decodeSizeParams(b binarySegm) SizeParams {
	return SizeParams{
		DesignSize:      b.U16(0),
		SubfamilyID:     b.U16(2),
		SubfamilyNameID: b.U16(4),
		RangeStart:      b.U16(6),
		RangeEnd:        b.U16(8),
	}
}

func parseFeatureParams(b binarySegm, tag Tag) FeatureParams {
	if len(b) == 0 {
		return nil
	}
	switch {
	case tag == tagSize:
		if len(b) < 10 {
			return nil
		}
		return decodeSizeParams(b)
	case tag.isStylisticSet():
		if len(b) < 4 {
			return nil
		}
		return StylisticSetParams{Version: b.U16(0), UINameID: b.U16(2)}
	case tag.isCharacterVariant():
		if len(b) < 14 {
			return nil
		}
		p := CharacterVariantParams{
			Format:                  b.U16(0),
			FeatUILabelNameID:       b.U16(2),
			FeatUITooltipTextNameID: b.U16(4),
			SampleTextNameID:        b.U16(6),
			NumNamedParameters:      b.U16(8),
			FirstParamUILabelNameID: b.U16(10),
		}
		chars := viewArray16(b, 12, 3)
		p.Characters = make([]rune, chars.Len())
		for i := range p.Characters {
			p.Characters[i] = rune(u24(chars.Get(i)))
		}
		return p
	}
	return nil
}

// SizeParams returns the 'size' parameters of a feature, if present.
func (f Feature) SizeParams() (SizeParams, bool) {
	p, ok := f.Params().(SizeParams)
	return p, ok
}

// StylisticSetParams returns the parameters of a stylistic set feature, if present.
func (f Feature) StylisticSetParams() (StylisticSetParams, bool) {
	p, ok := f.Params().(StylisticSetParams)
	return p, ok
}

// CharacterVariantParams returns the parameters of a character variant
// feature, if present.
func (f Feature) CharacterVariantParams() (CharacterVariantParams, bool) {
	p, ok := f.Params().(CharacterVariantParams)
	return p, ok
}

package otquery

import (
	"github.com/npillmayer/otlcommon/ot"
	"golang.org/x/image/font/sfnt"
)

// --- Font Information -------------------------------------------------

// FontMetricsInfo holds the line metrics of a font, in font units.
type FontMetricsInfo struct {
	UnitsPerEm      sfnt.Units
	Ascent, Descent sfnt.Units // Descent is negative below the baseline
	LineGap         sfnt.Units
	MaxAdvance      sfnt.Units // from 'hhea'
	TypoMetrics     bool       // true if values are from OS/2 typo metrics
}

// FontSupportsScript returns a tuple (script-tag, language-tag) for a given input
// of a script tag and a language tag. If the language has no special support in the
// font, DFLT will be returned. If the script has no support in the font,
// DFLT will be returned for the script.
func FontSupportsScript(otf *ot.Font, scr ot.Tag, lang ot.Tag) (ot.Tag, ot.Tag) {
	if otf == nil {
		return 0, 0
	}
	gsub := otf.Layout.GSub
	if gsub == nil {
		return ot.DFLT, ot.DFLT
	}
	script, ok := gsub.ScriptList().FindScript(scr)
	if !ok {
		tracer().Infof("cannot find script %s in font", scr.String())
		return ot.DFLT, ot.DFLT
	}
	tracer().Debugf("script %s is contained in GSUB", scr.String())
	if _, ok := script.FindLangSysIndex(lang); ok {
		return scr, lang
	}
	return scr, ot.DFLT
}

// FontMetrics retrieves the line metrics of a font for the default instance.
// Metrics are taken from 'hhea', or from OS/2 if the font asks for typographic
// metrics or 'hhea' has no ascender and descender.
func FontMetrics(otf *ot.Font) FontMetricsInfo {
	metrics := FontMetricsInfo{UnitsPerEm: sfnt.Units(otf.UnitsPerEm())}
	if hhea := otf.HHea; hhea != nil {
		metrics.Ascent = sfnt.Units(hhea.Ascender)
		metrics.Descent = sfnt.Units(hhea.Descender)
		metrics.LineGap = sfnt.Units(hhea.LineGap)
		metrics.MaxAdvance = sfnt.Units(hhea.AdvanceMax)
	}
	if os2 := otf.OS2; os2 != nil {
		if os2.UseTypoMetrics() || (metrics.Ascent == 0 && metrics.Descent == 0) {
			tracer().Debugf("using OS/2 typo metrics")
			metrics.Ascent = sfnt.Units(os2.TypoAscender)
			metrics.Descent = sfnt.Units(os2.TypoDescender)
			metrics.LineGap = sfnt.Units(os2.TypoLineGap)
			metrics.TypoMetrics = true
		}
	}
	return metrics
}

// --- Glyph Routines --------------------------------------------------------

// GlyphMetricsInfo holds the horizontal metrics of a glyph, in font units.
type GlyphMetricsInfo struct {
	Advance  sfnt.Units
	LSB, RSB sfnt.Units
	BBox     BoundingBox // empty for glyphs without outlines or CFF fonts
}

// BoundingBox is the bounding box of a glyph outline.
type BoundingBox struct {
	MinX, MinY sfnt.Units
	MaxX, MaxY sfnt.Units
}

// IsEmpty reports whether this box has zero area.
func (bbox BoundingBox) IsEmpty() bool {
	return bbox.MaxX-bbox.MinX == 0 || bbox.MaxY-bbox.MinY == 0
}

// Dx returns the horizontal extent of this box.
func (bbox BoundingBox) Dx() sfnt.Units {
	return bbox.MaxX - bbox.MinX
}

// Dy returns the vertical extent of this box.
func (bbox BoundingBox) Dy() sfnt.Units {
	return bbox.MaxY - bbox.MinY
}

// GlyphMetrics retrieves metrics for a given glyph.
func GlyphMetrics(otf *ot.Font, gid ot.GlyphIndex) GlyphMetricsInfo {
	metrics := GlyphMetricsInfo{}
	if aw, lsb, ok := otf.HMtx.HMetrics(gid); ok {
		metrics.Advance = sfnt.Units(aw)
		metrics.LSB = sfnt.Units(lsb)
	}
	if b, ok := otf.GlyphBounds(gid); ok {
		metrics.BBox = BoundingBox{
			MinX: sfnt.Units(b[0]),
			MinY: sfnt.Units(b[1]),
			MaxX: sfnt.Units(b[2]),
			MaxY: sfnt.Units(b[3]),
		}
	}
	// rsb = aw - (lsb + xMax - xMin)
	// Glyphs without contours have no xMin/xMax; their RSB is left at 0.
	if !metrics.BBox.IsEmpty() {
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics
}

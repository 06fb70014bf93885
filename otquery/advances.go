package otquery

import (
	"github.com/npillmayer/otlcommon/ot"
)

// --- Advances --------------------------------------------------------------

// HAdvances writes the horizontal advances of count glyphs to out.
// Glyph i is taken from glyphs[i*glyphStride] and its advance is stored at
// out[i*outStride]. A stride of 0 repeats the first element. Counts larger
// than the slices allow are cut short, as are negative strides.
func (inst *Instance) HAdvances(count int, glyphs []ot.GlyphIndex, glyphStride int, out []int32, outStride int) {
	for i := 0; i < count; i++ {
		gi, oi := i*glyphStride, i*outStride
		if gi < 0 || oi < 0 || gi >= len(glyphs) || oi >= len(out) {
			return
		}
		out[oi] = inst.HAdvance(glyphs[gi])
	}
}

// VAdvances writes the vertical advances of count glyphs to out, with
// strides as for HAdvances. Vertical advances grow downwards and are
// therefore negative.
func (inst *Instance) VAdvances(count int, glyphs []ot.GlyphIndex, glyphStride int, out []int32, outStride int) {
	for i := 0; i < count; i++ {
		gi, oi := i*glyphStride, i*outStride
		if gi < 0 || oi < 0 || gi >= len(glyphs) || oi >= len(out) {
			return
		}
		out[oi] = inst.VAdvance(glyphs[gi])
	}
}

// HAdvance returns the horizontal advance of glyph g, including variation
// deltas from table HVAR. Fonts without 'hmtx' get an advance of half an em.
func (inst *Instance) HAdvance(g ot.GlyphIndex) int32 {
	hmtx := inst.otf.HMtx
	if hmtx == nil {
		return inst.EmScaleX(float32(inst.upem / 2))
	}
	adv, _, ok := hmtx.HMetrics(g)
	if !ok {
		return 0
	}
	return inst.EmScaleX(float32(adv) + inst.otf.HVar.AdvanceDelta(g, inst.coords))
}

// VAdvance returns the (negative) vertical advance of glyph g, including
// variation deltas from table VVAR. Fonts without 'vmtx' advance by the
// distance between ascender and descender.
func (inst *Instance) VAdvance(g ot.GlyphIndex) int32 {
	vmtx := inst.otf.VMtx
	if vmtx == nil {
		ext := inst.HExtentsWithFallback()
		return -(ext.Ascender - ext.Descender)
	}
	adv, _, ok := vmtx.HMetrics(g)
	if !ok {
		return 0
	}
	return -inst.EmScaleY(float32(adv) + inst.otf.VVar.AdvanceDelta(g, inst.coords))
}

// --- Font extents ----------------------------------------------------------

// Extents are the font-wide vertical metrics for horizontal text.
// Descender is negative for fonts with descenders below the baseline.
type Extents struct {
	Ascender, Descender, LineGap int32
}

// HExtents returns the ascender, descender and line gap of the font, scaled
// and with variation deltas from table MVAR applied. Values are taken from
// table OS/2 if the font asks for typographic metrics, otherwise from 'hhea'.
// It returns false if the font has neither table.
func (inst *Instance) HExtents() (Extents, bool) {
	otf := inst.otf
	var asc, desc, gap int16
	switch {
	case otf.OS2 != nil && (otf.OS2.UseTypoMetrics() || otf.HHea == nil):
		asc, desc, gap = otf.OS2.TypoAscender, otf.OS2.TypoDescender, otf.OS2.TypoLineGap
	case otf.HHea != nil:
		asc, desc, gap = otf.HHea.Ascender, otf.HHea.Descender, otf.HHea.LineGap
	default:
		return Extents{}, false
	}
	return Extents{
		Ascender:  inst.EmScaleY(float32(asc) + otf.MVar.Delta(ot.MVarHorizontalAscender, inst.coords)),
		Descender: inst.EmScaleY(float32(desc) + otf.MVar.Delta(ot.MVarHorizontalDescender, inst.coords)),
		LineGap:   inst.EmScaleY(float32(gap) + otf.MVar.Delta(ot.MVarHorizontalLineGap, inst.coords)),
	}, true
}

// HExtentsWithFallback returns the font extents as HExtents does. For fonts
// without the necessary tables, the ascender is set to 80% of the em-square,
// the descender to the remaining 20% below the baseline and the line gap to 0.
func (inst *Instance) HExtentsWithFallback() Extents {
	if ext, ok := inst.HExtents(); ok {
		return ext
	}
	tracer().Debugf("font has no extents, using fallback")
	asc := inst.EmScaleY(float32(inst.upem) * 0.8)
	return Extents{
		Ascender:  asc,
		Descender: asc - inst.yScale,
	}
}

// --- Origins ---------------------------------------------------------------

// VOrigin returns the origin of glyph g for vertical layout, relative to the
// origin for horizontal layout. x is half the horizontal advance. y is taken
// from table VORG if present. Otherwise it is the top of the glyph's bounding
// box plus its top side bearing, if 'vmtx' and outlines are available, and
// the font's ascender if not.
func (inst *Instance) VOrigin(g ot.GlyphIndex) (x, y int32) {
	x = inst.HAdvance(g) / 2
	otf := inst.otf
	if otf.VOrg != nil {
		v := float32(otf.VOrg.VertOriginY(g)) + otf.VVar.VOriginDelta(g, inst.coords)
		return x, inst.EmScaleY(v)
	}
	if otf.VMtx != nil {
		if _, tsb, ok := otf.VMtx.HMetrics(g); ok {
			if bbox, ok := otf.GlyphBounds(g); ok {
				v := float32(bbox[3]) + float32(tsb) + otf.VVar.SideBearingDelta(g, inst.coords)
				return x, inst.EmScaleY(v)
			}
		}
	}
	_, y = inst.GuessVOriginMinusHOrigin(g)
	return x, y
}

// GuessVOriginMinusHOrigin approximates the offset between vertical and
// horizontal origin of glyph g: half the advance to the right and the
// ascender up.
func (inst *Instance) GuessVOriginMinusHOrigin(g ot.GlyphIndex) (x, y int32) {
	x = inst.HAdvance(g) / 2
	return x, inst.HExtentsWithFallback().Ascender
}

// SubtractGlyphVOrigin converts a position (x, y) relative to the horizontal
// origin of glyph g to a position relative to its vertical origin.
func (inst *Instance) SubtractGlyphVOrigin(g ot.GlyphIndex, x, y int32) (int32, int32) {
	ox, oy := inst.VOrigin(g)
	return x - ox, y - oy
}

// --- Deltas ----------------------------------------------------------------

// DeviceXDelta returns the horizontal adjustment of a device table, resolving
// variation devices with the item variation store of GDEF.
func (inst *Instance) DeviceXDelta(dev ot.Device) int32 {
	return dev.XDelta(inst, inst.otf.Layout.GDef.VarStore())
}

// DeviceYDelta returns the vertical adjustment of a device table, resolving
// variation devices with the item variation store of GDEF.
func (inst *Instance) DeviceYDelta(dev ot.Device) int32 {
	return dev.YDelta(inst, inst.otf.Layout.GDef.VarStore())
}

// VarStoreDelta returns the unscaled delta for a two-part variation index
// into the item variation store of GDEF, at the instance's coordinates.
func (inst *Instance) VarStoreDelta(outer, inner uint16) float32 {
	return inst.otf.Layout.GDef.VarStore().Delta(int(outer), int(inner), inst.coords)
}

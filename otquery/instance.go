package otquery

import (
	"math"

	"github.com/npillmayer/otlcommon/ot"
	"golang.org/x/image/math/fixed"
)

// Instance is a font at a certain scale, with a pixel size for hinting and a
// position in design space for variable fonts.
//
// A new instance has a scale equal to the font's units per em, i.e. all
// values are reported in font units. Clients wanting 26.6 fixed point values
// for a certain font size should call SetSize.
//
// Instance is not safe for concurrent modification. Queries on an instance
// which is not modified any more may be called concurrently.
type Instance struct {
	otf            *ot.Font
	upem           int32
	xScale, yScale int32
	xPPEM, yPPEM   uint16
	coords         []ot.F2Dot14
}

var _ ot.FontInstance = (*Instance)(nil)

// NewInstance creates an instance for a font, in font units and at the
// default position in design space.
func NewInstance(otf *ot.Font) *Instance {
	upem := int32(otf.UnitsPerEm())
	return &Instance{
		otf:    otf,
		upem:   upem,
		xScale: upem,
		yScale: upem,
	}
}

// Font returns the underlying font.
func (inst *Instance) Font() *ot.Font {
	return inst.otf
}

// SetScale sets the values an em-square is mapped to, horizontally and
// vertically.
func (inst *Instance) SetScale(x, y int32) *Instance {
	inst.xScale, inst.yScale = x, y
	return inst
}

// SetPPEM sets the size in pixels per em used for hinting device tables.
// 0 switches hinting off.
func (inst *Instance) SetPPEM(x, y uint16) *Instance {
	inst.xPPEM, inst.yPPEM = x, y
	return inst
}

// SetSize sets scale and pixel size for a font size. Afterwards, positions
// and advances are reported as fixed.Int26_6 values (see ToFixed).
func (inst *Instance) SetSize(size fixed.Int26_6) *Instance {
	inst.xScale, inst.yScale = int32(size), int32(size)
	ppem := uint16(max(0, size.Round()))
	inst.xPPEM, inst.yPPEM = ppem, ppem
	return inst
}

// SetCoords sets the normalized design-space coordinates, one per axis of the
// font's fvar table. A nil slice selects the default instance.
func (inst *Instance) SetCoords(coords []ot.F2Dot14) *Instance {
	inst.coords = coords
	return inst
}

// SetVariation sets the coordinate for design axis tag to a user-space value,
// e.g. 700 for axis 'wght'. It returns false if the font has no such axis.
func (inst *Instance) SetVariation(tag ot.Tag, value float32) bool {
	fvar := inst.otf.FVar
	for i := 0; i < fvar.AxisCount(); i++ {
		axis := fvar.Axis(i)
		if axis.Tag != tag {
			continue
		}
		if len(inst.coords) < fvar.AxisCount() {
			coords := make([]ot.F2Dot14, fvar.AxisCount())
			copy(coords, inst.coords)
			inst.coords = coords
		}
		inst.coords[i] = axis.Normalize(value)
		tracer().Debugf("axis %s = %.2f, normalized %.4f", tag, value, inst.coords[i].Float())
		return true
	}
	return false
}

// XScale is part of interface ot.FontInstance.
func (inst *Instance) XScale() int32 { return inst.xScale }

// YScale is part of interface ot.FontInstance.
func (inst *Instance) YScale() int32 { return inst.yScale }

// XPPEM is part of interface ot.FontInstance.
func (inst *Instance) XPPEM() uint16 { return inst.xPPEM }

// YPPEM is part of interface ot.FontInstance.
func (inst *Instance) YPPEM() uint16 { return inst.yPPEM }

// Coords returns the normalized design-space coordinates.
func (inst *Instance) Coords() []ot.F2Dot14 { return inst.coords }

// HasVerticalOrigins is true if the font has a VORG table.
func (inst *Instance) HasVerticalOrigins() bool {
	return inst.otf.VOrg != nil
}

// EmScaleX scales a horizontal value from font units.
func (inst *Instance) EmScaleX(v float32) int32 {
	return emScale(v, inst.xScale, inst.upem)
}

// EmScaleY scales a vertical value from font units.
func (inst *Instance) EmScaleY(v float32) int32 {
	return emScale(v, inst.yScale, inst.upem)
}

func emScale(v float32, scale, upem int32) int32 {
	if upem == 0 {
		return 0
	}
	return int32(math.Round(float64(v) * float64(scale) / float64(upem)))
}

// ToFixed interprets a value of this instance as a 26.6 fixed point number.
// This is meaningful after a call to SetSize.
func ToFixed(v int32) fixed.Int26_6 {
	return fixed.Int26_6(v)
}

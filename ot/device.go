package ot

// FontInstance is the per-instance state of a font, as needed to resolve
// device tables and variation deltas: scale, pixels-per-em and the
// normalized design-space coordinates.
//
// Package otquery provides an implementation.
type FontInstance interface {
	XScale() int32
	YScale() int32
	XPPEM() uint16
	YPPEM() uint16
	Coords() []F2Dot14       // normalized variation coordinates
	HasVerticalOrigins() bool // true if the font has a VORG table
	EmScaleX(v float32) int32 // scale a value in font units to x scale
	EmScaleY(v float32) int32 // scale a value in font units to y scale
}

// Device formats.
const (
	DeviceFormatHinting2Bit = 1      // signed 2-bit values, 8 per uint16
	DeviceFormatHinting4Bit = 2      // signed 4-bit values, 4 per uint16
	DeviceFormatHinting8Bit = 3      // signed 8-bit values, 2 per uint16
	DeviceFormatVariation   = 0x8000 // VariationIndex table
)

// Device is a device table or a variation index table. Both share the same
// header layout and are told apart by their delta format.
//
// The zero value is an absent device with all deltas 0.
type Device struct {
	impl deviceImpl
}

type deviceImpl interface {
	xDelta(font FontInstance, store VariationStore) int32
	yDelta(font FontInstance, store VariationStore) int32
}

// HintingDevice holds pixel corrections for a range of sizes.
type HintingDevice struct {
	StartSize, EndSize uint16
	DeltaFormat        uint16
	values             binarySegm
}

// VariationDevice references a delta of an item variation store.
type VariationDevice struct {
	Outer, Inner uint16
}

// ParseDevice interprets b as a device table. b must have been sanitized.
// Unknown delta formats yield an absent device.
func ParseDevice(b binarySegm) Device {
	switch f := b.U16(4); f {
	case DeviceFormatHinting2Bit, DeviceFormatHinting4Bit, DeviceFormatHinting8Bit:
		return Device{impl: HintingDevice{
			StartSize:   b.U16(0),
			EndSize:     b.U16(2),
			DeltaFormat: f,
			values:      b.from(6),
		}}
	case DeviceFormatVariation:
		return Device{impl: VariationDevice{Outer: b.U16(0), Inner: b.U16(2)}}
	}
	return Device{}
}

func sanitizeDevice(s *sanitizer, b binarySegm) bool {
	if !s.checkRange(b, 0, 6) {
		return false
	}
	switch f := b.U16(4); f {
	case DeviceFormatHinting2Bit, DeviceFormatHinting4Bit, DeviceFormatHinting8Bit:
		return s.checkRange(b, 0, hintingDeviceSize(b.U16(0), b.U16(2), f))
	}
	return true
}

// hintingDeviceSize is the size of a hinting device table in bytes. Malformed
// tables only have the 6 byte header.
func hintingDeviceSize(start, end, format uint16) int {
	if format < 1 || format > 3 || start > end {
		return 6
	}
	return 2 * (4 + int((end-start)>>(4-format)))
}

// IsEmpty is true for an absent device.
func (d Device) IsEmpty() bool {
	return d.impl == nil
}

// Hinting returns the device as a hinting device, if it is one.
func (d Device) Hinting() (HintingDevice, bool) {
	h, ok := d.impl.(HintingDevice)
	return h, ok
}

// Variation returns the device as a variation index, if it is one.
func (d Device) Variation() (VariationDevice, bool) {
	v, ok := d.impl.(VariationDevice)
	return v, ok
}

// XDelta returns the horizontal adjustment for a font instance, in the
// instance's scale. store is needed to resolve variation indices.
func (d Device) XDelta(font FontInstance, store VariationStore) int32 {
	if d.impl == nil {
		return 0
	}
	return d.impl.xDelta(font, store)
}

// YDelta returns the vertical adjustment for a font instance.
func (d Device) YDelta(font FontInstance, store VariationStore) int32 {
	if d.impl == nil {
		return 0
	}
	return d.impl.yDelta(font, store)
}

// CollectVariationIndices adds the packed variation index of a variation
// device to set. Hinting devices add nothing.
func (d Device) CollectVariationIndices(set *IndexSet) {
	if v, ok := d.impl.(VariationDevice); ok {
		set.Add(PackVariationIndex(v.Outer, v.Inner))
	}
}

// --- Hinting ---------------------------------------------------------------

// Size returns the size of the table in bytes.
func (h HintingDevice) Size() int {
	return hintingDeviceSize(h.StartSize, h.EndSize, h.DeltaFormat)
}

// DeltaPixels returns the correction in pixels for a size in ppem. Sizes
// outside [StartSize, EndSize] have no correction.
func (h HintingDevice) DeltaPixels(ppem uint16) int {
	f := uint(h.DeltaFormat)
	if f < 1 || f > 3 || ppem < h.StartSize || ppem > h.EndSize {
		return 0
	}
	s := uint(ppem - h.StartSize)
	word := uint(h.values.U16(int(s>>(4-f)) * 2))
	bits := word >> (16 - (((s & ((1 << (4 - f)) - 1)) + 1) << f))
	mask := uint(0xFFFF) >> (16 - (1 << f))
	delta := int(bits & mask)
	if uint(delta) >= (mask+1)>>1 {
		delta -= int(mask + 1)
	}
	return delta
}

// Delta returns the correction for a size in ppem, converted to scale.
func (h HintingDevice) Delta(ppem uint16, scale int32) int32 {
	if ppem == 0 {
		return 0
	}
	pixels := h.DeltaPixels(ppem)
	if pixels == 0 {
		return 0
	}
	return int32(int64(pixels) * int64(scale) / int64(ppem))
}

func (h HintingDevice) xDelta(font FontInstance, _ VariationStore) int32 {
	return h.Delta(font.XPPEM(), font.XScale())
}

func (h HintingDevice) yDelta(font FontInstance, _ VariationStore) int32 {
	return h.Delta(font.YPPEM(), font.YScale())
}

// --- Variation -------------------------------------------------------------

// Delta returns the unscaled delta in font units.
func (v VariationDevice) Delta(coords []F2Dot14, store VariationStore) float32 {
	return store.Delta(int(v.Outer), int(v.Inner), coords)
}

func (v VariationDevice) xDelta(font FontInstance, store VariationStore) int32 {
	return font.EmScaleX(v.Delta(font.Coords(), store))
}

func (v VariationDevice) yDelta(font FontInstance, store VariationStore) int32 {
	return font.EmScaleY(v.Delta(font.Coords(), store))
}

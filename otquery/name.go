package otquery

import (
	"fmt"
	"iter"

	"github.com/npillmayer/otlcommon/ot"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/encoding/unicode"
)

// Table 'name':
//
//	uint16  version
//	uint16  count
//	Offset16 storageOffset
//	NameRecord nameRecord[count]  {platformID, encodingID, languageID, nameID, length, offset}
const (
	nameHeaderSize = 6
	nameRecordSize = 12
)

// PlatformID is the platform of a name record.
type PlatformID uint16

const (
	PlatformIDUnicode   PlatformID = 0
	PlatformIDMacintosh PlatformID = 1 // not supported
	PlatformIDWindows   PlatformID = 3
)

// EncodingID is the platform specific encoding of a name record.
type EncodingID uint16

const (
	EncodingIDUnicodeBMP    EncodingID = 3
	EncodingIDWindowsSymbol EncodingID = 0 // not supported
	EncodingIDWindowsBMP    EncodingID = 1
)

type nameRecord struct {
	platform PlatformID
	encoding EncodingID
	name     sfnt.NameID
	start    int
	end      int
}

// NamesRange yields decoded (nameID, value) pairs from a font's table 'name',
// in the order of the name records. Name IDs may repeat for different
// languages.
//
// Only Unicode BMP and Windows BMP encodings are decoded. Malformed or
// out-of-bounds records are skipped.
func NamesRange(otf *ot.Font) iter.Seq2[sfnt.NameID, string] {
	return func(yield func(sfnt.NameID, string) bool) {
		b := nameTable(otf)
		if b == nil {
			return
		}
		for rec := range nameRecords(b) {
			if !rec.isSupported() {
				continue
			}
			s, err := decodeNameUTF16(b[rec.start:rec.end])
			if err != nil || s == "" {
				continue
			}
			if !yield(rec.name, s) {
				return
			}
		}
	}
}

// FeatureName returns the first decodable name with the given name ID. Name
// IDs of 256 and up are font specific and are referenced, e.g., by the
// feature parameters of stylistic sets.
func FeatureName(otf *ot.Font, nameID uint16) (string, bool) {
	for id, s := range NamesRange(otf) {
		if id == sfnt.NameID(nameID) {
			return s, true
		}
	}
	return "", false
}

// FeatureLabel returns the user-interface label of feature i of a layout
// table. Only stylistic sets ('ssXX') and character variants ('cvXX') carry
// labels.
func FeatureLabel(otf *ot.Font, table *ot.LayoutTable, i int) (string, bool) {
	if table == nil {
		return "", false
	}
	f := table.FeatureList().Feature(i)
	if p, ok := f.StylisticSetParams(); ok && p.UINameID != 0xFFFF {
		return FeatureName(otf, p.UINameID)
	}
	if p, ok := f.CharacterVariantParams(); ok && p.FeatUILabelNameID != 0 {
		return FeatureName(otf, p.FeatUILabelNameID)
	}
	return "", false
}

// nameTable returns the binary data of table 'name', if it is safe to use.
func nameTable(otf *ot.Font) []byte {
	if otf == nil {
		return nil
	}
	table := otf.Table(ot.T("name"))
	if table == nil {
		tracer().Debugf("no name table found in font")
		return nil
	}
	b := table.Binary()
	if len(b) < nameHeaderSize {
		tracer().Debugf("name table too short: %d", len(b))
		return nil
	}
	count := int(u16(b[2:]))
	if storage := int(u16(b[4:])); storage > len(b) {
		tracer().Debugf("name table invalid string offset: %d", storage)
		return nil
	}
	if nameHeaderSize+count*nameRecordSize > len(b) {
		tracer().Debugf("name table record section out of bounds: count=%d", count)
		return nil
	}
	return b
}

// nameRecords iterates over the records of a name table which has been
// checked by nameTable. Records pointing outside the table are skipped.
func nameRecords(b []byte) iter.Seq[nameRecord] {
	return func(yield func(nameRecord) bool) {
		count, storage := int(u16(b[2:])), int(u16(b[4:]))
		for i := range count {
			r := b[nameHeaderSize+i*nameRecordSize:]
			rec := nameRecord{
				platform: PlatformID(u16(r[0:])),
				encoding: EncodingID(u16(r[2:])),
				name:     sfnt.NameID(u16(r[6:])),
			}
			rec.start = storage + int(u16(r[10:]))
			rec.end = rec.start + int(u16(r[8:]))
			if rec.end > len(b) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

func (rec nameRecord) isSupported() bool {
	return (rec.platform == PlatformIDUnicode && rec.encoding == EncodingIDUnicodeBMP) ||
		(rec.platform == PlatformIDWindows && rec.encoding == EncodingIDWindowsBMP)
}

func decodeNameUTF16(str []byte) (string, error) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	s, err := enc.NewDecoder().Bytes(str)
	if err != nil {
		return "", fmt.Errorf("decoding UTF-16: %w", err)
	}
	return string(s), nil
}

func u16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

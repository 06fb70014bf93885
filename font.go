/*
Package otlcommon is for loading OpenType fonts and querying their common
layout tables.

The heavy lifting is done in sub-packages:

▪︎ Package ot validates and decodes the binary font data. It contains the
common layout structures of GSUB, GPOS and GDEF, device tables and the
tables for variable fonts.

▪︎ Package otlayout answers questions about scripts, languages, features
and lookups of a font's layout tables.

▪︎ Package otquery answers metric questions, falling back to approximations
where a font lacks the necessary tables.

This package ties them together for clients which just want to load a font
from a file.

# Links

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otlcommon

import (
	"os"

	"github.com/npillmayer/otlcommon/ot"
	"github.com/npillmayer/otlcommon/otquery"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}

// ScalableFont is an internal representation of an outline-font of type
// TTF of OTF.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path
	Binary   []byte     // raw data
	OT       *ot.Font   // decoded OpenType tables
	SFNT     *sfnt.Font // glyph outlines, if the font is complete enough for package sfnt
}

// LoadOpenTypeFont loads an OpenType font (TTF or OTF) from a file.
func LoadOpenTypeFont(fontfile string, opts ...ot.ParseOption) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez, opts...)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont loads an OpenType font (TTF or OTF) from memory.
//
// The font data is sanitized by package ot, which may drop or correct broken
// tables; see ot.Font.Errors and ot.Font.Warnings. Fonts which package sfnt
// does not accept are still usable for layout queries, but have no SFNT.
func ParseOpenTypeFont(fbytes []byte, opts ...ot.ParseOption) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	if f.OT, err = ot.Parse(fbytes, opts...); err != nil {
		return nil, err
	}
	if sf, err := sfnt.Parse(fbytes); err == nil {
		f.SFNT = sf
		f.Fontname, _ = sf.Name(nil, sfnt.NameIDFull)
	} else {
		tracer().Debugf("font not accepted by sfnt: %v", err)
	}
	if f.Fontname == "" {
		f.Fontname = FullName(f.OT)
	}
	tracer().Debugf("loaded and parsed font %s", f.Fontname)
	return f, nil
}

// FromBinary parses raw OpenType bytes and returns a decoded font.
//
// The input is expected to contain a complete single-font SFNT stream.
// It must not change after parsing for the font to be usable.
func FromBinary(data []byte) (*ot.Font, error) {
	return ot.Parse(data)
}

// FamilyName extracts family and subfamily names from a font's `name` table.
//
// Returned values are empty if no matching records exist or if records cannot be
// decoded by the current name-table reader.
func FamilyName(f *ot.Font) (family, subfamily string) {
	for nameId, stringValue := range otquery.NamesRange(f) {
		switch nameId {
		case sfnt.NameIDFamily:
			if family == "" {
				family = stringValue
			}
		case sfnt.NameIDSubfamily:
			if subfamily == "" {
				subfamily = stringValue
			}
		}
	}
	return
}

// FullName returns the full name of a font, or, if the font does not state
// one, family and subfamily name.
func FullName(f *ot.Font) string {
	for nameId, stringValue := range otquery.NamesRange(f) {
		if nameId == sfnt.NameIDFull {
			return stringValue
		}
	}
	family, subfamily := FamilyName(f)
	if subfamily == "" {
		return family
	}
	return family + " " + subfamily
}

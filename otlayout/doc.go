/*
Package otlayout provides queries over the OpenType layout tables GSUB and GPOS,
as a shaper needs them before doing any actual glyph processing:

  - mapping Unicode scripts and BCP 47 languages to OpenType tags
  - selecting a script and a language system, with the usual fallbacks
  - collecting the features of a script/language combination
  - collecting the lookups of a set of features, taking feature variations
    into account
  - collecting the glyphs a lookup may start to match at, and checking if a
    lookup may apply to a set of glyphs at all

Applying lookups to glyph buffers is not part of this package.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otlayout

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// errFontFormat produces user level errors for font parsing.
func errFontFormat(message string) error {
	return fmt.Errorf("OpenType font format: %s", message)
}

// tracer writes to trace with key 'font.opentype.layout'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype.layout")
}

/*
Package ot provides access to the common tables of OpenType advanced layout.

Intended audience for this package are text shapers and font inspection tools
which need the data-lookup primitives of OpenType layout, without a shaping
engine attached: script and language registries, feature and lookup lists,
coverage and class definition tables, item variation stores, feature
variations and device tables.

All tables are views into the font's binary data. Nothing is copied out into
separate data structures; accessors decode on the fly. Before a table is
handed out to clients, it has been sanitized: every offset and every array the
format allows has been checked to lie within the font's bytes. Sanitization
does not guarantee semantic soundness (for example, sortedness of glyph
arrays), so accessors degrade gracefully: a broken coverage table simply does
not cover a glyph, a broken delta evaluates to 0.

Package `ot` does not interpret lookups, i.e. it will not substitute or
position glyphs. Clients have to do this themselves or consult the sister
packages `otlayout` (feature and lookup collection) and `otquery` (metrics).

# Variable Fonts

Variation-axis coordinates are consumed in normalized form, as a slice of
2.14 fixed-point values (type F2Dot14). VariationAxis.Normalize maps a user
coordinate to its normalized value with the default mapping of table 'fvar';
segment maps of table 'avar' are not applied.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}

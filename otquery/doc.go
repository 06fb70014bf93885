/*
Package otquery answers metric questions about an OpenType font, the way a
text shaper needs them: advances in both directions, vertical origins, font
extents, device deltas and variation deltas. Where a font lacks the tables
to answer a question, the functions fall back to approximations, e.g. an
ascender of 80% of the em-square.

The central type is Instance, a font at a certain scale, size in pixels and
position in design space. Instance implements ot.FontInstance and may be
used to resolve device tables of package ot.

The package also offers simple informational queries, like font metrics in
font units and names from table 'name'.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.opentype.query'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype.query")
}

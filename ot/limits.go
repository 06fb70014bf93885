package ot

// Limits for sanitizing font data. A font exceeding one of these limits is
// considered broken or hostile. The values are process-wide and must not be
// changed at runtime.
const (
	MaxNestingLevel   = 6     // max depth of table-references-table during sanitizing
	MaxEdits          = 32    // max number of in-place corrections per sanitizing pass
	OpsFactor         = 8     // ops budget per byte of table data
	MinOps            = 16384 // minimum ops budget for small tables
	MaxOps            = 0x3FFFFFFF
	MaxScripts        = 500   // max ScriptRecords in a ScriptList
	MaxLangSys        = 2000  // max LangSysRecords in a Script, summed over a ScriptList
	MaxFeatures       = 750   // max FeatureRecords in a FeatureList
	MaxFeatureIndices = 1500  // max feature indices in a LangSys
	MaxLookupIndices  = 20000 // max lookup indices in a Feature
	MaxLookups        = 0xFFFF
	MaxSubTables      = 0x4000 // max lookup sub-tables visited per sanitizing pass
	MaxGlyphCount     = 0xFFFF
)

// NotFoundIndex is returned by index lookups if an item is not present.
const NotFoundIndex = 0xFFFFFFFF

// NotCovered is returned from coverage lookups for glyphs not in the coverage.
const NotCovered = 0xFFFFFFFF

// NoRequiredFeature is the LangSys entry signalling the absence of a required feature.
const NoRequiredFeature = 0xFFFF

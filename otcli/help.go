package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Debugf("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "script", "scripts", "scriptlist":
		pterm.Info.Println("ScriptList / Script")
		pterm.Println(`
	ScriptList is a property of GSUB and GPOS.
	It consists of ScriptRecords, sorted by tag:
	+------------+----------------+
	| Script Tag | Link to Script |
	+------------+----------------+

	A Script table links to a default LangSys entry, and contains a list of LangSys records:
	+--------------------------------+
	| Link to LangSys record         |
	+--------------+-----------------+
	| Language Tag | Link to LangSys |
	+--------------+-----------------+

	scripts        list the scripts of the current table
	langs:<tag>    list the language systems of a script, e.g. langs:latn
	`)
	case "lang", "langsys", "langs", "language":
		pterm.Info.Println("LangSys")
		pterm.Println(`
	LangSys is pointed to from a Script Record.
	It links a language with features to activate. It does so using an index into the feature table.
	+-----------------------------------+
	| Index of required feature or null |
	+-----------------------------------+
	| Index of feature 1                |
	+-----------------------------------+
	| Index of feature 2                |
	+-----------------------------------+
	| ...                               |
	+-----------------------------------+
	`)
	case "feature", "features", "lookup", "lookups", "coverage":
		pterm.Info.Println("Features / Lookups")
		pterm.Println(`
	Features link into the LookupList by index. Lookups consist of sub-tables
	of a common type, every sub-table has a primary coverage.

	features             list the features of the current table
	features:<script>    features reachable from a script, e.g. features:latn
	lookups              list the lookups of the current table
	lookup:<n>           show the sub-tables of lookup n
	coverage:<n>         glyphs lookup n may start matching at
	`)
	case "var", "variations", "varstore", "axis", "fvar", "delta":
		pterm.Info.Println("Variations")
		pterm.Println(`
	Variable fonts have design axes, listed in table 'fvar'. Positions in
	design space are normalized to [-1, 1] per axis.

	axis                 list the design axes
	axis:<i>:<value>     set axis i (or axis tag) to a user space value, e.g. axis:wght:700
	fvar                 show the feature variation record matching the current position
	varstore             show the item variation store of GDEF
	delta:<outer>:<inner> compute a delta from the item variation store
	`)
	default:
		pterm.Info.Println("General Help")
		pterm.Println(`
	Commands have the form name[:arg[:arg]], several commands may be given on one line.

	table:<GSUB|GPOS>    select the current layout table
	tables               list the tables of the font
	errors               list problems found while parsing the font
	scripts, langs       scripts and language systems (see help:scripts)
	features, lookups    features and lookups (see help:features)
	axis, fvar, varstore variations (see help:variations)
	quit                 leave the CLI
	`)
	}
}

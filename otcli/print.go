package main

import (
	"fmt"
	"strings"

	"github.com/npillmayer/otlcommon/ot"
	"github.com/pterm/pterm"
)

func printLookupList(table *ot.LayoutTable) {
	if table == nil {
		pterm.Error.Println("layout table is nil")
		return
	}
	ll := table.LookupList()
	count := ll.Count()
	pterm.Printf("%s LookupList has %d entries\n", table.Kind(), count)
	if count == 0 {
		return
	}
	data := [][]string{
		{"Index", "Type", "Subtables", "Flags"},
	}
	for i := range count {
		lookup := ll.Lookup(i)
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			formatLookupType(lookup.Kind(), lookup.ResolvedType()),
			fmt.Sprintf("%d", lookup.SubTableCount()),
			formatLookupFlags(lookup.Flag()),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printLookup(table *ot.LayoutTable, index int) {
	if table == nil {
		pterm.Error.Println("layout table is nil")
		return
	}
	ll := table.LookupList()
	if index < 0 || index >= ll.Count() {
		pterm.Error.Printf("Lookup index out of range: %d\n", index)
		return
	}
	lookup := ll.Lookup(index)
	pterm.Printf("Lookup %d: type=%s flags=%s subtables=%d\n",
		index,
		formatLookupType(lookup.Kind(), lookup.Type()),
		formatLookupFlags(lookup.Flag()),
		lookup.SubTableCount(),
	)
	if lookup.Flag()&ot.LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		pterm.Printf("mark filtering set = %d\n", lookup.MarkFilteringSet())
	}
	data := [][]string{
		{"Sub", "Type", "Format", "Coverage", "Bytes"},
	}
	for i := 0; i < lookup.SubTableCount(); i++ {
		sub := lookup.SubTable(i)
		if sub.IsEmpty() {
			data = append(data, []string{fmt.Sprintf("%d", i), "-", "-", "-", "-"})
			continue
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			formatLookupType(sub.Kind(), sub.Type),
			fmt.Sprintf("%d", sub.Format()),
			formatCoverageSummary(sub.Coverage()),
			fmt.Sprintf("%d", len(sub.Bytes())),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func formatLookupType(kind ot.LayoutKind, ltype ot.LayoutTableLookupType) string {
	if ltype == 0 {
		return "Unknown(0)"
	}
	if kind == ot.KindGPOS {
		return ltype.GPosString()
	}
	return ltype.GSubString()
}

func formatLookupFlags(flag ot.LayoutTableLookupFlag) string {
	if flag == 0 {
		return "-"
	}
	parts := make([]string, 0, 6)
	if flag&ot.LOOKUP_FLAG_RIGHT_TO_LEFT != 0 {
		parts = append(parts, "RightToLeft")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_BASE_GLYPHS != 0 {
		parts = append(parts, "IgnoreBase")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_LIGATURES != 0 {
		parts = append(parts, "IgnoreLigatures")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_MARKS != 0 {
		parts = append(parts, "IgnoreMarks")
	}
	if flag&ot.LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		parts = append(parts, "UseMarkFilteringSet")
	}
	if t := flag.MarkAttachmentType(); t != 0 {
		parts = append(parts, fmt.Sprintf("MarkAttachType=%d", t))
	}
	return strings.Join(parts, "|")
}

func formatCoverageSummary(cov ot.Coverage) string {
	if cov.Format() == 0 {
		return "-"
	}
	return fmt.Sprintf("fmt=%d count=%d", cov.Format(), cov.Len())
}

func formatGlyphs(glyphs []ot.GlyphIndex, max int) string {
	sb := strings.Builder{}
	for i, g := range glyphs {
		if i == max {
			sb.WriteString(fmt.Sprintf(" … (%d more)", len(glyphs)-max))
			break
		}
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("%d", g))
	}
	return sb.String()
}

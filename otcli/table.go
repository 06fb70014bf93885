package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/npillmayer/otlcommon/ot"
	"github.com/npillmayer/otlcommon/otlayout"
	"github.com/npillmayer/otlcommon/otquery"
	"github.com/pterm/pterm"
)

func tableOp(intp *Intp, op *Op) (error, bool) {
	otf := intp.font.OT
	var table *ot.LayoutTable
	switch ot.T(op.arg) {
	case ot.T("GSUB"):
		table = otf.Layout.GSub
	case ot.T("GPOS"):
		table = otf.Layout.GPos
	default:
		return fmt.Errorf("not a layout table: %q", op.arg), false
	}
	if table == nil {
		return errors.New("table not found in font"), false
	}
	intp.table = table
	tracer().Infof("setting table: %v", op.arg)
	return nil, false
}

func tablesOp(intp *Intp, op *Op) (error, bool) {
	otf := intp.font.OT
	data := [][]string{{"Tag", "Offset", "Size"}}
	for _, tag := range otf.TableTags() {
		off, size := otf.Table(tag).Extent()
		data = append(data, []string{tag.String(), fmt.Sprintf("%d", off), fmt.Sprintf("%d", size)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func errorsOp(intp *Intp, op *Op) (error, bool) {
	otf := intp.font.OT
	if len(otf.Errors()) == 0 && len(otf.Warnings()) == 0 {
		pterm.Println("no issues")
		return nil, false
	}
	for _, e := range otf.Errors() {
		pterm.Println(e.Error())
	}
	for _, w := range otf.Warnings() {
		pterm.Println(w.String())
	}
	return nil, false
}

// --- Scripts and features ---------------------------------------------

func scriptsOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	sl := intp.table.ScriptList()
	tags := make([]ot.Tag, sl.Count())
	sl.Tags(0, tags)
	pterm.Printf("ScriptList keys: %v\n", tags)
	return
}

func langsOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	tag, ok := op.hasArg()
	if !ok {
		return errors.New("usage: langs:<script>"), false
	}
	scr, found := intp.table.ScriptList().FindScript(ot.T(tag))
	if !found {
		return fmt.Errorf("script [%s] not found", ot.T(tag)), false
	}
	tags := make([]ot.Tag, scr.LangSysCount())
	scr.LangSysTags(0, tags)
	pterm.Printf("Script %s has default LangSys: %v\n", ot.T(tag), scr.HasDefaultLangSys())
	pterm.Printf("LangSys keys: %v\n", tags)
	return
}

func featuresOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	fl := intp.table.FeatureList()
	var indices *ot.IndexSet
	if script, ok := op.hasArg(); ok {
		var langs []ot.Tag
		if op.arg2 != "" {
			langs = []ot.Tag{ot.T(op.arg2)}
		}
		indices = otlayout.CollectFeatures(intp.table, []ot.Tag{ot.T(script)}, langs, nil)
	} else {
		indices = &ot.IndexSet{}
		for i := 0; i < fl.Count(); i++ {
			indices.Add(uint32(i))
		}
	}
	varIndex := intp.table.FindVariationsIndex(intp.inst.Coords())
	data := [][]string{{"Index", "Tag", "Lookups", "Label"}}
	for inx := range indices.All() {
		f := intp.table.Feature(int(inx), varIndex)
		lookups := make([]uint16, f.LookupCount())
		f.LookupIndices(0, lookups)
		label, _ := otquery.FeatureLabel(intp.font.OT, intp.table, int(inx))
		data = append(data, []string{
			fmt.Sprintf("%d", inx),
			f.Tag().String(),
			fmt.Sprintf("%v", lookups),
			label,
		})
	}
	pterm.Printf("%s FeatureList has %d entries\n", intp.table.Kind(), fl.Count())
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return
}

// --- Lookups ----------------------------------------------------------

func lookupsOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	printLookupList(intp.table)
	return
}

func lookupOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	i, err := strconv.Atoi(op.arg)
	if err != nil {
		tracer().Errorf("Lookup index not numeric: %v\n", op.arg)
		return errors.New("invalid lookup index"), false
	}
	printLookup(intp.table, i)
	return
}

func coverageOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	i, err := strconv.Atoi(op.arg)
	if err != nil {
		return errors.New("invalid lookup index"), false
	}
	set := ot.NewGlyphSet()
	if !otlayout.LookupCoverage(intp.table, i, set) {
		pterm.Error.Println("lookup has broken coverage tables")
	}
	pterm.Printf("lookup %d covers %d glyphs: %s\n", i, set.Len(), formatGlyphs(set.Slice(), 64))
	return
}

// --- Variations -------------------------------------------------------

func varstoreOp(intp *Intp, op *Op) (error, bool) {
	store := intp.font.OT.Layout.GDef.VarStore()
	if store.IsEmpty() {
		return errors.New("font has no item variation store in GDEF"), false
	}
	regions := store.Regions()
	pterm.Printf("VariationStore: %d axes, %d regions, %d item variation data tables\n",
		regions.AxisCount(), regions.RegionCount(), store.DataCount())
	data := [][]string{{"Outer", "Items", "Regions", "Short"}}
	for i := 0; i < store.DataCount(); i++ {
		vd := store.Data(i)
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", vd.ItemCount()),
			fmt.Sprintf("%d", vd.RegionIndexCount()),
			fmt.Sprintf("%d", vd.ShortCount()),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func deltaOp(intp *Intp, op *Op) (error, bool) {
	outer, err1 := strconv.ParseUint(op.arg, 10, 16)
	inner, err2 := strconv.ParseUint(op.arg2, 10, 16)
	if err := errors.Join(err1, err2); err != nil {
		return fmt.Errorf("usage: delta:<outer>:<inner>: %w", err), false
	}
	d := intp.inst.VarStoreDelta(uint16(outer), uint16(inner))
	pterm.Printf("delta[%d:%d] = %.3f\n", outer, inner, d)
	return nil, false
}

func axisOp(intp *Intp, op *Op) (error, bool) {
	fvar := intp.font.OT.FVar
	if fvar == nil {
		return errors.New("font is not a variable font"), false
	}
	if op.noArg() {
		data := [][]string{{"Index", "Tag", "Min", "Default", "Max", "Name"}}
		for i := 0; i < fvar.AxisCount(); i++ {
			a := fvar.Axis(i)
			name, _ := otquery.FeatureName(intp.font.OT, a.AxisNameID)
			data = append(data, []string{
				fmt.Sprintf("%d", i), a.Tag.String(),
				fmt.Sprintf("%g", a.Min), fmt.Sprintf("%g", a.Default), fmt.Sprintf("%g", a.Max),
				name,
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		return nil, false
	}
	tag := ot.T(op.arg)
	if i, err := strconv.Atoi(op.arg); err == nil {
		tag = fvar.Axis(i).Tag
	}
	value, err := strconv.ParseFloat(op.arg2, 32)
	if err != nil {
		return fmt.Errorf("usage: axis:<i>:<value>: %w", err), false
	}
	if !intp.inst.SetVariation(tag, float32(value)) {
		return fmt.Errorf("no design axis %q", op.arg), false
	}
	return nil, false
}

func fvarOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	fv := intp.table.FeatureVariations()
	pterm.Printf("%s has %d feature variation records\n", intp.table.Kind(), fv.Count())
	inx := fv.FindIndex(intp.inst.Coords())
	if inx == ot.NotFoundIndex {
		pterm.Println("no record matches the current coordinates")
		return
	}
	subst := fv.Substitution(int(inx))
	pterm.Printf("record %d matches, substituting %d features\n", inx, subst.Count())
	return
}

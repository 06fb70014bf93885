package otlayout

import (
	"strings"

	"github.com/npillmayer/otlcommon/ot"
	"golang.org/x/text/language"
)

// Complete list of script tags at
// https://docs.microsoft.com/en-us/typography/opentype/spec/scripttags
//
// Most of the script tags are the same as the ISO 15924 tag but lowercased.
// Indic scripts have a second (and partly a third) generation of tags, which
// select a different shaping model.

var newScriptTags = map[string]ot.Tag{
	"Beng": ot.T("bng2"),
	"Deva": ot.T("dev2"),
	"Gujr": ot.T("gjr2"),
	"Guru": ot.T("gur2"),
	"Knda": ot.T("knd2"),
	"Mlym": ot.T("mlm2"),
	"Orya": ot.T("ory2"),
	"Taml": ot.T("tml2"),
	"Telu": ot.T("tel2"),
	"Mymr": ot.T("mym2"),
}

var oldScriptTags = map[string]ot.Tag{
	"Zmth": ot.T("math"),
	"Hira": ot.T("kana"), // Katakana and Hiragana both map to 'kana'
	"Kana": ot.T("kana"),
	"Hrkt": ot.T("kana"),
	"Laoo": ot.T("lao "), // spaces at the end are preserved, unlike ISO 15924
	"Yiii": ot.T("yi  "),
	"Nkoo": ot.T("nko "),
	"Vaii": ot.T("vai "),
}

// TagsForScript returns the OpenType script tags for a Unicode script, in
// order of preference. Newer Indic tags come first. Scripts without glyphs of
// their own (common, inherited, unknown) yield nil, as fonts list them under
// 'DFLT'.
func TagsForScript(script language.Script) []ot.Tag {
	s := script.String()
	switch s {
	case "Zyyy", "Zinh", "Zzzz", "":
		return nil
	}
	var tags []ot.Tag
	if tag, ok := newScriptTags[s]; ok {
		if s != "Mymr" { // there is no 'mym3'
			tags = append(tags, tag&^0xFF|'3')
		}
		tags = append(tags, tag)
	}
	if tag, ok := oldScriptTags[s]; ok {
		return append(tags, tag)
	}
	return append(tags, ot.T(strings.ToLower(s[:1])+s[1:]))
}

// otLanguages maps ISO 639 primary language subtags to OpenType language
// system tags, where the latter are not simply the upper-cased ISO 639-3 code.
var otLanguages = map[string][]ot.Tag{
	"am": {ot.T("AMH ")},
	"ar": {ot.T("ARA ")},
	"az": {ot.T("AZE ")},
	"be": {ot.T("BEL ")},
	"bg": {ot.T("BGR ")},
	"bn": {ot.T("BEN ")},
	"ca": {ot.T("CAT ")},
	"cs": {ot.T("CSY ")},
	"cy": {ot.T("WEL ")},
	"da": {ot.T("DAN ")},
	"de": {ot.T("DEU ")},
	"el": {ot.T("ELL ")},
	"en": {ot.T("ENG ")},
	"es": {ot.T("ESP ")},
	"et": {ot.T("ETI ")},
	"eu": {ot.T("EUQ ")},
	"fa": {ot.T("FAR ")},
	"fi": {ot.T("FIN ")},
	"fr": {ot.T("FRA ")},
	"ga": {ot.T("IRI ")},
	"gd": {ot.T("GAE ")},
	"he": {ot.T("IWR ")},
	"hi": {ot.T("HIN ")},
	"hr": {ot.T("HRV ")},
	"hu": {ot.T("HUN ")},
	"hy": {ot.T("HYE0"), ot.T("HYE ")},
	"id": {ot.T("IND ")},
	"is": {ot.T("ISL ")},
	"it": {ot.T("ITA ")},
	"ja": {ot.T("JAN ")},
	"ka": {ot.T("KAT ")},
	"kk": {ot.T("KAZ ")},
	"km": {ot.T("KHM ")},
	"ko": {ot.T("KOR ")},
	"ku": {ot.T("KUR ")},
	"ky": {ot.T("KIR ")},
	"lo": {ot.T("LAO ")},
	"lt": {ot.T("LTH ")},
	"lv": {ot.T("LVI ")},
	"mk": {ot.T("MKD ")},
	"mn": {ot.T("MNG ")},
	"ms": {ot.T("MLY ")},
	"mt": {ot.T("MTS ")},
	"my": {ot.T("BRM ")},
	"nb": {ot.T("NOR ")},
	"ne": {ot.T("NEP ")},
	"nl": {ot.T("NLD ")},
	"nn": {ot.T("NYN ")},
	"no": {ot.T("NOR ")},
	"pl": {ot.T("PLK ")},
	"pt": {ot.T("PTG ")},
	"ro": {ot.T("ROM "), ot.T("MOL ")},
	"ru": {ot.T("RUS ")},
	"si": {ot.T("SNH ")},
	"sk": {ot.T("SKY ")},
	"sl": {ot.T("SLV ")},
	"sq": {ot.T("SQI ")},
	"sr": {ot.T("SRB ")},
	"sv": {ot.T("SVE ")},
	"sw": {ot.T("SWK ")},
	"ta": {ot.T("TAM ")},
	"te": {ot.T("TEL ")},
	"th": {ot.T("THA ")},
	"tr": {ot.T("TRK ")},
	"tt": {ot.T("TAT ")},
	"uk": {ot.T("UKR ")},
	"ur": {ot.T("URD ")},
	"vi": {ot.T("VIT ")},
	"yi": {ot.T("JII ")},
}

// TagsForLanguage returns the OpenType language system tags for a BCP 47
// language tag, in order of preference. Chinese is resolved by script and
// region. Languages without a known mapping use their ISO 639-3 code,
// upper-cased. Undetermined languages yield nil.
func TagsForLanguage(lang language.Tag) []ot.Tag {
	base, conf := lang.Base()
	if conf == language.No || base.String() == "und" {
		return nil
	}
	primary := base.String()
	if primary == "zh" {
		return []ot.Tag{chineseTag(lang)}
	}
	if tags, ok := otLanguages[primary]; ok {
		return append([]ot.Tag(nil), tags...)
	}
	iso3 := base.ISO3()
	if len(iso3) != 3 {
		tracer().Debugf("no OpenType language tag for %s", lang)
		return nil
	}
	return []ot.Tag{ot.T(strings.ToUpper(iso3) + " ")}
}

func chineseTag(lang language.Tag) ot.Tag {
	if region, conf := lang.Region(); conf == language.Exact {
		switch region.String() {
		case "HK":
			return ot.T("ZHH ")
		case "MO":
			return ot.T("ZHTM")
		case "TW":
			return ot.T("ZHT ")
		}
	}
	if script, _ := lang.Script(); script.String() == "Hant" {
		return ot.T("ZHT ")
	}
	return ot.T("ZHS ")
}

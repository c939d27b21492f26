// Package langmeta provides the shared language registry: native display
// names and emoji flags for the CLI, the uppercase codes the translation
// provider API expects, and ISO 639-3 to 639-1 mapping for subtitle file
// names that carry three-letter codes.
package langmeta

import (
	"sort"
	"strings"
)

// Meta describes language display metadata.
type Meta struct {
	Name string
	Flag string
}

// Registry contains the languages the translation provider accepts.
// Locale variants are resolved in Resolve() via normalization and base fallback.
var Registry = map[string]Meta{
	"af":    {Name: "Afrikaans", Flag: "🇿🇦"},
	"ar":    {Name: "العربية", Flag: "🇸🇦"},
	"bg":    {Name: "Български", Flag: "🇧🇬"},
	"cs":    {Name: "Čeština", Flag: "🇨🇿"},
	"da":    {Name: "Dansk", Flag: "🇩🇰"},
	"de":    {Name: "Deutsch", Flag: "🇩🇪"},
	"el":    {Name: "Ελληνικά", Flag: "🇬🇷"},
	"en":    {Name: "English", Flag: "🇺🇸"},
	"en-GB": {Name: "English (UK)", Flag: "🇬🇧"},
	"en-US": {Name: "English (US)", Flag: "🇺🇸"},
	"es":    {Name: "Español", Flag: "🇪🇸"},
	"et":    {Name: "Eesti", Flag: "🇪🇪"},
	"fi":    {Name: "Suomi", Flag: "🇫🇮"},
	"fr":    {Name: "Français", Flag: "🇫🇷"},
	"hu":    {Name: "Magyar", Flag: "🇭🇺"},
	"id":    {Name: "Bahasa Indonesia", Flag: "🇮🇩"},
	"it":    {Name: "Italiano", Flag: "🇮🇹"},
	"ja":    {Name: "日本語", Flag: "🇯🇵"},
	"ko":    {Name: "한국어", Flag: "🇰🇷"},
	"lt":    {Name: "Lietuvių", Flag: "🇱🇹"},
	"lv":    {Name: "Latviešu", Flag: "🇱🇻"},
	"nb":    {Name: "Norsk bokmål", Flag: "🇳🇴"},
	"nl":    {Name: "Nederlands", Flag: "🇳🇱"},
	"pl":    {Name: "Polski", Flag: "🇵🇱"},
	"pt":    {Name: "Português", Flag: "🇵🇹"},
	"pt-BR": {Name: "Português (Brasil)", Flag: "🇧🇷"},
	"pt-PT": {Name: "Português (Portugal)", Flag: "🇵🇹"},
	"ro":    {Name: "Română", Flag: "🇷🇴"},
	"ru":    {Name: "Русский", Flag: "🇷🇺"},
	"sk":    {Name: "Slovenčina", Flag: "🇸🇰"},
	"sl":    {Name: "Slovenščina", Flag: "🇸🇮"},
	"sv":    {Name: "Svenska", Flag: "🇸🇪"},
	"tr":    {Name: "Türkçe", Flag: "🇹🇷"},
	"uk":    {Name: "Українська", Flag: "🇺🇦"},
	"zh":    {Name: "中文", Flag: "🇨🇳"},
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort language metadata for language codes,
// supporting variants like pt_BR, pt-BR, and locale fallbacks.
func Resolve(lang string) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	normalized := canonicalize(lang)
	if m, ok := Registry[normalized]; ok {
		return m
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if m, ok := Registry[parts[0]]; ok {
			return m
		}
	}
	return Meta{Name: lang, Flag: ""}
}

// Supported returns the sorted list of registry language codes.
func Supported() []string {
	langs := make([]string, 0, len(Registry))
	for code := range Registry {
		langs = append(langs, code)
	}
	sort.Strings(langs)
	return langs
}

// IsSupported reports whether lang (after normalization) is in the registry.
func IsSupported(lang string) bool {
	_, ok := apiCode(lang)
	return ok
}

// APICode converts a language code to the uppercase form the provider API
// expects: "de" → "DE", "pt_br" → "PT-BR". ok is false for languages the
// registry does not cover.
func APICode(lang string) (string, bool) {
	return apiCode(lang)
}

func apiCode(lang string) (string, bool) {
	normalized := canonicalize(lang)
	if _, ok := Registry[normalized]; ok {
		return strings.ToUpper(normalized), true
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if _, ok := Registry[parts[0]]; ok {
			return strings.ToUpper(normalized), true
		}
	}
	return "", false
}

// iso3to1 maps ISO 639-3 codes to 639-1. Subtitle tooling commonly names
// tracks with three-letter codes (movie.eng.srt).
var iso3to1 = map[string]string{
	"afr": "af",
	"ara": "ar",
	"bul": "bg",
	"ces": "cs",
	"chi": "zh",
	"dan": "da",
	"deu": "de",
	"dut": "nl",
	"ell": "el",
	"eng": "en",
	"est": "et",
	"fin": "fi",
	"fra": "fr",
	"hun": "hu",
	"ind": "id",
	"ita": "it",
	"jpn": "ja",
	"kor": "ko",
	"lav": "lv",
	"lit": "lt",
	"nob": "nb",
	"pol": "pl",
	"por": "pt",
	"ron": "ro",
	"rus": "ru",
	"slk": "sk",
	"slv": "sl",
	"spa": "es",
	"swe": "sv",
	"tur": "tr",
	"ukr": "uk",
	"zho": "zh",
}

// FromISO3 converts an ISO 639-3 code to its 639-1 equivalent.
func FromISO3(code string) (string, bool) {
	lang, ok := iso3to1[strings.ToLower(strings.TrimSpace(code))]
	return lang, ok
}

// Normalize returns the canonical form of a language code ("pt_br" →
// "pt-BR", "ENG" → "en"), resolving ISO 639-3 codes along the way.
func Normalize(lang string) string {
	trimmed := strings.TrimSpace(lang)
	if len(trimmed) == 3 {
		if l, ok := FromISO3(trimmed); ok {
			return l
		}
	}
	return canonicalize(trimmed)
}

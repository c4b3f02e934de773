package language

import "sort"

// DefaultLocale is returned for any application tag missing from the table
const DefaultLocale = "en-US"

// Language describes one selectable application language
type Language struct {
	Tag    string // Application tag (two-letter ISO code)
	Locale string // Speech engine locale
	Name   string // Display name
}

var table = map[string]Language{
	"en": {Tag: "en", Locale: "en-US", Name: "English"},
	"es": {Tag: "es", Locale: "es-ES", Name: "Spanish"},
	"fr": {Tag: "fr", Locale: "fr-FR", Name: "French"},
	"de": {Tag: "de", Locale: "de-DE", Name: "German"},
	"it": {Tag: "it", Locale: "it-IT", Name: "Italian"},
	"pt": {Tag: "pt", Locale: "pt-PT", Name: "Portuguese"},
	"ru": {Tag: "ru", Locale: "ru-RU", Name: "Russian"},
	"ja": {Tag: "ja", Locale: "ja-JP", Name: "Japanese"},
	"ko": {Tag: "ko", Locale: "ko-KR", Name: "Korean"},
	"zh": {Tag: "zh", Locale: "zh-CN", Name: "Chinese"},
	"ar": {Tag: "ar", Locale: "ar-SA", Name: "Arabic"},
	"hi": {Tag: "hi", Locale: "hi-IN", Name: "Hindi"},
	"bn": {Tag: "bn", Locale: "bn-IN", Name: "Bengali"},
	"pa": {Tag: "pa", Locale: "pa-IN", Name: "Punjabi"},
	"te": {Tag: "te", Locale: "te-IN", Name: "Telugu"},
	"ta": {Tag: "ta", Locale: "ta-IN", Name: "Tamil"},
	"ur": {Tag: "ur", Locale: "ur-PK", Name: "Urdu"},
	"vi": {Tag: "vi", Locale: "vi-VN", Name: "Vietnamese"},
	"th": {Tag: "th", Locale: "th-TH", Name: "Thai"},
	"tr": {Tag: "tr", Locale: "tr-TR", Name: "Turkish"},
}

// Resolve maps an application language tag to the speech engine locale.
// Unknown tags resolve to DefaultLocale.
func Resolve(tag string) string {
	if lang, ok := table[tag]; ok {
		return lang.Locale
	}
	return DefaultLocale
}

// IsSupported reports whether tag is in the language table
func IsSupported(tag string) bool {
	_, ok := table[tag]
	return ok
}

// Supported returns every known language ordered by tag
func Supported() []Language {
	langs := make([]Language, 0, len(table))
	for _, lang := range table {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		return langs[i].Tag < langs[j].Tag
	})
	return langs
}

// Package langmeta provides a shared language metadata registry (native
// names) used in CLI output and in translation prompts.
package langmeta

import "strings"

// Meta describes language display metadata.
type Meta struct {
	// Name is the language's native name.
	Name string
	// English is the language's English name, used in prompts.
	English string
}

// Registry contains canonical language metadata. Locale variants are
// resolved in Resolve via normalization and base-language fallback.
var Registry = map[string]Meta{
	"ar": {Name: "العربية", English: "Arabic"},
	"bg": {Name: "Български", English: "Bulgarian"},
	"cs": {Name: "Čeština", English: "Czech"},
	"da": {Name: "Dansk", English: "Danish"},
	"de": {Name: "Deutsch", English: "German"},
	"el": {Name: "Ελληνικά", English: "Greek"},
	"en": {Name: "English", English: "English"},
	"es": {Name: "Español", English: "Spanish"},
	"et": {Name: "Eesti", English: "Estonian"},
	"fi": {Name: "Suomi", English: "Finnish"},
	"fr": {Name: "Français", English: "French"},
	"he": {Name: "עברית", English: "Hebrew"},
	"hi": {Name: "हिन्दी", English: "Hindi"},
	"hr": {Name: "Hrvatski", English: "Croatian"},
	"hu": {Name: "Magyar", English: "Hungarian"},
	"id": {Name: "Bahasa Indonesia", English: "Indonesian"},
	"it": {Name: "Italiano", English: "Italian"},
	"ja": {Name: "日本語", English: "Japanese"},
	"ko": {Name: "한국어", English: "Korean"},
	"lt": {Name: "Lietuvių", English: "Lithuanian"},
	"lv": {Name: "Latviešu", English: "Latvian"},
	"nb": {Name: "Norsk bokmål", English: "Norwegian Bokmål"},
	"nl": {Name: "Nederlands", English: "Dutch"},
	"pl": {Name: "Polski", English: "Polish"},
	"pt": {Name: "Português", English: "Portuguese"},
	"ro": {Name: "Română", English: "Romanian"},
	"ru": {Name: "Русский", English: "Russian"},
	"sk": {Name: "Slovenčina", English: "Slovak"},
	"sl": {Name: "Slovenščina", English: "Slovenian"},
	"sr": {Name: "Српски", English: "Serbian"},
	"sv": {Name: "Svenska", English: "Swedish"},
	"th": {Name: "ไทย", English: "Thai"},
	"tr": {Name: "Türkçe", English: "Turkish"},
	"uk": {Name: "Українська", English: "Ukrainian"},
	"vi": {Name: "Tiếng Việt", English: "Vietnamese"},
	"zh": {Name: "中文", English: "Chinese"},
}

// Resolve looks up metadata for a language code, normalizing separators
// ("pt_BR" → "pt-BR") and falling back to the base language ("pt").
func Resolve(code string) (Meta, bool) {
	norm := strings.ReplaceAll(code, "_", "-")
	if meta, ok := Registry[norm]; ok {
		return meta, true
	}
	if idx := strings.IndexByte(norm, '-'); idx > 0 {
		if meta, ok := Registry[norm[:idx]]; ok {
			return meta, true
		}
	}
	return Meta{}, false
}

// Name returns the English name for a language code, or the code itself
// when the language is unknown. Used to address the translation provider.
func Name(code string) string {
	if meta, ok := Resolve(code); ok {
		return meta.English
	}
	return code
}

// Native returns the native name for a language code, or the code itself
// when the language is unknown.
func Native(code string) string {
	if meta, ok := Resolve(code); ok {
		return meta.Name
	}
	return code
}

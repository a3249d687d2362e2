package model

import (
	"slices"

	"golang.org/x/text/language"
)

// SupportedLanguages is the fixed language set accepted at the text input
// boundary.
var SupportedLanguages = []string{"en", "es", "fr", "de", "pt", "it"}

// NormalizeLanguage parses a language code and returns its base form, so
// "en-US" becomes "en". Unknown, empty, or unsupported codes default to "en".
func NormalizeLanguage(code string) string {
	base := baseLanguage(code)
	if !slices.Contains(SupportedLanguages, base) {
		return "en"
	}
	return base
}

// LanguageMatches reports whether two language codes share the same base
// language. Evidence with an empty language code is treated as a match.
func LanguageMatches(evidenceLang, target string) bool {
	if evidenceLang == "" {
		return true
	}
	return baseLanguage(evidenceLang) == baseLanguage(target)
}

func baseLanguage(code string) string {
	if code == "" {
		return "en"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "en"
	}
	base, _ := tag.Base()
	return base.String()
}

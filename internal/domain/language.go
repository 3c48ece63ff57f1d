package domain

import (
	"strings"

	"golang.org/x/text/language"
)

// LanguagePreference is the case-level setting controlling which document
// variants must be produced.
type LanguagePreference string

const (
	// LanguagePreferenceEnglish produces English documents only.
	LanguagePreferenceEnglish LanguagePreference = "english"
	// LanguagePreferenceWelsh produces Welsh documents only.
	LanguagePreferenceWelsh LanguagePreference = "welsh"
	// LanguagePreferenceBoth produces both variants.
	LanguagePreferenceBoth LanguagePreference = "englishAndWelsh"
)

var (
	welshTag = language.MustParse("cy")

	preferenceMatcher = language.NewMatcher([]language.Tag{
		language.English, // fallback
		welshTag,
	})
)

// LanguageRequirement states which document variants an order needs.
type LanguageRequirement struct {
	English bool
	Welsh   bool
}

// DerivePreference computes the effective preference from the "needs Welsh"
// flag and the base preference. The default is English-only.
func DerivePreference(welshNeeded YesNo, base LanguagePreference) LanguagePreference {
	if welshNeeded != Yes {
		return LanguagePreferenceEnglish
	}
	switch base {
	case LanguagePreferenceWelsh:
		return LanguagePreferenceWelsh
	case LanguagePreferenceBoth, LanguagePreferenceEnglish, "":
		return LanguagePreferenceBoth
	default:
		return LanguagePreferenceBoth
	}
}

// ParsePreference normalises a raw language value (BCP 47 tag or legacy label)
// into a LanguagePreference. Unknown values map to English.
func ParsePreference(raw string) LanguagePreference {
	raw = strings.TrimSpace(raw)
	switch LanguagePreference(raw) {
	case LanguagePreferenceEnglish, LanguagePreferenceWelsh, LanguagePreferenceBoth:
		return LanguagePreference(raw)
	}

	tag, err := language.Parse(raw)
	if err != nil {
		return LanguagePreferenceEnglish
	}
	_, index, conf := preferenceMatcher.Match(tag)
	if conf == language.No {
		return LanguagePreferenceEnglish
	}
	if index == 1 {
		return LanguagePreferenceWelsh
	}
	return LanguagePreferenceEnglish
}

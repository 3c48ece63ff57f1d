package services

import (
	domain "github.com/familyjustice/orders-api/internal/domain"
)

// DecideLanguages maps a case's language preference to the document variants
// that must exist for an order. Every input maps to a defined output; the
// default is English-only.
func DecideLanguages(pref LanguagePreference) LanguageRequirement {
	switch pref {
	case domain.LanguagePreferenceWelsh:
		return LanguageRequirement{Welsh: true}
	case domain.LanguagePreferenceBoth:
		return LanguageRequirement{English: true, Welsh: true}
	default:
		return LanguageRequirement{English: true}
	}
}

// CaseLanguages resolves the effective requirement for a case. The stored
// preference is normalised first so legacy BCP 47 values ("cy", "en-GB")
// resolve the same way as the canonical labels, then derived against the
// "needs Welsh" flag.
func CaseLanguages(c CaseData) LanguageRequirement {
	pref := domain.ParsePreference(string(c.LanguagePreference))
	return DecideLanguages(domain.DerivePreference(c.WelshNeeded, pref))
}

package domain

import "testing"

func TestDerivePreference(t *testing.T) {
	cases := []struct {
		name        string
		welshNeeded YesNo
		base        LanguagePreference
		want        LanguagePreference
	}{
		{"welsh not needed", No, LanguagePreferenceWelsh, LanguagePreferenceEnglish},
		{"flag unset defaults to english", "", LanguagePreferenceBoth, LanguagePreferenceEnglish},
		{"welsh needed, welsh base", Yes, LanguagePreferenceWelsh, LanguagePreferenceWelsh},
		{"welsh needed, english base", Yes, LanguagePreferenceEnglish, LanguagePreferenceBoth},
		{"welsh needed, empty base", Yes, "", LanguagePreferenceBoth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DerivePreference(tc.welshNeeded, tc.base); got != tc.want {
				t.Fatalf("DerivePreference(%q, %q) = %q, want %q", tc.welshNeeded, tc.base, got, tc.want)
			}
		})
	}
}

func TestParsePreference(t *testing.T) {
	cases := []struct {
		raw  string
		want LanguagePreference
	}{
		{"english", LanguagePreferenceEnglish},
		{"welsh", LanguagePreferenceWelsh},
		{"englishAndWelsh", LanguagePreferenceBoth},
		{"cy", LanguagePreferenceWelsh},
		{"cy-GB", LanguagePreferenceWelsh},
		{"en-GB", LanguagePreferenceEnglish},
		{"", LanguagePreferenceEnglish},
		{"zz-not-a-tag!", LanguagePreferenceEnglish},
	}
	for _, tc := range cases {
		if got := ParsePreference(tc.raw); got != tc.want {
			t.Errorf("ParsePreference(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

package language

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		hint string
		want string
	}{
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"iso1", "en", "en"},
		{"uppercase", " EN ", "en"},
		{"iso3", "eng", "en"},
		{"word form", "English", "en"},
		{"regional tag", "pt-BR", "pt"},
		{"three letter french", "fra", "fr"},
		{"word form japanese", "japanese", "ja"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.hint)
			if err != nil {
				t.Fatalf("Normalize(%q) failed: %v", tc.hint, err)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.hint, got, tc.want)
			}
		})
	}
}

func TestNormalizeRejectsUnknown(t *testing.T) {
	for _, hint := range []string{"klingon", "not a language", "1234"} {
		if _, err := Normalize(hint); err == nil {
			t.Fatalf("expected error for %q", hint)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		hint string
		want string
	}{
		{"", "Unknown"},
		{"en", "English"},
		{"fr", "French"},
		{"japanese", "Japanese"},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.hint); got != tc.want {
			t.Fatalf("DisplayName(%q) = %q, want %q", tc.hint, got, tc.want)
		}
	}
}

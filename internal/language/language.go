package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// wordForms maps full English language names, which BCP 47 parsing does not
// accept, to their tags.
var wordForms = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
}

// Normalize maps a language hint (BCP 47 tag, ISO 639 code, or English
// language name) to its ISO 639 base code. Empty input normalizes to empty;
// unrecognized input is an error.
func Normalize(hint string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(hint))
	if trimmed == "" {
		return "", nil
	}
	if mapped, ok := wordForms[trimmed]; ok {
		trimmed = mapped
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("unrecognized language %q", hint)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// DisplayName returns the English name for a language hint. Empty input
// yields "Unknown"; unrecognized input is passed through uppercased.
func DisplayName(hint string) string {
	trimmed := strings.ToLower(strings.TrimSpace(hint))
	if trimmed == "" {
		return "Unknown"
	}
	if mapped, ok := wordForms[trimmed]; ok {
		trimmed = mapped
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return strings.ToUpper(trimmed)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(trimmed)
}

// Package script classifies short texts by their dominant Unicode script.
package script

import (
	"unicode"

	"github.com/abadojack/whatlanggo"
)

// languages maps a dominant script to the translation targets it implies.
var languages = map[*unicode.RangeTable][]string{
	unicode.Han:        {"zh-TW"},
	unicode.Hiragana:   {"ja"},
	unicode.Katakana:   {"ja"},
	unicode.Hangul:     {"ko"},
	unicode.Cyrillic:   {"ru"},
	unicode.Arabic:     {"ar"},
	unicode.Devanagari: {"hi"},
}

// Detect returns the script most of the text's letters belong to, or nil
// when the text has no letters.
func Detect(text string) *unicode.RangeTable {
	return whatlanggo.DetectScript(text)
}

// Name returns the Unicode script name of the dominant script ("Han",
// "Latin", ...), or "" if none.
func Name(text string) string {
	t := Detect(text)
	if t == nil {
		return ""
	}
	for name, table := range unicode.Scripts {
		if table == t {
			return name
		}
	}
	return ""
}

// Is reports whether text is dominated by the named script.
func Is(text, name string) bool {
	return name != "" && Name(text) == name
}

// NonLatin reports whether the text's letters are mostly outside the Latin
// script. Letterless text counts as Latin.
func NonLatin(text string) bool {
	t := Detect(text)
	return t != nil && t != unicode.Latin
}

// Languages returns the language codes implied by the text's dominant
// script, if any.
func Languages(text string) []string {
	t := Detect(text)
	if t == nil {
		return nil
	}
	return languages[t]
}

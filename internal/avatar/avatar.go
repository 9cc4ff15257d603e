// Package avatar builds placeholder logo URLs for companies that ship none.
package avatar

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

const serviceTemplate = "https://ui-avatars.com/api/?name=%s&background=random&color=fff&size=128"

// Resolve returns the initials-avatar URL for a company name, or "" when the
// name is blank.
func Resolve(name string) string {
	initials := Initials(name)
	if initials == "" {
		return ""
	}
	return fmt.Sprintf(serviceTemplate, url.QueryEscape(initials))
}

// Initials returns two upper-cased characters: the first two of a single word
// (the first one twice for one-letter words), otherwise the first letters of
// the first and last words.
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}

	first := []rune(words[0])
	var pair []rune
	if len(words) == 1 {
		if len(first) >= 2 {
			pair = first[:2]
		} else {
			pair = []rune{first[0], first[0]}
		}
	} else {
		last, _ := utf8.DecodeRuneInString(words[len(words)-1])
		pair = []rune{first[0], last}
	}
	return strings.ToUpper(string(pair))
}

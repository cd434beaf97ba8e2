package email

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// NamePlaceholder is replaced with the subscriber's display name.
	NamePlaceholder = "{{name}}"
	// LogoToken is the relative logo reference used in templates.
	LogoToken = "logo.png"
	// LogoURL is the absolute logo location that mail clients can fetch.
	LogoURL = "https://unislay.com/logo.png"
)

// Render substitutes the first name placeholder and every logo reference in tmpl.
// A template without the name placeholder is returned with only the logo replaced.
func Render(tmpl, displayName string) string {
	out := strings.ReplaceAll(tmpl, LogoToken, LogoURL)
	return strings.Replace(out, NamePlaceholder, displayName, 1)
}

// DisplayName derives a human name from the local part of an email address.
// "jane_mary-ann@x.com" becomes "Jane Mary Ann". Empty segments are skipped.
func DisplayName(address string) string {
	local := address
	if at := strings.Index(address, "@"); at >= 0 {
		local = address[:at]
	}

	segments := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})

	words := make([]string, 0, len(segments))
	for _, seg := range segments {
		r, size := utf8.DecodeRuneInString(seg)
		words = append(words, string(unicode.ToUpper(r))+seg[size:])
	}
	return strings.Join(words, " ")
}

// Package format holds text helpers for Telegram parse modes.
package format

import "regexp"

var mdRe = regexp.MustCompile("([_*`\\[])")

// EscapeMarkdown escapes the characters Telegram's legacy Markdown mode treats
// as entity markers.
func EscapeMarkdown(text string) string {
	return mdRe.ReplaceAllString(text, `\$1`)
}

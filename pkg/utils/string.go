// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

// Truncate shortens s so the rendered string never exceeds maxLen characters,
// using a trailing "..." marker. Strings of exactly maxLen characters pass
// through unchanged; longer strings are cut to maxLen-3 characters plus the
// marker. Cuts land on rune boundaries so multi-byte text stays valid UTF-8.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

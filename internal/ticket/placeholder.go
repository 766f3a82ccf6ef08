package ticket

import "regexp"

// placeholderPattern matches unresolved template tokens such as
// <goal> or <AC 1>. Tokens start with a letter and stay on one line,
// so comparison operators and multi-line generics in code samples
// don't trip it.
var placeholderPattern = regexp.MustCompile(`<[A-Za-z][A-Za-z0-9 _.-]{0,63}>`)

// Placeholders returns the distinct unresolved template tokens in
// body, in order of first appearance. An empty result means the body
// is safe to persist; a persisted ticket never contains a placeholder.
func Placeholders(body string) []string {
	matches := placeholderPattern.FindAllString(body, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	var tokens []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			tokens = append(tokens, m)
		}
	}
	return tokens
}

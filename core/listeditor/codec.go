package listeditor

import "strings"

const listSep = ", "

// SplitList turns the comma-separated text of a list field back into its values:
// tokens are trimmed and empty ones dropped, order is kept.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList flattens a list field into the text edited in forms.
func JoinList(values []string) string {
	return strings.Join(values, listSep)
}

// NormalizeList is JoinList(SplitList(s)).
func NormalizeList(s string) string {
	return JoinList(SplitList(s))
}

// Package utils provides small, generic helpers for turning raw request
// input into the values the services expect. They carry no domain logic.
package utils

import "strings"

// TrimPath strips surrounding whitespace and slashes from a wildcard route
// parameter, so "/groups/g1/messages/" becomes "groups/g1/messages". Inner
// empty segments are kept for the path parser to reject.
func TrimPath(p string) string {
	return strings.Trim(strings.TrimSpace(p), "/")
}

// NonEmpty returns vals without blank entries, preserving order. It returns
// nil when nothing remains.
func NonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

package util

import "strings"

// CleanText collapses whitespace, including non-breaking spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeLocation drops label prefixes and repeated comma-separated parts.
func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	for _, prefix := range []string{"Location:", "LOCATIONS:", "Locations:"} {
		loc = strings.TrimSpace(strings.TrimPrefix(loc, prefix))
	}
	if loc == "" {
		return ""
	}

	seen := map[string]bool{}
	var out []string
	for _, p := range strings.Split(loc, ",") {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

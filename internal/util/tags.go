package util

import "strings"

// CategoryTags takes a category string, splits it on the crossover
// delimiter " & " if necessary, and returns a fandom tag for each
// segment. Tag names are the category name in lowercase, minus any
// commas. This will mangle category names that legitimately contain
// " & ", but those are rare.
func CategoryTags(category string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(category, " & ") {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(part)), ",", "")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, name)
	}
	return tags
}

package model

import (
	"fmt"
	"strings"
)

// Sentinel categories used when no main category matches a tag set.
const (
	// CategoryUntagged is reported for rows with an empty tag list.
	CategoryUntagged = "Sans tag"
	// CategoryOther is reported for tagged rows with no main-category tag.
	CategoryOther = "Autre"
	// CategoryExceptional marks one-off expenses in timeseries reports.
	CategoryExceptional = "exceptionnel"
)

// ParseTags converts a stored tag cell into a list of tag strings. Historical
// store files carry tags either as a list literal ("['food', 'bar']") or as a
// plain comma-separated string; this is the single place either form is
// interpreted.
func ParseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return []string{}
	}

	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		raw = raw[1 : len(raw)-1]
	}

	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// FormatTags serializes a tag list in the store's list-literal form.
// An empty list is written as "[]" so a saved row is never ambiguous.
func FormatTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	quoted := make([]string, len(tags))
	for i, tag := range tags {
		quoted[i] = fmt.Sprintf("'%s'", tag)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// MainCategory resolves the primary category for a tag set: the first entry
// of mainCategories found among the tags, CategoryOther for tagged rows with
// no match, CategoryUntagged for empty tag sets.
func MainCategory(tags []string, mainCategories []string) string {
	if len(tags) == 0 {
		return CategoryUntagged
	}
	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[t] = struct{}{}
	}
	for _, cat := range mainCategories {
		if _, ok := tagSet[cat]; ok {
			return cat
		}
	}
	return CategoryOther
}

// SplitNewTags parses free-typed comma-separated tag input.
func SplitNewTags(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// CombineTags merges selected and free-typed tags, dropping duplicates while
// preserving first-seen order.
func CombineTags(selected, typed []string) []string {
	seen := make(map[string]struct{}, len(selected)+len(typed))
	combined := make([]string, 0, len(selected)+len(typed))
	for _, tag := range append(append([]string{}, selected...), typed...) {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		combined = append(combined, tag)
	}
	return combined
}

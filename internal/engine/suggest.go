package engine

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Suggestion is one candidate tag offered for the current selection.
type Suggestion struct {
	Tag       string
	Count     int  // Global usage count
	Suggested bool // Associated with a selected vendor's history
}

// fuzzyVendorRatio bounds how dissimilar a known vendor name may be to still
// contribute suggestions for an unknown vendor.
const fuzzyVendorRatio = 0.4

// SuggestTags proposes candidate tags for the selected vendors. With no
// vendors selected it returns every known tag by descending global frequency.
// Otherwise the tags historically associated with the selected vendors come
// first, followed by the remaining known tags by descending frequency,
// without duplicates. Frequency ties keep insertion order of the underlying
// table, so the result is deterministic given the two tables.
func (e *Engine) SuggestTags(vendors []string) []Suggestion {
	suggested := make(map[string]struct{})
	var suggestions []Suggestion

	for _, vendor := range vendors {
		names := []string{vendor}
		if !e.vendorTags.Known(vendor) {
			// An unknown vendor may still be a near-match of a known one
			// (truncated card labels, store numbers); borrow its history.
			if nearest, ok := e.nearestKnownVendor(vendor); ok {
				names = []string{nearest}
			}
		}
		for _, name := range names {
			for _, tag := range e.vendorTags.TagsFor(name) {
				if _, dup := suggested[tag]; dup {
					continue
				}
				suggested[tag] = struct{}{}
				suggestions = append(suggestions, Suggestion{
					Tag:       tag,
					Count:     e.tags.Get(tag),
					Suggested: true,
				})
			}
		}
	}

	var rest []Suggestion
	for _, tag := range e.tags.Keys() {
		if _, dup := suggested[tag]; dup {
			continue
		}
		rest = append(rest, Suggestion{Tag: tag, Count: e.tags.Get(tag)})
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].Count > rest[j].Count
	})

	return append(suggestions, rest...)
}

// nearestKnownVendor finds the closest known vendor by levenshtein distance,
// capped at fuzzyVendorRatio of the longer name.
func (e *Engine) nearestKnownVendor(vendor string) (string, bool) {
	target := strings.ToUpper(vendor)
	best := ""
	bestRatio := fuzzyVendorRatio
	for _, known := range e.vendorTags.Vendors() {
		dist := levenshtein.ComputeDistance(target, strings.ToUpper(known))
		// The distance counts runes, so the normalizing length must too.
		maxLen := utf8.RuneCountInString(vendor)
		if n := utf8.RuneCountInString(known); n > maxLen {
			maxLen = n
		}
		if maxLen == 0 {
			continue
		}
		ratio := float64(dist) / float64(maxLen)
		if ratio < bestRatio {
			bestRatio = ratio
			best = known
		}
	}
	return best, best != ""
}

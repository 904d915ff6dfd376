package services

import (
	"fmt"
	"strings"
)

// ObjectTypeGroup is one category of the fixed object taxonomy a report
// may declare.
type ObjectTypeGroup struct {
	Label   string
	Options []string
}

var ObjectTypeGroups = []ObjectTypeGroup{
	{
		Label: "Nature",
		Options: []string{
			"Leaves", "Rocks", "Flowers", "Soil", "Fruits", "Trees", "Animals", "Insects",
		},
	},
	{
		Label: "Home",
		Options: []string{
			"Furniture", "Electronics", "Clothing", "Books", "Food", "Utensils", "Decorations",
		},
	},
	{
		Label: "School",
		Options: []string{
			"Chairs", "Desks", "Stationery", "Pens", "Notebooks", "Erasers",
			"Whiteboards", "Markers", "School Bags",
		},
	},
	{
		Label: "General",
		Options: []string{
			"Recyclable Materials", "Non-Recyclable Materials", "Plastic Bags", "Styrofoam", "Trash",
		},
	},
	{
		Label:   "Other",
		Options: []string{"Other"},
	},
}

// MapObjectType returns the canonical taxonomy option for a detected
// type, or "" when it falls outside the taxonomy. Matching ignores case
// and surrounding whitespace since the gateway's casing varies.
func MapObjectType(detectedType string) string {
	detected := strings.TrimSpace(detectedType)
	for _, group := range ObjectTypeGroups {
		for _, option := range group.Options {
			if strings.EqualFold(option, detected) {
				return option
			}
		}
	}
	return ""
}

// TaxonomyPrompt renders the taxonomy the way the gateway prompt expects
// it, one "Label: a, b, c" line per group.
func TaxonomyPrompt() string {
	lines := make([]string, 0, len(ObjectTypeGroups))
	for _, group := range ObjectTypeGroups {
		lines = append(lines, fmt.Sprintf("%s: %s", group.Label, strings.Join(group.Options, ", ")))
	}
	return strings.Join(lines, "\n")
}

package fieldscope

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// CategoryUncategorized is assigned to every path whose leaf key is not in
// the dictionary. Unknown fields are never dropped, only left unlabeled.
const CategoryUncategorized = "Uncategorized"

// Categorize maps a discovered path to human-readable info using an injected
// dictionary. Pure function: the collapsed-array markers are stripped and
// the final path segment is matched exactly against dictionary keys, since
// the same leaf key recurs under different parent paths.
func Categorize(path string, dict Dictionary) FieldCategoryInfo {
	key := leafKey(path)

	info, ok := dict.Fields[key]
	if !ok {
		return FieldCategoryInfo{
			HumanName: path,
			Category:  CategoryUncategorized,
		}
	}

	meta := dict.Categories[info.Category]
	return FieldCategoryInfo{
		HumanName: info.Name,
		Category:  info.Category,
		Icon:      meta.Icon,
		Color:     meta.Color,
	}
}

// leafKey strips collapsed-array markers and returns the final path segment:
// "mc[].rc[].ltp" → "ltp", "mc[]" → "mc".
func leafKey(path string) string {
	path = strings.ReplaceAll(path, "[]", "")
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

// categoryGroups buckets discovered fields by dictionary category for the
// profile's field_categories block. Fields arrive presence-sorted and keep
// that order within each group.
func categoryGroups(fields []DiscoveredField, dict Dictionary) map[string]CategoryGroup {
	groups := make(map[string]CategoryGroup)

	for _, f := range fields {
		info := Categorize(f.Path, dict)

		g, ok := groups[info.Category]
		if !ok {
			meta := dict.Categories[info.Category]
			g = CategoryGroup{
				Icon:        meta.Icon,
				Description: meta.Description,
				Color:       meta.Color,
			}
		}
		g.Fields = append(g.Fields, CategorizedField{
			Path:        f.Path,
			Key:         leafKey(f.Path),
			Name:        info.HumanName,
			Type:        f.Type,
			PresencePct: f.PresencePct,
		})
		g.FieldCount = len(g.Fields)
		groups[info.Category] = g
	}

	return groups
}

// presentCategories returns the set of categories that have at least one
// field above the presence threshold, plus a sorted list for logging.
func presentCategories(fields []DiscoveredField, dict Dictionary, thresholdPct float64) map[string]bool {
	present := make(map[string]bool)
	for _, f := range fields {
		if f.PresencePct <= thresholdPct {
			continue
		}
		present[Categorize(f.Path, dict).Category] = true
	}
	return present
}

// sortedCategoryNames is a helper for deterministic log output.
func sortedCategoryNames(m map[string]bool) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadDictionary decodes a Dictionary from JSON:
//
//	{"fields": {"ltp": {"name": "Last Traded Price", "category": "Price - Core"}},
//	 "categories": {"Price - Core": {"icon": "$", "color": "#EF4444"}}}
func LoadDictionary(r io.Reader) (Dictionary, error) {
	var d Dictionary
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Dictionary{}, fmt.Errorf("fieldscope: decode dictionary: %w", err)
	}
	if d.Fields == nil {
		d.Fields = map[string]FieldInfo{}
	}
	if d.Categories == nil {
		d.Categories = map[string]CategoryMeta{}
	}
	return d, nil
}

// LoadDictionaryFile reads a Dictionary from a JSON file on disk.
func LoadDictionaryFile(path string) (Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dictionary{}, fmt.Errorf("fieldscope: open dictionary: %w", err)
	}
	defer f.Close()
	return LoadDictionary(f)
}

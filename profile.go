package fieldscope

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// rarelyPresentListCap bounds the rarely-present field list in the data
// quality block; the bucket count still covers every field.
const rarelyPresentListCap = 20

// buildProfile derives an immutable Profile from aggregate state. Shared by
// Session.Finalize and MergeProfiles so a merged profile and a single-session
// profile are built by identical rules.
func buildProfile(st *aggState, set settings) *Profile {
	p := &Profile{
		TotalRecords:       st.totalRecords,
		MalformedRecords:   st.malformed,
		DiscoveredFields:   make([]DiscoveredField, 0, len(st.fields)),
		FieldCategories:    make(map[string]CategoryGroup),
		ValueDistributions: make(map[string]Distribution),
	}

	for path, acc := range st.fields {
		p.DiscoveredFields = append(p.DiscoveredFields, DiscoveredField{
			Path:            path,
			PresencePct:     presencePct(acc.observed, st.totalRecords),
			ObservedCount:   acc.observed,
			Type:            acc.typ,
			Examples:        acc.examples,
			Repeated:        acc.repeated,
			HighCardinality: acc.highCard,
		})
	}
	// Most common first; path breaks ties so output is stable.
	sort.Slice(p.DiscoveredFields, func(i, j int) bool {
		a, b := p.DiscoveredFields[i], p.DiscoveredFields[j]
		if a.ObservedCount != b.ObservedCount {
			return a.ObservedCount > b.ObservedCount
		}
		return a.Path < b.Path
	})

	for path, acc := range st.fields {
		if len(acc.hist) == 0 {
			continue
		}
		p.ValueDistributions[path] = distributionOf(path, acc.hist)
	}

	if st.tsCount > 0 {
		span := st.tsMax - st.tsMin
		p.TemporalAnalysis = &TemporalAnalysis{
			Start:             st.tsMin,
			End:               st.tsMax,
			DurationMillis:    span,
			Duration:          formatDuration(span),
			TimestampCount:    st.tsCount,
			AvgIntervalMillis: span / st.tsCount,
		}
	}

	p.StructureAnalysis = structureOf(p.DiscoveredFields)
	p.DataQuality = qualityOf(p.DiscoveredFields, st.totalRecords)
	p.FieldCategories = categoryGroups(p.DiscoveredFields, set.dictionary)
	p.SchemaRecommendations = schemaFields(p.DiscoveredFields, st.totalRecords)
	p.MLSuggestions = modelSuggestions(p, set)

	return p
}

func presencePct(observed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(observed)/float64(total)*1000) / 10
}

func distributionOf(path string, hist map[string]int64) Distribution {
	var total int64
	for _, n := range hist {
		total += n
	}

	values := make([]ValueCount, 0, len(hist))
	for v, n := range hist {
		pct := math.Round(float64(n)/float64(total)*1000) / 10
		values = append(values, ValueCount{Value: v, Count: n, Pct: pct})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})

	return Distribution{
		Field:        path,
		UniqueValues: len(values),
		Values:       values,
	}
}

func structureOf(fields []DiscoveredField) StructureAnalysis {
	sa := StructureAnalysis{UniquePaths: len(fields)}

	for _, f := range fields {
		if !strings.Contains(f.Path, ".") && !strings.Contains(f.Path, "[]") {
			sa.TopLevelFields = append(sa.TopLevelFields, f.Path)
		}
		if f.Type == TypeObject || f.Type == TypeArray {
			sa.ContainerPaths = append(sa.ContainerPaths, f.Path)
		}
		if d := strings.Count(f.Path, ".") + 1; d > sa.MaxDepth {
			sa.MaxDepth = d
		}
	}
	sort.Strings(sa.TopLevelFields)
	sort.Strings(sa.ContainerPaths)
	return sa
}

func qualityOf(fields []DiscoveredField, total int64) DataQuality {
	var dq DataQuality
	for _, f := range fields {
		switch {
		case f.ObservedCount == total && total > 0:
			dq.AlwaysPresent++
			dq.AlwaysPresentFields = append(dq.AlwaysPresentFields, f.Path)
		case f.PresencePct >= 95:
			dq.MostlyPresent++
		case f.PresencePct >= 50:
			dq.SometimesPresent++
		default:
			dq.RarelyPresent++
			if len(dq.RarelyPresentFields) < rarelyPresentListCap {
				dq.RarelyPresentFields = append(dq.RarelyPresentFields, f.Path)
			}
		}
	}
	return dq
}

// formatDuration renders milliseconds the way the profile consumers expect:
// "2h 14m 9s", "14m 9s", or "9s".
func formatDuration(ms int64) string {
	secs := ms / 1000
	mins, secs := secs/60, secs%60
	hours, mins := mins/60, mins%60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, mins, secs)
	case mins > 0:
		return fmt.Sprintf("%dm %ds", mins, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

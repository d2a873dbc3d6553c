package fieldscope

import "errors"

// MergeProfiles combines two shard Profiles into one, using the same lattice
// merge and counter addition rules as single-record observation: counts add,
// types widen, histograms union with the cardinality cap re-checked, example
// values concatenate and truncate to the example cap.
//
// The merge is associative and commutative for every field except examples
// (first-seen ordering makes their content depend on merge order), so shard
// count and merge order never affect the rest of the final Profile. Both
// inputs are left untouched.
//
// Pass the same Options the shard sessions were built with so caps,
// dictionary and threshold match.
func MergeProfiles(a, b *Profile, opts ...Option) (*Profile, error) {
	if a == nil || b == nil {
		return nil, errors.New("fieldscope: merge requires two non-nil profiles")
	}

	set := newSettings(opts)

	st := stateFromProfile(a, set)
	other := stateFromProfile(b, set)

	st.totalRecords += other.totalRecords
	st.malformed += other.malformed

	if other.tsCount > 0 {
		if st.tsCount == 0 {
			st.tsMin, st.tsMax = other.tsMin, other.tsMax
		} else {
			st.tsMin = min(st.tsMin, other.tsMin)
			st.tsMax = max(st.tsMax, other.tsMax)
		}
		st.tsCount += other.tsCount
	}

	for path, acc := range other.fields {
		mine := st.fields[path]
		if mine == nil {
			st.fields[path] = acc
			continue
		}
		mine.merge(acc, set.exampleCap, set.cardinalityCap)
	}

	return buildProfile(st, set), nil
}

// stateFromProfile reconstructs aggregate state from a finalized Profile.
// Everything the accumulator needs rides on the wire contract, so this is
// total: no profile produced by Finalize or MergeProfiles can fail here.
func stateFromProfile(p *Profile, set settings) *aggState {
	st := newAggState()
	st.totalRecords = p.TotalRecords
	st.malformed = p.MalformedRecords

	if ta := p.TemporalAnalysis; ta != nil {
		st.tsMin = ta.Start
		st.tsMax = ta.End
		st.tsCount = ta.TimestampCount
	}

	for _, f := range p.DiscoveredFields {
		acc := &accumulator{
			typ:      f.Type,
			observed: f.ObservedCount,
			repeated: f.Repeated,
			highCard: f.HighCardinality,
		}
		if len(f.Examples) > 0 {
			acc.examples = make([]any, len(f.Examples))
			copy(acc.examples, f.Examples)
			if len(acc.examples) > set.exampleCap {
				acc.examples = acc.examples[:set.exampleCap]
			}
		}
		if dist, ok := p.ValueDistributions[f.Path]; ok && !acc.highCard {
			acc.hist = make(map[string]int64, len(dist.Values))
			for _, vc := range dist.Values {
				acc.hist[vc.Value] = vc.Count
			}
		}
		st.fields[f.Path] = acc
	}

	return st
}

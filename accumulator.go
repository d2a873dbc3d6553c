package fieldscope

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// accumulator is the per-path streaming state. It is sized independently of
// the record count: one type tag, at most exampleCap examples, and a
// histogram that is dropped the moment it would exceed the cardinality cap.
type accumulator struct {
	typ      ValueType
	observed int64

	// lastRecord is the sequence number of the last record that touched
	// this path. Repeated array elements in one record bump the histogram
	// but increment observed only once.
	lastRecord int64

	repeated bool
	examples []any

	// hist is nil either before the first scalar observation or after the
	// cardinality cap was blown (highCard distinguishes the two).
	hist     map[string]int64
	highCard bool
}

// observe folds one walked value into the accumulator. It never fails:
// values outside the decoded-JSON vocabulary classify as mixed instead of
// being rejected.
func (a *accumulator) observe(v any, recordSeq int64, exampleCap, cardinalityCap int) {
	vt := Classify(v)
	if a.typ == "" {
		a.typ = vt
	} else {
		a.typ = MergeTypes(a.typ, vt)
	}

	if a.lastRecord != recordSeq {
		a.lastRecord = recordSeq
		a.observed++
	}

	// Containers are recorded present-but-empty; examples and histograms
	// track scalars only.
	if vt == TypeObject || vt == TypeArray {
		return
	}

	if len(a.examples) < exampleCap {
		a.examples = append(a.examples, v)
	}

	if a.highCard {
		return
	}
	if a.hist == nil {
		a.hist = make(map[string]int64)
	}
	a.hist[canonicalString(v)]++
	if len(a.hist) > cardinalityCap {
		a.hist = nil
		a.highCard = true
	}
}

// merge folds another accumulator's state into a (shard merge). Histogram
// union re-checks the cardinality cap; examples concatenate and truncate,
// which makes example content depend on merge order; every other field
// merges commutatively.
func (a *accumulator) merge(b *accumulator, exampleCap, cardinalityCap int) {
	a.typ = MergeTypes(a.typ, b.typ)
	a.observed += b.observed
	a.repeated = a.repeated || b.repeated

	for _, ex := range b.examples {
		if len(a.examples) >= exampleCap {
			break
		}
		a.examples = append(a.examples, ex)
	}

	if a.highCard || b.highCard {
		a.hist = nil
		a.highCard = true
		return
	}
	if b.hist != nil {
		if a.hist == nil {
			a.hist = make(map[string]int64, len(b.hist))
		}
		for k, n := range b.hist {
			a.hist[k] += n
		}
		if len(a.hist) > cardinalityCap {
			a.hist = nil
			a.highCard = true
		}
	}
}

// canonicalString renders a scalar in the form used as histogram key and in
// value distributions. Deterministic for a given value.
func canonicalString(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprintf("%v", x)
	}
}

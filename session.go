package fieldscope

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// aggState is the mutable aggregate behind a Session. MergeProfiles rebuilds
// one from each finalized Profile, so everything here must survive the wire
// contract round trip.
type aggState struct {
	fields       map[string]*accumulator
	totalRecords int64
	malformed    int64

	tsMin   int64
	tsMax   int64
	tsCount int64
}

func newAggState() *aggState {
	return &aggState{fields: make(map[string]*accumulator)}
}

func (st *aggState) observeTimestamp(ms int64) {
	if st.tsCount == 0 || ms < st.tsMin {
		st.tsMin = ms
	}
	if st.tsCount == 0 || ms > st.tsMax {
		st.tsMax = ms
	}
	st.tsCount++
}

// Session accumulates field profiles over a stream of decoded records.
//
// Lifecycle: open → ingesting → finalized. Ingest after Finalize fails with
// ErrSessionClosed. Ingestion is logically single-writer (one record is
// fully processed before the next) but the session carries a mutex so state
// transitions stay safe if a caller finalizes from another goroutine.
//
// Memory is bounded by the number of distinct paths, not the record count:
// each path holds one type tag, at most the example cap of examples, and a
// histogram capped by the cardinality cap.
type Session struct {
	set settings

	mu        sync.Mutex
	st        *aggState
	finalized bool
	snapshot  *Profile
}

// NewSession creates an open aggregation session.
func NewSession(opts ...Option) *Session {
	return &Session{
		set: newSettings(opts),
		st:  newAggState(),
	}
}

// Ingest walks one decoded record and folds every observation into the
// session. A record that fails the walker's root, depth, or cycle check is
// skipped whole with no partial observations, counted in malformed_records,
// and reported to the caller via a wrapped ErrMalformedRecord; the session
// stays usable. Returns ErrSessionClosed after Finalize.
func (s *Session) Ingest(record any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return ErrSessionClosed
	}

	pairs, err := collectRecord(record, s.set.maxDepth)
	if err != nil {
		s.st.malformed++
		s.set.logger.Debug("record skipped", "error", err, "malformed_total", s.st.malformed)
		return fmt.Errorf("ingest: %w", err)
	}

	s.st.totalRecords++
	seq := s.st.totalRecords

	for _, pv := range pairs {
		acc := s.st.fields[pv.path]
		if acc == nil {
			acc = &accumulator{repeated: strings.Contains(pv.path, "[]")}
			s.st.fields[pv.path] = acc
		}
		acc.observe(pv.value, seq, s.set.exampleCap, s.set.cardinalityCap)
	}

	if s.set.timestampPath != "" {
		if ms, ok := timestampAt(record, s.set.timestampPath); ok {
			s.st.observeTimestamp(ms)
		}
	}

	return nil
}

// MalformedCount reports how many records were skipped so far.
func (s *Session) MalformedCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.malformed
}

// Finalize freezes the session and returns its immutable Profile snapshot.
// Idempotent: a second call returns the same snapshot without re-deriving
// it. Callers may finalize early to obtain a partial profile.
func (s *Session) Finalize() *Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return s.snapshot
	}
	s.finalized = true
	s.snapshot = buildProfile(s.st, s.set)
	return s.snapshot
}

// timestampAt resolves a dotted path of object keys against the record root
// and interprets the value as epoch milliseconds. Array segments are not
// supported: the publish-time field sits at the top level of every
// market-stream message.
func timestampAt(record any, path string) (int64, bool) {
	cur := record
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return 0, false
		}
		cur, ok = obj[part]
		if !ok {
			return 0, false
		}
	}

	switch x := cur.(type) {
	case json.Number:
		ms, err := x.Int64()
		if err != nil {
			return 0, false
		}
		return ms, true
	case float64:
		return int64(x), true
	case int64:
		return x, true
	case int:
		return int64(x), true
	default:
		return 0, false
	}
}

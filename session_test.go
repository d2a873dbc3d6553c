package fieldscope

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findField(t *testing.T, p *Profile, path string) DiscoveredField {
	t.Helper()
	for _, f := range p.DiscoveredFields {
		if f.Path == path {
			return f
		}
	}
	t.Fatalf("field %q not in profile", path)
	return DiscoveredField{}
}

func hasField(p *Profile, path string) bool {
	for _, f := range p.DiscoveredFields {
		if f.Path == path {
			return true
		}
	}
	return false
}

func TestSession_MarketStreamScenario(t *testing.T) {
	sess := NewSession()
	for _, line := range []string{
		`{"mc":[{"rc":[{"ltp":3.5}]}]}`,
		`{"mc":[{"rc":[{"ltp":null}]}]}`,
		`{"mc":[{"rc":[{"tv":10}]}]}`,
	} {
		require.NoError(t, sess.Ingest(decodeRecord(t, line)))
	}

	p := sess.Finalize()
	require.EqualValues(t, 3, p.TotalRecords)

	ltp := findField(t, p, "mc[].rc[].ltp")
	assert.EqualValues(t, 2, ltp.ObservedCount)
	assert.Equal(t, 66.7, ltp.PresencePct)
	assert.Equal(t, TypeFloat, ltp.Type, "null must be absorbed into float")
	assert.True(t, ltp.Repeated)

	tv := findField(t, p, "mc[].rc[].tv")
	assert.EqualValues(t, 1, tv.ObservedCount)
	assert.Equal(t, TypeInteger, tv.Type)

	mc := findField(t, p, "mc")
	assert.Equal(t, TypeArray, mc.Type)
	assert.EqualValues(t, 3, mc.ObservedCount)
	assert.Equal(t, 100.0, mc.PresencePct)
}

func TestSession_NullAbsorptionAndMixedWidening(t *testing.T) {
	sess := NewSession()
	for _, line := range []string{`{"a":5,"b":5}`, `{"a":null,"b":"x"}`, `{"a":7}`} {
		require.NoError(t, sess.Ingest(decodeRecord(t, line)))
	}

	p := sess.Finalize()
	assert.Equal(t, TypeInteger, findField(t, p, "a").Type)
	assert.Equal(t, TypeMixed, findField(t, p, "b").Type)
}

func TestSession_UnobservedPathAbsent(t *testing.T) {
	sess := NewSession()
	require.NoError(t, sess.Ingest(decodeRecord(t, `{"a":1}`)))

	p := sess.Finalize()
	assert.False(t, hasField(p, "b"))
}

func TestSession_RepeatedElementsCountOncePerRecord(t *testing.T) {
	sess := NewSession()
	require.NoError(t, sess.Ingest(decodeRecord(t, `{"rc":[{"ltp":1},{"ltp":2},{"ltp":3}]}`)))

	p := sess.Finalize()
	ltp := findField(t, p, "rc[].ltp")
	assert.EqualValues(t, 1, ltp.ObservedCount, "one record, however many elements")

	// Each element still contributes an independent histogram observation.
	dist := p.ValueDistributions["rc[].ltp"]
	assert.Equal(t, 3, dist.UniqueValues)
}

func TestSession_IngestAfterFinalizeFails(t *testing.T) {
	sess := NewSession()
	require.NoError(t, sess.Ingest(decodeRecord(t, `{"a":1}`)))
	sess.Finalize()

	err := sess.Ingest(decodeRecord(t, `{"a":2}`))
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_FinalizeIdempotent(t *testing.T) {
	sess := NewSession()
	require.NoError(t, sess.Ingest(decodeRecord(t, `{"a":1}`)))

	p1 := sess.Finalize()
	p2 := sess.Finalize()
	assert.Same(t, p1, p2, "second finalize must return the cached snapshot")
}

func TestSession_MalformedRecordSkippedNotFatal(t *testing.T) {
	sess := NewSession(WithMaxDepth(2))

	require.NoError(t, sess.Ingest(decodeRecord(t, `{"a":1}`)))

	err := sess.Ingest(decodeRecord(t, `{"a":{"b":{"c":{"d":1}}}}`))
	assert.ErrorIs(t, err, ErrMalformedRecord)

	// Session remains usable.
	require.NoError(t, sess.Ingest(decodeRecord(t, `{"a":2}`)))

	p := sess.Finalize()
	assert.EqualValues(t, 2, p.TotalRecords)
	assert.EqualValues(t, 1, p.MalformedRecords)
	assert.Equal(t, 100.0, findField(t, p, "a").PresencePct, "skipped record must not dilute presence")
}

func TestSession_MalformedRecordLeavesNoPartialObservations(t *testing.T) {
	sess := NewSession(WithMaxDepth(2))

	err := sess.Ingest(decodeRecord(t, `{"shallow":1,"deep":{"x":{"y":{"z":1}}}}`))
	assert.ErrorIs(t, err, ErrMalformedRecord)

	p := sess.Finalize()
	assert.False(t, hasField(p, "shallow"), "all-or-nothing: no field from a skipped record")
}

func TestSession_CardinalityCapOverflow(t *testing.T) {
	sess := NewSession()
	for i := 0; i < DefaultCardinalityCap+1; i++ {
		require.NoError(t, sess.Ingest(decodeRecord(t, fmt.Sprintf(`{"id":"v%d"}`, i))))
	}

	p := sess.Finalize()
	f := findField(t, p, "id")
	assert.True(t, f.HighCardinality)
	_, ok := p.ValueDistributions["id"]
	assert.False(t, ok, "overflowed histogram must be absent from distributions")
}

func TestSession_HistogramSurvivesAtCap(t *testing.T) {
	sess := NewSession()
	for i := 0; i < DefaultCardinalityCap; i++ {
		require.NoError(t, sess.Ingest(decodeRecord(t, fmt.Sprintf(`{"id":"v%d"}`, i))))
	}

	p := sess.Finalize()
	f := findField(t, p, "id")
	assert.False(t, f.HighCardinality)
	assert.Equal(t, DefaultCardinalityCap, p.ValueDistributions["id"].UniqueValues)
}

func TestSession_ExamplesFirstSeen(t *testing.T) {
	sess := NewSession(WithExampleCap(3))
	for i := 0; i < 10; i++ {
		require.NoError(t, sess.Ingest(decodeRecord(t, fmt.Sprintf(`{"v":%d}`, i))))
	}

	p := sess.Finalize()
	f := findField(t, p, "v")
	require.Len(t, f.Examples, 3)
	assert.Equal(t, json.Number("0"), f.Examples[0])
	assert.Equal(t, json.Number("1"), f.Examples[1])
	assert.Equal(t, json.Number("2"), f.Examples[2])
}

func TestSession_TimestampSpan(t *testing.T) {
	sess := NewSession()
	for _, line := range []string{
		`{"pt":1698000060000,"mc":[]}`,
		`{"pt":1698000000000,"mc":[]}`,
		`{"mc":[]}`,
		`{"pt":1698000120000,"mc":[]}`,
	} {
		require.NoError(t, sess.Ingest(decodeRecord(t, line)))
	}

	p := sess.Finalize()
	ta := p.TemporalAnalysis
	require.NotNil(t, ta)
	assert.EqualValues(t, 1698000000000, ta.Start)
	assert.EqualValues(t, 1698000120000, ta.End)
	assert.EqualValues(t, 120000, ta.DurationMillis)
	assert.Equal(t, "2m 0s", ta.Duration)
	assert.EqualValues(t, 3, ta.TimestampCount)
}

func TestSession_NoTimestampsNoTemporalBlock(t *testing.T) {
	sess := NewSession()
	require.NoError(t, sess.Ingest(decodeRecord(t, `{"a":1}`)))
	assert.Nil(t, sess.Finalize().TemporalAnalysis)
}

func TestSession_StructureAndQuality(t *testing.T) {
	sess := NewSession()
	for _, line := range []string{
		`{"op":"mcm","mc":[{"id":"1.23"}]}`,
		`{"op":"mcm","mc":[{"id":"1.24"}]}`,
		`{"op":"mcm"}`,
	} {
		require.NoError(t, sess.Ingest(decodeRecord(t, line)))
	}

	p := sess.Finalize()
	assert.Equal(t, []string{"mc", "op"}, p.StructureAnalysis.TopLevelFields)
	assert.Contains(t, p.StructureAnalysis.ContainerPaths, "mc")
	assert.Equal(t, 2, p.StructureAnalysis.MaxDepth)
	assert.Equal(t, len(p.DiscoveredFields), p.StructureAnalysis.UniquePaths)

	assert.Equal(t, 1, p.DataQuality.AlwaysPresent)
	assert.Equal(t, []string{"op"}, p.DataQuality.AlwaysPresentFields)
}

// Ingesting ten times more records with the same field shapes must not grow
// the accumulator map, histograms, or example reservoirs. That property
// makes streaming over arbitrarily large inputs tractable.
func TestSession_MemoryBoundedByShapeNotVolume(t *testing.T) {
	shape := func(n int) *Session {
		sess := NewSession()
		for i := 0; i < n; i++ {
			rec := decodeRecord(t, fmt.Sprintf(`{"op":"mcm","mc":[{"rc":[{"ltp":%d.5,"tv":%d}]}]}`, i%7, i))
			require.NoError(t, sess.Ingest(rec))
		}
		return sess
	}

	small := shape(100).Finalize()
	large := shape(1000).Finalize()

	assert.Equal(t, len(small.DiscoveredFields), len(large.DiscoveredFields))
	for i, f := range large.DiscoveredFields {
		assert.LessOrEqual(t, len(f.Examples), DefaultExampleCap)
		assert.Equal(t, small.DiscoveredFields[i].Path, f.Path)
	}
	for _, dist := range large.ValueDistributions {
		assert.LessOrEqual(t, dist.UniqueValues, DefaultCardinalityCap)
	}
}

func TestProfile_WireContractRoundTrip(t *testing.T) {
	sess := NewSession(WithDictionary(testDictionary()))
	for _, line := range []string{
		`{"pt":1698000000000,"op":"mcm","mc":[{"rc":[{"ltp":3.5,"tv":10}]}]}`,
		`{"pt":1698000060000,"op":"mcm","mc":[{"rc":[{"ltp":null}]}]}`,
	} {
		require.NoError(t, sess.Ingest(decodeRecord(t, line)))
	}
	p := sess.Finalize()

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var back Profile
	require.NoError(t, json.Unmarshal(raw, &back))

	raw2, err := json.Marshal(&back)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(raw2), "profile must round-trip losslessly")
}

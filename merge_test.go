package fieldscope

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileOf(t *testing.T, lines ...string) *Profile {
	t.Helper()
	sess := NewSession()
	for _, line := range lines {
		require.NoError(t, sess.Ingest(decodeRecord(t, line)))
	}
	return sess.Finalize()
}

// stripExamples zeroes the one order-dependent part of a profile so that
// commutativity and associativity can be asserted on everything else.
func stripExamples(p *Profile) *Profile {
	out := *p
	out.DiscoveredFields = make([]DiscoveredField, len(p.DiscoveredFields))
	copy(out.DiscoveredFields, p.DiscoveredFields)
	for i := range out.DiscoveredFields {
		out.DiscoveredFields[i].Examples = nil
	}
	return &out
}

func TestMergeProfiles_EquivalentToSingleSession(t *testing.T) {
	a := profileOf(t,
		`{"pt":1698000000000,"mc":[{"rc":[{"ltp":3.5}]}]}`,
		`{"pt":1698000060000,"mc":[{"rc":[{"ltp":null}]}]}`,
	)
	b := profileOf(t, `{"pt":1698000120000,"mc":[{"rc":[{"tv":10}]}]}`)

	merged, err := MergeProfiles(a, b)
	require.NoError(t, err)

	whole := profileOf(t,
		`{"pt":1698000000000,"mc":[{"rc":[{"ltp":3.5}]}]}`,
		`{"pt":1698000060000,"mc":[{"rc":[{"ltp":null}]}]}`,
		`{"pt":1698000120000,"mc":[{"rc":[{"tv":10}]}]}`,
	)
	assert.Equal(t, whole, merged)
}

func TestMergeProfiles_Commutative(t *testing.T) {
	a := profileOf(t, `{"x":1,"s":"a"}`, `{"x":2}`)
	b := profileOf(t, `{"x":3.5,"s":"b"}`, `{"y":true}`)

	ab, err := MergeProfiles(a, b)
	require.NoError(t, err)
	ba, err := MergeProfiles(b, a)
	require.NoError(t, err)

	assert.Equal(t, stripExamples(ab), stripExamples(ba))
}

func TestMergeProfiles_Associative(t *testing.T) {
	a := profileOf(t, `{"x":1}`, `{"x":2,"s":"a"}`)
	b := profileOf(t, `{"x":3,"y":[1,2]}`)
	c := profileOf(t, `{"s":"b","y":[]}`, `{"x":null}`)

	abFirst, err := MergeProfiles(a, b)
	require.NoError(t, err)
	left, err := MergeProfiles(abFirst, c)
	require.NoError(t, err)

	bcFirst, err := MergeProfiles(b, c)
	require.NoError(t, err)
	right, err := MergeProfiles(a, bcFirst)
	require.NoError(t, err)

	assert.Equal(t, stripExamples(left), stripExamples(right))
}

func TestMergeProfiles_TypeWideningAcrossShards(t *testing.T) {
	a := profileOf(t, `{"v":5}`)
	b := profileOf(t, `{"v":5.5}`)

	merged, err := MergeProfiles(a, b)
	require.NoError(t, err)
	assert.Equal(t, TypeMixed, findField(t, merged, "v").Type)
}

func TestMergeProfiles_CardinalityCapHoldsAcrossShards(t *testing.T) {
	mk := func(lo, hi int) *Profile {
		sess := NewSession()
		for i := lo; i < hi; i++ {
			require.NoError(t, sess.Ingest(decodeRecord(t, fmt.Sprintf(`{"id":"v%d"}`, i))))
		}
		return sess.Finalize()
	}

	// Each shard is under the cap; the union is not.
	a := mk(0, 30)
	b := mk(30, 60)

	merged, err := MergeProfiles(a, b)
	require.NoError(t, err)

	f := findField(t, merged, "id")
	assert.True(t, f.HighCardinality)
	_, ok := merged.ValueDistributions["id"]
	assert.False(t, ok)
	assert.EqualValues(t, 60, merged.TotalRecords)
}

func TestMergeProfiles_HighCardinalityIsSticky(t *testing.T) {
	sess := NewSession()
	for i := 0; i < DefaultCardinalityCap+1; i++ {
		require.NoError(t, sess.Ingest(decodeRecord(t, fmt.Sprintf(`{"id":"v%d"}`, i))))
	}
	overflowed := sess.Finalize()
	small := profileOf(t, `{"id":"v0"}`)

	merged, err := MergeProfiles(small, overflowed)
	require.NoError(t, err)
	assert.True(t, findField(t, merged, "id").HighCardinality)
}

func TestMergeProfiles_TemporalSpanCombines(t *testing.T) {
	a := profileOf(t, `{"pt":1698000060000}`)
	b := profileOf(t, `{"pt":1698000000000}`, `{"pt":1698000120000}`)

	merged, err := MergeProfiles(a, b)
	require.NoError(t, err)
	require.NotNil(t, merged.TemporalAnalysis)
	assert.EqualValues(t, 1698000000000, merged.TemporalAnalysis.Start)
	assert.EqualValues(t, 1698000120000, merged.TemporalAnalysis.End)
	assert.EqualValues(t, 3, merged.TemporalAnalysis.TimestampCount)
}

func TestMergeProfiles_NilProfile(t *testing.T) {
	p := profileOf(t, `{"a":1}`)
	_, err := MergeProfiles(p, nil)
	assert.Error(t, err)
	_, err = MergeProfiles(nil, p)
	assert.Error(t, err)
}

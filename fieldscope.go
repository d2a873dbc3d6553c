// Package fieldscope discovers the structure of heterogeneous, semi-structured
// event streams (nested JSON of no fixed shape, such as exchange
// market-stream messages) without any prior schema.
//
// A Session consumes already-decoded records one at a time and accumulates,
// per normalized field path, a streaming profile: presence counts, a widened
// value type, bounded example values and a bounded categorical histogram.
// Memory stays proportional to the number of distinct paths, never to the
// number of records, so a session can run over an unbounded stream.
//
//	sess := fieldscope.NewSession(fieldscope.WithDictionary(dict))
//	for rec := range records {
//	    if err := sess.Ingest(rec); err != nil && !errors.Is(err, fieldscope.ErrMalformedRecord) {
//	        return err
//	    }
//	}
//	profile := sess.Finalize()
//
// For large inputs, shard the stream across sessions and combine the results
// with MergeProfiles (or use ProfileStream, which does both), then derive a
// storage schema and model suggestions:
//
//	schema := fieldscope.DeriveSchema(profile)
//	models := fieldscope.SuggestModels(profile, fieldscope.WithDictionary(dict))
//
// Record decoding, storage I/O and result serving belong to the caller; the
// engine only ever sees decoded trees.
package fieldscope

package fieldscope

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ProfileStream partitions records across independent sessions, one per
// worker, and merges their profiles when the channel closes. Each session
// is single-writer as required; parallelism comes purely from sharding.
//
// Malformed records are skipped and counted, never fatal. If ctx is
// cancelled mid-stream the workers stop, the partial shards are still merged
// and returned alongside ctx.Err() so the caller gets a usable partial
// profile.
func ProfileStream(ctx context.Context, records <-chan any, workers int, opts ...Option) (*Profile, error) {
	if workers < 1 {
		workers = 1
	}
	set := newSettings(opts)

	sessions := make([]*Session, workers)
	for i := range sessions {
		sessions[i] = NewSession(opts...)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sess := range sessions {
		sess := sess
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case rec, ok := <-records:
					if !ok {
						return nil
					}
					if err := sess.Ingest(rec); err != nil && !errors.Is(err, ErrMalformedRecord) {
						return err
					}
				}
			}
		})
	}

	runErr := g.Wait()
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return nil, runErr
	}

	profile := sessions[0].Finalize()
	for _, sess := range sessions[1:] {
		var err error
		profile, err = MergeProfiles(profile, sess.Finalize(), opts...)
		if err != nil {
			return nil, fmt.Errorf("fieldscope: merge shard: %w", err)
		}
	}

	var malformed int64
	for _, sess := range sessions {
		malformed += sess.MalformedCount()
	}
	if malformed > 0 {
		set.logger.Warn("stream contained malformed records", "skipped", malformed)
	}

	return profile, runErr
}

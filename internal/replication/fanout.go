package replication

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// WriteFunc performs a write to a single owner.
type WriteFunc func(ctx context.Context, owner string) error

// WriteResult is the outcome of a Fanout.
type WriteResult struct {
	Acks     int
	Owners   int
	Failures []OwnerFailure
}

// Success reports whether every owner acknowledged the write.
func (r WriteResult) Success() bool {
	return len(r.Failures) == 0
}

// Fanout runs write against every owner concurrently and waits for all of
// them, even after a failure, so the result names every owner that failed.
// A positive timeout bounds each individual write.
func Fanout(ctx context.Context, owners []string, timeout time.Duration, write WriteFunc) WriteResult {
	var (
		mu       sync.Mutex
		acks     int
		failures []OwnerFailure
		g        errgroup.Group
	)

	for _, owner := range owners {
		g.Go(func() error {
			writeCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				writeCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			err := write(writeCtx, owner)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, OwnerFailure{Owner: owner, Err: err})
			} else {
				acks++
			}
			return err
		})
	}

	// Per-owner errors are already collected; Wait only joins.
	_ = g.Wait()

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Owner < failures[j].Owner
	})

	return WriteResult{
		Acks:     acks,
		Owners:   len(owners),
		Failures: failures,
	}
}

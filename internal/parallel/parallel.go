// Package parallel splits index ranges across goroutines.
//
// Workers never cancel each other: a failing chunk is recorded and the
// remaining chunks run to completion. Once every worker has returned, the
// first captured error is reported.
package parallel

import (
	"context"
	"fmt"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ErrWorkerPanic indicates a worker that panicked.
var ErrWorkerPanic = errors.New("parallel: worker panicked")

// Workers caps the number of goroutines per call.
var Workers = runtime.GOMAXPROCS(0)

// ChunkError wraps the failure of the chunk [Start, End).
type ChunkError struct {
	Start int
	End   int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("parallel: chunk [%d, %d): %v", e.Start, e.End, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// ForChunks executes fn over contiguous chunks of [0, n). Chunks hold at
// least minChunk items, so small ranges run as a single chunk.
func ForChunks(ctx context.Context, n, minChunk int, fn func(ctx context.Context, start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if minChunk < 1 {
		minChunk = 1
	}

	workers := Workers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}
	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			return runChunk(ctx, start, end, fn)
		})
	}
	return g.Wait()
}

func runChunk(ctx context.Context, start, end int, fn func(ctx context.Context, start, end int) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &ChunkError{Start: start, End: end, Err: errors.Wrapf(ErrWorkerPanic, "%v", p)}
		}
	}()
	if err := fn(ctx, start, end); err != nil {
		return &ChunkError{Start: start, End: end, Err: err}
	}
	return nil
}

// ForEach calls fn for every index in [0, n), checking ctx between items.
func ForEach(ctx context.Context, n, minChunk int, fn func(i int) error) error {
	return ForChunks(ctx, n, minChunk, func(ctx context.Context, start, end int) error {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return errors.Wrapf(err, "item %d", i)
			}
		}
		return nil
	})
}

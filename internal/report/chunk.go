package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/asterview/asterview/internal/store"
	"github.com/asterview/asterview/internal/types"
)

// maxConcurrentChunks bounds how many chunk lookups run at once; the
// store's own pool limit applies underneath.
const maxConcurrentChunks = 4

// PartialBatchError reports a chunked lookup in which some chunks failed.
// The step as a whole is unusable: treating the missing chunks as empty
// would silently turn "unknown" into "no recording" / "no callback".
type PartialBatchError struct {
	FailedChunks []int // zero-based chunk indexes
	TotalChunks  int
	Err          error // first underlying failure
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("%d of %d lookup chunks failed (chunks %v): %v",
		len(e.FailedChunks), e.TotalChunks, e.FailedChunks, e.Err)
}

func (e *PartialBatchError) Unwrap() error {
	return e.Err
}

// ChunkIDs splits ids into ordered, non-overlapping batches of at most
// size elements. Every id lands in exactly one chunk.
func ChunkIDs(ids []string, size int) [][]string {
	if size <= 0 || len(ids) == 0 {
		if len(ids) == 0 {
			return nil
		}
		return [][]string{ids}
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// FetchCDRsChunked looks up CDR rows for ids in bounded batches, running
// chunks concurrently and joining on all of them before returning. On any
// chunk failure it returns a PartialBatchError naming the failed chunks;
// successful partial results are never returned as if complete.
func FetchCDRsChunked(ctx context.Context, st store.EventStore, ids []string, size int) ([]types.CallDetailRecord, error) {
	chunks := ChunkIDs(ids, size)
	if len(chunks) == 0 {
		return nil, nil
	}

	results := make([][]types.CallDetailRecord, len(chunks))
	errs := make([]error, len(chunks))

	var g errgroup.Group
	g.SetLimit(maxConcurrentChunks)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			rows, err := st.GetCDRsByIDs(ctx, chunk)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = rows
			return nil
		})
	}
	// Errors are collected per chunk; the group is only the join barrier.
	_ = g.Wait()

	var failed []int
	var first error
	for i, err := range errs {
		if err != nil {
			failed = append(failed, i)
			if first == nil {
				first = err
			}
		}
	}
	if len(failed) > 0 {
		return nil, &PartialBatchError{FailedChunks: failed, TotalChunks: len(chunks), Err: first}
	}

	var out []types.CallDetailRecord
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out, nil
}

package sink

import (
	"context"
	"fmt"
)

// WriteFn abstracts the batched write. In production it is a Sink's Write
// method; in tests, a fake function can verify batching behavior.
type WriteFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// WriteBatches groups rows into batches of size batchSize and calls writeFn
// for each non-empty batch. It returns the total number of rows reported by
// writeFn and the first error encountered.
//
// Rows are already materialized by the time a plan has been applied, so this
// batches a slice rather than draining a channel; context is still honored
// between batches so a canceled run stops without issuing further writes.
func WriteBatches(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	writeFn WriteFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if writeFn == nil {
		return 0, fmt.Errorf("writeFn must not be nil")
	}

	var total int64
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := lo + batchSize
		if hi > len(rows) {
			hi = len(rows)
		}
		n, err := writeFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

package trace

import (
	"context"
	"fmt"

	sketcherrors "github.com/tamirms/flowsketch/errors"
)

// Sink receives replayed events. *flowsketch.Sketch implements it.
type Sink interface {
	InsertN(key, n uint64) error
}

// replayCheckInterval is how many records Replay applies between context
// checks.
const replayCheckInterval = 4096

// Replay inserts every record of t into s in file order and returns the
// number of records applied. It stops at the first rejected record or when
// ctx is done. Replaying a closed trace returns ErrTraceClosed.
func Replay(ctx context.Context, t *Trace, s Sink) (int, error) {
	if t.closed.Load() {
		return 0, sketcherrors.ErrTraceClosed
	}
	n := 0
	for key, count := range t.All() {
		if n%replayCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		if err := s.InsertN(key, count); err != nil {
			return n, fmt.Errorf("record %d (key %d): %w", n, key, err)
		}
		n++
	}
	return n, nil
}

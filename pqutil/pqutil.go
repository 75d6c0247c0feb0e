// Package pqutil provides consumer side helpers built on top of the priority queue exposed by 'types/pq'.
package pqutil

import (
	"context"
	"fmt"
	"time"

	"github.com/xanlib/tools-common/errdefs"
	"github.com/xanlib/tools-common/types/pq"
)

// GetTimeout removes and returns the payload with the highest priority, waiting at most the given duration for one to
// become available. 'context.DeadlineExceeded' is returned if the queue remained empty.
func GetTimeout[T comparable](queue *pq.Queue[T], timeout time.Duration) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return queue.GetContext(ctx)
}

// Drain removes every payload from the queue in priority order running the given function on each one. In the event
// of an error, draining stops early and the error is returned; the payload which caused the error is not requeued.
//
// NOTE: Drain doesn't block, payloads added concurrently may or may not be drained.
func Drain[T comparable](queue *pq.Queue[T], fn func(payload T) error) error {
	for {
		payload, ok := queue.TryGet()
		if !ok {
			return nil
		}

		if err := fn(payload); err != nil {
			return err
		}
	}
}

// DrainAll is similar to 'Drain' however it continues in the event of an error, returning every error which occurred.
func DrainAll[T comparable](queue *pq.Queue[T], fn func(payload T) error) error {
	errs := &errdefs.MultiError{Prefix: "failed to drain queue: "}

	err := Drain(queue, func(payload T) error {
		if err := fn(payload); err != nil {
			errs.Add(fmt.Errorf("%v: %w", payload, err))
		}

		return nil
	})
	if err != nil {
		return err
	}

	return errs.ErrOrNil()
}

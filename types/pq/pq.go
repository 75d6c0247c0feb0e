// Package pq exposes a generic, thread safe, blocking priority queue implemented using a binary max-heap.
//
// Elements are returned in order of descending priority; where multiple elements have the same priority they're
// returned in an arbitrary order. Every insertion returns a 'Handle' which may later be used to change the priority of,
// or remove, that specific element in logarithmic time.
//
// Every operation exists in two forms. The plain form (e.g. 'Put') acquires the queue lock for the duration of the
// call, whilst the '...Locked' form (e.g. 'PutLocked') expects the caller to already hold the lock through 'Lock' which
// allows multiple operations to be performed atomically. The lock is not reentrant.
package pq

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/xanlib/tools-common/errdefs"
	"github.com/xanlib/tools-common/log"
	"github.com/xanlib/tools-common/types/alloc"
)

// Queue is a priority queue which may be shared between multiple producers and consumers. Consumers calling 'Get' on
// an empty queue block until an element is added.
//
// NOTE: The queue stores payloads but never inspects them beyond the equality check performed by 'Find'; the caller
// retains ownership of any resources they reference.
type Queue[T comparable] struct {
	id     uuid.UUID
	opts   Options
	logger log.WrappedLogger

	// heap holds arena indices, positions [0, len(heap)) form a valid max-heap
	heap     []int
	slots    []slot[T]
	freeHead int

	destroyed bool

	lock sync.Mutex
	cond *sync.Cond
}

// New creates a new empty priority queue.
//
// NOTE: Should the allocator refuse the initial capacity the queue starts empty, and the error will be surfaced by the
// first call to 'Put'.
func New[T comparable](opts Options) *Queue[T] {
	// Fill out any missing fields with the sane defaults
	opts.defaults()

	q := &Queue[T]{
		id:       uuid.New(),
		opts:     opts,
		logger:   log.NewWrappedLogger(opts.Logger),
		freeHead: noSlot,
	}

	q.cond = sync.NewCond(&q.lock)

	var err error

	q.heap, err = alloc.Resize(opts.Allocator, q.heap, opts.Capacity)
	if err == nil {
		q.slots, err = alloc.Resize(opts.Allocator, q.slots, opts.Capacity)
	}

	if err != nil {
		q.logger.Warnf("%s Queue %s could not allocate initial capacity of %d: %v", opts.LogPrefix, q.id,
			opts.Capacity, err)
	}

	return q
}

// ID returns the unique identifier of the queue, it's included in log messages.
func (q *Queue[T]) ID() uuid.UUID {
	return q.id
}

// Lock acquires the queue lock, it must be held when calling any of the '...Locked' functions.
func (q *Queue[T]) Lock() {
	q.lock.Lock()
}

// Unlock releases the queue lock.
func (q *Queue[T]) Unlock() {
	q.lock.Unlock()
}

// Destroy releases the backing arrays to the allocator. Any goroutines blocked in 'Get' are woken and return
// 'errdefs.ErrDestroyed', as will any subsequent operations. Payloads which are still queued are left untouched.
//
// NOTE: Calling 'Destroy' multiple times is a no-op.
func (q *Queue[T]) Destroy() {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.destroyed {
		return
	}

	q.logger.Debugf("%s Queue %s destroyed with %d element(s) remaining", q.opts.LogPrefix, q.id, len(q.heap))

	q.opts.Allocator.Release(cap(q.heap))
	q.opts.Allocator.Release(cap(q.slots))

	q.heap, q.slots, q.freeHead = nil, nil, noSlot
	q.destroyed = true

	q.cond.Broadcast()
}

// Put adds the given payload to the queue, returning a handle which may be used to reference it until it leaves the
// queue.
func (q *Queue[T]) Put(payload T, priority float64) (Handle, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.PutLocked(payload, priority)
}

// PutLocked is the equivalent of 'Put' for callers already holding the queue lock.
func (q *Queue[T]) PutLocked(payload T, priority float64) (Handle, error) {
	if q.destroyed {
		return Handle{}, errdefs.ErrDestroyed
	}

	if math.IsNaN(priority) {
		q.logger.Warnf("%s Queue %s rejected NaN priority", q.opts.LogPrefix, q.id)
		return Handle{}, errdefs.ErrInvalidPriority
	}

	if err := q.reserve(); err != nil {
		return Handle{}, fmt.Errorf("could not put element: %w", err)
	}

	var (
		idx      = q.allocSlot()
		position = len(q.heap)
		s        = &q.slots[idx]
	)

	s.payload, s.priority, s.position, s.live = payload, priority, position, true

	q.heap = append(q.heap, idx)
	q.fix(position)

	// Consumers only wait whilst the queue is empty, so only the transition to non-empty needs to wake them
	if len(q.heap) == 1 {
		q.cond.Broadcast()
	}

	return Handle{queue: q.id, slot: idx, generation: s.generation}, nil
}

// Get removes and returns the payload with the highest priority, blocking until one is available.
func (q *Queue[T]) Get() (T, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.GetLocked()
}

// GetLocked is the equivalent of 'Get' for callers already holding the queue lock. The lock is released whilst waiting
// and reacquired before returning.
func (q *Queue[T]) GetLocked() (T, error) {
	for len(q.heap) == 0 && !q.destroyed {
		q.cond.Wait()
	}

	if q.destroyed {
		return *new(T), errdefs.ErrDestroyed
	}

	return q.extractAt(0), nil
}

// GetContext is the equivalent of 'Get' which stops waiting once the given context is cancelled.
func (q *Queue[T]) GetContext(ctx context.Context) (T, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.GetContextLocked(ctx)
}

// GetContextLocked is the equivalent of 'GetContext' for callers already holding the queue lock.
func (q *Queue[T]) GetContextLocked(ctx context.Context) (T, error) {
	entry, err := q.GetEntryContextLocked(ctx)
	return entry.Payload, err
}

// GetEntryContext is the equivalent of 'GetContext' which also returns the priority the payload had when it was
// removed; the handle in the returned entry is already stale.
func (q *Queue[T]) GetEntryContext(ctx context.Context) (Entry[T], error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.GetEntryContextLocked(ctx)
}

// GetEntryContextLocked is the equivalent of 'GetEntryContext' for callers already holding the queue lock.
func (q *Queue[T]) GetEntryContextLocked(ctx context.Context) (Entry[T], error) {
	// Wake the waiters once the context is done, the lock is required so that the broadcast can't happen between the
	// context check and the wait below.
	stop := context.AfterFunc(ctx, func() {
		q.lock.Lock()
		defer q.lock.Unlock()

		q.cond.Broadcast()
	})

	defer stop()

	for len(q.heap) == 0 && !q.destroyed && ctx.Err() == nil {
		q.cond.Wait()
	}

	if q.destroyed {
		return Entry[T]{}, errdefs.ErrDestroyed
	}

	if len(q.heap) == 0 {
		return Entry[T]{}, ctx.Err()
	}

	var (
		idx   = q.heap[0]
		entry = Entry[T]{
			Priority: q.slots[idx].priority,
			Handle:   Handle{queue: q.id, slot: idx, generation: q.slots[idx].generation},
		}
	)

	entry.Payload = q.extractAt(0)

	return entry, nil
}

// TryGet removes and returns the payload with the highest priority without blocking, the boolean indicates whether
// there was a payload to return.
func (q *Queue[T]) TryGet() (T, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.TryGetLocked()
}

// TryGetLocked is the equivalent of 'TryGet' for callers already holding the queue lock.
func (q *Queue[T]) TryGetLocked() (T, bool) {
	if len(q.heap) == 0 {
		return *new(T), false
	}

	return q.extractAt(0), true
}

// Reprioritize changes the priority of the element referenced by the given handle.
func (q *Queue[T]) Reprioritize(handle Handle, priority float64) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.ReprioritizeLocked(handle, priority)
}

// ReprioritizeLocked is the equivalent of 'Reprioritize' for callers already holding the queue lock.
func (q *Queue[T]) ReprioritizeLocked(handle Handle, priority float64) error {
	s, err := q.resolve(handle)
	if err != nil {
		return fmt.Errorf("could not reprioritize element: %w", err)
	}

	if math.IsNaN(priority) {
		q.logger.Warnf("%s Queue %s rejected NaN priority", q.opts.LogPrefix, q.id)
		return errdefs.ErrInvalidPriority
	}

	s.priority = priority

	q.fix(s.position)

	return nil
}

// Remove withdraws the element referenced by the given handle from the queue, regardless of its priority, returning its
// payload.
func (q *Queue[T]) Remove(handle Handle) (T, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.RemoveLocked(handle)
}

// RemoveLocked is the equivalent of 'Remove' for callers already holding the queue lock.
func (q *Queue[T]) RemoveLocked(handle Handle) (T, error) {
	s, err := q.resolve(handle)
	if err != nil {
		return *new(T), fmt.Errorf("could not remove element: %w", err)
	}

	return q.extractAt(s.position), nil
}

// IsEmpty returns a boolean indicating whether the queue is empty.
func (q *Queue[T]) IsEmpty() bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.IsEmptyLocked()
}

// IsEmptyLocked is the equivalent of 'IsEmpty' for callers already holding the queue lock.
func (q *Queue[T]) IsEmptyLocked() bool {
	return len(q.heap) == 0
}

// Len returns the number of elements in the queue.
func (q *Queue[T]) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.LenLocked()
}

// LenLocked is the equivalent of 'Len' for callers already holding the queue lock.
func (q *Queue[T]) LenLocked() int {
	return len(q.heap)
}

// Cap returns the number of elements the queue can hold before it next needs to grow.
func (q *Queue[T]) Cap() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return cap(q.heap)
}

// PeekPriority returns the highest priority in the queue, 'errdefs.ErrEmpty' is returned if the queue is empty.
func (q *Queue[T]) PeekPriority() (float64, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.PeekPriorityLocked()
}

// PeekPriorityLocked is the equivalent of 'PeekPriority' for callers already holding the queue lock.
func (q *Queue[T]) PeekPriorityLocked() (float64, error) {
	_, priority, err := q.PeekLocked()
	return priority, err
}

// Peek returns the payload with the highest priority, and its priority, without removing it.
func (q *Queue[T]) Peek() (T, float64, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.PeekLocked()
}

// PeekLocked is the equivalent of 'Peek' for callers already holding the queue lock.
func (q *Queue[T]) PeekLocked() (T, float64, error) {
	if q.destroyed {
		return *new(T), 0, errdefs.ErrDestroyed
	}

	if len(q.heap) == 0 {
		return *new(T), 0, errdefs.ErrEmpty
	}

	root := q.slots[q.heap[0]]

	return root.payload, root.priority, nil
}

// Find returns a handle to an element with the given payload, the boolean indicates whether one was found.
//
// NOTE: This performs a linear scan of the queue, where possible callers should retain the handle returned by 'Put'.
func (q *Queue[T]) Find(payload T) (Handle, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.FindLocked(payload)
}

// FindLocked is the equivalent of 'Find' for callers already holding the queue lock.
func (q *Queue[T]) FindLocked(payload T) (Handle, bool) {
	for _, idx := range q.heap {
		if s := q.slots[idx]; s.payload == payload {
			return Handle{queue: q.id, slot: idx, generation: s.generation}, true
		}
	}

	return Handle{}, false
}

// Priority returns the current priority of the element referenced by the given handle.
func (q *Queue[T]) Priority(handle Handle) (float64, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.PriorityLocked(handle)
}

// PriorityLocked is the equivalent of 'Priority' for callers already holding the queue lock.
func (q *Queue[T]) PriorityLocked(handle Handle) (float64, error) {
	s, err := q.resolve(handle)
	if err != nil {
		return 0, err
	}

	return s.priority, nil
}

// Contains returns a boolean indicating whether the element referenced by the given handle is still queued.
func (q *Queue[T]) Contains(handle Handle) bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.valid(handle) == nil
}

// resolve returns the slot referenced by the given handle, logging and returning an error if the handle is invalid.
func (q *Queue[T]) resolve(handle Handle) (*slot[T], error) {
	if err := q.valid(handle); err != nil {
		q.logger.Warnf("%s Queue %s rejected handle: %v", q.opts.LogPrefix, q.id, err)
		return nil, err
	}

	return &q.slots[handle.slot], nil
}

// valid returns an error if the given handle doesn't reference a live element of this queue.
func (q *Queue[T]) valid(handle Handle) error {
	if q.destroyed {
		return errdefs.ErrDestroyed
	}

	if handle.queue != q.id {
		return &errdefs.HandleError{Slot: handle.slot, Generation: handle.generation, Err: errdefs.ErrForeignHandle}
	}

	if handle.slot < 0 || handle.slot >= len(q.slots) {
		return &errdefs.HandleError{Slot: handle.slot, Generation: handle.generation, Err: errdefs.ErrStaleHandle}
	}

	if s := q.slots[handle.slot]; !s.live || s.generation != handle.generation {
		return &errdefs.HandleError{Slot: handle.slot, Generation: handle.generation, Err: errdefs.ErrStaleHandle}
	}

	return nil
}

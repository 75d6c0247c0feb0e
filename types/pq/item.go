package pq

import "github.com/google/uuid"

// noSlot marks the end of the free slot list.
const noSlot = -1

// Handle names a single element within a queue, it's returned by 'Put' and may be used to reprioritize or remove the
// element without searching for it.
//
// NOTE: Handles are values which may be freely copied. Once the element leaves the queue (through extraction or
// removal) every copy of the handle becomes stale and will be rejected by the queue.
type Handle struct {
	queue      uuid.UUID
	slot       int
	generation uint64
}

// Entry is a point in time copy of a live element, as returned by 'Snapshot'.
type Entry[T comparable] struct {
	Payload  T       `json:"payload"`
	Priority float64 `json:"priority"`
	Position int     `json:"position"`
	Handle   Handle  `json:"-"`
}

// slot is an entry in the arena backing the queue. Slots are recycled once their element leaves the queue, however,
// their generation is bumped so that handles to the previous element are detected as stale.
type slot[T comparable] struct {
	payload    T
	priority   float64
	position   int
	generation uint64
	live       bool
	nextFree   int
}

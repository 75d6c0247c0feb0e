package pq

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// Snapshot returns a copy of the live elements in the order they're stored in the heap, the first entry (if any) is the
// element which would be returned by the next call to 'Get'.
func (q *Queue[T]) Snapshot() []Entry[T] {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.SnapshotLocked()
}

// SnapshotLocked is the equivalent of 'Snapshot' for callers already holding the queue lock.
func (q *Queue[T]) SnapshotLocked() []Entry[T] {
	entries := make([]Entry[T], 0, len(q.heap))

	for position, idx := range q.heap {
		s := q.slots[idx]

		entries = append(entries, Entry[T]{
			Payload:  s.payload,
			Priority: s.priority,
			Position: position,
			Handle:   Handle{queue: q.id, slot: idx, generation: s.generation},
		})
	}

	return entries
}

// DumpJSON writes a JSON representation of the queue to the given writer, it's intended to be used whilst debugging.
func (q *Queue[T]) DumpJSON(w io.Writer) error {
	dump := struct {
		ID      string     `json:"id"`
		Cap     int        `json:"cap"`
		Entries []Entry[T] `json:"entries"`
	}{
		ID:      q.id.String(),
		Cap:     q.Cap(),
		Entries: q.Snapshot(),
	}

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(dump); err != nil {
		return fmt.Errorf("could not encode queue: %w", err)
	}

	return nil
}

package pq

import (
	"fmt"

	"github.com/xanlib/tools-common/types/alloc"
)

// The functions in this file maintain the heap and must only be called whilst holding the queue lock.

func parent(position int) int {
	return (position - 1) / 2
}

func leftChild(position int) int {
	return 2*position + 1
}

func rightChild(position int) int {
	return 2*position + 2
}

// priorityAt returns the priority of the element at the given heap position.
func (q *Queue[T]) priorityAt(position int) float64 {
	return q.slots[q.heap[position]].priority
}

// swap exchanges the elements at the two heap positions, updating the position recorded in each slot.
func (q *Queue[T]) swap(a, b int) {
	q.heap[a], q.heap[b] = q.heap[b], q.heap[a]
	q.slots[q.heap[a]].position = a
	q.slots[q.heap[b]].position = b
}

// siftUp moves the element at the given position towards the root whilst it has a higher priority than its parent,
// returning its final position.
func (q *Queue[T]) siftUp(position int) int {
	for position > 0 {
		p := parent(position)
		if q.priorityAt(position) <= q.priorityAt(p) {
			break
		}

		q.swap(position, p)
		position = p
	}

	return position
}

// siftDown moves the element at the given position towards the leaves whilst one of its children has a higher
// priority, returning its final position.
//
// NOTE: When both children have the same priority the right child is preferred.
func (q *Queue[T]) siftDown(position int) int {
	size := len(q.heap)

	for {
		left, right := leftChild(position), rightChild(position)
		if left >= size {
			break
		}

		largest := left
		if right < size && q.priorityAt(right) >= q.priorityAt(left) {
			largest = right
		}

		if q.priorityAt(largest) <= q.priorityAt(position) {
			break
		}

		q.swap(position, largest)
		position = largest
	}

	return position
}

// fix restores the heap property for an element whose priority may have changed in either direction; at most one of
// the passes will move the element.
func (q *Queue[T]) fix(position int) int {
	return q.siftDown(q.siftUp(position))
}

// extractAt removes the element at the given heap position, returning its payload. The last element takes its place
// and is then moved to restore the heap property.
func (q *Queue[T]) extractAt(position int) T {
	var (
		last = len(q.heap) - 1
		idx  = q.heap[position]
	)

	if position != last {
		q.heap[position] = q.heap[last]
		q.slots[q.heap[position]].position = position
	}

	q.heap = q.heap[:last]

	payload := q.freeSlot(idx)

	if position != last {
		q.fix(position)
	}

	return payload
}

// reserve ensures there's room for one more element, growing the backing arrays using the allocator if required. The
// queue is left untouched if the allocator refuses to grow.
func (q *Queue[T]) reserve() error {
	need := len(q.heap) + 1

	if need > cap(q.heap) {
		grown, err := alloc.Resize(q.opts.Allocator, q.heap, need)
		if err != nil {
			return fmt.Errorf("could not grow heap: %w", err)
		}

		q.logger.Debugf("%s Queue %s grew heap from %d to %d slots", q.opts.LogPrefix, q.id, cap(q.heap), cap(grown))

		q.heap = grown
	}

	if q.freeHead != noSlot || len(q.slots) < cap(q.slots) {
		return nil
	}

	grown, err := alloc.Resize(q.opts.Allocator, q.slots, len(q.slots)+1)
	if err != nil {
		return fmt.Errorf("could not grow arena: %w", err)
	}

	q.logger.Debugf("%s Queue %s grew arena from %d to %d slots", q.opts.LogPrefix, q.id, cap(q.slots), cap(grown))

	q.slots = grown

	return nil
}

// allocSlot returns the index of an unused slot, recycling freed slots before extending the arena.
//
// NOTE: 'reserve' must have been called beforehand.
func (q *Queue[T]) allocSlot() int {
	if q.freeHead != noSlot {
		idx := q.freeHead
		q.freeHead = q.slots[idx].nextFree

		return idx
	}

	q.slots = append(q.slots, slot[T]{nextFree: noSlot})

	return len(q.slots) - 1
}

// freeSlot returns the slot to the free list, bumping its generation so that outstanding handles become stale.
func (q *Queue[T]) freeSlot(idx int) T {
	var (
		s       = &q.slots[idx]
		payload = s.payload
	)

	// Drop the reference to the payload, it's owned by the caller
	*s = slot[T]{generation: s.generation + 1, nextFree: q.freeHead}

	q.freeHead = idx

	return payload
}

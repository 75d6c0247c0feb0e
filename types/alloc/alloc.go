// Package alloc exposes the allocator capability used by the containers in this module to size their backing arrays.
//
// Go manages memory itself, so rather than handing out raw memory an Allocator decides how much capacity a container
// may hold; this allows callers to bound the memory used by a container, or to account for it across many containers.
package alloc

import (
	"fmt"
	"sync"

	"github.com/xanlib/tools-common/errdefs"
)

//go:generate mockery --name Allocator --case underscore --inpackage

const (
	// growthFactor is the factor by which capacity increases when a container has to grow.
	//
	// NOTE: This value was chosen because it is a common value that languages use to increase capacity of their dynamic
	// array types.
	growthFactor = 2

	// minCapacity is the smallest capacity granted by the allocators in this package.
	minCapacity = 1
)

// Allocator grants capacity to containers.
type Allocator interface {
	// Grow returns the new capacity for a backing array currently holding 'capacity' slots which must be able to hold
	// at least 'need' slots. The returned capacity replaces the previous grant.
	Grow(capacity, need int) (int, error)

	// Release returns a previously granted capacity, it's called when a container is destroyed.
	Release(capacity int)
}

// Default is the allocator used when none is provided, it grows geometrically and never refuses a request.
var Default Allocator = defaultAllocator{}

type defaultAllocator struct{}

func (defaultAllocator) Grow(capacity, need int) (int, error) {
	return nextCapacity(capacity, need), nil
}

func (defaultAllocator) Release(_ int) {}

// Limited is a thread safe allocator which refuses to grant capacity beyond a fixed limit, the limit is shared between
// every container using the allocator.
type Limited struct {
	limit       int
	outstanding int
	lock        sync.Mutex
}

// NewLimited returns an allocator which grants at most 'limit' slots in total.
func NewLimited(limit int) *Limited {
	return &Limited{limit: limit}
}

// Grow implements the 'Allocator' interface. When geometric growth would exceed the limit, the grant is clamped to the
// remaining capacity provided it still satisfies 'need'.
func (l *Limited) Grow(capacity, need int) (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	var (
		next      = nextCapacity(capacity, need)
		available = l.limit - l.outstanding + capacity
	)

	if next > available {
		next = available
	}

	if next < need {
		return capacity, &errdefs.ExhaustedError{Requested: l.outstanding - capacity + need, Limit: l.limit}
	}

	l.outstanding += next - capacity

	return next, nil
}

// Release implements the 'Allocator' interface.
func (l *Limited) Release(capacity int) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.outstanding = max(0, l.outstanding-capacity)
}

// Outstanding returns the total capacity currently granted.
func (l *Limited) Outstanding() int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.outstanding
}

// Resize asks the allocator to grow the given slice so that it may hold at least 'need' elements, existing elements
// are copied into the new backing array. The slice is returned unmodified when it already has enough capacity.
func Resize[T any](a Allocator, s []T, need int) ([]T, error) {
	if need <= cap(s) {
		return s, nil
	}

	capacity, err := a.Grow(cap(s), need)
	if err != nil {
		return s, fmt.Errorf("could not grow from %d to %d slots: %w", cap(s), need, err)
	}

	if capacity < need {
		return s, fmt.Errorf("allocator granted %d slots, at least %d are required: %w", capacity, need,
			errdefs.ErrExhausted)
	}

	grown := make([]T, len(s), capacity)
	copy(grown, s)

	return grown, nil
}

// nextCapacity returns the geometrically grown capacity which is at least 'need'.
func nextCapacity(capacity, need int) int {
	next := max(capacity*growthFactor, minCapacity)
	for next < need {
		next *= growthFactor
	}

	return next
}

var (
	_ Allocator = defaultAllocator{}
	_ Allocator = (*Limited)(nil)
	_ Allocator = (*MockAllocator)(nil)
)

package pq

import (
	"github.com/xanlib/tools-common/log"
	"github.com/xanlib/tools-common/types/alloc"
)

// DefaultCapacity is the number of slots allocated up front when no capacity is provided.
const DefaultCapacity = 16

// Options encapsulates the available options which can be used when creating a priority queue.
type Options struct {
	// Capacity is the number of slots allocated up front, the queue grows beyond this as required. Defaults to
	// 'DefaultCapacity'.
	Capacity int

	// Allocator is consulted whenever the backing arrays need to grow. Defaults to 'alloc.Default'.
	Allocator alloc.Allocator

	// Logger is used to log growth and usage violations, by default nothing is logged.
	Logger log.Logger

	// LogPrefix is the prefix used for every log line. Defaults to '(pq)'.
	LogPrefix string
}

func (o *Options) defaults() {
	if o.Capacity <= 0 {
		o.Capacity = DefaultCapacity
	}

	if o.Allocator == nil {
		o.Allocator = alloc.Default
	}

	if o.LogPrefix == "" {
		o.LogPrefix = "(pq)"
	}
}

package pq

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xanlib/tools-common/types/alloc"
)

func TestOptionsDefaults(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		opts := Options{}
		opts.defaults()
		require.Equal(t, Options{Capacity: DefaultCapacity, Allocator: alloc.Default, LogPrefix: "(pq)"}, opts)
	})

	t.Run("NegativeCapacity", func(t *testing.T) {
		opts := Options{Capacity: -1}
		opts.defaults()
		require.Equal(t, DefaultCapacity, opts.Capacity)
	})

	t.Run("Provided", func(t *testing.T) {
		limited := alloc.NewLimited(42)

		opts := Options{Capacity: 4, Allocator: limited, LogPrefix: "(jobs)"}
		opts.defaults()
		require.Equal(t, Options{Capacity: 4, Allocator: limited, LogPrefix: "(jobs)"}, opts)
	})
}

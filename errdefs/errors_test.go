package errdefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsUsage(t *testing.T) {
	type testCase struct {
		name     string
		err      error
		expected bool
	}

	cases := []testCase{
		{name: "Nil"},
		{name: "Empty", err: ErrEmpty, expected: true},
		{name: "Stale", err: ErrStaleHandle, expected: true},
		{name: "Foreign", err: ErrForeignHandle, expected: true},
		{name: "InvalidPriority", err: ErrInvalidPriority, expected: true},
		{name: "Wrapped", err: fmt.Errorf("failed to remove: %w", ErrStaleHandle), expected: true},
		{name: "Exhausted", err: ErrExhausted},
		{name: "Destroyed", err: ErrDestroyed},
		{name: "Other", err: errors.New("other")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, IsUsage(tc.err))
		})
	}
}

func TestHandleError(t *testing.T) {
	err := &HandleError{Slot: 4, Generation: 2, Err: ErrStaleHandle}

	require.ErrorIs(t, err, ErrStaleHandle)
	require.True(t, IsUsage(err))
	require.Equal(t, "handle (slot 4, generation 2): usage violation: handle is stale", err.Error())
}

func TestExhaustedError(t *testing.T) {
	err := fmt.Errorf("failed to grow: %w", &ExhaustedError{Requested: 64, Limit: 32})

	require.True(t, IsExhausted(err))
	require.False(t, IsUsage(err))

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Equal(t, 64, exhausted.Requested)
	require.Equal(t, "failed to grow: resources exhausted: requested capacity 64 exceeds limit of 32", err.Error())
}

package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestThrottle_ProcessesEveryFifthTick(t *testing.T) {
	th := NewThrottle(5)

	var processed []int
	for tick := 1; tick <= 20; tick++ {
		if th.Next() {
			processed = append(processed, tick)
		}
	}

	require.Equal(t, []int{5, 10, 15, 20}, processed)
	require.Equal(t, 20, th.Ticks())
}

func TestThrottle_NonPositiveSkipProcessesAll(t *testing.T) {
	th := NewThrottle(0)
	for i := 0; i < 3; i++ {
		require.True(t, th.Next())
	}
}

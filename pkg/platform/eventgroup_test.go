package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventGroupBits(t *testing.T) {
	heap := &Heap{}
	p := &Platform{Heap: heap}
	g, err := p.CreateEventGroup()
	require.NoError(t, err)

	require.Equal(t, EventBits(0x3), g.SetBits(0x3))
	require.Equal(t, EventBits(0x3), g.GetBits())
	require.Equal(t, EventBits(0x3), g.ClearBits(0x1))
	require.Equal(t, EventBits(0x2), g.GetBits())
	require.True(t, g.SetBitsFromISR(0xff000004))
	require.Equal(t, EventBits(0x6), g.GetBits())

	g.Delete()
	_, blocks := heap.InUse()
	require.Equal(t, 0, blocks)
}

func TestEventGroupWaitBits(t *testing.T) {
	testCases := []struct {
		name        string
		initial     EventBits
		wait        EventBits
		all         bool
		clear       bool
		expect      EventBits
		expectAfter EventBits
	}{
		{"any satisfied", 0x1, 0x3, false, false, 0x1, 0x1},
		{"any satisfied and cleared", 0x5, 0x3, false, true, 0x5, 0x4},
		{"all not satisfied", 0x1, 0x3, true, true, 0x1, 0x1},
		{"all satisfied and cleared", 0x7, 0x3, true, true, 0x7, 0x4},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := New().CreateEventGroup()
			require.NoError(t, err)
			g.SetBits(tc.initial)
			require.Equal(t, tc.expect, g.WaitBits(tc.wait, tc.clear, tc.all, 0))
			require.Equal(t, tc.expectAfter, g.GetBits())
		})
	}
}

func TestEventGroupWaitWakesUp(t *testing.T) {
	g, err := New().CreateEventGroup()
	require.NoError(t, err)
	resultCh := make(chan EventBits, 1)
	go func() {
		resultCh <- g.WaitBits(0x3, true, true, MaxDelay)
	}()
	g.SetBits(0x1)
	time.Sleep(5 * time.Millisecond)
	g.SetBits(0x2)
	select {
	case bits := <-resultCh:
		require.Equal(t, EventBits(0x3), bits)
	case <-time.After(time.Second):
		t.Fatal("waiter not woken")
	}
	require.Equal(t, EventBits(0), g.GetBits())
}

func TestEventGroupWaitTimeout(t *testing.T) {
	p := &Platform{TickPeriod: time.Millisecond}
	g, err := p.CreateEventGroup()
	require.NoError(t, err)
	start := time.Now()
	require.Equal(t, EventBits(0), g.WaitBits(0x1, true, false, 20))
	require.True(t, time.Since(start) >= 20*time.Millisecond)
}

func TestTicks(t *testing.T) {
	p := New()
	require.Equal(t, Ticks(0), p.MsToTicks(0))
	require.Equal(t, Ticks(0), p.MsToTicks(9))
	require.Equal(t, Ticks(10), p.MsToTicks(100))
	require.Equal(t, 100*time.Millisecond, p.TicksToDuration(10))
	require.True(t, p.TicksToDuration(MaxDelay) < 0)
}

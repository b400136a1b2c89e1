package main

import (
	"io"
	"sync"
	"testing"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *metrics {
	return newMetrics(io.Discard, gometrics.NewRegistry(), time.Minute)
}

func TestGetOrCreate(t *testing.T) {
	h := newHub(newTestMetrics())
	require.Equal(t, 0, h.len())

	// getting a new room should add a (1) channel to the hub
	c := h.getOrCreate(1)
	require.Equal(t, 1, h.len())
	require.Equal(t, roomID(1), c.id)

	// getting the same room multiple times should use the same channel
	require.Same(t, c, h.getOrCreate(1))
	require.Same(t, c, h.getOrCreate(1))
	require.Equal(t, 1, h.len())

	require.NotSame(t, c, h.getOrCreate(2))
	require.Equal(t, 2, h.len())
	require.EqualValues(t, 2, h.m.count("rooms"))
}

func TestGetOrCreateConcurrent(t *testing.T) {
	h := newHub(newTestMetrics())

	const callers = 64
	got := make([]*channel, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got[i] = h.getOrCreate(42)
		}(i)
	}
	close(start)
	wg.Wait()

	for _, c := range got {
		require.Same(t, got[0], c)
	}
	require.Equal(t, 1, h.len())
	require.EqualValues(t, 1, h.m.count("rooms"))
}

func TestParseRoom(t *testing.T) {
	room, err := parseRoom("0")
	require.NoError(t, err)
	require.Equal(t, roomID(0), room)

	room, err = parseRoom("18446744073709551615")
	require.NoError(t, err)
	require.Equal(t, roomID(18446744073709551615), room)

	for _, bad := range []string{"", "-1", "abc", "18446744073709551616", "1.5"} {
		_, err := parseRoom(bad)
		require.ErrorIs(t, err, errBadRoom, bad)
	}
}

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGateHandleFrame(t *testing.T) {
	g := &gate{}

	// Not started yet, so no pong.
	_, ok := g.handleFrame("ping")
	require.False(t, ok)
	require.False(t, g.isStarted())

	_, ok = g.handleFrame("serve")
	require.False(t, ok)
	require.True(t, g.isStarted())

	for i := 0; i < 3; i++ {
		reply, ok := g.handleFrame("ping")
		require.True(t, ok)
		require.Equal(t, "pong", reply)
	}

	for _, text := range []string{"", "pong", "PING", "serve ", "hello"} {
		_, ok := g.handleFrame(text)
		require.False(t, ok, text)
	}

	// serve is idempotent
	g.markStarted()
	_, ok = g.handleFrame("serve")
	require.False(t, ok)
	require.True(t, g.isStarted())
}

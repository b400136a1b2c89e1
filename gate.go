package main

import (
	"sync/atomic"
)

const (
	gateServe = "serve"
	gatePing  = "ping"
	gatePong  = "pong"
)

// gate answers pings only once a "serve" has been seen by any connection.
type gate struct {
	started atomic.Bool
}

func (g *gate) markStarted() {
	g.started.Store(true)
}

func (g *gate) isStarted() bool {
	return g.started.Load()
}

// handleFrame returns the reply for a text frame, if any.
func (g *gate) handleFrame(text string) (string, bool) {
	switch text {
	case gateServe:
		g.markStarted()
	case gatePing:
		if g.isStarted() {
			return gatePong, true
		}
	}
	return "", false
}
